// Package daemon hosts the long-running marquee process: it holds the
// single-instance lock, drives the monitor's poll loop, and serves the
// optional metrics endpoint until shutdown.
package daemon
