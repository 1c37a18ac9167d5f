// Package monitor runs the poll cycle: fetch the listing, evaluate the
// configured rule, correlate film matches with theatre lookups, notify, and
// escalate at most once per distinct match key.
//
// A Monitor is built from an immutable Options value plus its collaborators
// (HTTP fetcher, theatre collector, notifier, voice caller). Core matching and
// resolution never read the environment or the config file directly.
//
// Rule precedence is fixed at construction: film keyword sets, then the
// free-form condition, then the legacy target name, then the default
// condition "movieCount > 0".
//
// Every cycle is isolated: transport, parse and expression failures end that
// cycle only. The shared Deduplicator is the one piece of cross-cycle state.
package monitor
