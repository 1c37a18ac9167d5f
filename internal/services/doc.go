// Package services defines shared utilities consumed by the monitor pipeline
// and its outbound integrations.
//
// Key responsibilities:
//   - Context helpers that stamp a poll cycle identifier for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     transport, parse, expression or configuration problems.
//
// Per-cycle failures carry one of the non-fatal markers and never escape the
// cycle; ErrConfiguration is the only marker that stops the process.
package services
