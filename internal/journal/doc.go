// Package journal persists a history row per finished poll cycle in SQLite.
//
// The journal is an audit trail for the history command. It is write-only
// from the monitor's point of view: escalation deduplication never reads it
// and stays process-lifetime.
package journal
