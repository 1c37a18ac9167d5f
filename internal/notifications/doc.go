// Package notifications delivers match and error messages to ntfy.
//
// The ntfy implementation posts plain-text bodies with Title, Tags and
// Priority headers to the configured topic URL and degrades to a no-op when
// no topic is configured. Delivery failures are returned to the caller, which
// logs them; they never stop monitoring.
package notifications
