// Command marquee polls a cinema listing API and alerts when a watched film
// opens for booking.
//
// `marquee run` starts the long-running poll loop. `marquee check` performs a
// single cycle and prints what would be notified. The remaining commands
// manage configuration, exercise the notification and voice channels, and
// show the recorded cycle history.
package main
