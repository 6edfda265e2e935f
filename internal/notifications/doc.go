// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-event toggles in the [notifications] config section let
// operators silence individual milestones without losing error alerts.
//
// Extend this package if you need alternative transports; pipeline code
// depends only on the Service interface.
package notifications
