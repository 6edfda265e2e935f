// Package workflow drives queue processing.
//
// The manager runs one job at a time through the fixed stage sequence
// download, parse, clean, upload, with a configurable delay between
// jobs. Shutdown is cooperative: a stop request is honored between
// jobs, never mid-book. Every status transition is mirrored to the
// metadata store and announced over ntfy on a best-effort basis; only
// the queue row is authoritative.
package workflow
