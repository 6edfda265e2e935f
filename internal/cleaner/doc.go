// Package cleaner strips source-platform boilerplate from raw chapter
// HTML before any stylistic transform runs.
//
// Public-domain EPUB sources wrap the work itself in license notices,
// production credits, and inline editorial markers. The cleaner removes
// those wholesale and normalizes whitespace so later passes see only
// the author's prose. Every function is total: malformed or empty input
// degrades to a no-op, never an error.
package cleaner
