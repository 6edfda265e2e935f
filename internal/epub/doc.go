// Package epub reads EPUB containers into raw chapters, metadata,
// cover, and image assets for the processing pipeline.
//
// The reader is tolerant by design: the corpus is decades of
// machine-converted public-domain files, so a missing mimetype entry
// or a slightly malformed OPF degrades to best-effort parsing rather
// than a hard failure. Front- and back-matter chapters (colophon,
// imprint, license, copyright, endnotes, cover page, title page) are
// excluded, as are chapters under the minimum content threshold.
package epub
