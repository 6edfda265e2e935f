// Package gutendex talks to the source book catalog.
//
// It resolves catalog records by numeric ID, picks the downloadable EPUB
// format out of a record's format map, and downloads archives with bounded
// retries. A shared rate limiter keeps batch runs from hammering the
// public API.
package gutendex
