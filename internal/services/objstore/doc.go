// Package objstore uploads processed artifacts to the public object store.
//
// Keys are namespaced by source book ID so one book's original archive,
// cover, chapter documents, and images live under a single prefix. Upload
// returns the public URL callers persist in the metadata store.
package objstore
