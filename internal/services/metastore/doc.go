// Package metastore is the client for the catalog metadata API.
//
// It creates and updates book records, batch-creates chapter records, and
// mirrors queue job state so the public catalog can show processing
// progress. Callers decide whether a failure matters; the workflow treats
// job mirroring as best-effort and book/chapter creation as fatal.
package metastore
