// Package stages holds the four concrete pipeline stage handlers:
// download, parse, clean, and upload.
//
// One job's in-flight artifacts travel between handlers through a
// shared State value owned by the workflow manager; the queue row only
// carries durable fields. Download and parse failures are input errors
// that fail the job; upload failures are terminal persistence errors
// and are equally fatal.
package stages
