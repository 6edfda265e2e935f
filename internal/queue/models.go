package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a processing job.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusParsing     Status = "parsing"
	StatusCleaning    Status = "cleaning"
	StatusUploading   Status = "uploading"
	StatusDone        Status = "done"
	StatusFailed      Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusDownloading,
	StatusParsing,
	StatusCleaning,
	StatusUploading,
	StatusDone,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusDownloading: {},
	StatusParsing:     {},
	StatusCleaning:    {},
	StatusUploading:   {},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Done       int
	Failed     int
}

// Job represents a processing job persisted in SQLite. BookID is the source
// catalog identifier; QualityScore is nil until the clean stage has scored
// the book.
type Job struct {
	ID           int64
	BookID       int64
	Title        string
	Status       Status
	Priority     int
	Attempts     int
	ErrorMessage string
	QualityScore *int
	QualityPass  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	return IsProcessingStatus(j.Status)
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status ends the job's lifecycle.
func IsTerminal(status Status) bool {
	return status == StatusDone || status == StatusFailed
}

// SetFailed marks the job as failed with the given error message and bumps
// the attempt counter.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.Attempts++
}
