package stages

import (
	"bindery/internal/epub"
	"bindery/internal/pipeline"
	"bindery/internal/quality"
	"bindery/internal/services/gutendex"
)

// State carries one job's in-flight artifacts between stage handlers.
// The workflow manager creates a fresh State per job; nothing here
// outlives the run.
type State struct {
	Book    *gutendex.Book
	Archive []byte
	Parsed  *epub.Book

	Processed pipeline.Book
	Quality   quality.Result

	OriginalURL string
	CoverURL    string
	RecordID    int64
}
