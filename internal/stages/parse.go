package stages

import (
	"context"
	"fmt"
	"log/slog"

	"bindery/internal/epub"
	"bindery/internal/logging"
	"bindery/internal/queue"
	"bindery/internal/services"
	"bindery/internal/stage"
)

// Parse turns the downloaded archive into structured chapters, cover,
// and images.
type Parse struct {
	state  *State
	logger *slog.Logger
}

// NewParse constructs the parse stage handler.
func NewParse(state *State, logger *slog.Logger) *Parse {
	return &Parse{state: state, logger: logging.NewComponentLogger(logger, "parse")}
}

func (p *Parse) Prepare(ctx context.Context, job *queue.Job) error {
	if len(p.state.Archive) == 0 {
		return services.Wrap(services.ErrValidation, "parse", "validate inputs",
			"No downloaded archive present; the download stage must run first", nil)
	}
	return nil
}

func (p *Parse) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, p.logger)

	book, err := epub.Parse(p.state.Archive)
	if err != nil {
		return services.Wrap(services.ErrValidation, "parse", "read archive",
			fmt.Sprintf("Book %d is not a readable EPUB", job.BookID), err)
	}
	for _, warning := range book.Warnings {
		logger.Warn("archive warning", logging.String("detail", warning))
	}
	p.state.Parsed = book

	logger.Info("parse complete",
		logging.Int("chapters", len(book.Chapters)),
		logging.Int("images", len(book.Images)),
		logging.Bool("has_cover", book.Cover != nil))
	return nil
}

func (p *Parse) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("parse")
}
