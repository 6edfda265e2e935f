package stages

import (
	"context"
	"log/slog"
	"strings"

	"bindery/internal/config"
	"bindery/internal/logging"
	"bindery/internal/pipeline"
	"bindery/internal/quality"
	"bindery/internal/queue"
	"bindery/internal/services"
	"bindery/internal/stage"
)

// Clean runs the text pipeline over every chapter and scores the
// aggregate.
type Clean struct {
	cfg    *config.Config
	state  *State
	logger *slog.Logger
}

// NewClean constructs the clean stage handler.
func NewClean(cfg *config.Config, state *State, logger *slog.Logger) *Clean {
	return &Clean{cfg: cfg, state: state, logger: logging.NewComponentLogger(logger, "clean")}
}

func (c *Clean) Prepare(ctx context.Context, job *queue.Job) error {
	if c.state.Parsed == nil {
		return services.Wrap(services.ErrValidation, "clean", "validate inputs",
			"No parsed book present; the parse stage must run first", nil)
	}
	return nil
}

func (c *Clean) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, c.logger)
	parsed := c.state.Parsed

	raws := make([]pipeline.RawChapter, 0, len(parsed.Chapters))
	for _, ch := range parsed.Chapters {
		raws = append(raws, pipeline.RawChapter{
			Order: ch.Order,
			Title: ch.Title,
			Href:  ch.Href,
			HTML:  ch.HTML,
		})
	}

	processed := pipeline.ProcessChapters(raws)
	if len(processed) == 0 {
		return services.Wrap(services.ErrValidation, "clean", "process chapters",
			"Every chapter fell below the minimum content threshold", nil)
	}

	var catalogTitle string
	if c.state.Book != nil {
		catalogTitle = c.state.Book.Title
	}
	book := pipeline.Book{
		Title:    pickMetadata(parsed.Metadata.Title, catalogTitle),
		Author:   pickMetadata(parsed.Metadata.Author, c.state.Book.AuthorName()),
		Language: parsed.Metadata.Language,
		Chapters: processed,
		HasCover: parsed.Cover != nil,
	}
	c.state.Processed = book

	result := quality.Evaluate(pipeline.QualityInput(book))
	c.state.Quality = result

	score := result.Score
	job.QualityScore = &score
	job.QualityPass = result.Pass

	logger.Info("clean complete",
		logging.Int("chapters", len(processed)),
		logging.Int(logging.FieldQualityScore, result.Score),
		logging.Bool("pass", result.Pass))
	for _, issue := range result.Issues {
		logger.Warn("quality issue", logging.String("detail", issue))
	}
	return nil
}

func (c *Clean) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("clean")
}

func pickMetadata(primary, fallback string) string {
	if v := strings.TrimSpace(primary); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}
