package stages

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bindery/internal/config"
	"bindery/internal/logging"
	"bindery/internal/queue"
	"bindery/internal/services"
	"bindery/internal/services/gutendex"
	"bindery/internal/services/objstore"
	"bindery/internal/stage"
)

const epubContentType = "application/epub+zip"

// Download resolves the catalog record and fetches the source archive.
type Download struct {
	cfg     *config.Config
	catalog *gutendex.Client
	storage *objstore.Client
	state   *State
	logger  *slog.Logger
}

// NewDownload constructs the download stage handler.
func NewDownload(cfg *config.Config, catalog *gutendex.Client, storage *objstore.Client, state *State, logger *slog.Logger) *Download {
	return &Download{
		cfg:     cfg,
		catalog: catalog,
		storage: storage,
		state:   state,
		logger:  logging.NewComponentLogger(logger, "download"),
	}
}

func (d *Download) Prepare(ctx context.Context, job *queue.Job) error {
	job.ErrorMessage = ""
	logging.WithContext(ctx, d.logger).Info("starting download",
		logging.Int64(logging.FieldBookID, job.BookID))
	return nil
}

func (d *Download) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, d.logger)

	book, err := d.catalog.Book(ctx, job.BookID)
	if err != nil {
		return err
	}
	d.state.Book = book
	if strings.TrimSpace(job.Title) == "" {
		job.Title = strings.TrimSpace(book.Title)
	}

	url, err := d.catalog.EPUBURL(book)
	if err != nil {
		return err
	}
	logger.Info("resolved archive url",
		logging.String("url", url),
		logging.String("title", book.Title))

	data, err := d.catalog.Download(ctx, url)
	if err != nil {
		return err
	}

	// Stage the archive through a temp file so a partial download can
	// never be mistaken for the real artifact.
	archive, err := d.stageArchive(job.BookID, data)
	if err != nil {
		return err
	}
	d.state.Archive = archive

	originalURL, err := d.storage.Upload(ctx, objstore.OriginalKey(job.BookID), archive, epubContentType)
	if err != nil {
		return err
	}
	d.state.OriginalURL = originalURL

	logger.Info("download complete",
		logging.Int("bytes", len(archive)),
		logging.String("original_url", originalURL))
	return nil
}

func (d *Download) stageArchive(bookID int64, data []byte) ([]byte, error) {
	dir := os.TempDir()
	if d.cfg != nil && strings.TrimSpace(d.cfg.Paths.DataDir) != "" {
		dir = d.cfg.Paths.DataDir
	}
	tmp, err := os.CreateTemp(dir, fmt.Sprintf("bindery-%d-*.epub", bookID))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "download", "stage archive", "Could not create temp file for downloaded archive", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, services.Wrap(services.ErrTransient, "download", "stage archive", "Could not write downloaded archive", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "download", "stage archive", "Could not flush downloaded archive", err)
	}

	staged, err := os.ReadFile(filepath.Clean(name))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "download", "stage archive", "Could not read staged archive", err)
	}
	return staged, nil
}

func (d *Download) HealthCheck(ctx context.Context) stage.Health {
	if d.cfg == nil || strings.TrimSpace(d.cfg.Catalog.BaseURL) == "" {
		return stage.Unhealthy("download", "catalog base URL is not configured")
	}
	return stage.Healthy("download")
}
