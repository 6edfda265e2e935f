package stages

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"bindery/internal/config"
	"bindery/internal/images"
	"bindery/internal/logging"
	"bindery/internal/pipeline"
	"bindery/internal/queue"
	"bindery/internal/services"
	"bindery/internal/services/metastore"
	"bindery/internal/services/objstore"
	"bindery/internal/stage"
)

const chapterContentType = "text/html; charset=utf-8"

// Upload persists the processed book: cover, images, chapter documents,
// and the metadata-store records. Any failure here is terminal.
type Upload struct {
	cfg     *config.Config
	storage *objstore.Client
	meta    *metastore.Client
	state   *State
	logger  *slog.Logger
}

// NewUpload constructs the upload stage handler.
func NewUpload(cfg *config.Config, storage *objstore.Client, meta *metastore.Client, state *State, logger *slog.Logger) *Upload {
	return &Upload{
		cfg:     cfg,
		storage: storage,
		meta:    meta,
		state:   state,
		logger:  logging.NewComponentLogger(logger, "upload"),
	}
}

func (u *Upload) Prepare(ctx context.Context, job *queue.Job) error {
	if len(u.state.Processed.Chapters) == 0 {
		return services.Wrap(services.ErrValidation, "upload", "validate inputs",
			"No processed chapters present; the clean stage must run first", nil)
	}
	return nil
}

func (u *Upload) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, u.logger)

	if err := u.uploadCover(ctx, job.BookID); err != nil {
		return err
	}
	urlByPath, err := u.uploadImages(ctx, job.BookID)
	if err != nil {
		return err
	}

	chapters := u.state.Processed.Chapters
	records := make([]metastore.ChapterRecord, 0, len(chapters))
	totalWords := 0
	for i := range chapters {
		ch := &chapters[i]

		urlByPlaceholder, err := u.uploadInline(ctx, job.BookID, ch)
		if err != nil {
			return err
		}
		pipeline.FinalizeImages(ch, urlByPath, urlByPlaceholder)

		contentURL, err := u.storage.Upload(ctx, objstore.ChapterKey(job.BookID, ch.Order), []byte(ch.CleanedHTML), chapterContentType)
		if err != nil {
			return err
		}
		records = append(records, metastore.ChapterRecord{
			Order:      ch.Order,
			Title:      ch.Title,
			ContentURL: contentURL,
			WordCount:  ch.WordCount,
			QualityOK:  ch.QualityOK,
		})
		totalWords += ch.WordCount
	}

	status := metastore.BookStatusReady
	if u.state.Quality.Score < u.minQualityScore() {
		status = metastore.BookStatusRejected
	}

	recordID, err := u.meta.CreateBook(ctx, metastore.BookRecord{
		SourceID:      job.BookID,
		Title:         u.state.Processed.Title,
		Author:        u.state.Processed.Author,
		Language:      u.state.Processed.Language,
		Status:        status,
		QualityScore:  u.state.Quality.Score,
		QualityIssues: u.state.Quality.Issues,
		WordCount:     totalWords,
		ChapterCount:  len(chapters),
		CoverURL:      u.state.CoverURL,
		OriginalURL:   u.state.OriginalURL,
	})
	if err != nil {
		return err
	}
	u.state.RecordID = recordID

	if err := u.meta.CreateChapters(ctx, recordID, records); err != nil {
		return err
	}

	logger.Info("upload complete",
		logging.Int64("record_id", recordID),
		logging.Int("chapters", len(records)),
		logging.Int("words", totalWords),
		logging.String("book_status", status))
	return nil
}

func (u *Upload) uploadCover(ctx context.Context, bookID int64) error {
	parsed := u.state.Parsed
	if parsed == nil || parsed.Cover == nil {
		return nil
	}
	cover := parsed.Cover
	ext := coverExtension(cover.MediaType, cover.Path)
	url, err := u.storage.Upload(ctx, objstore.CoverKey(bookID, ext), cover.Data, cover.MediaType)
	if err != nil {
		return err
	}
	u.state.CoverURL = url
	return nil
}

func (u *Upload) uploadImages(ctx context.Context, bookID int64) (map[string]string, error) {
	parsed := u.state.Parsed
	if parsed == nil || len(parsed.Images) == 0 {
		return nil, nil
	}
	urlByPath := make(map[string]string, len(parsed.Images))
	for _, img := range parsed.Images {
		url, err := u.storage.Upload(ctx, objstore.ImageKey(bookID, img.Path), img.Data, img.MediaType)
		if err != nil {
			return nil, err
		}
		urlByPath[img.Path] = url
	}
	return urlByPath, nil
}

// uploadInline stores a chapter's decoded data-URI images and maps each
// extraction placeholder to its final URL. Filenames are prefixed with
// the chapter order so two chapters' inline images cannot collide.
func (u *Upload) uploadInline(ctx context.Context, bookID int64, ch *pipeline.ProcessedChapter) (map[string]string, error) {
	if len(ch.Inline) == 0 {
		return nil, nil
	}
	urlByPlaceholder := make(map[string]string, len(ch.Inline))
	for i, rec := range ch.Inline {
		filename := fmt.Sprintf("ch%d-%s", ch.Order, rec.Filename)
		url, err := u.storage.Upload(ctx, objstore.ImageKey(bookID, filename), rec.Data, rec.MimeType)
		if err != nil {
			return nil, err
		}
		urlByPlaceholder[images.Placeholder(i)] = url
	}
	return urlByPlaceholder, nil
}

func (u *Upload) minQualityScore() int {
	if u.cfg == nil {
		return 60
	}
	return u.cfg.Processing.MinQualityScore
}

func (u *Upload) HealthCheck(ctx context.Context) stage.Health {
	if u.cfg == nil {
		return stage.Unhealthy("upload", "configuration missing")
	}
	if strings.TrimSpace(u.cfg.Storage.Endpoint) == "" || strings.TrimSpace(u.cfg.Storage.Bucket) == "" {
		return stage.Unhealthy("upload", "storage endpoint or bucket is not configured")
	}
	if strings.TrimSpace(u.cfg.Metastore.BaseURL) == "" {
		return stage.Unhealthy("upload", "metastore base URL is not configured")
	}
	return stage.Healthy("upload")
}

func coverExtension(mediaType, coverPath string) string {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/svg+xml":
		return "svg"
	case "image/webp":
		return "webp"
	}
	return strings.TrimPrefix(path.Ext(coverPath), ".")
}
