package metastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bindery/internal/config"
	"bindery/internal/services"
)

// Book statuses understood by the metadata API.
const (
	BookStatusPending    = "pending"
	BookStatusProcessing = "processing"
	BookStatusReady      = "ready"
	BookStatusApproved   = "approved"
	BookStatusRejected   = "rejected"
	BookStatusFailed     = "failed"
)

// BookRecord is the payload for creating or replacing a book entry.
type BookRecord struct {
	SourceID      int64    `json:"source_id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Language      string   `json:"language"`
	Status        string   `json:"status"`
	QualityScore  int      `json:"quality_score"`
	QualityIssues []string `json:"quality_issues,omitempty"`
	WordCount     int      `json:"word_count"`
	ChapterCount  int      `json:"chapter_count"`
	CoverURL      string   `json:"cover_url,omitempty"`
	OriginalURL   string   `json:"original_url,omitempty"`
}

// BookUpdate carries a partial update; nil fields are left untouched.
type BookUpdate struct {
	Status        *string  `json:"status,omitempty"`
	QualityScore  *int     `json:"quality_score,omitempty"`
	QualityIssues []string `json:"quality_issues,omitempty"`
	WordCount     *int     `json:"word_count,omitempty"`
	ChapterCount  *int     `json:"chapter_count,omitempty"`
	CoverURL      *string  `json:"cover_url,omitempty"`
	ErrorMessage  *string  `json:"error_message,omitempty"`
}

// ChapterRecord is one chapter row in a batch-create request.
type ChapterRecord struct {
	Order      int    `json:"order"`
	Title      string `json:"title"`
	ContentURL string `json:"content_url"`
	WordCount  int    `json:"word_count"`
	QualityOK  bool   `json:"quality_ok"`
}

// JobRecord mirrors a queue job into the metadata API.
type JobRecord struct {
	SourceID     int64  `json:"source_id"`
	Status       string `json:"status"`
	Priority     int    `json:"priority"`
	Attempts     int    `json:"attempts"`
	ErrorMessage string `json:"error_message,omitempty"`
	QualityScore *int   `json:"quality_score,omitempty"`
}

// HTTPDoer describes the HTTP client used by the metastore client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the metadata API over HTTP with bearer auth.
type Client struct {
	baseURL string
	token   string
	client  HTTPDoer
}

// NewFromConfig builds a client from application config.
func NewFromConfig(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.Metastore.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewClient(cfg.Metastore.BaseURL, cfg.Metastore.Token, &http.Client{Timeout: timeout})
}

// NewClient constructs a metastore client with an explicit HTTP doer.
func NewClient(baseURL, token string, doer HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  doer,
	}
}

type createResponse struct {
	ID int64 `json:"id"`
}

// CreateBook registers a book record and returns the API-side identifier.
func (c *Client) CreateBook(ctx context.Context, record BookRecord) (int64, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/api/books", record, &resp); err != nil {
		return 0, services.Wrap(services.ErrExternalService, "metastore", "create book",
			fmt.Sprintf("Could not create book record for source %d", record.SourceID), err)
	}
	return resp.ID, nil
}

// UpdateBook applies a partial update to an existing book record.
func (c *Client) UpdateBook(ctx context.Context, bookID int64, update BookUpdate) error {
	path := fmt.Sprintf("/api/books/%d", bookID)
	if err := c.do(ctx, http.MethodPatch, path, update, nil); err != nil {
		return services.Wrap(services.ErrExternalService, "metastore", "update book",
			fmt.Sprintf("Could not update book record %d", bookID), err)
	}
	return nil
}

// CreateChapters batch-creates chapter records for a book.
func (c *Client) CreateChapters(ctx context.Context, bookID int64, chapters []ChapterRecord) error {
	if len(chapters) == 0 {
		return nil
	}
	path := fmt.Sprintf("/api/books/%d/chapters", bookID)
	payload := struct {
		Chapters []ChapterRecord `json:"chapters"`
	}{Chapters: chapters}
	if err := c.do(ctx, http.MethodPost, path, payload, nil); err != nil {
		return services.Wrap(services.ErrExternalService, "metastore", "create chapters",
			fmt.Sprintf("Could not create %d chapter records for book %d", len(chapters), bookID), err)
	}
	return nil
}

// UpsertJob mirrors queue job state; the API keys jobs by source book ID.
func (c *Client) UpsertJob(ctx context.Context, record JobRecord) error {
	if err := c.do(ctx, http.MethodPut, "/api/jobs", record, nil); err != nil {
		return services.Wrap(services.ErrExternalService, "metastore", "upsert job",
			fmt.Sprintf("Could not mirror job state for source %d", record.SourceID), err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return nil
}
