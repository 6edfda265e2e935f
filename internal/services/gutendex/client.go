package gutendex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bindery/internal/config"
	"bindery/internal/services"
)

const epubFormat = "application/epub+zip"

// Author identifies one contributor on a catalog record.
type Author struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
}

// Book is the catalog record for a public-domain title.
type Book struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Authors       []Author          `json:"authors"`
	Subjects      []string          `json:"subjects"`
	Languages     []string          `json:"languages"`
	Formats       map[string]string `json:"formats"`
	DownloadCount int64             `json:"download_count"`
}

// AuthorName returns the first listed author, or empty when none.
func (b *Book) AuthorName() string {
	if b == nil || len(b.Authors) == 0 {
		return ""
	}
	return strings.TrimSpace(b.Authors[0].Name)
}

// HTTPDoer describes the HTTP client used by the catalog client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches catalog records and book archives.
type Client struct {
	baseURL string
	client  HTTPDoer
	limiter *rate.Limiter
	retries int

	// RetryDelay is the base delay between download attempts; attempt n
	// waits n times this value.
	RetryDelay time.Duration
}

// NewFromConfig builds a client from application config.
func NewFromConfig(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.Catalog.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewClient(cfg.Catalog.BaseURL, &http.Client{Timeout: timeout}, cfg.Catalog.RequestsPerSec, cfg.Processing.DownloadRetries)
}

// NewClient constructs a catalog client with an explicit HTTP doer.
func NewClient(baseURL string, doer HTTPDoer, requestsPerSec float64, retries int) *Client {
	if requestsPerSec <= 0 {
		requestsPerSec = 2
	}
	if retries < 1 {
		retries = 1
	}
	burst := int(requestsPerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:     doer,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSec), burst),
		retries:    retries,
		RetryDelay: time.Second,
	}
}

// Book fetches the catalog record for the given numeric ID.
func (c *Client) Book(ctx context.Context, id int64) (*Book, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, services.Wrap(services.ErrTimeout, "gutendex", "rate limit", "Catalog request cancelled while rate limited", err)
	}

	url := fmt.Sprintf("%s/books/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "gutendex", "build request", "Invalid catalog request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "gutendex", "fetch book", fmt.Sprintf("Catalog lookup failed for book %d", id), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "gutendex", "fetch book", fmt.Sprintf("Book %d not found in catalog", id), nil)
	case resp.StatusCode >= 300:
		return nil, services.Wrap(services.ErrExternalService, "gutendex", "fetch book", fmt.Sprintf("Catalog returned %d for book %d", resp.StatusCode, id), nil)
	}

	var book Book
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return nil, services.Wrap(services.ErrExternalService, "gutendex", "decode book", fmt.Sprintf("Catalog response for book %d is not valid JSON", id), err)
	}
	return &book, nil
}

// EPUBURL picks the downloadable EPUB URL from a record's format map.
func (c *Client) EPUBURL(book *Book) (string, error) {
	if book == nil || len(book.Formats) == 0 {
		return "", services.Wrap(services.ErrValidation, "gutendex", "resolve format", "Catalog record carries no downloadable formats", nil)
	}
	if url := strings.TrimSpace(book.Formats[epubFormat]); url != "" {
		return url, nil
	}
	for format, url := range book.Formats {
		if strings.HasPrefix(format, "application/epub") && strings.TrimSpace(url) != "" {
			return strings.TrimSpace(url), nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "gutendex", "resolve format", fmt.Sprintf("Book %d has no EPUB format", book.ID), nil)
}

// Download fetches the archive at url, retrying transient failures with
// linearly increasing backoff.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, services.Wrap(services.ErrTimeout, "gutendex", "download", "Download cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt-1) * c.RetryDelay):
			}
		}

		data, retryable, err := c.downloadOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, services.Wrap(services.ErrExternalService, "gutendex", "download",
		fmt.Sprintf("Download failed after %d attempts", c.retries), lastErr)
}

func (c *Client) downloadOnce(ctx context.Context, url string) ([]byte, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, services.Wrap(services.ErrTimeout, "gutendex", "rate limit", "Download cancelled while rate limited", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, services.Wrap(services.ErrValidation, "gutendex", "build request", "Invalid download URL", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, services.Wrap(services.ErrNotFound, "gutendex", "download", fmt.Sprintf("Archive not found at %s", url), nil)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, false, services.Wrap(services.ErrExternalService, "gutendex", "download", fmt.Sprintf("Download returned %d for %s", resp.StatusCode, url), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read archive body: %w", err)
	}
	return data, false, nil
}
