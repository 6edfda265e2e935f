package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"bindery/internal/config"
	"bindery/internal/services"
)

// HTTPDoer describes the HTTP client used by the storage client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client uploads artifacts to a bucket over HTTP.
type Client struct {
	endpoint      string
	bucket        string
	token         string
	publicBaseURL string
	client        HTTPDoer
}

// NewFromConfig builds a storage client from application config.
func NewFromConfig(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.Storage.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewClient(cfg.Storage.Endpoint, cfg.Storage.Bucket, cfg.Storage.Token, cfg.Storage.PublicBaseURL, &http.Client{Timeout: timeout})
}

// NewClient constructs a storage client with an explicit HTTP doer.
// When publicBaseURL is empty, public URLs are built from endpoint/bucket.
func NewClient(endpoint, bucket, token, publicBaseURL string, doer HTTPDoer) *Client {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	bucket = strings.Trim(strings.TrimSpace(bucket), "/")
	publicBaseURL = strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if publicBaseURL == "" {
		publicBaseURL = endpoint + "/" + bucket
	}
	return &Client{
		endpoint:      endpoint,
		bucket:        bucket,
		token:         strings.TrimSpace(token),
		publicBaseURL: publicBaseURL,
		client:        doer,
	}
}

// Upload stores data under key and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", services.Wrap(services.ErrValidation, "objstore", "upload", "Object key is empty", nil)
	}

	url := fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "objstore", "upload", fmt.Sprintf("Invalid object key %q", key), err)
	}
	req.ContentLength = int64(len(data))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "objstore", "upload", fmt.Sprintf("Upload failed for %q", key), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", services.Wrap(services.ErrExternalService, "objstore", "upload",
			fmt.Sprintf("Storage returned %d for %q: %s", resp.StatusCode, key, strings.TrimSpace(string(detail))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return c.PublicURL(key), nil
}

// PublicURL returns the URL readers use to fetch an uploaded object.
func (c *Client) PublicURL(key string) string {
	return c.publicBaseURL + "/" + strings.Trim(key, "/")
}

// OriginalKey addresses the untouched source archive.
func OriginalKey(bookID int64) string {
	return fmt.Sprintf("%d/original", bookID)
}

// CoverKey addresses the cover image; ext is derived from the media type
// or source path and defaults to jpg.
func CoverKey(bookID int64, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%d/cover.%s", bookID, strings.ToLower(ext))
}

// ChapterKey addresses one chapter's final HTML by its 1-based order.
func ChapterKey(bookID int64, order int) string {
	return fmt.Sprintf("%d/chapters/%d", bookID, order)
}

// ImageKey addresses an extracted or inline image by filename.
func ImageKey(bookID int64, filename string) string {
	return fmt.Sprintf("%d/images/%s", bookID, path.Base(strings.TrimSpace(filename)))
}
