package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bindery/internal/config"
)

const userAgent = "Bindery/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyBookStarted(ctx context.Context, title string, bookID int64) error
	NotifyBookPublished(ctx context.Context, title string, score int) error
	NotifyBookRejected(ctx context.Context, title string, score int, reason string) error
	NotifyBatchCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		events:   cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	events   config.Notifications
}

func (n *ntfyService) NotifyBookStarted(ctx context.Context, title string, bookID int64) error {
	if !n.events.Started {
		return nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("book %d", bookID)
	}
	data := payload{
		title:   "Bindery - Processing Started",
		message: fmt.Sprintf("Started processing: %s (#%d)", title, bookID),
		tags:    []string{"bindery", "book", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBookPublished(ctx context.Context, title string, score int) error {
	if !n.events.Published {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:    "Bindery - Published",
		message:  fmt.Sprintf("Published: %s (quality %d)", title, score),
		tags:     []string{"bindery", "book", "published"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBookRejected(ctx context.Context, title string, score int, reason string) error {
	if !n.events.Rejected {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Rejected: %s (quality %d)", title, score)
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\nReason: %s", message, reason)
	}
	data := payload{
		title:   "Bindery - Rejected",
		message: message,
		tags:    []string{"bindery", "book", "rejected"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	if !n.events.BatchComplete {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	var message string
	if failed == 0 {
		title = "Bindery - Batch Complete"
		message = fmt.Sprintf("Batch complete: %d books processed in %s", processed, durationText)
	} else {
		title = "Bindery - Batch Complete (with errors)"
		message = fmt.Sprintf("Batch complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"bindery", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.events.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Bindery - Error",
		message:  builder.String(),
		tags:     []string{"bindery", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Bindery - Test",
		message:  "Notification system test",
		tags:     []string{"bindery", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBookStarted(context.Context, string, int64) error              { return nil }
func (noopService) NotifyBookPublished(context.Context, string, int) error              { return nil }
func (noopService) NotifyBookRejected(context.Context, string, int, string) error       { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
