package gutendex_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bindery/internal/services"
	"bindery/internal/services/gutendex"
)

func newClient(t *testing.T, baseURL string, retries int) *gutendex.Client {
	t.Helper()
	client := gutendex.NewClient(baseURL, http.DefaultClient, 1000, retries)
	client.RetryDelay = time.Millisecond
	return client
}

func TestBookDecodesRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books/84" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"id": 84,
			"title": "Frankenstein",
			"authors": [{"name": "Shelley, Mary", "birth_year": 1797, "death_year": 1851}],
			"languages": ["en"],
			"formats": {"application/epub+zip": "https://example.org/84.epub"},
			"download_count": 12345
		}`)
	}))
	defer server.Close()

	book, err := newClient(t, server.URL, 1).Book(context.Background(), 84)
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if book.Title != "Frankenstein" {
		t.Fatalf("title = %q", book.Title)
	}
	if book.AuthorName() != "Shelley, Mary" {
		t.Fatalf("author = %q", book.AuthorName())
	}
	if book.Languages[0] != "en" {
		t.Fatalf("language = %q", book.Languages[0])
	}
}

func TestBookNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL, 1).Book(context.Background(), 999999)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEPUBURL(t *testing.T) {
	client := newClient(t, "http://unused", 1)

	tests := []struct {
		name    string
		formats map[string]string
		want    string
		wantErr bool
	}{
		{
			name:    "exact format",
			formats: map[string]string{"application/epub+zip": "https://example.org/1.epub"},
			want:    "https://example.org/1.epub",
		},
		{
			name:    "epub variant",
			formats: map[string]string{"application/epub+zip; charset=utf-8": "https://example.org/2.epub"},
			want:    "https://example.org/2.epub",
		},
		{
			name:    "no epub",
			formats: map[string]string{"text/plain": "https://example.org/3.txt"},
			wantErr: true,
		},
		{
			name:    "empty formats",
			formats: nil,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			url, err := client.EPUBURL(&gutendex.Book{ID: 1, Formats: tc.formats})
			if tc.wantErr {
				if !errors.Is(err, services.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EPUBURL returned error: %v", err)
			}
			if url != tc.want {
				t.Fatalf("url = %q, want %q", url, tc.want)
			}
		})
	}
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("archive-bytes"))
	}))
	defer server.Close()

	data, err := newClient(t, server.URL, 3).Download(context.Background(), server.URL+"/84.epub")
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if string(data) != "archive-bytes" {
		t.Fatalf("data = %q", data)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestDownloadGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL, 3).Download(context.Background(), server.URL+"/84.epub")
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestDownloadDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL, 3).Download(context.Background(), server.URL+"/missing.epub")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}
