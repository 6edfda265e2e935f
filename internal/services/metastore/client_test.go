package metastore_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bindery/internal/services"
	"bindery/internal/services/metastore"
)

func TestCreateBookSendsAuthAndDecodesID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/books" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("authorization = %q", got)
		}
		var record metastore.BookRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if record.SourceID != 84 || record.Status != metastore.BookStatusProcessing {
			t.Fatalf("unexpected record: %+v", record)
		}
		fmt.Fprint(w, `{"id": 7}`)
	}))
	defer server.Close()

	client := metastore.NewClient(server.URL, "secret", http.DefaultClient)
	id, err := client.CreateBook(context.Background(), metastore.BookRecord{
		SourceID: 84,
		Title:    "Frankenstein",
		Status:   metastore.BookStatusProcessing,
	})
	if err != nil {
		t.Fatalf("CreateBook returned error: %v", err)
	}
	if id != 7 {
		t.Fatalf("id = %d, want 7", id)
	}
}

func TestUpdateBookOmitsNilFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/books/7" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if raw["status"] != "ready" {
			t.Fatalf("status = %v", raw["status"])
		}
		if _, present := raw["word_count"]; present {
			t.Fatal("nil field word_count should be omitted")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	status := metastore.BookStatusReady
	score := 92
	client := metastore.NewClient(server.URL, "", http.DefaultClient)
	err := client.UpdateBook(context.Background(), 7, metastore.BookUpdate{Status: &status, QualityScore: &score})
	if err != nil {
		t.Fatalf("UpdateBook returned error: %v", err)
	}
}

func TestCreateChaptersBatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/books/7/chapters" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload struct {
			Chapters []metastore.ChapterRecord `json:"chapters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(payload.Chapters) != 2 {
			t.Fatalf("expected 2 chapters, got %d", len(payload.Chapters))
		}
		if payload.Chapters[1].Order != 2 || !payload.Chapters[1].QualityOK {
			t.Fatalf("unexpected chapter: %+v", payload.Chapters[1])
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := metastore.NewClient(server.URL, "", http.DefaultClient)
	err := client.CreateChapters(context.Background(), 7, []metastore.ChapterRecord{
		{Order: 1, Title: "The Storm", ContentURL: "https://cdn.example/84/chapters/1", WordCount: 2400, QualityOK: true},
		{Order: 2, Title: "The Calm", ContentURL: "https://cdn.example/84/chapters/2", WordCount: 1900, QualityOK: true},
	})
	if err != nil {
		t.Fatalf("CreateChapters returned error: %v", err)
	}
}

func TestCreateChaptersNoopOnEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty batch")
	}))
	defer server.Close()

	client := metastore.NewClient(server.URL, "", http.DefaultClient)
	if err := client.CreateChapters(context.Background(), 7, nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestServerErrorsWrapExternalService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := metastore.NewClient(server.URL, "", http.DefaultClient)
	err := client.UpsertJob(context.Background(), metastore.JobRecord{SourceID: 84, Status: "downloading"})
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}
