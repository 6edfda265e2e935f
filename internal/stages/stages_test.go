package stages_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"bindery/internal/config"
	"bindery/internal/logging"
	"bindery/internal/queue"
	"bindery/internal/services"
	"bindery/internal/services/gutendex"
	"bindery/internal/services/metastore"
	"bindery/internal/services/objstore"
	"bindery/internal/stages"
)

const containerDoc = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func testOPF(chapterCount int) string {
	var manifest, spine strings.Builder
	for i := 1; i <= chapterCount; i++ {
		fmt.Fprintf(&manifest, `<item id="ch%d" href="ch%d.xhtml" media-type="application/xhtml+xml"/>`, i, i)
		fmt.Fprintf(&spine, `<itemref idref="ch%d"/>`, i)
	}
	return `<?xml version="1.0"?>
<package version="2.0" xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <metadata>
    <dc:title>A Dark Night</dc:title>
    <dc:creator>Edward Bulwer</dc:creator>
    <dc:language>en</dc:language>
    <meta name="cover" content="cover-img"/>
  </metadata>
  <manifest>
    ` + manifest.String() + `
    <item id="cover-img" href="images/front.jpg" media-type="image/jpeg"/>
    <item id="plate" href="images/plate-1.png" media-type="image/png"/>
  </manifest>
  <spine>` + spine.String() + `</spine>
</package>`
}

func chapterDoc(order int) string {
	paragraph := strings.TrimSpace(strings.Repeat("midnight lantern harbour voyage ", 425))
	return fmt.Sprintf(`<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter %d</title></head>
<body>
<h2>Chapter %d</h2>
<p>%s</p>
<p><img src="images/plate-1.png"/></p>
</body>
</html>`, order, order, paragraph)
}

func buildEPUB(t *testing.T, chapterCount int) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("mimetype", "application/epub+zip")
	write("META-INF/container.xml", containerDoc)
	write("OEBPS/content.opf", testOPF(chapterCount))
	for i := 1; i <= chapterCount; i++ {
		write(fmt.Sprintf("OEBPS/ch%d.xhtml", i), chapterDoc(i))
	}
	write("OEBPS/images/front.jpg", "jpeg-bytes")
	write("OEBPS/images/plate-1.png", "png-bytes")
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

type storageFake struct {
	mu      sync.Mutex
	objects map[string][]byte
	server  *httptest.Server
}

func newStorageFake(t *testing.T) *storageFake {
	t.Helper()
	fake := &storageFake{objects: map[string][]byte{}}
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var body bytes.Buffer
		if _, err := body.ReadFrom(r.Body); err != nil {
			t.Fatalf("read body: %v", err)
		}
		fake.mu.Lock()
		fake.objects[strings.TrimPrefix(r.URL.Path, "/books/")] = body.Bytes()
		fake.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *storageFake) client() *objstore.Client {
	return objstore.NewClient(f.server.URL, "books", "", "https://cdn.example", http.DefaultClient)
}

func (f *storageFake) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		keys = append(keys, key)
	}
	return keys
}

func (f *storageFake) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Catalog.BaseURL = "https://catalog.example"
	cfg.Metastore.BaseURL = "https://meta.example"
	cfg.Storage.Endpoint = "https://store.example"
	cfg.Storage.Bucket = "books"
	return &cfg
}

func runStage(t *testing.T, prepare, execute func(context.Context, *queue.Job) error, job *queue.Job) {
	t.Helper()
	ctx := context.Background()
	if err := prepare(ctx, job); err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if err := execute(ctx, job); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
}

func TestDownloadFetchesAndStoresOriginal(t *testing.T) {
	archive := buildEPUB(t, 3)

	mux := http.NewServeMux()
	mux.HandleFunc("/books/84", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id": 84, "title": "A Dark Night", "authors": [{"name": "Edward Bulwer"}], "languages": ["en"], "formats": {"application/epub+zip": %q}}`, "http://"+r.Host+"/files/84.epub")
	})
	mux.HandleFunc("/files/84.epub", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	catalogServer := httptest.NewServer(mux)
	defer catalogServer.Close()

	storage := newStorageFake(t)
	cfg := testConfig(t)

	catalog := gutendex.NewClient(catalogServer.URL, http.DefaultClient, 1000, 3)
	catalog.RetryDelay = time.Millisecond

	state := &stages.State{}
	handler := stages.NewDownload(cfg, catalog, storage.client(), state, logging.NewNop())
	job := &queue.Job{ID: 1, BookID: 84, Status: queue.StatusDownloading}

	runStage(t, handler.Prepare, handler.Execute, job)

	if job.Title != "A Dark Night" {
		t.Fatalf("job title = %q", job.Title)
	}
	if !bytes.Equal(state.Archive, archive) {
		t.Fatal("state archive does not match downloaded bytes")
	}
	if !storage.has("84/original") {
		t.Fatalf("original archive not uploaded, keys: %v", storage.keys())
	}
	if state.OriginalURL != "https://cdn.example/84/original" {
		t.Fatalf("original url = %q", state.OriginalURL)
	}

	leftovers, err := filepath.Glob(filepath.Join(cfg.Paths.DataDir, "bindery-*"))
	if err != nil {
		t.Fatalf("glob temp files: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("temp files not removed: %v", leftovers)
	}
}

func TestParsePopulatesState(t *testing.T) {
	state := &stages.State{Archive: buildEPUB(t, 3)}
	handler := stages.NewParse(state, logging.NewNop())
	job := &queue.Job{ID: 1, BookID: 84, Status: queue.StatusParsing}

	runStage(t, handler.Prepare, handler.Execute, job)

	if state.Parsed == nil {
		t.Fatal("expected parsed book")
	}
	if got := len(state.Parsed.Chapters); got != 3 {
		t.Fatalf("chapters = %d, want 3", got)
	}
	if state.Parsed.Cover == nil {
		t.Fatal("expected cover")
	}
	if state.Parsed.Metadata.Title != "A Dark Night" {
		t.Fatalf("title = %q", state.Parsed.Metadata.Title)
	}
}

func TestParseRejectsGarbageArchive(t *testing.T) {
	state := &stages.State{Archive: []byte("not a zip at all")}
	handler := stages.NewParse(state, logging.NewNop())
	job := &queue.Job{ID: 1, BookID: 84}

	if err := handler.Execute(context.Background(), job); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestParsePrepareRequiresArchive(t *testing.T) {
	handler := stages.NewParse(&stages.State{}, logging.NewNop())
	if err := handler.Prepare(context.Background(), &queue.Job{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCleanProcessesAndScores(t *testing.T) {
	state := &stages.State{Archive: buildEPUB(t, 3)}
	parse := stages.NewParse(state, logging.NewNop())
	job := &queue.Job{ID: 1, BookID: 84, Status: queue.StatusCleaning}
	runStage(t, parse.Prepare, parse.Execute, job)

	handler := stages.NewClean(testConfig(t), state, logging.NewNop())
	runStage(t, handler.Prepare, handler.Execute, job)

	if got := len(state.Processed.Chapters); got != 3 {
		t.Fatalf("processed chapters = %d, want 3", got)
	}
	if state.Processed.Title != "A Dark Night" || state.Processed.Author != "Edward Bulwer" {
		t.Fatalf("metadata = %q by %q", state.Processed.Title, state.Processed.Author)
	}
	if !state.Processed.HasCover {
		t.Fatal("expected HasCover")
	}
	if job.QualityScore == nil {
		t.Fatal("expected quality score on job")
	}
	if *job.QualityScore != 100 {
		t.Fatalf("score = %d, want 100 (issues: %v)", *job.QualityScore, state.Quality.Issues)
	}
	if !job.QualityPass {
		t.Fatal("expected quality pass")
	}
	for _, ch := range state.Processed.Chapters {
		if !ch.QualityOK {
			t.Fatalf("chapter %d below word floor: %d words", ch.Order, ch.WordCount)
		}
	}
}

func TestUploadPersistsEverything(t *testing.T) {
	state := &stages.State{Archive: buildEPUB(t, 3)}
	job := &queue.Job{ID: 1, BookID: 84, Status: queue.StatusUploading}
	parse := stages.NewParse(state, logging.NewNop())
	runStage(t, parse.Prepare, parse.Execute, job)
	clean := stages.NewClean(testConfig(t), state, logging.NewNop())
	runStage(t, clean.Prepare, clean.Execute, job)

	storage := newStorageFake(t)

	var createdBook metastore.BookRecord
	var createdChapters []metastore.ChapterRecord
	metaMux := http.NewServeMux()
	metaMux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&createdBook); err != nil {
			t.Fatalf("decode book record: %v", err)
		}
		fmt.Fprint(w, `{"id": 7}`)
	})
	metaMux.HandleFunc("/api/books/7/chapters", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Chapters []metastore.ChapterRecord `json:"chapters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode chapters: %v", err)
		}
		createdChapters = payload.Chapters
		w.WriteHeader(http.StatusCreated)
	})
	metaServer := httptest.NewServer(metaMux)
	defer metaServer.Close()

	handler := stages.NewUpload(testConfig(t), storage.client(), metastore.NewClient(metaServer.URL, "", http.DefaultClient), state, logging.NewNop())
	runStage(t, handler.Prepare, handler.Execute, job)

	for _, key := range []string{"84/cover.jpg", "84/images/plate-1.png", "84/chapters/1", "84/chapters/2", "84/chapters/3"} {
		if !storage.has(key) {
			t.Fatalf("missing object %q, keys: %v", key, storage.keys())
		}
	}

	if createdBook.Status != metastore.BookStatusReady {
		t.Fatalf("book status = %q, want ready", createdBook.Status)
	}
	if createdBook.SourceID != 84 || createdBook.ChapterCount != 3 {
		t.Fatalf("unexpected book record: %+v", createdBook)
	}
	if createdBook.CoverURL != "https://cdn.example/84/cover.jpg" {
		t.Fatalf("cover url = %q", createdBook.CoverURL)
	}
	if len(createdChapters) != 3 {
		t.Fatalf("chapter records = %d, want 3", len(createdChapters))
	}
	if createdChapters[0].ContentURL != "https://cdn.example/84/chapters/1" {
		t.Fatalf("chapter url = %q", createdChapters[0].ContentURL)
	}
	if state.RecordID != 7 {
		t.Fatalf("record id = %d, want 7", state.RecordID)
	}

	// Image sources in the final HTML point at storage, not the
	// manifest path.
	chapterHTML := string(storageObject(t, storage, "84/chapters/1"))
	if !strings.Contains(chapterHTML, "https://cdn.example/84/images/plate-1.png") {
		t.Fatalf("chapter html not rewritten: %s", chapterHTML)
	}
}

func TestUploadRejectsBelowMinimumScore(t *testing.T) {
	state := &stages.State{Archive: buildEPUB(t, 3)}
	job := &queue.Job{ID: 1, BookID: 84}
	parse := stages.NewParse(state, logging.NewNop())
	runStage(t, parse.Prepare, parse.Execute, job)

	cfg := testConfig(t)
	clean := stages.NewClean(cfg, state, logging.NewNop())
	runStage(t, clean.Prepare, clean.Execute, job)

	// Raise the bar above what this book scores.
	cfg.Processing.MinQualityScore = 100
	state.Quality.Score = 90

	storage := newStorageFake(t)
	var createdBook metastore.BookRecord
	metaMux := http.NewServeMux()
	metaMux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&createdBook); err != nil {
			t.Fatalf("decode book record: %v", err)
		}
		fmt.Fprint(w, `{"id": 8}`)
	})
	metaMux.HandleFunc("/api/books/8/chapters", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	metaServer := httptest.NewServer(metaMux)
	defer metaServer.Close()

	handler := stages.NewUpload(cfg, storage.client(), metastore.NewClient(metaServer.URL, "", http.DefaultClient), state, logging.NewNop())
	runStage(t, handler.Prepare, handler.Execute, job)

	if createdBook.Status != metastore.BookStatusRejected {
		t.Fatalf("book status = %q, want rejected", createdBook.Status)
	}
}

func TestUploadFailureIsFatal(t *testing.T) {
	state := &stages.State{Archive: buildEPUB(t, 3)}
	job := &queue.Job{ID: 1, BookID: 84}
	parse := stages.NewParse(state, logging.NewNop())
	runStage(t, parse.Prepare, parse.Execute, job)
	clean := stages.NewClean(testConfig(t), state, logging.NewNop())
	runStage(t, clean.Prepare, clean.Execute, job)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInsufficientStorage)
	}))
	defer broken.Close()

	storage := objstore.NewClient(broken.URL, "books", "", "", http.DefaultClient)
	handler := stages.NewUpload(testConfig(t), storage, metastore.NewClient("http://unused", "", http.DefaultClient), state, logging.NewNop())

	if err := handler.Execute(context.Background(), job); !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestHealthChecks(t *testing.T) {
	cfg := testConfig(t)
	state := &stages.State{}

	if h := stages.NewDownload(cfg, nil, nil, state, logging.NewNop()).HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("download unhealthy: %s", h.Detail)
	}
	if h := stages.NewUpload(cfg, nil, nil, state, logging.NewNop()).HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("upload unhealthy: %s", h.Detail)
	}

	cfg.Catalog.BaseURL = ""
	if h := stages.NewDownload(cfg, nil, nil, state, logging.NewNop()).HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy download without catalog URL")
	}

	cfg.Storage.Bucket = ""
	if h := stages.NewUpload(cfg, nil, nil, state, logging.NewNop()).HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy upload without bucket")
	}
}

func storageObject(t *testing.T, fake *storageFake, key string) []byte {
	t.Helper()
	fake.mu.Lock()
	defer fake.mu.Unlock()
	data, ok := fake.objects[key]
	if !ok {
		t.Fatalf("object %q not found", key)
	}
	return data
}
