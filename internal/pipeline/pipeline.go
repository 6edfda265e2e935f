package pipeline

import (
	"strings"

	"bindery/internal/cleaner"
	"bindery/internal/foreign"
	"bindery/internal/htmlseg"
	"bindery/internal/images"
	"bindery/internal/quality"
	"bindery/internal/semantics"
	"bindery/internal/spelling"
	"bindery/internal/typography"
)

// MinRawContentLength is the raw-character floor below which a chapter
// is dropped before entering the pipeline.
const MinRawContentLength = 100

// ChapterMinWords is the per-chapter floor for the quality-ok flag.
const ChapterMinWords = 50

// RawChapter is the immutable input unit produced by EPUB parsing.
type RawChapter struct {
	Order int
	Title string
	Href  string
	HTML  string
}

// ProcessedChapter is the pipeline's output unit. It is owned by one
// processing run and never shared across books.
type ProcessedChapter struct {
	RawChapter
	CleanedHTML string
	WordCount   int
	QualityOK   bool

	// Captions and Inline carry phase-one image state into phase two.
	Captions []string
	Inline   []images.Record
}

// Book aggregates one run's processed chapters with book-level
// metadata. The metadata store is the system of record afterwards.
type Book struct {
	Title    string
	Author   string
	Language string
	Chapters []ProcessedChapter
	HasCover bool
}

// ProcessChapter runs the full phase-one transform chain on one raw
// chapter. The transform order is load-bearing: captions must be read
// before the cleaner strips their markers, and base64 payloads must be
// extracted before any prose pass could corrupt them.
func ProcessChapter(raw RawChapter) ProcessedChapter {
	captions := images.ExtractCaptions(raw.HTML)
	html, inline := images.ExtractBase64(raw.HTML)

	html = cleaner.Clean(html)
	html = typography.Normalize(html)
	html = spelling.Modernize(html)
	html = semantics.Enhance(html)
	html = foreign.Tag(html)

	words := CountWords(html)
	return ProcessedChapter{
		RawChapter:  raw,
		CleanedHTML: html,
		WordCount:   words,
		QualityOK:   words >= ChapterMinWords,
		Captions:    captions,
		Inline:      inline,
	}
}

// ProcessChapters drops under-threshold chapters, processes the rest,
// and assigns a dense 1-based order independent of the source
// manifest's ordering quirks.
func ProcessChapters(raws []RawChapter) []ProcessedChapter {
	processed := make([]ProcessedChapter, 0, len(raws))
	order := 0
	for _, raw := range raws {
		if len(strings.TrimSpace(raw.HTML)) < MinRawContentLength {
			continue
		}
		order++
		raw.Order = order
		processed = append(processed, ProcessChapter(raw))
	}
	return processed
}

// FinalizeImages is phase two: once storage URLs are known, rewrite
// image paths, apply captions as alt text, and resolve base64
// placeholders.
func FinalizeImages(ch *ProcessedChapter, urlByPath, urlByPlaceholder map[string]string) {
	html := images.RewritePaths(ch.CleanedHTML, urlByPath, ch.Captions)
	ch.CleanedHTML = images.ResolvePlaceholders(html, urlByPlaceholder)
}

// CountWords counts whitespace-delimited words in the prose of an
// HTML fragment.
func CountWords(html string) int {
	var b strings.Builder
	for _, seg := range htmlseg.Split(html) {
		if seg.Kind == htmlseg.Text {
			b.WriteString(seg.Value)
			b.WriteByte(' ')
		}
	}
	return len(strings.Fields(b.String()))
}

// QualityInput converts a processed book into the scorer's view.
func QualityInput(book Book) quality.Book {
	chapters := make([]quality.Chapter, 0, len(book.Chapters))
	for _, ch := range book.Chapters {
		chapters = append(chapters, quality.Chapter{
			Order:     ch.Order,
			Title:     ch.Title,
			Text:      ch.CleanedHTML,
			WordCount: ch.WordCount,
		})
	}
	return quality.Book{Chapters: chapters, HasCover: book.HasCover}
}
