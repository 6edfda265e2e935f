package cleaner

import (
	"strings"
	"testing"
)

func TestCleanEmptyInput(t *testing.T) {
	if got := Clean(""); got != "" {
		t.Errorf("Clean(\"\") = %q, want empty", got)
	}
	if got := Clean("   "); got != "   " {
		t.Errorf("Clean(whitespace) = %q, want input unchanged", got)
	}
}

func TestCleanRemovesBoilerplateBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"license paragraph", `<p>This eBook is for the use of anyone anywhere at no cost and with almost no restrictions whatsoever.</p>`},
		{"produced by", `<p>Produced by Anonymous Volunteers and Distributed Proofreaders</p>`},
		{"foundation", `<div>The Project Gutenberg Literary Archive Foundation owns a compilation copyright.</div>`},
		{"website", `<p>Visit www.gutenberg.org for details.</p>`},
		{"transcriber note", `<p>Transcriber's Note: italics rendered as _underscores_.</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean("<p>Keep me.</p>" + tt.input)
			if strings.Contains(strings.ToLower(got), "gutenberg") || got != "<p>Keep me.</p>" {
				t.Errorf("Clean() = %q, want boilerplate block removed", got)
			}
		})
	}
}

func TestCleanStartEndDelimiters(t *testing.T) {
	input := "junk header *** START OF THE PROJECT GUTENBERG EBOOK MOBY DICK ***\n<p>Call me Ishmael.</p>\n*** END OF THE PROJECT GUTENBERG EBOOK MOBY DICK *** trailing license"
	got := Clean(input)
	if got != "<p>Call me Ishmael.</p>" {
		t.Errorf("Clean() = %q, want only the body paragraph", got)
	}
}

func TestCleanRemovesCatalogAnchors(t *testing.T) {
	input := `<p>See <a href="https://www.gutenberg.org/ebooks/2701">this book</a> for more.</p>`
	got := Clean(input)
	if strings.Contains(got, "gutenberg") || strings.Contains(got, "this book") {
		t.Errorf("Clean() = %q, want anchor and its text removed", got)
	}
}

func TestCleanUnwrapsFootnoteAnchors(t *testing.T) {
	input := `<p>A claim<a href="#footnote-3">[3]</a> was made.</p>`
	got := Clean(input)
	if strings.Contains(got, "<a") {
		t.Errorf("Clean() = %q, want anchor unwrapped", got)
	}
	if !strings.Contains(got, "was made") {
		t.Errorf("Clean() = %q, want anchor text preserved", got)
	}
}

func TestCleanRemovesInlineMarkers(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reject string
	}{
		{"illustration", `<p>Text [Illustration: The ship at sea] more text</p>`, "Illustration"},
		{"footnote", `<p>Text [Footnote: See appendix.] more text</p>`, "Footnote"},
		{"page number brackets", `<p>Text [Pg 42] more text</p>`, "42"},
		{"page number braces", `<p>Text {17} more text</p>`, "17"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if strings.Contains(got, tt.reject) {
				t.Errorf("Clean(%q) = %q, want %q removed", tt.input, got, tt.reject)
			}
			if !strings.Contains(got, "more text") {
				t.Errorf("Clean(%q) = %q, surrounding text lost", tt.input, got)
			}
		})
	}
}

func TestCleanCollapsesBlankLines(t *testing.T) {
	input := "<p>one</p>\n\n\n\n\n<p>two</p>"
	got := Clean(input)
	if got != "<p>one</p>\n\n<p>two</p>" {
		t.Errorf("Clean() = %q, want blank runs collapsed to one", got)
	}
}

func TestCleanKeepsOrdinaryProse(t *testing.T) {
	input := `<p>It was the best of times, it was the worst of times.</p>`
	if got := Clean(input); got != input {
		t.Errorf("Clean() = %q, want ordinary prose untouched", got)
	}
}
