package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

type archiveEntry struct {
	name string
	data string
}

func buildArchive(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.data)); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

const containerDoc = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const longParagraph = `<p>It was a dark and stormy night; the rain fell in torrents, except at
occasional intervals, when it was checked by a violent gust of wind which swept up
the streets, rattling along the housetops, and fiercely agitating the scanty flame
of the lamps that struggled against the darkness.</p>`

func basicOPF(extraManifest, extraSpine string) string {
	return `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <metadata>
    <dc:title>A Dark Night</dc:title>
    <dc:creator>Edward Bulwer</dc:creator>
    <dc:language>EN</dc:language>
    <meta name="cover" content="cover-img"/>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="ch1" href="text/part1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="text/part2.xhtml" media-type="application/xhtml+xml"/>
    <item id="cover-img" href="images/front.jpg" media-type="image/jpeg"/>
    <item id="plate" href="images/plate1.png" media-type="image/png"/>
` + extraManifest + `  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
` + extraSpine + `  </spine>
</package>`
}

const ncxDoc = `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1"><navLabel><text>The Storm</text></navLabel><content src="text/part1.xhtml"/></navPoint>
    <navPoint id="n2"><navLabel><text>The Calm</text></navLabel><content src="text/part2.xhtml#start"/></navPoint>
  </navMap>
</ncx>`

func chapterDoc(heading string) string {
	return `<html><head><title>x</title></head><body><h2>` + heading + `</h2>` + longParagraph + `</body></html>`
}

func basicEPUB(t *testing.T) []byte {
	t.Helper()
	return buildArchive(t, []archiveEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", containerDoc},
		{"OEBPS/content.opf", basicOPF("", "")},
		{"OEBPS/toc.ncx", ncxDoc},
		{"OEBPS/text/part1.xhtml", chapterDoc("I")},
		{"OEBPS/text/part2.xhtml", chapterDoc("II")},
		{"OEBPS/images/front.jpg", "jpegdata"},
		{"OEBPS/images/plate1.png", "pngdata"},
	})
}

func TestParseBasic(t *testing.T) {
	book, err := Parse(basicEPUB(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if book.Metadata.Title != "A Dark Night" {
		t.Errorf("title = %q", book.Metadata.Title)
	}
	if book.Metadata.Author != "Edward Bulwer" {
		t.Errorf("author = %q", book.Metadata.Author)
	}
	if book.Metadata.Language != "en" {
		t.Errorf("language = %q", book.Metadata.Language)
	}
	if len(book.Chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(book.Chapters))
	}
	first := book.Chapters[0]
	if first.Order != 1 || first.Title != "The Storm" {
		t.Errorf("first chapter = %d %q", first.Order, first.Title)
	}
	if book.Chapters[1].Title != "The Calm" {
		t.Errorf("second title = %q", book.Chapters[1].Title)
	}
	if first.Href != "OEBPS/text/part1.xhtml" {
		t.Errorf("href = %q", first.Href)
	}
	if !strings.Contains(first.HTML, "<h2>I</h2>") {
		t.Errorf("body markup missing heading: %q", first.HTML)
	}
	if first.Words < 40 {
		t.Errorf("word count = %d", first.Words)
	}
	if len(book.Warnings) != 0 {
		t.Errorf("warnings = %v", book.Warnings)
	}
}

func TestParseCover(t *testing.T) {
	book, err := Parse(basicEPUB(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if book.Cover == nil {
		t.Fatal("no cover found")
	}
	if book.Cover.Path != "OEBPS/images/front.jpg" {
		t.Errorf("cover path = %q", book.Cover.Path)
	}
	if book.Cover.MediaType != "image/jpeg" {
		t.Errorf("cover media type = %q", book.Cover.MediaType)
	}
	if string(book.Cover.Data) != "jpegdata" {
		t.Errorf("cover data = %q", book.Cover.Data)
	}
	if len(book.Images) != 1 || book.Images[0].Path != "OEBPS/images/plate1.png" {
		t.Errorf("images = %+v", book.Images)
	}
}

func TestParseCoverImageProperty(t *testing.T) {
	manifest := `    <item id="c3" href="images/art.png" media-type="image/png" properties="cover-image"/>` + "\n"
	data := buildArchive(t, []archiveEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", containerDoc},
		{"OEBPS/content.opf", basicOPF(manifest, "")},
		{"OEBPS/toc.ncx", ncxDoc},
		{"OEBPS/text/part1.xhtml", chapterDoc("I")},
		{"OEBPS/text/part2.xhtml", chapterDoc("II")},
		{"OEBPS/images/front.jpg", "jpegdata"},
		{"OEBPS/images/plate1.png", "pngdata"},
		{"OEBPS/images/art.png", "artdata"},
	})
	book, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if book.Cover == nil || book.Cover.Path != "OEBPS/images/art.png" {
		t.Errorf("cover = %+v, want cover-image property to win", book.Cover)
	}
}

func TestParseSkipsApparatus(t *testing.T) {
	manifest := `    <item id="titlepage" href="titlepage.xhtml" media-type="application/xhtml+xml"/>
    <item id="toc-page" href="toc.xhtml" media-type="application/xhtml+xml"/>
    <item id="stub" href="text/stub.xhtml" media-type="application/xhtml+xml"/>
    <item id="notes" href="text/extra.xhtml" media-type="application/xhtml+xml"/>
`
	spine := `    <itemref idref="titlepage"/>
    <itemref idref="toc-page"/>
    <itemref idref="stub"/>
    <itemref idref="notes" linear="no"/>
`
	data := buildArchive(t, []archiveEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", containerDoc},
		{"OEBPS/content.opf", basicOPF(manifest, spine)},
		{"OEBPS/toc.ncx", ncxDoc},
		{"OEBPS/text/part1.xhtml", chapterDoc("I")},
		{"OEBPS/text/part2.xhtml", chapterDoc("II")},
		{"OEBPS/titlepage.xhtml", chapterDoc("Title")},
		{"OEBPS/toc.xhtml", chapterDoc("Contents")},
		{"OEBPS/text/stub.xhtml", "<html><body><p>Too short.</p></body></html>"},
		{"OEBPS/text/extra.xhtml", chapterDoc("Extra")},
		{"OEBPS/images/front.jpg", "jpegdata"},
		{"OEBPS/images/plate1.png", "pngdata"},
	})
	book, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(book.Chapters) != 2 {
		t.Fatalf("chapters = %d, want apparatus and short items skipped", len(book.Chapters))
	}
	for i, ch := range book.Chapters {
		if ch.Order != i+1 {
			t.Errorf("chapter %d order = %d", i, ch.Order)
		}
	}
}

func TestParseTitleFallsBackToHeading(t *testing.T) {
	opf := strings.Replace(basicOPF("", ""), ` toc="ncx"`, "", 1)
	data := buildArchive(t, []archiveEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", containerDoc},
		{"OEBPS/content.opf", opf},
		{"OEBPS/text/part1.xhtml", chapterDoc("Chapter the First")},
		{"OEBPS/text/part2.xhtml", chapterDoc("Chapter the Second")},
		{"OEBPS/images/front.jpg", "jpegdata"},
		{"OEBPS/images/plate1.png", "pngdata"},
	})
	book, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(book.Chapters) != 2 {
		t.Fatalf("chapters = %d", len(book.Chapters))
	}
	if book.Chapters[0].Title != "Chapter the First" {
		t.Errorf("title = %q, want heading fallback", book.Chapters[0].Title)
	}
}

func TestParseNavTitles(t *testing.T) {
	nav := `<html xmlns:epub="http://www.idpf.org/2007/ops"><body>
<nav epub:type="toc"><ol>
<li><a href="text/part1.xhtml">Opening Movement</a></li>
<li><a href="text/part2.xhtml">Closing Movement</a></li>
</ol></nav></body></html>`
	manifest := `    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>` + "\n"
	data := buildArchive(t, []archiveEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", containerDoc},
		{"OEBPS/content.opf", basicOPF(manifest, "")},
		{"OEBPS/nav.xhtml", nav},
		{"OEBPS/toc.ncx", ncxDoc},
		{"OEBPS/text/part1.xhtml", chapterDoc("I")},
		{"OEBPS/text/part2.xhtml", chapterDoc("II")},
		{"OEBPS/images/front.jpg", "jpegdata"},
		{"OEBPS/images/plate1.png", "pngdata"},
	})
	book, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if book.Chapters[0].Title != "Opening Movement" {
		t.Errorf("title = %q, want nav document to win over NCX", book.Chapters[0].Title)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not a zip archive")); !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("err = %v, want ErrInvalidArchive", err)
	}
}

func TestParseRejectsMissingContainer(t *testing.T) {
	data := buildArchive(t, []archiveEntry{
		{"mimetype", "application/epub+zip"},
		{"readme.txt", "nothing here"},
	})
	if _, err := Parse(data); !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("err = %v, want ErrInvalidArchive", err)
	}
}

func TestParseWarnsOnBadMimetype(t *testing.T) {
	data := buildArchive(t, []archiveEntry{
		{"mimetype", "text/plain"},
		{"META-INF/container.xml", containerDoc},
		{"OEBPS/content.opf", basicOPF("", "")},
		{"OEBPS/toc.ncx", ncxDoc},
		{"OEBPS/text/part1.xhtml", chapterDoc("I")},
		{"OEBPS/text/part2.xhtml", chapterDoc("II")},
		{"OEBPS/images/front.jpg", "jpegdata"},
		{"OEBPS/images/plate1.png", "pngdata"},
	})
	book, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(book.Warnings) == 0 {
		t.Error("expected a mimetype warning")
	}
}

func TestExtractText(t *testing.T) {
	text := extractText("<p>One   two</p><p>three <i>four</i> five</p>")
	want := "One two\nthree four five"
	if text != want {
		t.Errorf("extractText = %q, want %q", text, want)
	}
}

func TestRelativeTo(t *testing.T) {
	cases := []struct {
		base, target, want string
	}{
		{"toc.ncx", "text/ch1.xhtml", "text/ch1.xhtml"},
		{"nav/toc.xhtml", "../text/ch1.xhtml", "text/ch1.xhtml"},
		{"toc.ncx", "text/ch1.xhtml#frag", "text/ch1.xhtml"},
		{"text/nav.xhtml", "ch2.xhtml", "text/ch2.xhtml"},
	}
	for _, tc := range cases {
		if got := relativeTo(tc.base, tc.target); got != tc.want {
			t.Errorf("relativeTo(%q, %q) = %q, want %q", tc.base, tc.target, got, tc.want)
		}
	}
}
