package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

const expectedMimetype = "application/epub+zip"

// minChapterChars is the minimum amount of extracted text a spine item
// must carry to count as a chapter. Shorter items are half-title pages,
// separators, and similar scraps.
const minChapterChars = 100

// ErrInvalidArchive is returned when the file is not a readable EPUB
// container.
var ErrInvalidArchive = errors.New("invalid epub archive")

// Metadata holds the Dublin Core fields the pipeline cares about.
type Metadata struct {
	Title    string
	Author   string
	Language string
}

// Chapter is one content document from the spine, in reading order.
// HTML is the inner markup of the document's body element. Order is
// assigned after front- and back-matter exclusion, starting at 1.
type Chapter struct {
	Order int
	Title string
	Href  string
	HTML  string
	Words int
}

// Image is a non-cover image asset from the manifest.
type Image struct {
	Path      string
	MediaType string
	Data      []byte
}

// Cover is the book's cover image, when one could be identified.
type Cover struct {
	Path      string
	MediaType string
	Data      []byte
}

// Book is the fully materialised result of reading an EPUB. Unlike a
// streaming reader it loads every chapter and asset up front; the
// pipeline touches all of them anyway.
type Book struct {
	Metadata Metadata
	Chapters []Chapter
	Cover    *Cover
	Images   []Image
	Warnings []string
}

// Open reads the EPUB file at the given path into a Book.
func Open(name string) (*Book, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", name, err)
	}
	return Parse(data)
}

// Parse reads an EPUB from an in-memory archive.
func Parse(data []byte) (*Book, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("epub: open zip: %w", ErrInvalidArchive)
	}
	return read(zr)
}

type reader struct {
	zip    *zip.Reader
	files  map[string]*zip.File
	opfDir string
	book   *Book
}

func read(zr *zip.Reader) (*Book, error) {
	r := &reader{
		zip:   zr,
		files: make(map[string]*zip.File, len(zr.File)),
		book:  &Book{},
	}
	for _, f := range zr.File {
		if _, ok := r.files[f.Name]; !ok {
			r.files[f.Name] = f
		}
	}

	r.checkMimetype()

	containerData, err := r.readFile(containerPath)
	if err != nil {
		return nil, fmt.Errorf("epub: missing %s: %w", containerPath, ErrInvalidArchive)
	}
	opfPath, err := parseContainer(containerData)
	if err != nil {
		return nil, fmt.Errorf("epub: %w", err)
	}
	r.opfDir = path.Dir(opfPath)

	opfData, err := r.readFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("epub: missing OPF %s: %w", opfPath, ErrInvalidArchive)
	}
	pkg, err := parseOPF(opfData)
	if err != nil {
		return nil, fmt.Errorf("epub: %w", err)
	}

	r.book.Metadata = extractMetadata(pkg)

	byID := make(map[string]opfManifestItem, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		byID[item.ID] = item
	}

	titles := r.titleMap(pkg, byID)
	r.collectChapters(pkg, byID, titles)
	r.collectCover(pkg, byID)
	r.collectImages(pkg)

	if len(r.book.Chapters) == 0 {
		return nil, fmt.Errorf("epub: no readable chapters: %w", ErrInvalidArchive)
	}
	return r.book, nil
}

// checkMimetype validates the leading mimetype entry. Deviations are
// recorded as warnings; plenty of real files get this wrong.
func (r *reader) checkMimetype() {
	if len(r.zip.File) == 0 {
		return
	}
	first := r.zip.File[0]
	if first.Name != "mimetype" {
		r.warn("first zip entry is not mimetype")
		return
	}
	data, err := readZipFile(first)
	if err != nil {
		r.warn(fmt.Sprintf("cannot read mimetype entry: %v", err))
		return
	}
	if strings.TrimSpace(string(data)) != expectedMimetype {
		r.warn(fmt.Sprintf("unexpected mimetype %q", strings.TrimSpace(string(data))))
	}
}

func (r *reader) warn(msg string) {
	r.book.Warnings = append(r.book.Warnings, msg)
}

func (r *reader) readFile(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		// Case-insensitive fallback for sloppy archives.
		for zn, zf := range r.files {
			if strings.EqualFold(zn, name) {
				f = zf
				break
			}
		}
	}
	if f == nil {
		return nil, fmt.Errorf("file %s not in archive", name)
	}
	return readZipFile(f)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// resolve joins an OPF-relative href onto the OPF directory.
func (r *reader) resolve(href string) string {
	href = strings.TrimPrefix(href, "./")
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		href = href[:idx]
	}
	if href == "" {
		return ""
	}
	if r.opfDir == "." {
		return href
	}
	return path.Join(r.opfDir, href)
}

// collectChapters walks the spine in order, reads each content
// document, and keeps the ones that survive the front-matter skip list
// and the minimum-length check. Non-linear spine items are skipped.
func (r *reader) collectChapters(pkg *opfPackage, byID map[string]opfManifestItem, titles map[string]string) {
	order := 0
	for _, ref := range pkg.Spine.ItemRefs {
		if strings.EqualFold(ref.Linear, "no") {
			continue
		}
		item, ok := byID[ref.IDRef]
		if !ok {
			continue
		}
		href := r.resolve(item.Href)
		if skipDocument(item.Href, item.ID) {
			continue
		}
		data, err := r.readFile(href)
		if err != nil {
			r.warn(fmt.Sprintf("unreadable spine item %s: %v", href, err))
			continue
		}
		body, err := extractBody(data)
		if err != nil {
			r.warn(fmt.Sprintf("unparseable spine item %s: %v", href, err))
			continue
		}
		text := extractText(body)
		if len(text) < minChapterChars {
			continue
		}
		title := titles[href]
		if title == "" {
			title = firstHeading(body)
		}
		if skipTitle(title) {
			continue
		}
		order++
		r.book.Chapters = append(r.book.Chapters, Chapter{
			Order: order,
			Title: title,
			Href:  href,
			HTML:  body,
			Words: len(strings.Fields(text)),
		})
	}
}

// skipTokens marks front- and back-matter documents by the tokens in
// their manifest href or ID. Matching works on whole tokens so that a
// chapter file like stockings.xhtml is not caught by "toc".
var skipTokens = map[string]bool{
	"cover": true, "titlepage": true, "toc": true, "contents": true,
	"colophon": true, "imprint": true, "license": true, "licence": true,
	"copyright": true, "endnote": true, "endnotes": true,
	"footnote": true, "footnotes": true, "halftitle": true, "nav": true,
}

// skipDocument filters front- and back-matter by manifest href or ID.
func skipDocument(href, id string) bool {
	return hasSkipToken(path.Base(href)) || hasSkipToken(id)
}

func hasSkipToken(s string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	for _, tok := range tokens {
		if skipTokens[tok] {
			return true
		}
	}
	return false
}

// skipTitles marks apparatus chapters by their full resolved title.
var skipTitles = map[string]bool{
	"cover": true, "title page": true, "titlepage": true,
	"half title": true, "table of contents": true, "contents": true,
	"colophon": true, "imprint": true, "copyright": true,
	"copyright page": true, "endnotes": true, "footnotes": true,
	"list of illustrations": true,
}

func skipTitle(title string) bool {
	return skipTitles[strings.ToLower(strings.TrimSpace(title))]
}

// collectCover finds the cover image. EPUB 3 cover-image properties
// take priority, then the EPUB 2 meta name="cover" convention, then a
// manifest item whose ID or href contains "cover".
func (r *reader) collectCover(pkg *opfPackage, byID map[string]opfManifestItem) {
	if item, ok := coverItem(pkg, byID); ok {
		href := r.resolve(item.Href)
		data, err := r.readFile(href)
		if err != nil {
			r.warn(fmt.Sprintf("unreadable cover %s: %v", href, err))
			return
		}
		r.book.Cover = &Cover{Path: href, MediaType: item.MediaType, Data: data}
	}
}

func coverItem(pkg *opfPackage, byID map[string]opfManifestItem) (opfManifestItem, bool) {
	for _, item := range pkg.Manifest.Items {
		for _, prop := range strings.Fields(item.Properties) {
			if prop == "cover-image" {
				return item, true
			}
		}
	}
	for _, m := range pkg.Metadata.Metas {
		if strings.EqualFold(m.Name, "cover") && m.Content != "" {
			if item, ok := byID[m.Content]; ok && isImageType(item.MediaType) {
				return item, true
			}
		}
	}
	for _, item := range pkg.Manifest.Items {
		if !isImageType(item.MediaType) {
			continue
		}
		if strings.Contains(strings.ToLower(item.ID), "cover") ||
			strings.Contains(strings.ToLower(item.Href), "cover") {
			return item, true
		}
	}
	return opfManifestItem{}, false
}

// collectImages loads every image asset except the cover.
func (r *reader) collectImages(pkg *opfPackage) {
	coverPath := ""
	if r.book.Cover != nil {
		coverPath = r.book.Cover.Path
	}
	for _, item := range pkg.Manifest.Items {
		if !isImageType(item.MediaType) {
			continue
		}
		href := r.resolve(item.Href)
		if href == coverPath {
			continue
		}
		data, err := r.readFile(href)
		if err != nil {
			r.warn(fmt.Sprintf("unreadable image %s: %v", href, err))
			continue
		}
		r.book.Images = append(r.book.Images, Image{Path: href, MediaType: item.MediaType, Data: data})
	}
}

func isImageType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}
