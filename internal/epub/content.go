package epub

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// extractBody parses a content document and renders the children of
// its body element back to markup. Script and style subtrees are
// dropped.
func extractBody(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return "", nil
	}
	pruneNode(body)
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func pruneNode(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
			n.RemoveChild(c)
			continue
		}
		pruneNode(c)
	}
}

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Div: true,
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true,
	atom.Hr: true,
}

// extractText flattens markup to plain text. Block elements become
// newlines; whitespace runs collapse to single spaces.
func extractText(markup string) string {
	tz := html.NewTokenizer(strings.NewReader(markup))
	var buf strings.Builder
	lastWasBreak := true
	for {
		switch tz.Next() {
		case html.ErrorToken:
			if errors.Is(tz.Err(), io.EOF) {
				return strings.TrimSpace(buf.String())
			}
			return strings.TrimSpace(buf.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tz.TagName()
			if blockAtoms[atom.Lookup(tn)] && buf.Len() > 0 && !lastWasBreak {
				buf.WriteByte('\n')
				lastWasBreak = true
			}
		case html.TextToken:
			text := collapseSpace(string(tz.Text()))
			if text != "" {
				buf.WriteString(text)
				lastWasBreak = false
			}
		}
	}
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
}

// firstHeading returns the text of the first h1 through h4 element in
// the markup, used as a chapter title when the TOC offers none.
func firstHeading(markup string) string {
	tz := html.NewTokenizer(strings.NewReader(markup))
	depth := 0
	var buf strings.Builder
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tz.TagName()
			if headingAtoms[atom.Lookup(tn)] {
				depth++
			}
		case html.EndTagToken:
			tn, _ := tz.TagName()
			if headingAtoms[atom.Lookup(tn)] && depth > 0 {
				if title := strings.Join(strings.Fields(buf.String()), " "); title != "" {
					return title
				}
				depth--
				buf.Reset()
			}
		case html.TextToken:
			if depth > 0 {
				buf.WriteString(string(tz.Text()))
			}
		}
	}
}

// titleMap builds a map from resolved chapter path to TOC title. The
// EPUB 3 nav document is preferred; the EPUB 2 NCX is the fallback.
// Errors are non-fatal and produce an empty map.
func (r *reader) titleMap(pkg *opfPackage, byID map[string]opfManifestItem) map[string]string {
	for _, item := range pkg.Manifest.Items {
		for _, prop := range strings.Fields(item.Properties) {
			if prop == "nav" {
				if m := r.navTitles(item.Href); len(m) > 0 {
					return m
				}
			}
		}
	}
	ncxHref := ""
	if item, ok := byID[pkg.Spine.TOC]; ok {
		ncxHref = item.Href
	} else {
		for _, item := range pkg.Manifest.Items {
			if strings.EqualFold(item.MediaType, "application/x-dtbncx+xml") {
				ncxHref = item.Href
				break
			}
		}
	}
	if ncxHref != "" {
		if m := r.ncxTitles(ncxHref); len(m) > 0 {
			return m
		}
	}
	return map[string]string{}
}

// navTitles extracts href→title pairs from an EPUB 3 nav document by
// walking its anchor elements.
func (r *reader) navTitles(href string) map[string]string {
	data, err := r.readFile(r.resolve(href))
	if err != nil {
		return nil
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	titles := make(map[string]string)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			target := ""
			for _, a := range n.Attr {
				if a.Key == "href" {
					target = a.Val
					break
				}
			}
			if target != "" {
				key := r.resolve(relativeTo(href, target))
				if _, seen := titles[key]; !seen {
					if title := strings.Join(strings.Fields(nodeText(n)), " "); title != "" {
						titles[key] = title
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return titles
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

type ncxDocument struct {
	XMLName   xml.Name   `xml:"ncx"`
	NavPoints []ncxPoint `xml:"navMap>navPoint"`
}

type ncxPoint struct {
	Label    string     `xml:"navLabel>text"`
	Content  ncxContent `xml:"content"`
	Children []ncxPoint `xml:"navPoint"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// ncxTitles extracts href→title pairs from an EPUB 2 NCX document.
func (r *reader) ncxTitles(href string) map[string]string {
	data, err := r.readFile(r.resolve(href))
	if err != nil {
		return nil
	}
	var ncx ncxDocument
	if err := xml.Unmarshal(preprocessEntities(data), &ncx); err != nil {
		return nil
	}
	titles := make(map[string]string)
	var walk func(points []ncxPoint)
	walk = func(points []ncxPoint) {
		for _, p := range points {
			if p.Content.Src != "" {
				key := r.resolve(relativeTo(href, p.Content.Src))
				if _, seen := titles[key]; !seen {
					if title := strings.TrimSpace(p.Label); title != "" {
						titles[key] = title
					}
				}
			}
			walk(p.Children)
		}
	}
	walk(ncx.NavPoints)
	return titles
}

// relativeTo resolves target against the directory of base, both
// OPF-relative hrefs, and returns an OPF-relative result.
func relativeTo(base, target string) string {
	if idx := strings.IndexByte(target, '#'); idx >= 0 {
		target = target[:idx]
	}
	if target == "" || strings.Contains(target, "://") {
		return target
	}
	dir := ""
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		dir = base[:idx+1]
	}
	return cleanPath(dir + target)
}

func cleanPath(p string) string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, part)
		}
	}
	return strings.Join(out, "/")
}
