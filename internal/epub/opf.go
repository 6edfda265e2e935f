package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const containerPath = "META-INF/container.xml"

// containerXML mirrors META-INF/container.xml, which points at the OPF
// package document.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// opfPackage mirrors the OPF package document: metadata, manifest, and
// spine. The guide element is ignored; reading order comes from the
// spine alone.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Titles    []string  `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators  []string  `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages []string  `xml:"http://purl.org/dc/elements/1.1/ language"`
	Metas     []opfMeta `xml:"meta"`
}

type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	TOC      string            `xml:"toc,attr"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

type opfSpineItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// parseContainer extracts the OPF path from container.xml data.
func parseContainer(data []byte) (string, error) {
	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("parse container.xml: %w", err)
	}
	for _, rf := range c.RootFiles {
		if rf.MediaType == "" || strings.EqualFold(rf.MediaType, "application/oebps-package+xml") {
			if rf.FullPath != "" {
				return rf.FullPath, nil
			}
		}
	}
	return "", fmt.Errorf("container.xml names no rootfile: %w", ErrInvalidArchive)
}

// parseOPF parses the package document. Named HTML entities are
// rewritten to numeric references first; encoding/xml rejects them and
// older conversions use them freely.
func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(preprocessEntities(data), &pkg); err != nil {
		return nil, fmt.Errorf("parse OPF: %w", err)
	}
	return &pkg, nil
}

func extractMetadata(pkg *opfPackage) Metadata {
	md := Metadata{}
	if len(pkg.Metadata.Titles) > 0 {
		md.Title = strings.TrimSpace(pkg.Metadata.Titles[0])
	}
	if len(pkg.Metadata.Creators) > 0 {
		md.Author = strings.TrimSpace(pkg.Metadata.Creators[0])
	}
	if len(pkg.Metadata.Languages) > 0 {
		md.Language = strings.ToLower(strings.TrimSpace(pkg.Metadata.Languages[0]))
	}
	return md
}

var entityNameToNumeric = map[string]string{
	"nbsp": "&#160;", "mdash": "&#8212;", "ndash": "&#8211;",
	"hellip": "&#8230;",
	"lsquo":  "&#8216;", "rsquo": "&#8217;",
	"ldquo": "&#8220;", "rdquo": "&#8221;",
	"copy": "&#169;", "reg": "&#174;",
	"eacute": "&#233;", "egrave": "&#232;", "ecirc": "&#234;",
	"agrave": "&#224;", "ccedil": "&#231;",
	"auml": "&#228;", "ouml": "&#246;", "uuml": "&#252;",
	"ntilde": "&#241;", "aelig": "&#230;", "oelig": "&#339;",
}

// preprocessEntities replaces the named HTML entities that show up in
// old OPF and NCX files with numeric references encoding/xml accepts.
func preprocessEntities(data []byte) []byte {
	s := string(data)
	if !strings.ContainsRune(s, '&') {
		return data
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 || end > 10 {
			b.WriteByte(s[i])
			i++
			continue
		}
		name := strings.ToLower(s[i+1 : i+end])
		if num, ok := entityNameToNumeric[name]; ok {
			b.WriteString(num)
			i += end + 1
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return []byte(b.String())
}
