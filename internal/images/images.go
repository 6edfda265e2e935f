package images

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Record is one embedded image decoded out of chapter markup.
type Record struct {
	Filename string
	MimeType string
	Data     []byte
}

// placeholderFormat tokens stand in for extracted base64 sources until
// final storage URLs are known.
const placeholderFormat = "bindery-inline-image-%d"

var (
	captionMarker = regexp.MustCompile(`(?is)\[Illustration:?\s*([^\]]*)\]`)
	imgTag        = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	srcAttr       = regexp.MustCompile(`(?is)(src\s*=\s*")([^"]*)(")`)
	altAttr       = regexp.MustCompile(`(?is)alt\s*=\s*"([^"]*)"`)
	dataURI       = regexp.MustCompile(`(?is)^data:(image/[a-z0-9.+-]+);base64,(.*)$`)
	tagInCaption  = regexp.MustCompile(`(?s)<[^>]*>`)
)

var extensionByMime = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/gif":     "gif",
	"image/svg+xml": "svg",
	"image/webp":    "webp",
}

// ExtractCaptions returns illustration caption texts in document
// order. It must run before the content cleaner strips the markers.
func ExtractCaptions(html string) []string {
	matches := captionMarker.FindAllStringSubmatch(html, -1)
	var captions []string
	for _, m := range matches {
		caption := strings.TrimSpace(tagInCaption.ReplaceAllString(m[1], ""))
		if caption != "" {
			captions = append(captions, caption)
		}
	}
	return captions
}

// ExtractBase64 decodes embedded data-URI image sources, replaces each
// with a unique placeholder token, and returns the decoded images in
// extraction order. This runs before the text passes so a base64
// payload can never be corrupted by a prose rewrite.
func ExtractBase64(html string) (string, []Record) {
	var records []Record
	out := imgTag.ReplaceAllStringFunc(html, func(tag string) string {
		return srcAttr.ReplaceAllStringFunc(tag, func(src string) string {
			parts := srcAttr.FindStringSubmatch(src)
			uri := dataURI.FindStringSubmatch(parts[2])
			if uri == nil {
				return src
			}
			data, err := decodeBase64(uri[2])
			if err != nil {
				// Undecodable payload: leave the tag alone.
				return src
			}
			mime := strings.ToLower(uri[1])
			ext := extensionByMime[mime]
			if ext == "" {
				ext = "bin"
			}
			index := len(records)
			records = append(records, Record{
				Filename: fmt.Sprintf("inline-%d.%s", index, ext),
				MimeType: mime,
				Data:     data,
			})
			return parts[1] + fmt.Sprintf(placeholderFormat, index) + parts[3]
		})
	})
	return out, records
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(payload)
}

// Placeholder returns the token ExtractBase64 assigned to the image at
// the given extraction index.
func Placeholder(index int) string {
	return fmt.Sprintf(placeholderFormat, index)
}

// RewritePaths rewrites every image source whose value exactly or
// partially matches a key of urlByPath to the mapped storage URL.
// Images with no alt text receive the next unused caption, in
// extraction order.
func RewritePaths(html string, urlByPath map[string]string, captions []string) string {
	if html == "" {
		return html
	}
	captionIndex := 0
	return imgTag.ReplaceAllStringFunc(html, func(tag string) string {
		out := srcAttr.ReplaceAllStringFunc(tag, func(src string) string {
			parts := srcAttr.FindStringSubmatch(src)
			if url, ok := resolvePath(parts[2], urlByPath); ok {
				return parts[1] + url + parts[3]
			}
			return src
		})

		alt := altAttr.FindStringSubmatch(out)
		hasAlt := alt != nil && strings.TrimSpace(alt[1]) != ""
		if !hasAlt && captionIndex < len(captions) {
			caption := strings.ReplaceAll(captions[captionIndex], `"`, "&quot;")
			captionIndex++
			if alt != nil {
				out = altAttr.ReplaceAllString(out, `alt="`+caption+`"`)
			} else {
				end := strings.LastIndexByte(out, '>')
				close := ` alt="` + caption + `"`
				if strings.HasSuffix(out[:end], "/") {
					out = out[:end-1] + close + "/>"
				} else {
					out = out[:end] + close + ">"
				}
			}
		}
		return out
	})
}

// resolvePath matches a source value against the mapping: exact match
// first, then the longest key sharing a path fragment either way.
func resolvePath(src string, urlByPath map[string]string) (string, bool) {
	if url, ok := urlByPath[src]; ok {
		return url, true
	}
	var bestKey string
	for key := range urlByPath {
		if key == "" || src == "" {
			continue
		}
		if strings.Contains(src, key) || strings.Contains(key, src) {
			if len(key) > len(bestKey) {
				bestKey = key
			}
		}
	}
	if bestKey == "" {
		return "", false
	}
	return urlByPath[bestKey], true
}

// ResolvePlaceholders replaces extraction placeholders with their
// final URLs. Unresolved placeholders are left as-is rather than
// producing broken markup.
func ResolvePlaceholders(html string, urlByPlaceholder map[string]string) string {
	if len(urlByPlaceholder) == 0 {
		return html
	}
	placeholders := make([]string, 0, len(urlByPlaceholder))
	for token := range urlByPlaceholder {
		placeholders = append(placeholders, token)
	}
	// Longer tokens first so "image-1" can never shadow "image-10".
	sort.Slice(placeholders, func(i, j int) bool {
		if len(placeholders[i]) != len(placeholders[j]) {
			return len(placeholders[i]) > len(placeholders[j])
		}
		return placeholders[i] < placeholders[j]
	})
	for _, token := range placeholders {
		html = strings.ReplaceAll(html, token, urlByPlaceholder[token])
	}
	return html
}
