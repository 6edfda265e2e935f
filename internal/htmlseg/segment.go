package htmlseg

import "strings"

// Kind distinguishes markup segments from prose segments.
type Kind int

const (
	// Text is a run of character data between tags.
	Text Kind = iota
	// Tag is a single markup token from '<' through the matching '>'.
	Tag
)

// Segment is one scanned piece of an HTML string.
type Segment struct {
	Kind  Kind
	Value string
}

// Split scans s into tag and text segments. Concatenating the segment
// values in order reproduces s byte for byte. A '<' with no closing '>'
// is treated as text to the end of the string.
func Split(s string) []Segment {
	if s == "" {
		return nil
	}
	segments := make([]Segment, 0, 16)
	for len(s) > 0 {
		open := strings.IndexByte(s, '<')
		if open < 0 {
			segments = append(segments, Segment{Kind: Text, Value: s})
			break
		}
		if open > 0 {
			segments = append(segments, Segment{Kind: Text, Value: s[:open]})
			s = s[open:]
		}
		close := strings.IndexByte(s, '>')
		if close < 0 {
			// Unterminated tag: keep the remainder as text so the
			// round-trip holds and downstream passes stay safe.
			segments = append(segments, Segment{Kind: Text, Value: s})
			break
		}
		segments = append(segments, Segment{Kind: Tag, Value: s[:close+1]})
		s = s[close+1:]
	}
	return segments
}

// Join concatenates segments back into a single HTML string.
func Join(segments []Segment) string {
	var b strings.Builder
	total := 0
	for _, seg := range segments {
		total += len(seg.Value)
	}
	b.Grow(total)
	for _, seg := range segments {
		b.WriteString(seg.Value)
	}
	return b.String()
}

// MapText applies fn to every text segment of s and reassembles the
// result. Tags pass through untouched, which is what makes regex-based
// rewrites safe against attribute values and tag names.
func MapText(s string, fn func(string) string) string {
	if s == "" || fn == nil {
		return s
	}
	segments := Split(s)
	changed := false
	for i, seg := range segments {
		if seg.Kind != Text {
			continue
		}
		if out := fn(seg.Value); out != seg.Value {
			segments[i].Value = out
			changed = true
		}
	}
	if !changed {
		return s
	}
	return Join(segments)
}
