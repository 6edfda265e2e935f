package semantics

import (
	"fmt"
	"regexp"
	"strings"

	"bindery/internal/htmlseg"
)

// headingBaseline is the shallowest level chapter headings may use;
// h1 is reserved for the book title.
const headingBaseline = 2

// Verse detection thresholds for blockquote candidates: enough short
// lines distinguish verse from ordinary wrapped prose.
const (
	verseMinBreaks    = 3
	verseMinLines     = 4
	verseMaxAvgLength = 60
)

var (
	chapterSection = regexp.MustCompile(`(?i)^<section\b[^>]*epub:type="[^"]*chapter`)
	headingOpen    = regexp.MustCompile(`(?i)<h([1-6])`)
	headingTag     = regexp.MustCompile(`(?i)<(/?)h([1-6])`)

	verseClassBlock = regexp.MustCompile(`(?is)<(p|div|blockquote)\b[^>]*class="[^"]*(?:verse|poem|stanza)[^"]*"[^>]*>`)
	blockquoteElem  = regexp.MustCompile(`(?is)<blockquote\b[^>]*>.*?</blockquote>`)
	lineBreak       = regexp.MustCompile(`(?i)<br\s*/?>`)
	epubTypeAttr    = regexp.MustCompile(`(?i)epub:type\s*=`)

	romanContext = regexp.MustCompile(`\b(Chapter|Act|Scene|Part|Book|Volume|Canto|Section|Article)([ \x{00a0}]+)([IVXLCDM]+)\b`)

	honorific = regexp.MustCompile(`\b(Mr|Mrs|Ms|Dr|St|Rev|Prof|Hon|Capt|Col|Maj|Gen|Lieut|Sgt|Messrs|Mme|Mlle|Esq)\.`)

	measurement = regexp.MustCompile(`\b(\d[\d,]*(?:\.\d+)?)([ \x{00a0}])(miles?|yards?|feet|foot|inch(?:es)?|fathoms?|furlongs?|leagues?|pounds?|lbs?|ounces?|oz|stone|tons?|gallons?|pints?|quarts?|bushels?|acres?|knots|mph|guineas?|shillings?|pence|farthings?|sovereigns?|dollars?|cents?|francs?)\b`)
)

// Enhance applies every semantic pass in the mandated order: chapter
// wrap, heading normalization, verse detection, Roman numerals,
// abbreviations, measurements.
func Enhance(html string) string {
	if strings.TrimSpace(html) == "" {
		return html
	}
	out := wrapChapter(html)
	out = normalizeHeadings(out)
	out = detectVerse(out)
	out = tagRomanNumerals(out)
	out = tagAbbreviations(out)
	out = tagMeasurements(out)
	return out
}

// wrapChapter wraps the chapter body in a section typed "chapter"
// unless one is already present.
func wrapChapter(html string) string {
	if chapterSection.MatchString(strings.TrimSpace(html)) {
		return html
	}
	return `<section epub:type="chapter">` + "\n" + html + "\n</section>"
}

// normalizeHeadings shifts every heading level by a constant so the
// shallowest heading sits at the baseline. Headings already at or
// below the baseline are left alone, and no shift may push a heading
// past h6.
func normalizeHeadings(html string) string {
	levels := headingOpen.FindAllStringSubmatch(html, -1)
	if len(levels) == 0 {
		return html
	}
	minLevel := 7
	for _, m := range levels {
		level := int(m[1][0] - '0')
		if level < minLevel {
			minLevel = level
		}
	}
	if minLevel >= headingBaseline {
		return html
	}
	shift := headingBaseline - minLevel
	return headingTag.ReplaceAllStringFunc(html, func(tag string) string {
		m := headingTag.FindStringSubmatch(tag)
		level := int(m[2][0]-'0') + shift
		if level > 6 {
			level = 6
		}
		return fmt.Sprintf("<%sh%d", m[1], level)
	})
}

// detectVerse tags verse blocks two ways: a class hint on any block
// element, and a line-length heuristic on blockquotes with repeated
// line breaks.
func detectVerse(html string) string {
	out := verseClassBlock.ReplaceAllStringFunc(html, func(open string) string {
		return addEpubType(open, "z3998:verse")
	})
	return blockquoteElem.ReplaceAllStringFunc(out, func(block string) string {
		gt := strings.IndexByte(block, '>')
		if gt < 0 || epubTypeAttr.MatchString(block[:gt]) {
			return block
		}
		if len(lineBreak.FindAllStringIndex(block, -1)) < verseMinBreaks {
			return block
		}
		lines := lineBreak.Split(block[gt+1:len(block)-len("</blockquote>")], -1)
		var kept []string
		total := 0
		for _, line := range lines {
			stripped := strings.TrimSpace(stripTags(line))
			if stripped == "" {
				continue
			}
			kept = append(kept, stripped)
			total += len(stripped)
		}
		if len(kept) < verseMinLines || total/len(kept) >= verseMaxAvgLength {
			return block
		}
		return addEpubType(block[:gt], "z3998:verse") + block[gt:]
	})
}

// addEpubType inserts an epub:type attribute into an open tag unless
// one is already present.
func addEpubType(openTag, value string) string {
	if epubTypeAttr.MatchString(openTag) {
		return openTag
	}
	end := strings.LastIndexByte(openTag, '>')
	if end < 0 {
		end = len(openTag)
	}
	return openTag[:end] + ` epub:type="` + value + `"` + openTag[end:]
}

// tagRomanNumerals wraps numerals that follow an explicit structural
// context word. Standalone numerals stay untouched: "I" is almost
// always the pronoun, and initialisms like "IV" are not numbers.
func tagRomanNumerals(html string) string {
	return mapTextOutside(html, "span", func(text string) string {
		return romanContext.ReplaceAllString(text, `$1$2<span epub:type="z3998:roman">$3</span>`)
	})
}

// tagAbbreviations wraps honorific abbreviations and their trailing
// period. Runs after typography so the period and following
// non-breaking space are already in final form.
func tagAbbreviations(html string) string {
	return mapTextOutside(html, "abbr", func(text string) string {
		return honorific.ReplaceAllString(text, `<abbr epub:type="z3998:name-title">$1.</abbr>`)
	})
}

// tagMeasurements wraps digit-led quantities with a recognized unit
// word. The digit gate keeps incidental unit words in prose ("a stone
// wall") unflagged.
func tagMeasurements(html string) string {
	return mapTextOutside(html, "span", func(text string) string {
		return measurement.ReplaceAllString(text, `<span class="measurement">$1$2$3</span>`)
	})
}

// mapTextOutside applies fn to text segments that are not inside an
// element named tag, which keeps each wrapping pass idempotent.
func mapTextOutside(html string, tag string, fn func(string) string) string {
	segments := htmlseg.Split(html)
	openPrefix := "<" + tag
	closePrefix := "</" + tag
	depth := 0
	changed := false
	for i, seg := range segments {
		if seg.Kind == htmlseg.Tag {
			lowered := strings.ToLower(seg.Value)
			if strings.HasPrefix(lowered, closePrefix) {
				if depth > 0 {
					depth--
				}
			} else if strings.HasPrefix(lowered, openPrefix) && !strings.HasSuffix(lowered, "/>") {
				depth++
			}
			continue
		}
		if depth > 0 {
			continue
		}
		if out := fn(seg.Value); out != seg.Value {
			segments[i].Value = out
			changed = true
		}
	}
	if !changed {
		return html
	}
	return htmlseg.Join(segments)
}

func stripTags(s string) string {
	var b strings.Builder
	for _, seg := range htmlseg.Split(s) {
		if seg.Kind == htmlseg.Text {
			b.WriteString(seg.Value)
		}
	}
	return b.String()
}
