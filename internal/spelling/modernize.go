package spelling

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"bindery/internal/htmlseg"
)

// rule is a compiled table entry.
type rule struct {
	class       Class
	re          *regexp.Regexp
	replacement string
	preserve    bool
}

// rules is compiled once at startup and shared read-only across all
// pipeline invocations.
var rules = compile(ruleTable)

func compile(entries []tableEntry) []rule {
	out := make([]rule, 0, len(entries))
	for _, e := range entries {
		pattern := e.pattern
		if !e.literal {
			pattern = `\b` + regexp.QuoteMeta(e.pattern) + `\b`
		}
		if !e.caseSensitive {
			pattern = `(?i)` + pattern
		}
		out = append(out, rule{
			class:       e.class,
			re:          regexp.MustCompile(pattern),
			replacement: e.replacement,
			preserve:    !e.caseSensitive && !e.literal,
		})
	}
	return out
}

// Modernize applies the full rule table to the prose of chapter HTML.
// Markup passes through untouched. Pure function; empty input returns
// empty output.
func Modernize(html string) string {
	if html == "" {
		return html
	}
	return htmlseg.MapText(html, modernizeText)
}

func modernizeText(text string) string {
	out := text
	for _, r := range rules {
		if r.preserve {
			out = r.re.ReplaceAllStringFunc(out, func(match string) string {
				return matchCase(match, r.replacement)
			})
			continue
		}
		out = r.re.ReplaceAllString(out, r.replacement)
	}
	return out
}

// matchCase carries the matched text's casing over to the replacement:
// an all-caps match yields an all-caps replacement, a capitalized match
// a capitalized one.
func matchCase(match, replacement string) string {
	if match == "" || replacement == "" {
		return replacement
	}
	if isAllUpper(match) && utf8.RuneCountInString(match) > 1 {
		return strings.ToUpper(replacement)
	}
	first, _ := utf8.DecodeRuneInString(match)
	if unicode.IsUpper(first) {
		head, size := utf8.DecodeRuneInString(replacement)
		return string(unicode.ToUpper(head)) + replacement[size:]
	}
	return replacement
}

func isAllUpper(s string) bool {
	sawLetter := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		sawLetter = true
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return sawLetter
}
