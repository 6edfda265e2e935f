package cleaner

import (
	"regexp"
	"strings"
)

// boilerplateSignatures match Project Gutenberg license and production
// text wherever it appears inside a block element. A block containing
// any of these anywhere in its content is removed in its entirety.
var boilerplateSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\*{3}\s*START OF TH(E|IS) PROJECT GUTENBERG`),
	regexp.MustCompile(`(?i)\*{3}\s*END OF TH(E|IS) PROJECT GUTENBERG`),
	regexp.MustCompile(`(?i)\*END\*THE SMALL PRINT`),
	regexp.MustCompile(`(?i)END OF (THE )?PROJECT GUTENBERG`),
	regexp.MustCompile(`(?i)PROJECT GUTENBERG (EBOOK|E-?TEXT|LICENSE|LITERARY ARCHIVE)`),
	regexp.MustCompile(`(?i)PROJECT GUTENBERG-tm`),
	regexp.MustCompile(`(?i)\bPRODUCED BY\b.{0,80}(DISTRIBUTED PROOFREAD|ONLINE|VOLUNTEERS|PROOFREADING)`),
	regexp.MustCompile(`(?im)^\s*(?:<[^>]*>\s*)*PRODUCED BY\b`),
	regexp.MustCompile(`(?i)DISTRIBUTED PROOFREADERS`),
	regexp.MustCompile(`(?i)THIS (EBOOK|ETEXT) (IS|WAS) (FOR THE USE OF|PREPARED|PRODUCED)`),
	regexp.MustCompile(`(?i)COPYRIGHT LAWS ARE CHANGING`),
	regexp.MustCompile(`(?i)UPDATED EDITIONS WILL REPLACE`),
	regexp.MustCompile(`(?i)CREATING THE WORKS FROM (PUBLIC DOMAIN|PRINT EDITIONS)`),
	regexp.MustCompile(`(?i)NO COST AND WITH ALMOST NO RESTRICTIONS`),
	regexp.MustCompile(`(?i)\bwww\.gutenberg\.(org|net)\b`),
	regexp.MustCompile(`(?i)GUTENBERG LITERARY ARCHIVE FOUNDATION`),
	regexp.MustCompile(`(?i)TRANSCRIBER'?S NOTE`),
}

// blockPattern captures a whole block-level element including its
// content. Non-greedy body with a backreference-free close keeps this
// safe on nested inline markup; truly nested blocks of the same name
// are rare in the source corpus.
var blockPattern = regexp.MustCompile(`(?is)<(p|h[1-6]|li|blockquote|div|span|pre)\b[^>]*>.*?</\s*(?:p|h[1-6]|li|blockquote|div|span|pre)\s*>`)

var (
	gutenbergAnchor = regexp.MustCompile(`(?is)<a\b[^>]*href\s*=\s*["'][^"']*gutenberg\.(?:org|net)[^"']*["'][^>]*>.*?</a>`)
	footnoteAnchor  = regexp.MustCompile(`(?is)<a\b[^>]*href\s*=\s*["'][^"']*#?(?:footnote|endnote|note-|fn)[^"']*["'][^>]*>(.*?)</a>`)

	illustrationMarker = regexp.MustCompile(`(?is)\[Illustration[^\]]*\]`)
	footnoteMarker     = regexp.MustCompile(`(?is)\[Footnote:?[^\]]*\]`)
	pageNumberBracket  = regexp.MustCompile(`[\[{]\s*-?\s*(?:p(?:age|g)?\.?\s*)?\d+\s*[\]}]`)

	blankRuns      = regexp.MustCompile(`(?:[ \t]*\r?\n){3,}`)
	startDelimiter = regexp.MustCompile(`(?is)^.*?\*{3}\s*START OF TH(?:E|IS) PROJECT GUTENBERG[^\n<]*`)
	endDelimiter   = regexp.MustCompile(`(?is)\*{3}\s*END OF TH(?:E|IS) PROJECT GUTENBERG.*$`)
)

// Clean removes boilerplate, editorial markers, and catalog links from
// chapter HTML. It is a pure function of its input and returns empty
// input unchanged.
func Clean(html string) string {
	if strings.TrimSpace(html) == "" {
		return html
	}

	out := startDelimiter.ReplaceAllString(html, "")
	out = endDelimiter.ReplaceAllString(out, "")

	out = blockPattern.ReplaceAllStringFunc(out, func(block string) string {
		for _, sig := range boilerplateSignatures {
			if sig.MatchString(block) {
				return ""
			}
		}
		return block
	})

	out = gutenbergAnchor.ReplaceAllString(out, "")
	out = footnoteAnchor.ReplaceAllString(out, "$1")

	out = illustrationMarker.ReplaceAllString(out, "")
	out = footnoteMarker.ReplaceAllString(out, "")
	out = pageNumberBracket.ReplaceAllString(out, "")

	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
