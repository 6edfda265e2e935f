package typography

import (
	"regexp"
	"strings"

	"bindery/internal/htmlseg"
)

// Unicode forms emitted by the normalizer. Em dashes, en dashes, and
// ellipses carry a zero-width joiner so a line cannot break before
// them.
const (
	leftDouble  = "“"
	rightDouble = "”"
	leftSingle  = "‘"
	rightSingle = "’"
	joiner      = "‍"
	emDash      = "—"
	enDash      = "–"
	twoEmDash   = "⸺"
	threeEmDash = "⸻"
	ellipsis    = "…"
	nbsp        = " "
	hairSpace   = " "
)

// Contractions and elisions resolve before any quote pass; a stray
// apostrophe between letters is never a quote mark.
var (
	leadingElision   = regexp.MustCompile(`(?i)(^|[\s(\[{` + leftDouble + `])'(tis|twas|em)\b`)
	decadeElision    = regexp.MustCompile(`'(\d0s)\b`)
	innerApostrophe  = regexp.MustCompile(`(\pL)'(\pL)`)
	openDouble       = regexp.MustCompile(`(^|[\s(\[{` + leftSingle + emDash + `])"`)
	closeDouble      = regexp.MustCompile(`"($|[\s)\]}.,;:!?` + rightSingle + emDash + `])`)
	straggleCloseDbl = regexp.MustCompile(`(\w)"`)
	straggleOpenDbl  = regexp.MustCompile(`"(\w)`)
	openSingle       = regexp.MustCompile(`(^|[\s(\[{` + leftDouble + emDash + `])'`)
	closeSingle      = regexp.MustCompile(`'($|[\s)\]}.,;:!?` + rightDouble + emDash + `])`)
	straggleCloseSgl = regexp.MustCompile(`(\w)'`)
	straggleOpenSgl  = regexp.MustCompile(`'(\w)`)
)

var (
	doubleHyphen  = regexp.MustCompile(`-{2}`)
	bareEmDash    = regexp.MustCompile(joiner + `*` + emDash)
	threeEmRun    = regexp.MustCompile(`(?:` + joiner + emDash + `){3,}`)
	twoEmRun      = regexp.MustCompile(`(?:` + joiner + emDash + `){2}`)
	numericRange  = regexp.MustCompile(`(\d)-(\d)`)
	spacedDots    = regexp.MustCompile(`\.\s+\.\s+\.`)
	tripleDots    = regexp.MustCompile(`\.{3}`)
	bareEllipsis  = regexp.MustCompile(joiner + `*` + ellipsis)
	nestedOpening = regexp.MustCompile(leftDouble + leftSingle)
	nestedClosing = regexp.MustCompile(rightSingle + rightDouble)
)

// abbreviationSpace matches the space after an honorific or reference
// abbreviation so the abbreviation cannot be orphaned at a line break.
var abbreviationSpace = regexp.MustCompile(`\b(Mr|Mrs|Ms|Dr|St|Rev|Prof|Hon|Capt|Col|Maj|Gen|Lieut|Sgt|Messrs|Mme|Mlle|Esq|Vol|No|Chap)\. `)

// sectionBreak matches a paragraph consisting solely of repeated
// asterisks, the typesetter's mark for a section break.
var sectionBreak = regexp.MustCompile(`(?i)<p[^>]*>\s*(?:\*\s*){2,}</p>`)

// Normalize applies every typographic transform to chapter HTML in the
// mandated order. Markup is never touched; all prose passes run per
// text segment.
func Normalize(html string) string {
	if html == "" {
		return html
	}
	out := sectionBreak.ReplaceAllString(html, "<hr/>")
	return htmlseg.MapText(out, normalizeText)
}

func normalizeText(text string) string {
	out := smartQuotes(text)
	out = dashes(out)
	out = ellipses(out)
	out = abbreviationSpace.ReplaceAllString(out, "$1."+nbsp)
	out = nestedOpening.ReplaceAllString(out, leftDouble+hairSpace+leftSingle)
	out = nestedClosing.ReplaceAllString(out, rightSingle+hairSpace+rightDouble)
	return out
}

// smartQuotes resolves straight quotes in three tiers: unambiguous
// contractions, then double quotes by position, then single quotes by
// position, each with a catch-all pass for stragglers.
func smartQuotes(text string) string {
	if !strings.ContainsAny(text, `'"`) {
		return text
	}
	out := leadingElision.ReplaceAllString(text, "$1"+rightSingle+"$2")
	out = decadeElision.ReplaceAllString(out, rightSingle+"$1")
	out = innerApostrophe.ReplaceAllString(out, "$1"+rightSingle+"$2")

	out = openDouble.ReplaceAllString(out, "$1"+leftDouble)
	out = closeDouble.ReplaceAllString(out, rightDouble+"$1")
	out = straggleCloseDbl.ReplaceAllString(out, "$1"+rightDouble)
	out = straggleOpenDbl.ReplaceAllString(out, leftDouble+"$1")

	out = openSingle.ReplaceAllString(out, "$1"+leftSingle)
	out = closeSingle.ReplaceAllString(out, rightSingle+"$1")
	out = straggleCloseSgl.ReplaceAllString(out, "$1"+rightSingle)
	out = straggleOpenSgl.ReplaceAllString(out, leftSingle+"$1")
	return out
}

// dashes normalizes hyphens and em dashes. Multi-dash collapsing runs
// after single em-dash normalization because it matches the normalized
// joiner+em-dash form.
func dashes(text string) string {
	out := doubleHyphen.ReplaceAllString(text, emDash)
	if strings.Contains(out, emDash) {
		out = bareEmDash.ReplaceAllString(out, joiner+emDash)
		out = threeEmRun.ReplaceAllString(out, joiner+threeEmDash)
		out = twoEmRun.ReplaceAllString(out, joiner+twoEmDash)
	}
	out = numericRange.ReplaceAllString(out, "$1"+joiner+enDash+joiner+"$2")
	return out
}

func ellipses(text string) string {
	out := spacedDots.ReplaceAllString(text, ellipsis)
	out = tripleDots.ReplaceAllString(out, ellipsis)
	if strings.Contains(out, ellipsis) {
		out = bareEllipsis.ReplaceAllString(out, joiner+ellipsis)
	}
	return out
}
