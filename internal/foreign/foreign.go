package foreign

import (
	"regexp"
	"strings"

	"bindery/internal/htmlseg"
)

// englishRatioThreshold is the fraction of tokens that must be common
// English words for the statistical pass to leave an element alone.
const englishRatioThreshold = 0.4

var (
	italicPattern = regexp.MustCompile(`(?is)<i\b[^>]*>.*?</i>`)
	emPattern     = regexp.MustCompile(`(?is)<em\b[^>]*>.*?</em>`)
	langAttr      = regexp.MustCompile(`(?i)(?:xml:)?lang\s*=`)
	emphasisTag   = regexp.MustCompile(`(?i)^</?(i|em)\b`)
	closingTag    = regexp.MustCompile(`^</`)
	wordPattern   = regexp.MustCompile(`[\p{L}']+`)
)

// phraseIndex maps normalized dictionary phrases to language codes.
var phraseIndex = func() map[string]string {
	idx := make(map[string]string, len(dictionary))
	for _, e := range dictionary {
		idx[normalizePhrase(e.phrase)] = e.lang
	}
	return idx
}()

// wrapRule is a compiled plain-text wrapping rule for an unambiguous
// multi-word phrase.
type wrapRule struct {
	re   *regexp.Regexp
	lang string
}

var wrapRules = func() []wrapRule {
	rules := make([]wrapRule, 0, len(dictionary))
	for _, e := range dictionary {
		if !e.wrap {
			continue
		}
		pattern := regexp.QuoteMeta(e.phrase)
		// Prose may carry either straight or typeset apostrophes.
		pattern = strings.ReplaceAll(pattern, "'", `['’]`)
		rules = append(rules, wrapRule{
			re:   regexp.MustCompile(`(?i)\b` + pattern + `\b`),
			lang: e.lang,
		})
	}
	return rules
}()

// Tag marks likely non-English spans in chapter HTML. Dictionary
// phases run before the statistical fallback; an element is tagged at
// most once.
func Tag(html string) string {
	if html == "" {
		return html
	}
	out := tagElements(html, dictionaryLang)
	out = wrapPlainPhrases(out)
	out = tagElements(out, statisticalLang)
	return out
}

// tagElements applies decide to every italic element that does not
// already carry a language attribute, adding xml:lang when decide
// returns one.
func tagElements(html string, decide func(text string) (string, bool)) string {
	apply := func(match string) string {
		gt := strings.IndexByte(match, '>')
		last := strings.LastIndexByte(match, '<')
		if gt < 0 || last <= gt {
			return match
		}
		open := match[:gt]
		if langAttr.MatchString(open) {
			return match
		}
		lang, ok := decide(stripTags(match[gt+1 : last]))
		if !ok {
			return match
		}
		return open + ` xml:lang="` + lang + `"` + match[gt:]
	}
	out := italicPattern.ReplaceAllStringFunc(html, apply)
	return emPattern.ReplaceAllStringFunc(out, apply)
}

func dictionaryLang(text string) (string, bool) {
	lang, ok := phraseIndex[normalizePhrase(text)]
	return lang, ok
}

// statisticalLang is the fallback heuristic. Elements with fewer than
// two tokens are skipped: a one-word italic is more likely stress
// emphasis or a proper noun than a foreign phrase.
func statisticalLang(text string) (string, bool) {
	tokens := tokenize(text)
	if len(tokens) < 2 {
		return "", false
	}
	english := 0
	for _, tok := range tokens {
		if _, ok := englishWords[tok]; ok {
			english++
		}
	}
	if float64(english)/float64(len(tokens)) >= englishRatioThreshold {
		return "", false
	}
	return guessLanguage(text), true
}

// guessLanguage sniffs diagnostic diacritics in priority order. Plain
// ASCII defaults to Latin; many Latin tags carry no diacritics at all.
func guessLanguage(text string) string {
	lowered := strings.ToLower(text)
	switch {
	case strings.ContainsAny(lowered, "äöüß"):
		return "de"
	case strings.ContainsAny(lowered, "ñ¡¿"):
		return "es"
	case strings.ContainsAny(lowered, "çœ"):
		return "fr"
	case strings.ContainsAny(lowered, "àâéèêëîïôûù"):
		return "fr"
	case strings.ContainsAny(lowered, "ìò"):
		return "it"
	default:
		return "la"
	}
}

// wrapPlainPhrases wraps unambiguous multi-word dictionary phrases
// found in plain text, skipping text already inside an italic element.
func wrapPlainPhrases(html string) string {
	segments := htmlseg.Split(html)
	depth := 0
	changed := false
	for i, seg := range segments {
		if seg.Kind == htmlseg.Tag {
			if emphasisTag.MatchString(seg.Value) {
				if closingTag.MatchString(seg.Value) {
					if depth > 0 {
						depth--
					}
				} else {
					depth++
				}
			}
			continue
		}
		if depth > 0 {
			continue
		}
		value := seg.Value
		for _, rule := range wrapRules {
			value = rule.re.ReplaceAllString(value, `<i xml:lang="`+rule.lang+`">$0</i>`)
		}
		if value != seg.Value {
			segments[i].Value = value
			changed = true
		}
	}
	if !changed {
		return html
	}
	return htmlseg.Join(segments)
}

func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	for _, seg := range htmlseg.Split(s) {
		if seg.Kind == htmlseg.Text {
			b.WriteString(seg.Value)
		}
	}
	return b.String()
}

func tokenize(s string) []string {
	raw := wordPattern.FindAllString(strings.ToLower(s), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		tok = strings.Trim(tok, "'")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// normalizePhrase folds a phrase to the form used for dictionary
// lookup: lowercase, straight apostrophes, expanded ligatures,
// collapsed whitespace.
func normalizePhrase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("’", "'", "œ", "oe", "æ", "ae").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
