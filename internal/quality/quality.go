package quality

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Chapter is the per-chapter view the scorer needs.
type Chapter struct {
	Order     int
	Title     string
	Text      string
	WordCount int
}

// Book is the aggregate under evaluation.
type Book struct {
	Chapters []Chapter
	HasCover bool
}

// Result is the scorer's verdict. It is recomputed fresh per run and
// never mutated in place.
type Result struct {
	Score  int
	Pass   bool
	Issues []string
}

// PassThreshold is the minimum clamped score for a publishable book.
const PassThreshold = 60

// Weights holds the penalty for each signal.
type Weights struct {
	NoChapters       int
	FewChapters      int
	VeryLowWords     int
	LowWords         int
	NearEmptyChapter int
	NoCover          int
	Mojibake         int
	DuplicateTitles  int
	TruncatedFinal   int
	NumberingGap     int
}

// DefaultWeights returns the established penalty constants.
func DefaultWeights() Weights {
	return Weights{
		NoChapters:       50,
		FewChapters:      15,
		VeryLowWords:     30,
		LowWords:         10,
		NearEmptyChapter: 5,
		NoCover:          10,
		Mojibake:         15,
		DuplicateTitles:  10,
		TruncatedFinal:   10,
		NumberingGap:     5,
	}
}

// Volume and structure thresholds.
const (
	veryLowWordTotal   = 1000
	lowWordTotal       = 5000
	nearEmptyWords     = 50
	truncationMinCount = 3
	truncationFraction = 0.3
	truncationAbsolute = 200
	numberingMinCount  = 3
)

// mojibakeSignature matches the replacement character and common
// Latin-1-as-UTF-8 double-encoding artifacts. The second character of
// an artifact pair lands in U+0080–U+00BF when the corrupt bytes were
// read as Latin-1, or on a Windows-1252 punctuation codepoint (€ ™ œ
// curly quotes) when read as CP-1252; both forms appear in the wild.
var mojibakeSignature = regexp.MustCompile("�" +
	"|[ÂÃâ][-¿€™œ“”‘’˜†‡…]" +
	"|Â ")

var (
	arabicChapter = regexp.MustCompile(`(?i)\bchapter\s+(\d{1,3})\b`)
	romanChapter  = regexp.MustCompile(`(?i)\bchapter\s+([ivx]{1,5})\b`)
	romanTitle    = regexp.MustCompile(`^\s*([IVX]{1,5})\.?\s*$`)
)

// Evaluate scores a book with the default weights.
func Evaluate(book Book) Result {
	return EvaluateWith(book, DefaultWeights())
}

// EvaluateWith scores a book against the supplied weights. It always
// returns a result, even for degenerate input.
func EvaluateWith(book Book, w Weights) Result {
	penalty := 0
	var issues []string

	count := len(book.Chapters)
	totalWords := 0
	for _, ch := range book.Chapters {
		totalWords += ch.WordCount
	}

	switch {
	case count == 0:
		penalty += w.NoChapters
		issues = append(issues, "No chapters extracted.")
	case count < 2:
		penalty += w.FewChapters
		issues = append(issues, fmt.Sprintf("Very few chapters (%d).", count))
	}

	switch {
	case totalWords < veryLowWordTotal:
		penalty += w.VeryLowWords
		issues = append(issues, fmt.Sprintf("Very low word count (%d).", totalWords))
	case totalWords < lowWordTotal:
		penalty += w.LowWords
		issues = append(issues, fmt.Sprintf("Low word count (%d).", totalWords))
	}

	for _, ch := range book.Chapters {
		if ch.WordCount < nearEmptyWords {
			penalty += w.NearEmptyChapter
			issues = append(issues, fmt.Sprintf("Chapter %d (%q) is nearly empty (%d words).", ch.Order, ch.Title, ch.WordCount))
		}
	}

	if !book.HasCover {
		penalty += w.NoCover
		issues = append(issues, "No cover image.")
	}

	for _, ch := range book.Chapters {
		if mojibakeSignature.MatchString(norm.NFC.String(ch.Text)) {
			penalty += w.Mojibake
			issues = append(issues, fmt.Sprintf("Encoding corruption detected in chapter %d.", ch.Order))
			break
		}
	}

	if title, dup := duplicateTitle(book.Chapters); dup {
		penalty += w.DuplicateTitles
		issues = append(issues, fmt.Sprintf("Duplicate chapter title: %q.", title))
	}

	if truncated, last, mean := truncatedFinal(book.Chapters); truncated {
		penalty += w.TruncatedFinal
		issues = append(issues, fmt.Sprintf("Final chapter appears truncated (%d words against an average of %d).", last, mean))
	}

	if from, to, gap := numberingGap(book.Chapters); gap {
		penalty += w.NumberingGap
		issues = append(issues, fmt.Sprintf("Chapter numbering skips from %d to %d.", from, to))
	}

	score := clamp(100-penalty, 0, 100)
	return Result{
		Score:  score,
		Pass:   score >= PassThreshold,
		Issues: issues,
	}
}

func duplicateTitle(chapters []Chapter) (string, bool) {
	seen := make(map[string]string, len(chapters))
	for _, ch := range chapters {
		key := strings.ToLower(strings.TrimSpace(ch.Title))
		if key == "" {
			continue
		}
		if original, ok := seen[key]; ok {
			return original, true
		}
		seen[key] = ch.Title
	}
	return "", false
}

func truncatedFinal(chapters []Chapter) (bool, int, int) {
	if len(chapters) < truncationMinCount {
		return false, 0, 0
	}
	total := 0
	for _, ch := range chapters {
		total += ch.WordCount
	}
	mean := total / len(chapters)
	last := chapters[len(chapters)-1].WordCount
	if mean > 0 && float64(last) < truncationFraction*float64(mean) && last < truncationAbsolute {
		return true, last, mean
	}
	return false, 0, 0
}

// numberingGap reports the first skip in the sorted sequence of
// extractable chapter numbers, when at least three chapters carry one.
func numberingGap(chapters []Chapter) (int, int, bool) {
	var numbers []int
	for _, ch := range chapters {
		if n, ok := chapterNumber(ch.Title); ok {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) < numberingMinCount {
		return 0, 0, false
	}
	sort.Ints(numbers)
	for i := 1; i < len(numbers); i++ {
		if numbers[i] > numbers[i-1]+1 {
			return numbers[i-1], numbers[i], true
		}
	}
	return 0, 0, false
}

// chapterNumber extracts an Arabic or Roman sequence number from a
// chapter title. Roman parsing stops at XX; longer numerals in the
// wild are usually not chapter numbers.
func chapterNumber(title string) (int, bool) {
	if m := arabicChapter.FindStringSubmatch(title); m != nil {
		n := 0
		for _, d := range m[1] {
			n = n*10 + int(d-'0')
		}
		return n, n > 0
	}
	if m := romanChapter.FindStringSubmatch(title); m != nil {
		return romanValue(strings.ToUpper(m[1]))
	}
	if m := romanTitle.FindStringSubmatch(title); m != nil {
		return romanValue(m[1])
	}
	return 0, false
}

var romanDigits = map[byte]int{'I': 1, 'V': 5, 'X': 10}

func romanValue(s string) (int, bool) {
	total := 0
	for i := 0; i < len(s); i++ {
		value, ok := romanDigits[s[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(s) && romanDigits[s[i+1]] > value {
			total -= value
			continue
		}
		total += value
	}
	if total < 1 || total > 20 {
		return 0, false
	}
	return total, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
