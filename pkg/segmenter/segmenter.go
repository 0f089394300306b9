package segmenter

import (
	"regexp"
	"strings"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
)

// Boundary exceptions: spans matching these stay intact as single
// tokens even though they contain characters the splitter would
// otherwise break on.
var protectedPatterns = []*regexp.Regexp{
	// strengths and counts with their unit: 100mg, 2.5 mL, 1일 3회
	regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|iu|%|단위|정|캡슐|회|주사제)`),
	// trimester spans: 임신 1~2기, 3기
	regexp.MustCompile(`임신\s*\d(?:~\d)?기|\d(?:~\d)?기`),
	// pharmacopeia codes
	regexp.MustCompile(`\b(?:USP|EP|JP|KP)\b`),
	// hyphenated medical terms
	regexp.MustCompile(`[가-힣A-Za-z0-9]+(?:-[가-힣A-Za-z0-9]+)+`),
}

var delimiters = map[rune]struct{}{
	' ': {}, '\t': {}, '\n': {}, '\r': {},
	'.': {}, ',': {}, ';': {}, ':': {}, '!': {}, '?': {},
	'(': {}, ')': {}, '[': {}, ']': {}, '{': {}, '}': {},
	'"': {}, '\'': {}, '/': {}, '*': {},
}

// Segment splits normalized text into ordered tokens. Stateless and
// deterministic: the same input always yields the same tokens and byte
// positions. Protected spans (unit-suffixed strengths, trimester ranges,
// hyphenated terms) are kept whole.
func Segment(text, sourceDocID string) []models.Token {
	if text == "" {
		return nil
	}

	protected := protectedSpans(text)
	var tokens []models.Token

	emitPlain := func(seg string, base int) {
		start := -1
		for i, r := range seg {
			if _, isDelim := delimiters[r]; isDelim {
				if start >= 0 {
					tokens = appendToken(tokens, seg[start:i], base+start, sourceDocID)
					start = -1
				}
				continue
			}
			if start < 0 {
				start = i
			}
		}
		if start >= 0 {
			tokens = appendToken(tokens, seg[start:], base+start, sourceDocID)
		}
	}

	pos := 0
	for _, span := range protected {
		if span[0] > pos {
			emitPlain(text[pos:span[0]], pos)
		}
		tokens = appendToken(tokens, text[span[0]:span[1]], span[0], sourceDocID)
		pos = span[1]
	}
	if pos < len(text) {
		emitPlain(text[pos:], pos)
	}

	return tokens
}

func appendToken(tokens []models.Token, text string, pos int, docID string) []models.Token {
	text = strings.TrimSpace(text)
	if text == "" {
		return tokens
	}
	return append(tokens, models.Token{Text: text, Position: pos, SourceDocID: docID})
}

// protectedSpans returns the sorted, non-overlapping byte ranges matched
// by the boundary exceptions. Earlier patterns win overlaps so that
// "100mg" beats the bare-digit trimester pattern.
func protectedSpans(text string) [][2]int {
	var spans [][2]int
	for _, re := range protectedPatterns {
		for _, m := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, [2]int{m[0], m[1]})
		}
	}
	// insertion sort by start; the span lists are short
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j][0] < spans[j-1][0]; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
	var merged [][2]int
	for _, s := range spans {
		if len(merged) > 0 && s[0] < merged[len(merged)-1][1] {
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// TokenizeProductName splits a product name into comparison tokens for
// the ranker: unit-suffixed strengths stay whole, the rest splits on
// whitespace.
func TokenizeProductName(name string) []string {
	tokens := Segment(name, "")
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Text)
	}
	return out
}
