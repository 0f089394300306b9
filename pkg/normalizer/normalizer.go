package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Ranges of scripts stripped from label text. Everything the exporters
// consume is Korean; CJK ideographs and other scripts are OCR noise in
// the source documents.
var strippedRanges = []*unicode.RangeTable{
	{R16: []unicode.Range16{
		{Lo: 0x4e00, Hi: 0x9fff, Stride: 1}, // CJK ideographs
		{Lo: 0x3040, Hi: 0x309f, Stride: 1}, // hiragana
		{Lo: 0x30a0, Hi: 0x30ff, Stride: 1}, // katakana
		{Lo: 0x0e00, Hi: 0x0e7f, Stride: 1}, // Thai
		{Lo: 0x0600, Hi: 0x06ff, Stride: 1}, // Arabic
		{Lo: 0x0370, Hi: 0x03ff, Stride: 1}, // Greek
		{Lo: 0x0400, Hi: 0x04ff, Stride: 1}, // Cyrillic
	}},
}

const permittedPunct = `-.,:;()[]{}+=*/@#$%&?!~'"`

// Normalize cleans raw extracted text down to the permitted script set:
// Hangul, ASCII letters and digits (units such as mg/mL, pharmacopeia
// codes), and standard punctuation. Whitespace runs collapse to a single
// space and token order is preserved. Pure function; normalizing
// already-normalized text is a no-op.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// Undecodable bytes become spaces rather than aborting the pipeline.
	text = strings.ToValidUTF8(text, " ")
	// NFKC folds width variants and unit glyphs (㎎ → mg) before filtering.
	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case isStripped(r):
			b.WriteRune(' ')
		case isPermitted(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// KoreanRatio returns the share of Hangul characters among the
// non-space characters of text.
func KoreanRatio(text string) float64 {
	var korean, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isHangul(r) {
			korean++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(korean) / float64(total)
}

// IsKorean reports whether text reads as Korean: at least 30% Hangul,
// the same heuristic the upstream label sources use.
func IsKorean(text string) bool {
	return KoreanRatio(text) > 0.3
}

func isStripped(r rune) bool {
	for _, rt := range strippedRanges {
		if unicode.Is(rt, r) {
			return true
		}
	}
	return false
}

func isPermitted(r rune) bool {
	if isHangul(r) {
		return true
	}
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	if unicode.IsSpace(r) {
		return true
	}
	return strings.ContainsRune(permittedPunct, r)
}

func isHangul(r rune) bool {
	return r >= 0xac00 && r <= 0xd7a3 || r >= 0x3131 && r <= 0x318e
}
