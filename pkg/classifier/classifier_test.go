package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	"github.com/ducklingk58/medical-product-overview-system/internal/types"
)

func newTestClassifier() *Classifier {
	return New(DefaultDictionary(), types.ClassifierConfig{})
}

func toks(texts ...string) []models.Token {
	out := make([]models.Token, len(texts))
	pos := 0
	for i, text := range texts {
		out[i] = models.Token{Text: text, Position: pos, SourceDocID: "doc-1"}
		pos += len(text) + 1
	}
	return out
}

func sectionsOf(candidates []models.CandidateKeyword, text string) []models.Section {
	var out []models.Section
	for _, c := range candidates {
		if c.Text == text {
			out = append(out, c.Section)
		}
	}
	return out
}

func TestClassifyExactKeyword(t *testing.T) {
	c := newTestClassifier()

	candidates := c.Classify(toks("효능"))
	require.Len(t, candidates, 1)
	assert.Equal(t, models.SectionEfficacy, candidates[0].Section)
	assert.InDelta(t, 1.1, candidates[0].Score, 0.001)
}

func TestClassifyMultiLabel(t *testing.T) {
	c := newTestClassifier()

	// 투여 is dosage evidence but also prefixes 투여단위 in the
	// composition keywords; both sections clear the threshold and both
	// candidates are emitted, in schema order.
	candidates := c.Classify(toks("투여"))
	sections := sectionsOf(candidates, "투여")
	require.Len(t, sections, 2)
	assert.Equal(t, models.SectionComposition, sections[0])
	assert.Equal(t, models.SectionDosage, sections[1])
}

func TestClassifyPhraseMerge(t *testing.T) {
	c := newTestClassifier()

	candidates := c.Classify(toks("임신", "1~2기"))
	require.NotEmpty(t, candidates)

	// the two tokens merge into one phrase; neither survives alone
	for _, cand := range candidates {
		assert.Equal(t, "임신 1~2기", cand.Text)
		assert.Equal(t, models.SectionPregnancy, cand.Section)
	}
	// the phrase inherits the first token's origin
	assert.Equal(t, 0, candidates[0].Position)
	assert.Equal(t, "doc-1", candidates[0].SourceDocID)
}

func TestClassifyMergeNeedsStrongMatch(t *testing.T) {
	c := newTestClassifier()

	// 아스피린 is contained in the product-name token, but containment
	// alone must not merge it with its neighbors into one phrase; each
	// token keeps its own evidence.
	candidates := c.Classify(toks("경동아스피린장용정", "100mg", "위장관계"))

	nameSections := sectionsOf(candidates, "경동아스피린장용정")
	assert.Contains(t, nameSections, models.SectionComposition)
	assert.Contains(t, nameSections, models.SectionAppearance)
	assert.Equal(t, []models.Section{models.SectionComposition}, sectionsOf(candidates, "100mg"))
	assert.Equal(t, []models.Section{models.SectionPrecautions}, sectionsOf(candidates, "위장관계"))
}

func TestClassifyThreshold(t *testing.T) {
	c := New(DefaultDictionary(), types.ClassifierConfig{AcceptThreshold: 10.0})

	// nothing clears an absurd threshold; fallback rules still fire
	candidates := c.Classify(toks("효능"))
	require.Len(t, candidates, 1)
	assert.Equal(t, models.SectionUnassigned, candidates[0].Section)
}

func TestClassifyFallbackRules(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text     string
		expected models.Section
	}{
		{"500", models.SectionComposition},
		{"플라스틱용기", models.SectionStorage},
		{"당의정제", models.SectionAppearance},
		{"무관한단어", models.SectionUnassigned},
	}

	for _, tt := range tests {
		candidates := c.Classify(toks(tt.text))
		require.Len(t, candidates, 1, tt.text)
		assert.Equal(t, tt.expected, candidates[0].Section, tt.text)
	}
}

func TestClassifyFallbackScoreMeetsThreshold(t *testing.T) {
	c := newTestClassifier()

	candidates := c.Classify(toks("500"))
	require.Len(t, candidates, 1)
	assert.Equal(t, 0.5, candidates[0].Score)
}

func TestClassifyEmptyInput(t *testing.T) {
	c := newTestClassifier()
	assert.Empty(t, c.Classify(nil))
}

func TestDictionaryScoreTiers(t *testing.T) {
	d := DefaultDictionary()

	// exact beats containment
	exact := d.Score("상호작용", models.SectionInteractions)
	contained := d.Score("상호작용에", models.SectionInteractions)
	assert.Greater(t, exact, 0.0)
	assert.Greater(t, contained, 0.0)
	assert.Greater(t, exact, contained)

	// unrelated text scores zero
	assert.Equal(t, 0.0, d.Score("무관한단어", models.SectionInteractions))
}

func TestDictionaryShortPhraseExactOnly(t *testing.T) {
	d := DefaultDictionary()

	// a single character must not score by prefixing into longer words
	assert.Equal(t, 0.0, d.Score("성", models.SectionComposition))
}
