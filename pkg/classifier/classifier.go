package classifier

import (
	"regexp"
	"strings"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	"github.com/ducklingk58/medical-product-overview-system/internal/types"
)

type Classifier struct {
	dict      *Dictionary
	maxSpan   int
	threshold float64
}

// New builds a classifier over an immutable dictionary.
func New(dict *Dictionary, config types.ClassifierConfig) *Classifier {
	if config.MaxPhraseSpan == 0 {
		config.MaxPhraseSpan = 3
	}
	if config.AcceptThreshold == 0 {
		config.AcceptThreshold = 0.5
	}
	return &Classifier{
		dict:      dict,
		maxSpan:   config.MaxPhraseSpan,
		threshold: config.AcceptThreshold,
	}
}

// Classify scores every token (and greedily merged phrase up to the
// configured span) against the section dictionaries and emits one
// CandidateKeyword per section that clears the acceptance threshold.
// A phrase scoring for several sections intentionally yields several
// candidates; the ranker imposes precision later. Sections are visited
// in schema order, so equal scores resolve to the lower ordinal
// deterministically. Tokens clearing nothing are labeled unassigned.
func (c *Classifier) Classify(tokens []models.Token) []models.CandidateKeyword {
	var candidates []models.CandidateKeyword

	for i := 0; i < len(tokens); {
		advance := 1
		matched := false

		// Greedy: prefer the longest phrase with any accepted section.
		// Merging requires a strong dictionary hit so that a keyword
		// merely contained in a long phrase cannot swallow its neighbors.
		for span := min(c.maxSpan, len(tokens)-i); span >= 1; span-- {
			phrase := joinSpan(tokens[i : i+span])
			accepted := c.acceptedSections(phrase, span > 1)
			if len(accepted) == 0 {
				continue
			}
			for _, a := range accepted {
				candidates = append(candidates, models.CandidateKeyword{
					Token: models.Token{
						Text:        phrase,
						Position:    tokens[i].Position,
						SourceDocID: tokens[i].SourceDocID,
					},
					Section: a.section,
					Score:   a.score,
				})
			}
			advance = span
			matched = true
			break
		}

		if !matched {
			candidates = append(candidates, c.fallback(tokens[i]))
		}
		i += advance
	}

	return candidates
}

type acceptedSection struct {
	section models.Section
	score   float64
}

func (c *Classifier) acceptedSections(phrase string, requireStrong bool) []acceptedSection {
	var accepted []acceptedSection
	for _, s := range models.Sections() {
		if requireStrong && !c.dict.StrongMatch(phrase, s) {
			continue
		}
		if score := c.dict.Score(phrase, s); score >= c.threshold {
			accepted = append(accepted, acceptedSection{section: s, score: score})
		}
	}
	return accepted
}

var digitRe = regexp.MustCompile(`\d`)

// fallback applies the signal-bearing default rules for tokens below
// every section threshold: numeric tokens are composition evidence,
// dosage-form and appearance words describe the product, packaging words
// belong to storage. Everything else stays unassigned.
func (c *Classifier) fallback(tok models.Token) models.CandidateKeyword {
	cand := models.CandidateKeyword{Token: tok, Section: models.SectionUnassigned}
	lower := strings.ToLower(tok.Text)

	switch {
	case digitRe.MatchString(tok.Text):
		cand.Section = models.SectionComposition
	case containsAny(lower, "정제", "캡슐", "주사제", "제형", "시럽", "연고"):
		cand.Section = models.SectionAppearance
	case containsAny(lower, "색상", "모양", "각인"):
		cand.Section = models.SectionAppearance
	case containsAny(lower, "용기", "포장"):
		cand.Section = models.SectionStorage
	default:
		return cand
	}
	cand.Score = c.threshold
	return cand
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func joinSpan(tokens []models.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
