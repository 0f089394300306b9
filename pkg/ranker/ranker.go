package ranker

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	"github.com/ducklingk58/medical-product-overview-system/internal/types"
	"github.com/ducklingk58/medical-product-overview-system/pkg/classifier"
	"github.com/ducklingk58/medical-product-overview-system/pkg/segmenter"
)

type Ranker struct {
	dict     *classifier.Dictionary
	listTopK int
	workers  int
}

func New(dict *classifier.Dictionary, config types.RankerConfig) *Ranker {
	if config.ListTopK == 0 {
		config.ListTopK = 5
	}
	if config.Workers == 0 {
		config.Workers = 4
	}
	return &Ranker{
		dict:     dict,
		listTopK: config.ListTopK,
		workers:  config.Workers,
	}
}

// Select ranks the candidates of every section independently and writes
// the surviving top-K into the record with provenance extracted.
// Sections are processed by a bounded worker pool; results are applied
// serially so the record sees one writer. A section with no surviving
// candidate is left untouched (provenance stays empty).
func (r *Ranker) Select(record *models.OverviewRecord, candidates []models.CandidateKeyword, productName string) error {
	pools := groupBySection(candidates)
	productTokens := segmenter.TokenizeProductName(productName)
	frequency := countFrequency(candidates)

	type selection struct {
		section models.Section
		value   models.SectionValue
	}

	results := make(chan selection, models.NumSections)
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for _, s := range models.Sections() {
		pool := pools[s]
		if len(pool) == 0 {
			continue
		}
		wg.Add(1)
		go func(s models.Section, pool []models.CandidateKeyword) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			value := r.selectSection(s, pool, productTokens, frequency)
			if !value.IsEmpty() {
				results <- selection{section: s, value: value}
			}
		}(s, pool)
	}

	wg.Wait()
	close(results)

	for sel := range results {
		if err := record.SetExtracted(sel.section, sel.value); err != nil {
			return err
		}
	}
	return nil
}

func (r *Ranker) selectSection(s models.Section, pool []models.CandidateKeyword, productTokens []string, frequency map[string]int) models.SectionValue {
	spec := s.Spec()

	switch spec.Shape {
	case models.KindScalar:
		top := r.rank(pool, productTokens, frequency, 1)
		if len(top) == 0 {
			return models.SectionValue{}
		}
		return models.ScalarValue(top[0])

	case models.KindList:
		top := r.rank(pool, productTokens, frequency, r.listTopK)
		if len(top) == 0 {
			return models.SectionValue{}
		}
		return models.ListValue(top)

	case models.KindMapping:
		mapping := make(map[string]models.SectionValue, len(spec.SubKeys))
		filled := false
		subsets := r.dict.Entry(s).SubKeys
		for _, sub := range spec.SubKeys {
			subPool := filterBySubKey(pool, subsets[sub.Name])
			k := 1
			if sub.Shape == models.KindList {
				k = r.listTopK
			}
			top := r.rank(subPool, productTokens, frequency, k)
			switch {
			case len(top) == 0:
				// fixed sub-keys are always present, even without evidence
				if sub.Shape == models.KindList {
					mapping[sub.Name] = models.ListValue(nil)
				} else {
					mapping[sub.Name] = models.ScalarValue("")
				}
			case sub.Shape == models.KindList:
				mapping[sub.Name] = models.ListValue(top)
				filled = true
			default:
				mapping[sub.Name] = models.ScalarValue(top[0])
				filled = true
			}
		}
		if !filled {
			return models.SectionValue{}
		}
		return models.MappingValue(mapping)
	}

	return models.SectionValue{}
}

// rank orders candidates by selection weight descending, then original
// document order ascending, deduplicates by normalized text, and keeps
// the top k texts.
func (r *Ranker) rank(pool []models.CandidateKeyword, productTokens []string, frequency map[string]int, k int) []string {
	if len(pool) == 0 {
		return nil
	}

	type weighted struct {
		cand   models.CandidateKeyword
		weight float64
	}
	ws := make([]weighted, len(pool))
	for i, c := range pool {
		ws[i] = weighted{cand: c, weight: selectionWeight(c, productTokens, frequency)}
	}

	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].weight != ws[j].weight {
			return ws[i].weight > ws[j].weight
		}
		return ws[i].cand.Position < ws[j].cand.Position
	})

	seen := make(map[string]struct{}, len(ws))
	var top []string
	for _, w := range ws {
		key := strings.ToLower(strings.Join(strings.Fields(w.cand.Text), " "))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		top = append(top, w.cand.Text)
		if len(top) == k {
			break
		}
	}
	return top
}

var (
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[^\w\s가-힣]`)
	hangulRe  = regexp.MustCompile(`[가-힣]`)
	latinRe   = regexp.MustCompile(`[a-zA-Z]`)
)

// selectionWeight mirrors the upstream weighting: occurrence frequency
// (40%), similarity to the product name (40%), and token shape (20%).
func selectionWeight(c models.CandidateKeyword, productTokens []string, frequency map[string]int) float64 {
	freq := frequency[strings.ToLower(c.Text)]
	if freq == 0 {
		freq = 1
	}
	frequencyScore := float64(freq) * 0.2
	if frequencyScore > 0.4 {
		frequencyScore = 0.4
	}

	var similarityScore float64
	for _, t := range productTokens {
		if sim := similarity(strings.ToLower(c.Text), strings.ToLower(t)); sim > similarityScore {
			similarityScore = sim
		}
	}
	similarityScore *= 0.4

	contextScore := 0.3
	if digitRe.MatchString(c.Text) {
		contextScore += 0.2
	}
	if specialRe.MatchString(c.Text) {
		contextScore += 0.2
	}
	if hangulRe.MatchString(c.Text) {
		contextScore += 0.2
	}
	if latinRe.MatchString(c.Text) {
		contextScore += 0.1
	}
	contextScore *= 0.2

	return frequencyScore + similarityScore + contextScore
}

// similarity is the classic 2*LCS/(len1+len2) ratio over runes.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

func groupBySection(candidates []models.CandidateKeyword) map[models.Section][]models.CandidateKeyword {
	pools := make(map[models.Section][]models.CandidateKeyword)
	for _, c := range candidates {
		if c.Section == models.SectionUnassigned {
			continue
		}
		pools[c.Section] = append(pools[c.Section], c)
	}
	return pools
}

func countFrequency(candidates []models.CandidateKeyword) map[string]int {
	freq := make(map[string]int)
	seen := make(map[string]struct{})
	for _, c := range candidates {
		// a multi-label phrase counts once per position, not per section
		key := strings.ToLower(c.Text)
		posKey := c.SourceDocID + "\x00" + key + "\x00" + strconv.Itoa(c.Position)
		if _, dup := seen[posKey]; dup {
			continue
		}
		seen[posKey] = struct{}{}
		freq[key]++
	}
	return freq
}

func filterBySubKey(pool []models.CandidateKeyword, subset []string) []models.CandidateKeyword {
	if len(subset) == 0 {
		return nil
	}
	var out []models.CandidateKeyword
	for _, c := range pool {
		lower := strings.ToLower(c.Text)
		for _, kw := range subset {
			if strings.Contains(lower, strings.ToLower(kw)) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
