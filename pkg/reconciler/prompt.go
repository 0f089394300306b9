package reconciler

import (
	"fmt"
	"strings"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
)

// buildPrompt assembles the bounded Korean prompt for one missing
// section or sub-key: product name, the already-extracted sections as
// grounding, and the expected JSON shape.
func buildPrompt(record *models.OverviewRecord, s models.Section, subKey string, shape models.ValueKind) string {
	key := s.Name()
	label := key
	if subKey != "" {
		key = subKey
		label = fmt.Sprintf("%s - %s", s.Name(), subKey)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "제품명: %s\n항목: %s\n", record.ProductName, label)

	if grounding := groundingContext(record); grounding != "" {
		b.WriteString("문서에서 이미 확인된 정보:\n")
		b.WriteString(grounding)
	}

	b.WriteString("의약품 상식과 제품명 정보를 바탕으로 해당 항목의 내용을 생성해줘.\n")
	if shape == models.KindList {
		fmt.Fprintf(&b, "응답은 반드시 아래 JSON 형식으로만 반환해:\n{\"%s\": [\"내용\"]}", key)
	} else {
		fmt.Fprintf(&b, "1-2문장으로, 응답은 반드시 아래 JSON 형식으로만 반환해:\n{\"%s\": \"내용\"}", key)
	}
	return b.String()
}

func groundingContext(record *models.OverviewRecord) string {
	var b strings.Builder
	for _, s := range models.Sections() {
		if record.ProvenanceOf(s) != models.ProvenanceExtracted {
			continue
		}
		summary := truncate(flatten(s, record.Value(s)), maxGroundingRunes)
		if summary == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", s.Name(), summary)
	}
	return b.String()
}

func flatten(s models.Section, v models.SectionValue) string {
	switch v.Kind {
	case models.KindScalar:
		return v.Scalar
	case models.KindList:
		return strings.Join(v.List, ", ")
	case models.KindMapping:
		// walk sub-keys in schema order so prompts are reproducible
		var parts []string
		for _, sub := range s.Spec().SubKeys {
			subVal := v.Mapping[sub.Name]
			var text string
			if subVal.Kind == models.KindList {
				text = strings.Join(subVal.List, ", ")
			} else {
				text = subVal.Scalar
			}
			if text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
