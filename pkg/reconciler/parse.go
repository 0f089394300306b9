package reconciler

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	"github.com/ducklingk58/medical-product-overview-system/pkg/normalizer"
)

// boilerplate markers a model echoes back when it has nothing to say.
var boilerplateMarkers = []string{
	"정보 없음",
	"정보가 없습니다",
	"정보가 제공되지 않았습니다",
	"알 수 없습니다",
}

// parseResponse turns the collaborator's text into the expected section
// shape. Models wrap JSON in prose, so the first '{'..'}' fragment is
// extracted before unmarshaling. Accepted keys are the requested one
// first, then any string/array value (the upstream behavior). Content is
// sanitized with the same normalization rules as the extraction path;
// empty and boilerplate content is rejected.
func parseResponse(response string, s models.Section, subKey string, shape models.ValueKind) (models.SectionValue, bool) {
	fragment, ok := jsonFragment(response)
	if !ok {
		return models.SectionValue{}, false
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(fragment), &parsed); err != nil {
		return models.SectionValue{}, false
	}

	key := s.Name()
	if subKey != "" {
		key = subKey
	}

	raw, found := parsed[key]
	if !found {
		// fall back to the first usable value, walking keys sorted for
		// determinism
		for _, k := range sortedKeys(parsed) {
			switch parsed[k].(type) {
			case string, []any:
				raw = parsed[k]
				found = true
			}
			if found {
				break
			}
		}
	}
	if !found {
		return models.SectionValue{}, false
	}

	switch shape {
	case models.KindList:
		items := sanitizeList(raw)
		if len(items) == 0 {
			return models.SectionValue{}, false
		}
		return models.ListValue(items), true
	default:
		text := sanitizeScalar(raw)
		if text == "" {
			return models.SectionValue{}, false
		}
		return models.ScalarValue(text), true
	}
}

func jsonFragment(response string) (string, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return response[start : end+1], true
}

func sanitizeScalar(raw any) string {
	switch v := raw.(type) {
	case string:
		return sanitizeText(v)
	case []any:
		// scalar slot, list response: keep the first usable item
		for _, item := range v {
			if s, isString := item.(string); isString {
				if clean := sanitizeText(s); clean != "" {
					return clean
				}
			}
		}
	}
	return ""
}

func sanitizeList(raw any) []string {
	var out []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s, isString := item.(string); isString {
				if clean := sanitizeText(s); clean != "" {
					out = append(out, clean)
				}
			}
		}
	case string:
		// list slot, scalar response: split on newlines, keep sentences
		for _, line := range strings.Split(v, "\n") {
			if clean := sanitizeText(line); clean != "" {
				out = append(out, clean)
			}
		}
	}
	return out
}

func sanitizeText(s string) string {
	clean := normalizer.Normalize(s)
	if clean == "" {
		return ""
	}
	for _, marker := range boilerplateMarkers {
		if strings.Contains(clean, marker) {
			return ""
		}
	}
	// the literal placeholder from the prompt template echoed back
	if clean == "내용" {
		return ""
	}
	return clean
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
