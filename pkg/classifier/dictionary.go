package classifier

import (
	"regexp"
	"strings"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
)

// SectionEntry holds the match material for one section: a keyword list
// (exact and prefix tiers), compiled patterns (regex tier), a section
// weight, and the per-sub-key keyword subsets the ranker scopes nested
// selection with.
type SectionEntry struct {
	Weight   float64
	Keywords []string
	Patterns []*regexp.Regexp
	SubKeys  map[string][]string
}

// Dictionary is the process-wide keyword/pattern dictionary. Immutable
// after construction; safe for concurrent readers.
type Dictionary struct {
	entries [models.NumSections]SectionEntry
}

// Entry returns the match material for a section.
func (d *Dictionary) Entry(s models.Section) SectionEntry { return d.entries[s] }

// Match weight tiers. Exact hits outrank pattern hits outrank
// prefix/containment hits.
const (
	exactTier   = 1.0
	patternTier = 0.8
	prefixTier  = 0.6
)

// Score computes the weighted relevance of a phrase for one section.
// Single-character phrases only count on the exact tier; prefixing them
// into longer dictionary words produces noise, not evidence.
func (d *Dictionary) Score(phrase string, s models.Section) float64 {
	e := d.entries[s]
	lower := strings.ToLower(phrase)
	short := len([]rune(lower)) < 2

	var score float64
	for _, kw := range e.Keywords {
		k := strings.ToLower(kw)
		switch {
		case lower == k:
			score += exactTier
		case short:
		case strings.HasPrefix(lower, k) || strings.HasPrefix(k, lower):
			score += prefixTier
		case strings.Contains(lower, k):
			score += prefixTier
		}
	}
	for _, re := range e.Patterns {
		if re.MatchString(phrase) {
			score += patternTier
		}
	}
	return score * e.Weight
}

// StrongMatch reports whether the phrase hits the section on the exact
// or pattern tier. Containment alone is not strong evidence: it must
// not glue neighboring tokens into a single phrase.
func (d *Dictionary) StrongMatch(phrase string, s models.Section) bool {
	e := d.entries[s]
	lower := strings.ToLower(phrase)
	for _, kw := range e.Keywords {
		if lower == strings.ToLower(kw) {
			return true
		}
	}
	for _, re := range e.Patterns {
		if re.MatchString(phrase) {
			return true
		}
	}
	return false
}

// DefaultDictionary builds the built-in Korean drug-label dictionary.
// Loaded once at startup and injected wherever matching is needed.
func DefaultDictionary() *Dictionary {
	d := &Dictionary{}

	d.entries[models.SectionComposition] = SectionEntry{
		Weight: 1.2,
		Keywords: []string{
			"성분", "주성분", "함량", "첨가제", "결합제", "희석제", "배합목적",
			"첨가성분", "보조성분", "기준", "분량", "규격", "순도", "함유량",
			"투여단위", "아세트아미노펜", "이부프로펜", "아스피린", "세마글루타이드",
			"메트포르민", "글리메피리드", "파세타민",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|iu|%|단위)$`),
			regexp.MustCompile(`(?i)^(?:usp|ep|jp|kp)$`),
		},
	}

	d.entries[models.SectionAppearance] = SectionEntry{
		Weight: 1.0,
		Keywords: []string{
			"성상", "외형", "외관", "모양", "형태", "색상", "색깔", "흰색", "백색",
			"노란색", "미황색", "무색", "투명", "불투명", "각인", "표시", "마크",
			"원형", "타원형", "장방형", "크기", "두께", "지름",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:필름코팅정|장용정|서방정|연질캡슐|경질캡슐)$`),
			regexp.MustCompile(`[가-힣]색$`),
		},
	}

	d.entries[models.SectionEfficacy] = SectionEntry{
		Weight: 1.1,
		Keywords: []string{
			"효능", "효과", "작용", "약리작용", "치료효과", "약효", "치료", "개선",
			"완화", "해열", "진통", "소염", "항염증", "혈전", "예방",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^항[가-힣]{1,4}$`), // 항균, 항암, 항고혈압, ...
		},
	}

	d.entries[models.SectionDosage] = SectionEntry{
		Weight: 1.0,
		Keywords: []string{
			"용법", "용량", "투여", "복용", "투여량", "복용량", "투여방법",
			"복용방법", "투여간격", "투여기간", "적응증", "투여경로", "경구",
			"식후", "식전", "점적", "도포", "흡입",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^1일\s*\d+회$|^\d+회$`),
			regexp.MustCompile(`^\d+(?:~\d+)?(?:정|캡슐)$`),
		},
	}

	d.entries[models.SectionPrecautions] = SectionEntry{
		Weight: 1.0,
		Keywords: []string{
			"주의사항", "경고", "금기", "주의", "이상반응", "부작용", "과민반응",
			"알레르기", "중독", "의존성", "습관성", "내성", "주의환자", "출혈",
			"위장관계", "위장장애",
		},
		SubKeys: map[string][]string{
			"경고":       {"경고", "중독", "의존성", "습관성"},
			"금기":       {"금기", "투여하지"},
			"주의 필요 환자": {"주의환자", "환자", "신장애", "간장애", "기왕력"},
			"이상반응":     {"이상반응", "부작용", "과민반응", "알레르기", "출혈", "위장장애"},
		},
	}

	d.entries[models.SectionInteractions] = SectionEntry{
		Weight: 0.9,
		Keywords: []string{
			"상호작용", "약물상호작용", "병용", "병용투여", "병용금기", "약물병용",
			"약물조합", "약물배합", "항응고제",
		},
	}

	d.entries[models.SectionPregnancy] = SectionEntry{
		Weight: 0.9,
		Keywords: []string{
			"임부", "임신부", "임신", "수유부", "수유", "태아", "기형", "분만",
			"수유중단", "모유",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^임신\s*\d(?:~\d)?기$`),
		},
		SubKeys: map[string][]string{
			"임신 1~2기": {"임신 1~2기", "1~2기", "임신초기", "임부", "임신"},
			"임신 3기":   {"임신 3기", "3기", "임신말기", "분만"},
			"수유부":     {"수유부", "수유", "모유", "수유중단"},
		},
	}

	d.entries[models.SectionElderly] = SectionEntry{
		Weight: 0.8,
		Keywords: []string{
			"고령자", "노인", "노년", "고령", "노화", "감량",
		},
	}

	d.entries[models.SectionApplication] = SectionEntry{
		Weight: 0.8,
		Keywords: []string{
			"적용", "적용시", "적용시주의사항", "운전", "기계조작", "조작",
		},
	}

	d.entries[models.SectionStorage] = SectionEntry{
		Weight: 1.0,
		Keywords: []string{
			"보관", "보관조건", "보관방법", "보관온도", "보관장소", "실온", "차광",
			"기밀용기", "밀폐용기", "취급", "취급주의", "포장", "포장단위", "유효기간",
		},
		SubKeys: map[string][]string{
			"보관조건": {"보관", "실온", "차광", "기밀용기", "밀폐용기", "보관온도", "습기"},
			"포장단위": {"포장", "포장단위", "블리스터", "병", "포일"},
			"주의사항": {"취급", "취급주의", "유효기간", "어린이"},
		},
	}

	d.entries[models.SectionManufacturer] = SectionEntry{
		Weight: 0.7,
		Keywords: []string{
			"제조사", "제조업체", "제조회사", "제조공장", "제조원", "판매사",
			"판매업체", "판매회사", "판매원", "공장", "공장주소", "소재지",
			"소비자상담실", "고객상담실", "상담실", "상담센터",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`[가-힣]+(?:제약|파마|약품)$`),
		},
		SubKeys: map[string][]string{
			"제조사":    {"제조사", "제조업체", "제조회사", "제조원", "제약", "약품"},
			"판매사":    {"판매사", "판매업체", "판매회사", "판매원"},
			"공장 주소":  {"공장", "공장주소", "소재지", "주소"},
			"소비자상담실": {"소비자상담실", "고객상담실", "상담실", "상담센터", "전화"},
		},
	}

	return d
}
