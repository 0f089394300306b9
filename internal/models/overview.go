package models

import "fmt"

// Section identifies one of the eleven fixed content sections of the
// Korean drug-overview schema. The ordinal is the schema order and is
// used as the deterministic tie-break during classification.
type Section int

const (
	SectionComposition  Section = iota // 성분 및 함량
	SectionAppearance                  // 성상
	SectionEfficacy                    // 효능 및 효과
	SectionDosage                      // 용법 및 용량
	SectionPrecautions                 // 사용상 주의사항
	SectionInteractions                // 상호작용
	SectionPregnancy                   // 임부 및 수유부 사용
	SectionElderly                     // 고령자 사용
	SectionApplication                 // 적용 시 주의사항
	SectionStorage                     // 보관 및 취급
	SectionManufacturer                // 제조 및 판매사 정보

	NumSections

	// SectionUnassigned labels tokens that cleared no section's
	// acceptance threshold. Never ranked, never exported.
	SectionUnassigned Section = -1
)

// ProductNameKey is the twelfth top-level key of the export. The product
// name is supplied by the caller, not produced by classification.
const ProductNameKey = "제품명"

// Provenance records where a section's value came from.
type Provenance string

const (
	ProvenanceEmpty     Provenance = "empty"
	ProvenanceExtracted Provenance = "extracted"
	ProvenanceCompleted Provenance = "llm-completed"
)

// ValueKind tags the shape of a SectionValue.
type ValueKind int

const (
	KindUnset ValueKind = iota
	KindScalar
	KindList
	KindMapping
	KindUnparsable
)

// SectionValue is the typed content slot for one section or sub-key.
// Exactly one of Scalar, List, Mapping is meaningful, per Kind.
type SectionValue struct {
	Kind    ValueKind
	Scalar  string
	List    []string
	Mapping map[string]SectionValue
}

func ScalarValue(s string) SectionValue  { return SectionValue{Kind: KindScalar, Scalar: s} }
func ListValue(ss []string) SectionValue { return SectionValue{Kind: KindList, List: ss} }

func MappingValue(m map[string]SectionValue) SectionValue {
	return SectionValue{Kind: KindMapping, Mapping: m}
}

// IsEmpty reports whether the value carries no content at all.
func (v SectionValue) IsEmpty() bool {
	switch v.Kind {
	case KindScalar:
		return v.Scalar == ""
	case KindList:
		return len(v.List) == 0
	case KindMapping:
		for _, sub := range v.Mapping {
			if !sub.IsEmpty() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// SubKeySpec describes one fixed sub-key of a mapping section.
type SubKeySpec struct {
	Name  string
	Shape ValueKind // KindScalar or KindList
}

// SectionSpec is the immutable schema definition for one section.
type SectionSpec struct {
	Section Section
	Name    string
	Shape   ValueKind
	SubKeys []SubKeySpec
}

var sectionSpecs = [NumSections]SectionSpec{
	{SectionComposition, "성분 및 함량", KindList, nil},
	{SectionAppearance, "성상", KindScalar, nil},
	{SectionEfficacy, "효능 및 효과", KindList, nil},
	{SectionDosage, "용법 및 용량", KindList, nil},
	{SectionPrecautions, "사용상 주의사항", KindMapping, []SubKeySpec{
		{"경고", KindList},
		{"금기", KindList},
		{"주의 필요 환자", KindList},
		{"이상반응", KindList},
	}},
	{SectionInteractions, "상호작용", KindList, nil},
	{SectionPregnancy, "임부 및 수유부 사용", KindMapping, []SubKeySpec{
		{"임신 1~2기", KindScalar},
		{"임신 3기", KindScalar},
		{"수유부", KindScalar},
	}},
	{SectionElderly, "고령자 사용", KindScalar, nil},
	{SectionApplication, "적용 시 주의사항", KindList, nil},
	{SectionStorage, "보관 및 취급", KindMapping, []SubKeySpec{
		{"보관조건", KindScalar},
		{"포장단위", KindScalar},
		{"주의사항", KindList},
	}},
	{SectionManufacturer, "제조 및 판매사 정보", KindMapping, []SubKeySpec{
		{"제조사", KindScalar},
		{"판매사", KindScalar},
		{"공장 주소", KindScalar},
		{"소비자상담실", KindScalar},
	}},
}

// Spec returns the schema definition for s.
func (s Section) Spec() SectionSpec { return sectionSpecs[s] }

// Name returns the Korean section name used in the export.
func (s Section) Name() string {
	if s == SectionUnassigned {
		return "미분류"
	}
	return sectionSpecs[s].Name
}

// Sections lists all sections in schema order.
func Sections() []Section {
	out := make([]Section, NumSections)
	for i := range out {
		out[i] = Section(i)
	}
	return out
}

// SectionByName resolves a Korean section name to its enum value.
func SectionByName(name string) (Section, bool) {
	for _, spec := range sectionSpecs {
		if spec.Name == name {
			return spec.Section, true
		}
	}
	return SectionUnassigned, false
}

// CompletionFailure records an LLM completion that was retried and still
// failed. Failures are reported on the summary, never raised.
type CompletionFailure struct {
	Section Section
	SubKey  string
	Reason  string
}

func (f CompletionFailure) String() string {
	if f.SubKey != "" {
		return fmt.Sprintf("%s - %s: %s", f.Section.Name(), f.SubKey, f.Reason)
	}
	return fmt.Sprintf("%s: %s", f.Section.Name(), f.Reason)
}

// OverviewRecord is the aggregate built up by the pipeline. It starts
// empty, is filled by the ranker (extracted) and the reconciler
// (llm-completed), then frozen by the assembler.
type OverviewRecord struct {
	ProductName string

	values     [NumSections]SectionValue
	provenance [NumSections]Provenance
	failures   []CompletionFailure
	frozen     bool
}

// NewOverviewRecord creates an empty record for the given product.
func NewOverviewRecord(productName string) *OverviewRecord {
	r := &OverviewRecord{ProductName: productName}
	for i := range r.provenance {
		r.provenance[i] = ProvenanceEmpty
	}
	return r
}

// Value returns the current content of a section.
func (r *OverviewRecord) Value(s Section) SectionValue { return r.values[s] }

// ProvenanceOf returns the section's provenance tag.
func (r *OverviewRecord) ProvenanceOf(s Section) Provenance { return r.provenance[s] }

// Frozen reports whether the record has been sealed by the assembler.
func (r *OverviewRecord) Frozen() bool { return r.frozen }

// Failures returns the recorded completion failures.
func (r *OverviewRecord) Failures() []CompletionFailure { return r.failures }

// SetExtracted stores document-extracted content. Extraction may only
// fill an empty section: two extraction passes never race for one slot
// because ranking runs each section exactly once.
func (r *OverviewRecord) SetExtracted(s Section, v SectionValue) error {
	if r.frozen {
		return fmt.Errorf("record is frozen")
	}
	if v.IsEmpty() {
		return fmt.Errorf("%s: refusing to mark empty content as extracted", s.Name())
	}
	if r.provenance[s] != ProvenanceEmpty {
		return fmt.Errorf("%s: section already %s", s.Name(), r.provenance[s])
	}
	r.values[s] = v
	r.provenance[s] = ProvenanceExtracted
	return nil
}

// SetCompleted stores model-generated content. Extracted evidence always
// wins: a completion for an extracted section is rejected.
func (r *OverviewRecord) SetCompleted(s Section, v SectionValue) error {
	if r.frozen {
		return fmt.Errorf("record is frozen")
	}
	if r.provenance[s] == ProvenanceExtracted {
		return fmt.Errorf("%s: extracted evidence takes precedence", s.Name())
	}
	if v.IsEmpty() {
		return fmt.Errorf("%s: refusing to mark empty content as completed", s.Name())
	}
	r.values[s] = v
	r.provenance[s] = ProvenanceCompleted
	return nil
}

// RecordFailure appends a completion failure to the record.
func (r *OverviewRecord) RecordFailure(f CompletionFailure) {
	if r.frozen {
		return
	}
	r.failures = append(r.failures, f)
}

// Freeze seals the record against further mutation.
func (r *OverviewRecord) Freeze() { r.frozen = true }

// EmptySections lists sections still awaiting content, in schema order.
func (r *OverviewRecord) EmptySections() []Section {
	var out []Section
	for _, s := range Sections() {
		if r.provenance[s] == ProvenanceEmpty {
			out = append(out, s)
		}
	}
	return out
}
