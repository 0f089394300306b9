package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionOrderMatchesSchema(t *testing.T) {
	sections := Sections()
	require.Len(t, sections, int(NumSections))

	assert.Equal(t, "성분 및 함량", sections[0].Name())
	assert.Equal(t, "제조 및 판매사 정보", sections[len(sections)-1].Name())

	// ordinals are the schema order
	for i, s := range sections {
		assert.Equal(t, Section(i), s)
	}
}

func TestSectionByName(t *testing.T) {
	s, ok := SectionByName("효능 및 효과")
	require.True(t, ok)
	assert.Equal(t, SectionEfficacy, s)

	_, ok = SectionByName("없는 항목")
	assert.False(t, ok)
}

func TestSectionValueIsEmpty(t *testing.T) {
	assert.True(t, SectionValue{}.IsEmpty())
	assert.True(t, ScalarValue("").IsEmpty())
	assert.True(t, ListValue(nil).IsEmpty())
	assert.False(t, ScalarValue("내용").IsEmpty())
	assert.False(t, ListValue([]string{"내용"}).IsEmpty())

	// a mapping with only padded slots is still empty
	assert.True(t, MappingValue(map[string]SectionValue{
		"보관조건": ScalarValue(""),
		"주의사항": ListValue(nil),
	}).IsEmpty())
	assert.False(t, MappingValue(map[string]SectionValue{
		"보관조건": ScalarValue("실온보관"),
	}).IsEmpty())
}

func TestRecordStartsEmpty(t *testing.T) {
	r := NewOverviewRecord("아스피린정")

	assert.Equal(t, "아스피린정", r.ProductName)
	assert.Len(t, r.EmptySections(), int(NumSections))
	for _, s := range Sections() {
		assert.Equal(t, ProvenanceEmpty, r.ProvenanceOf(s))
	}
}

func TestSetExtracted(t *testing.T) {
	r := NewOverviewRecord("아스피린정")

	require.NoError(t, r.SetExtracted(SectionEfficacy, ListValue([]string{"해열"})))
	assert.Equal(t, ProvenanceExtracted, r.ProvenanceOf(SectionEfficacy))

	// a section is written at most once
	assert.Error(t, r.SetExtracted(SectionEfficacy, ListValue([]string{"진통"})))
	assert.Equal(t, []string{"해열"}, r.Value(SectionEfficacy).List)

	// empty content cannot be marked extracted
	assert.Error(t, r.SetExtracted(SectionElderly, ScalarValue("")))
	assert.Equal(t, ProvenanceEmpty, r.ProvenanceOf(SectionElderly))
}

func TestExtractedBeatsCompleted(t *testing.T) {
	r := NewOverviewRecord("아스피린정")

	require.NoError(t, r.SetExtracted(SectionEfficacy, ListValue([]string{"해열"})))
	assert.Error(t, r.SetCompleted(SectionEfficacy, ListValue([]string{"생성된 내용"})))
	assert.Equal(t, []string{"해열"}, r.Value(SectionEfficacy).List)
	assert.Equal(t, ProvenanceExtracted, r.ProvenanceOf(SectionEfficacy))
}

func TestSetCompleted(t *testing.T) {
	r := NewOverviewRecord("아스피린정")

	require.NoError(t, r.SetCompleted(SectionElderly, ScalarValue("감량을 고려한다")))
	assert.Equal(t, ProvenanceCompleted, r.ProvenanceOf(SectionElderly))

	// completion may overwrite a prior completion but not extraction
	require.NoError(t, r.SetCompleted(SectionElderly, ScalarValue("다른 내용")))
	assert.Equal(t, "다른 내용", r.Value(SectionElderly).Scalar)
}

func TestFreezeSealsRecord(t *testing.T) {
	r := NewOverviewRecord("아스피린정")
	r.Freeze()

	assert.True(t, r.Frozen())
	assert.Error(t, r.SetExtracted(SectionEfficacy, ListValue([]string{"해열"})))
	assert.Error(t, r.SetCompleted(SectionElderly, ScalarValue("내용")))

	r.RecordFailure(CompletionFailure{Section: SectionElderly, Reason: "늦은 실패"})
	assert.Empty(t, r.Failures())
}

func TestEmptySectionsInSchemaOrder(t *testing.T) {
	r := NewOverviewRecord("아스피린정")
	require.NoError(t, r.SetExtracted(SectionComposition, ListValue([]string{"아스피린 100mg"})))
	require.NoError(t, r.SetExtracted(SectionStorage, MappingValue(map[string]SectionValue{
		"보관조건": ScalarValue("실온보관"),
	})))

	empty := r.EmptySections()
	assert.Len(t, empty, int(NumSections)-2)
	for i := 1; i < len(empty); i++ {
		assert.Greater(t, empty[i], empty[i-1])
	}
	assert.NotContains(t, empty, SectionComposition)
	assert.NotContains(t, empty, SectionStorage)
}

func TestCompletionFailureString(t *testing.T) {
	f := CompletionFailure{Section: SectionElderly, Reason: "timeout"}
	assert.Equal(t, "고령자 사용: timeout", f.String())

	f.SubKey = "수유부"
	f.Section = SectionPregnancy
	assert.Equal(t, "임부 및 수유부 사용 - 수유부: timeout", f.String())
}
