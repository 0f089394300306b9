package assembler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	"github.com/ducklingk58/medical-product-overview-system/internal/types"
)

var exportKeys = []string{
	"제품명", "성분 및 함량", "성상", "효능 및 효과", "용법 및 용량",
	"사용상 주의사항", "상호작용", "임부 및 수유부 사용", "고령자 사용",
	"적용 시 주의사항", "보관 및 취급", "제조 및 판매사 정보",
}

func TestAssembleEmptyRecord(t *testing.T) {
	record := models.NewOverviewRecord("아스피린정")

	result, err := Assemble(record)
	require.NoError(t, err)

	// every fixed key is present even on a fully empty record
	for _, key := range exportKeys {
		_, present := result.Export[key]
		assert.True(t, present, key)
	}
	assert.Equal(t, "아스피린정", result.Export["제품명"])
	assert.Equal(t, "", result.Export["성상"])
	assert.Equal(t, []string{}, result.Export["효능 및 효과"])

	storage, ok := result.Export["보관 및 취급"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "", storage["보관조건"])
	assert.Equal(t, []string{}, storage["주의사항"])

	assert.Equal(t, 0, result.Summary.Extracted)
	assert.Equal(t, 0, result.Summary.Completed)
	assert.Equal(t, int(models.NumSections), result.Summary.Empty)
	assert.True(t, record.Frozen())
}

func TestAssembleCountsProvenance(t *testing.T) {
	record := models.NewOverviewRecord("아스피린정")
	require.NoError(t, record.SetExtracted(models.SectionEfficacy,
		models.ListValue([]string{"해열", "진통"})))
	require.NoError(t, record.SetCompleted(models.SectionElderly,
		models.ScalarValue("감량을 고려한다")))
	record.RecordFailure(models.CompletionFailure{
		Section: models.SectionInteractions, Reason: "timeout"})

	result, err := Assemble(record)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Extracted)
	assert.Equal(t, 1, result.Summary.Completed)
	assert.Equal(t, int(models.NumSections)-2, result.Summary.Empty)
	require.Len(t, result.Summary.Failures, 1)
	assert.Equal(t, models.SectionInteractions, result.Summary.Failures[0].Section)

	assert.Equal(t, []string{"해열", "진통"}, result.Export["효능 및 효과"])
	assert.Equal(t, "감량을 고려한다", result.Export["고령자 사용"])
}

func TestAssemblePadsMappingSubKeys(t *testing.T) {
	record := models.NewOverviewRecord("아스피린정")
	require.NoError(t, record.SetExtracted(models.SectionPregnancy,
		models.MappingValue(map[string]models.SectionValue{
			"수유부": models.ScalarValue("수유를 중단한다"),
		})))

	result, err := Assemble(record)
	require.NoError(t, err)

	pregnancy, ok := result.Export["임부 및 수유부 사용"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "수유를 중단한다", pregnancy["수유부"])
	assert.Equal(t, "", pregnancy["임신 1~2기"])
	assert.Equal(t, "", pregnancy["임신 3기"])
}

func TestAssembleMarshalRoundTrip(t *testing.T) {
	record := models.NewOverviewRecord("아스피린정")
	require.NoError(t, record.SetExtracted(models.SectionComposition,
		models.ListValue([]string{"아세틸살리실산 100mg"})))

	result, err := Assemble(record)
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, len(exportKeys))
	assert.Equal(t, "아스피린정", decoded["제품명"])
}

func TestValidateExportRejectsMissingKey(t *testing.T) {
	record := models.NewOverviewRecord("아스피린정")
	result, err := Assemble(record)
	require.NoError(t, err)

	delete(result.Export, "성상")
	err = validateExport(result.Export)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSchemaViolation)
}
