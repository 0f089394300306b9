package assembler

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ducklingk58/medical-product-overview-system/internal/types"
)

// overviewSchema is the exporter contract: all twelve top-level keys
// and every fixed sub-key must be present, with their documented shapes.
const overviewSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": [
    "제품명", "성분 및 함량", "성상", "효능 및 효과", "용법 및 용량",
    "사용상 주의사항", "상호작용", "임부 및 수유부 사용", "고령자 사용",
    "적용 시 주의사항", "보관 및 취급", "제조 및 판매사 정보"
  ],
  "properties": {
    "제품명": {"type": "string"},
    "성분 및 함량": {"type": "array", "items": {"type": "string"}},
    "성상": {"type": "string"},
    "효능 및 효과": {"type": "array", "items": {"type": "string"}},
    "용법 및 용량": {"type": "array", "items": {"type": "string"}},
    "사용상 주의사항": {
      "type": "object",
      "additionalProperties": false,
      "required": ["경고", "금기", "주의 필요 환자", "이상반응"],
      "properties": {
        "경고": {"type": "array", "items": {"type": "string"}},
        "금기": {"type": "array", "items": {"type": "string"}},
        "주의 필요 환자": {"type": "array", "items": {"type": "string"}},
        "이상반응": {"type": "array", "items": {"type": "string"}}
      }
    },
    "상호작용": {"type": "array", "items": {"type": "string"}},
    "임부 및 수유부 사용": {
      "type": "object",
      "additionalProperties": false,
      "required": ["임신 1~2기", "임신 3기", "수유부"],
      "properties": {
        "임신 1~2기": {"type": "string"},
        "임신 3기": {"type": "string"},
        "수유부": {"type": "string"}
      }
    },
    "고령자 사용": {"type": "string"},
    "적용 시 주의사항": {"type": "array", "items": {"type": "string"}},
    "보관 및 취급": {
      "type": "object",
      "additionalProperties": false,
      "required": ["보관조건", "포장단위", "주의사항"],
      "properties": {
        "보관조건": {"type": "string"},
        "포장단위": {"type": "string"},
        "주의사항": {"type": "array", "items": {"type": "string"}}
      }
    },
    "제조 및 판매사 정보": {
      "type": "object",
      "additionalProperties": false,
      "required": ["제조사", "판매사", "공장 주소", "소비자상담실"],
      "properties": {
        "제조사": {"type": "string"},
        "판매사": {"type": "string"},
        "공장 주소": {"type": "string"},
        "소비자상담실": {"type": "string"}
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("overview.schema.json", overviewSchema)

// validateExport checks the export structure against the schema. A
// failure is a SchemaViolation: the pipeline produced a malformed
// record, which must never reach an exporter.
func validateExport(export map[string]any) error {
	data, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSchemaViolation, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSchemaViolation, err)
	}

	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSchemaViolation, err)
	}
	return nil
}
