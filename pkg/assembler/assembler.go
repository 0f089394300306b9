package assembler

import (
	"encoding/json"
	"fmt"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	"github.com/ducklingk58/medical-product-overview-system/internal/types"
)

// Summary reports the provenance distribution of a finished record.
type Summary struct {
	Extracted int
	Completed int
	Empty     int
	Failures  []models.CompletionFailure
}

// Assembled is the frozen pipeline output handed to exporters. Export
// carries every fixed top-level key and sub-key; empty sections export
// as empty strings/lists, never as missing keys.
type Assembled struct {
	Record  *models.OverviewRecord
	Export  map[string]any
	Summary Summary
}

// Assemble freezes the record, builds the export structure, validates
// it against the overview schema, and computes the provenance summary.
// Empty sections are a normal, reportable outcome; only a missing fixed
// key is an error, because it means the pipeline itself is defective.
func Assemble(record *models.OverviewRecord) (*Assembled, error) {
	if err := checkInvariants(record); err != nil {
		return nil, err
	}

	record.Freeze()

	export := map[string]any{
		models.ProductNameKey: record.ProductName,
	}
	summary := Summary{Failures: record.Failures()}

	for _, s := range models.Sections() {
		export[s.Name()] = exportValue(s.Spec(), record.Value(s))
		switch record.ProvenanceOf(s) {
		case models.ProvenanceExtracted:
			summary.Extracted++
		case models.ProvenanceCompleted:
			summary.Completed++
		default:
			summary.Empty++
		}
	}

	if err := validateExport(export); err != nil {
		return nil, err
	}

	return &Assembled{Record: record, Export: export, Summary: summary}, nil
}

// checkInvariants guards the provenance contract before freezing.
func checkInvariants(record *models.OverviewRecord) error {
	for _, s := range models.Sections() {
		prov := record.ProvenanceOf(s)
		empty := record.Value(s).IsEmpty()
		if prov == models.ProvenanceEmpty && !empty {
			return fmt.Errorf("%w: %s holds content but is tagged empty", types.ErrSchemaViolation, s.Name())
		}
		if prov != models.ProvenanceEmpty && empty {
			return fmt.Errorf("%w: %s is tagged %s but holds no content", types.ErrSchemaViolation, s.Name(), prov)
		}
	}
	return nil
}

// exportValue renders a section into the plain nested structure of the
// export, padding every fixed sub-key.
func exportValue(spec models.SectionSpec, v models.SectionValue) any {
	switch spec.Shape {
	case models.KindScalar:
		return v.Scalar
	case models.KindList:
		return stringList(v.List)
	case models.KindMapping:
		m := make(map[string]any, len(spec.SubKeys))
		for _, sub := range spec.SubKeys {
			subVal := v.Mapping[sub.Name]
			if sub.Shape == models.KindList {
				m[sub.Name] = stringList(subVal.List)
			} else {
				m[sub.Name] = subVal.Scalar
			}
		}
		return m
	}
	return nil
}

func stringList(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// MarshalJSON of Assembled serializes the export structure.
func (a *Assembled) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Export)
}
