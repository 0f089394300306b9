package reconciler

import (
	"context"
	"fmt"
	"sync"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	"github.com/ducklingk58/medical-product-overview-system/internal/types"
)

// maxGroundingRunes bounds how much extracted context goes into one
// prompt.
const maxGroundingRunes = 200

type Reconciler struct {
	completer types.Completer
	workers   int

	// OnSectionDone, when set, is called after each section finishes,
	// from the section's own goroutine.
	OnSectionDone func(s models.Section)
}

func New(completer types.Completer, config types.ReconcilerConfig) *Reconciler {
	if config.Workers == 0 {
		config.Workers = 4
	}
	return &Reconciler{
		completer: completer,
		workers:   config.Workers,
	}
}

// Reconcile fills every still-empty section of the record via the
// completion collaborator. It must run after ranking has finished for
// all sections: the empty set is computed once, up front. Sections are
// completed by a bounded worker pool and fail independently; a section
// whose completion fails twice stays empty with the failure recorded.
// Sections already tagged extracted are never touched.
func (r *Reconciler) Reconcile(ctx context.Context, record *models.OverviewRecord) error {
	empty := record.EmptySections()
	if len(empty) == 0 {
		return nil
	}

	type outcome struct {
		section  models.Section
		value    models.SectionValue
		failures []models.CompletionFailure
	}

	results := make(chan outcome, len(empty))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for _, s := range empty {
		wg.Add(1)
		go func(s models.Section) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			value, failures := r.completeSection(ctx, record, s)
			results <- outcome{section: s, value: value, failures: failures}
			if r.OnSectionDone != nil {
				r.OnSectionDone(s)
			}
		}(s)
	}

	wg.Wait()
	close(results)

	for out := range results {
		for _, f := range out.failures {
			record.RecordFailure(f)
		}
		if out.value.IsEmpty() {
			continue
		}
		if err := record.SetCompleted(out.section, out.value); err != nil {
			return err
		}
	}
	return nil
}

// completeSection produces the section's value. Mapping sections are
// requested one sub-key at a time so a malformed response for one
// sub-key cannot poison its siblings.
func (r *Reconciler) completeSection(ctx context.Context, record *models.OverviewRecord, s models.Section) (models.SectionValue, []models.CompletionFailure) {
	spec := s.Spec()

	switch spec.Shape {
	case models.KindScalar, models.KindList:
		value, reason := r.completeValue(ctx, record, s, "", spec.Shape)
		if reason != "" {
			return models.SectionValue{}, []models.CompletionFailure{{Section: s, Reason: reason}}
		}
		return value, nil

	case models.KindMapping:
		mapping := make(map[string]models.SectionValue, len(spec.SubKeys))
		var failures []models.CompletionFailure
		filled := false
		for _, sub := range spec.SubKeys {
			value, reason := r.completeValue(ctx, record, s, sub.Name, sub.Shape)
			if reason != "" {
				failures = append(failures, models.CompletionFailure{Section: s, SubKey: sub.Name, Reason: reason})
				if sub.Shape == models.KindList {
					mapping[sub.Name] = models.ListValue(nil)
				} else {
					mapping[sub.Name] = models.ScalarValue("")
				}
				continue
			}
			mapping[sub.Name] = value
			filled = true
		}
		if !filled {
			return models.SectionValue{}, failures
		}
		return models.MappingValue(mapping), failures
	}

	return models.SectionValue{}, nil
}

// completeValue asks the collaborator for one section or sub-key value,
// retrying once. A timeout, transport failure, unparsable response, and
// boilerplate echo are all the same kind of failure here.
func (r *Reconciler) completeValue(ctx context.Context, record *models.OverviewRecord, s models.Section, subKey string, shape models.ValueKind) (models.SectionValue, string) {
	prompt := buildPrompt(record, s, subKey, shape)

	var reason string
	for attempt := 0; attempt < 2; attempt++ {
		response, err := r.completer.Complete(ctx, prompt)
		if err != nil {
			reason = fmt.Sprintf("completion failed: %v", err)
			continue
		}

		value, ok := parseResponse(response, s, subKey, shape)
		if !ok {
			reason = "unparsable or boilerplate response"
			continue
		}
		return value, ""
	}
	return models.SectionValue{}, reason
}
