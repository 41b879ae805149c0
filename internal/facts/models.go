// Package facts holds the canonical, versioned WizardFacts dictionary per
// case. Every answer the wizard collects lands here; everything downstream
// (normalizer, decision engine, compliance evaluator) is derived from it.
package facts

import (
	"time"

	id "caseflow/pkg/domain"
)

// WizardFacts is the flat, per-case fact dictionary. Keys are wizard question
// identifiers; values are the JSON scalars, arrays, or objects the UI
// submitted. The store persists it verbatim - interpretation belongs to the
// normalizer.
type WizardFacts map[string]any

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (f WizardFacts) Clone() WizardFacts {
	if f == nil {
		return nil
	}
	out := make(WizardFacts, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, nested := range tv {
			out[k] = cloneValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, nested := range tv {
			out[i] = cloneValue(nested)
		}
		return out
	default:
		return tv
	}
}

// Snapshot is one persisted state of a case's fact-set. Version increments on
// every merge and backs optimistic concurrency for concurrent browser tabs.
type Snapshot struct {
	CaseID    id.CaseID
	Facts     WizardFacts
	Version   int64
	UpdatedAt time.Time
}
