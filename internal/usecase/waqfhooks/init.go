package waqfhooks

import (
	"log"

	"waqf-platform-backend/internal/domain/waqf"
	"waqf-platform-backend/internal/usecase/tranche"
)

// EnsureInitialized backfills the derived state a freshly created waqf
// needs: per-cause monetary allocations and, for revolving-capable
// waqfs, the initial principal tranche. It is idempotent; both the
// assert path and the post-commit path call it, and whichever runs
// first wins.
func EnsureInitialized(w *waqf.WaqfData, nowNanos int64) bool {
	changed := false

	if needsAllocationInit(w) {
		initCauseAllocations(w)
		changed = true
	}

	if w.IsRevolvingCapable() && w.RevolvingDetails != nil && len(w.RevolvingDetails.ContributionTranches) == 0 {
		t := tranche.NewTranche(w, w.WaqfAsset, nil, nowNanos, "initial")
		if t != nil {
			w.RevolvingDetails.ContributionTranches = append(w.RevolvingDetails.ContributionTranches, *t)
			log.Printf("initial tranche %s (%.2f) created for waqf %s", t.ID, t.Amount, w.ID)
			changed = true
		} else {
			log.Printf("no revolving-eligible amount for waqf %s, skipping initial tranche", w.ID)
		}
	}

	return changed
}

func needsAllocationInit(w *waqf.WaqfData) bool {
	if len(w.SelectedCauses) == 0 {
		return false
	}
	if len(w.Financial.CauseAllocations) == 0 {
		return true
	}
	for _, amount := range w.Financial.CauseAllocations {
		if amount != 0 {
			return false
		}
	}
	return true
}

// initCauseAllocations derives monetary allocations from the waqf's
// percentage split, falling back to a uniform split when no
// percentages were given.
func initCauseAllocations(w *waqf.WaqfData) {
	allocations := make(map[string]float64, len(w.SelectedCauses))
	uniform := 100.0 / float64(len(w.SelectedCauses))

	for _, cause := range w.SelectedCauses {
		pct, ok := w.CauseAllocation[cause]
		if !ok {
			pct = uniform
		}
		allocations[cause] = w.WaqfAsset * pct / 100
	}
	w.Financial.CauseAllocations = allocations
}
