package tranche

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"waqf-platform-backend/internal/domain/docstore"
	"waqf-platform-backend/internal/domain/waqf"
)

const (
	waqfsCollection   = "waqfs"
	returnsCollection = "tranche_returns"

	casRetries = 3
)

// TrancheReturnRequest is the audit record written alongside every
// explicit return request. It is append-only; see the returns hook.
type TrancheReturnRequest struct {
	WaqfID      string `json:"waqf_id"`
	TrancheID   string `json:"tranche_id"`
	RequestedBy string `json:"requested_by"`
	Timestamp   string `json:"timestamp"` // nanosecond epoch, decimal string
}

// Usecase drives tranche lifecycle operations against stored waqf
// documents: read, apply the engine, write back under the per-waqf lock
// with optimistic-version retries.
type Usecase struct {
	store docstore.Store
	locks docstore.Locker
	now   func() int64
}

func NewUsecase(store docstore.Store, locks docstore.Locker) *Usecase {
	return &Usecase{
		store: store,
		locks: locks,
		now:   func() int64 { return time.Now().UnixNano() },
	}
}

// WithClock overrides the time source. Test hook.
func (u *Usecase) WithClock(now func() int64) *Usecase {
	u.now = now
	return u
}

// mutateWaqf runs fn against a decoded waqf document and persists the
// result, holding the per-waqf lock and retrying a bounded number of
// times on version conflicts.
func (u *Usecase) mutateWaqf(ctx context.Context, waqfID string, fn func(w *waqf.WaqfData) error) error {
	return u.locks.WithLock(ctx, waqfID, func() error {
		var lastErr error
		for attempt := 0; attempt < casRetries; attempt++ {
			doc, err := u.store.Get(ctx, waqfsCollection, waqfID)
			if err != nil {
				if errors.Is(err, docstore.ErrNotFound) {
					return fmt.Errorf("%w: waqf %s", waqf.ErrNotFound, waqfID)
				}
				return err
			}

			var w waqf.WaqfData
			if err := docstore.Decode(doc.Data, &w); err != nil {
				return fmt.Errorf("Invalid waqf data structure: %v", err)
			}

			if err := fn(&w); err != nil {
				return err
			}

			data, err := docstore.Encode(&w)
			if err != nil {
				return err
			}
			_, err = u.store.Set(ctx, waqfsCollection, waqfID, docstore.SetDoc{
				Data:        data,
				Description: doc.Description,
				Version:     doc.Version,
			})
			if err == nil {
				return nil
			}
			if !errors.Is(err, docstore.ErrVersionConflict) {
				return err
			}
			lastErr = err
			log.Printf("version conflict updating waqf %s, retrying (%d/%d)", waqfID, attempt+1, casRetries)
		}
		return lastErr
	})
}

// Return processes a return request for one tranche and records the
// request in the audit collection.
func (u *Usecase) Return(ctx context.Context, caller, waqfID, trancheID string) (*ReturnOutcome, error) {
	now := u.now()

	var out *ReturnOutcome
	err := u.mutateWaqf(ctx, waqfID, func(w *waqf.WaqfData) error {
		var err error
		out, err = MarkReturned(w, trancheID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	u.recordReturnRequest(ctx, caller, waqfID, trancheID, now)
	return out, nil
}

// Rollover re-locks a matured tranche for an explicit number of months.
func (u *Usecase) Rollover(ctx context.Context, caller, waqfID, trancheID string, months int, targetCause *string) (string, error) {
	now := u.now()

	var newID string
	err := u.mutateWaqf(ctx, waqfID, func(w *waqf.WaqfData) error {
		var err error
		newID, err = Rollover(w, trancheID, months, targetCause, now)
		return err
	})
	if err != nil {
		return "", err
	}
	log.Printf("tranche %s of waqf %s rolled over into %s by %s", trancheID, waqfID, newID, caller)
	return newID, nil
}

// Convert spins a matured tranche off into a new waqf document. The new
// waqf is created under its own key after the source update commits.
func (u *Usecase) Convert(ctx context.Context, caller, waqfID, trancheID string, target waqf.Type, consumable *waqf.ConsumableDetails) (string, error) {
	now := u.now()

	var created *waqf.WaqfData
	err := u.mutateWaqf(ctx, waqfID, func(w *waqf.WaqfData) error {
		var err error
		created, err = Convert(w, trancheID, target, consumable, now)
		return err
	})
	if err != nil {
		return "", err
	}

	data, err := docstore.Encode(created)
	if err != nil {
		return "", err
	}
	if _, err := u.store.Set(ctx, waqfsCollection, created.ID, docstore.SetDoc{
		Data:        data,
		Description: "converted from tranche " + trancheID,
	}); err != nil {
		return "", fmt.Errorf("conversion recorded on %s but creating waqf %s failed: %w", waqfID, created.ID, err)
	}

	log.Printf("tranche %s of waqf %s converted to %s waqf %s by %s", trancheID, waqfID, target, created.ID, caller)
	return created.ID, nil
}

// PayInstallment releases one scheduled installment payment.
func (u *Usecase) PayInstallment(ctx context.Context, caller, waqfID, trancheID, installmentID string) (float64, error) {
	now := u.now()

	var released float64
	err := u.mutateWaqf(ctx, waqfID, func(w *waqf.WaqfData) error {
		var err error
		released, err = PayInstallment(w, trancheID, installmentID, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Printf("installment %s of tranche %s paid out %.2f (waqf %s, by %s)", installmentID, trancheID, released, waqfID, caller)
	return released, nil
}

// SweepResult summarizes one waqf's matured-tranche processing.
type SweepResult struct {
	WaqfID    string   `json:"waqf_id"`
	Processed []string `json:"processed"`
	Skipped   []string `json:"skipped,omitempty"`
}

// Sweep walks one waqf's matured tranches and runs each through the
// return engine, honoring per-waqf rollover preferences. Tranches that
// fail individually are skipped, not fatal.
func (u *Usecase) Sweep(ctx context.Context, caller, waqfID string) (*SweepResult, error) {
	now := u.now()
	result := &SweepResult{WaqfID: waqfID}

	err := u.mutateWaqf(ctx, waqfID, func(w *waqf.WaqfData) error {
		result.Processed = result.Processed[:0]
		result.Skipped = result.Skipped[:0]
		for _, t := range MaturedTranches(w, now) {
			if _, err := MarkReturned(w, t.ID, now); err != nil {
				log.Printf("sweep: skipping tranche %s of waqf %s: %v", t.ID, waqfID, err)
				result.Skipped = append(result.Skipped, t.ID)
				continue
			}
			result.Processed = append(result.Processed, t.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("sweep of waqf %s by %s: %d processed, %d skipped", waqfID, caller, len(result.Processed), len(result.Skipped))
	return result, nil
}

func (u *Usecase) recordReturnRequest(ctx context.Context, caller, waqfID, trancheID string, nowNanos int64) {
	req := TrancheReturnRequest{
		WaqfID:      waqfID,
		TrancheID:   trancheID,
		RequestedBy: caller,
		Timestamp:   formatNanos(nowNanos),
	}
	data, err := docstore.Encode(&req)
	if err != nil {
		log.Printf("encoding return request for tranche %s: %v", trancheID, err)
		return
	}
	if _, err := u.store.Set(ctx, returnsCollection, uuid.NewString(), docstore.SetDoc{Data: data}); err != nil {
		log.Printf("recording return request for tranche %s: %v", trancheID, err)
	}
}
