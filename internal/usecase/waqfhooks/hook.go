package waqfhooks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"waqf-platform-backend/internal/domain/docstore"
	"waqf-platform-backend/internal/domain/waqf"
)

const waqfsCollection = "waqfs"

// Hook validates every write to the waqfs collection and initializes
// derived state on creation.
type Hook struct {
	validator *Validator
	store     docstore.Store
	now       func() int64
}

func NewHook(validator *Validator, store docstore.Store) *Hook {
	return &Hook{
		validator: validator,
		store:     store,
		now:       func() int64 { return time.Now().UnixNano() },
	}
}

// WithClock overrides the time source. Test hook.
func (h *Hook) WithClock(now func() int64) *Hook {
	h.now = now
	return h
}

// AssertSet runs pre-commit: structural decode, field validation, the
// type-and-details matrix, and on updates the immutability and
// permission guards. On creation it also seeds derived state into the
// proposed payload so the committed document is already initialized.
func (h *Hook) AssertSet(ctx context.Context, sc *docstore.SetContext) error {
	var next waqf.WaqfData
	if err := docstore.Decode(sc.Proposed, &next); err != nil {
		return fmt.Errorf("Invalid waqf data structure: %v", err)
	}

	if err := h.validator.ValidateTypeDetails(&next); err != nil {
		return err
	}

	if sc.Current == nil {
		return h.assertCreate(sc, &next)
	}
	return h.assertUpdate(sc, &next)
}

func (h *Hook) assertCreate(sc *docstore.SetContext, next *waqf.WaqfData) error {
	res := h.validator.ValidateData(next, nil)
	for _, warning := range res.Warnings {
		log.Printf("waqf %s validation warning: %s", sc.Key, warning)
	}
	if err := res.Err(); err != nil {
		return err
	}

	if EnsureInitialized(next, h.now()) {
		data, err := docstore.Encode(next)
		if err != nil {
			return fmt.Errorf("re-encoding initialized waqf: %v", err)
		}
		sc.Proposed = data
	}
	return nil
}

func (h *Hook) assertUpdate(sc *docstore.SetContext, next *waqf.WaqfData) error {
	var prev waqf.WaqfData
	if err := docstore.Decode(sc.Current.Data, &prev); err != nil {
		return fmt.Errorf("Invalid stored waqf data: %v", err)
	}

	if err := checkUpdateAllowed(&prev, next); err != nil {
		return err
	}
	if err := CheckFieldRestrictions(&prev, next, sc.Caller); err != nil {
		return err
	}

	res := h.validator.ValidateData(next, &prev)
	for _, warning := range res.Warnings {
		log.Printf("waqf %s validation warning: %s", sc.Key, warning)
	}
	if err := res.Err(); err != nil {
		return err
	}

	if prev.RevolvingDetails != nil && next.RevolvingDetails != nil {
		if next.RevolvingDetails.LockPeriodMonths < prev.RevolvingDetails.LockPeriodMonths {
			return fmt.Errorf("lock period cannot be shortened after creation")
		}
	}
	return nil
}

// checkUpdateAllowed gates updates by lifecycle state: archived waqfs
// are frozen entirely, completed waqfs accept financial-only updates.
func checkUpdateAllowed(prev, next *waqf.WaqfData) error {
	switch prev.Status {
	case waqf.StatusArchived:
		return waqf.ErrArchivedWaqf
	case waqf.StatusCompleted:
		if isFinancialOnlyUpdate(prev, next) {
			return nil
		}
		// Archiving a completed waqf is still allowed.
		if next.Status == waqf.StatusArchived && isFinancialOnlyUpdateIgnoringStatus(prev, next) {
			return nil
		}
		return waqf.ErrCompletedWaqf
	}
	return nil
}

func isFinancialOnlyUpdateIgnoringStatus(prev, next *waqf.WaqfData) bool {
	p, n := *prev, *next
	p.Status = n.Status
	return isFinancialOnlyUpdate(&p, &n)
}

// AssertDelete refuses to delete an active waqf.
func (h *Hook) AssertDelete(ctx context.Context, dc *docstore.DeleteContext) error {
	if dc.Current == nil {
		return nil
	}
	var w waqf.WaqfData
	if err := docstore.Decode(dc.Current.Data, &w); err != nil {
		// An undecodable record cannot be validated; allow the cleanup.
		log.Printf("deleting waqf %s with undecodable payload: %v", dc.Key, err)
		return nil
	}
	if w.Status == waqf.StatusActive {
		return errors.New("cannot delete an active waqf, pause or archive it first")
	}
	return nil
}

// OnSet runs post-commit. On creation it re-checks derived state and
// repairs it with a follow-up write if the assert-side initialization
// was bypassed. Failures here are logged, never returned: the write has
// already committed.
func (h *Hook) OnSet(ctx context.Context, cc *docstore.ChangeContext) error {
	var w waqf.WaqfData
	if err := docstore.Decode(cc.After.Data, &w); err != nil {
		log.Printf("on_set: undecodable waqf %s: %v", cc.Key, err)
		return nil
	}

	if cc.Before == nil {
		log.Printf("waqf created: %s (%s, %.2f) by %s", cc.Key, w.WaqfType, w.WaqfAsset, cc.Caller)
		if EnsureInitialized(&w, h.now()) {
			h.repair(ctx, cc, &w)
		}
		return nil
	}

	log.Printf("waqf updated: %s (version %d) by %s", cc.Key, cc.After.Version, cc.Caller)
	return nil
}

func (h *Hook) repair(ctx context.Context, cc *docstore.ChangeContext, w *waqf.WaqfData) {
	data, err := docstore.Encode(w)
	if err != nil {
		log.Printf("on_set: re-encoding waqf %s: %v", cc.Key, err)
		return
	}
	_, err = h.store.Set(ctx, waqfsCollection, cc.Key, docstore.SetDoc{
		Data:        data,
		Description: cc.After.Description,
		Version:     cc.After.Version,
	})
	if err != nil {
		log.Printf("on_set: initializing waqf %s: %v", cc.Key, err)
	}
}
