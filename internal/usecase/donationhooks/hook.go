package donationhooks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"waqf-platform-backend/internal/domain/docstore"
	"waqf-platform-backend/internal/domain/donation"
)

const (
	minDonationAmount = 0.01
	maxDonationAmount = 1_000_000.0

	maxDonorNameLen = 100
)

// Hook validates donation settlement records and triggers the waqf
// financial update once a donation completes.
type Hook struct {
	updater *Updater
	now     func() time.Time
}

func NewHook(updater *Updater) *Hook {
	return &Hook{updater: updater, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (h *Hook) WithClock(now func() time.Time) *Hook {
	h.now = now
	return h
}

// AssertSet validates the flat donation record. Donations carry no
// nested structures, so this is a plain field check.
func (h *Hook) AssertSet(ctx context.Context, sc *docstore.SetContext) error {
	var d donation.DonationData
	if err := docstore.Decode(sc.Proposed, &d); err != nil {
		return fmt.Errorf("Invalid donation data structure: %v", err)
	}
	return validateDonation(&d)
}

func validateDonation(d *donation.DonationData) error {
	if strings.TrimSpace(d.WaqfID) == "" {
		return fmt.Errorf("donation waqf_id cannot be empty")
	}
	if d.Amount < minDonationAmount {
		return fmt.Errorf("donation amount must be at least %.2f", minDonationAmount)
	}
	if d.Amount > maxDonationAmount {
		return fmt.Errorf("donation amount cannot exceed %.0f", maxDonationAmount)
	}
	if !donation.ValidCurrency(d.Currency) {
		return fmt.Errorf("invalid currency %q, must be one of %v", d.Currency, donation.ValidCurrencies)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("invalid donation status: %s", d.Status)
	}
	if strings.TrimSpace(d.Date) == "" {
		return fmt.Errorf("donation date cannot be empty")
	}
	if d.DonorName != nil && len(*d.DonorName) > maxDonorNameLen {
		return fmt.Errorf("donor name cannot exceed %d characters", maxDonorNameLen)
	}
	if d.LockPeriodMonths != nil && (*d.LockPeriodMonths < 1 || *d.LockPeriodMonths > 240) {
		return fmt.Errorf("lock period override must be between 1 and 240 months")
	}
	return nil
}

// AssertDelete allows deletion; donations are settlement records and
// removing one never rewinds the waqf financials.
func (h *Hook) AssertDelete(ctx context.Context, dc *docstore.DeleteContext) error {
	log.Printf("donation %s deleted by %s (waqf financials are not rewound)", dc.Key, dc.Caller)
	return nil
}

// OnSet applies the financial update when a donation lands in the
// completed state, either on creation or on a status transition.
func (h *Hook) OnSet(ctx context.Context, cc *docstore.ChangeContext) error {
	var after donation.DonationData
	if err := docstore.Decode(cc.After.Data, &after); err != nil {
		log.Printf("on_set: undecodable donation %s: %v", cc.Key, err)
		return nil
	}

	if after.Status != donation.StatusCompleted {
		return nil
	}
	if cc.Before != nil {
		var before donation.DonationData
		if err := docstore.Decode(cc.Before.Data, &before); err == nil && before.Status == donation.StatusCompleted {
			// Already applied when the donation first completed.
			return nil
		}
	}

	return h.updater.ApplyToWaqf(ctx, &after, h.now())
}
