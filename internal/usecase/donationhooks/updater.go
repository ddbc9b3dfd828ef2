package donationhooks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"waqf-platform-backend/internal/domain/docstore"
	"waqf-platform-backend/internal/domain/donation"
	"waqf-platform-backend/internal/domain/waqf"
	"waqf-platform-backend/internal/usecase/tranche"
)

const (
	waqfsCollection = "waqfs"
	casRetries      = 3
)

// Updater folds completed donations into their waqf: bumps the
// financial totals, stamps the contribution timestamps and creates a
// locked tranche for the revolving-eligible slice.
type Updater struct {
	store docstore.Store
	locks docstore.Locker
}

func NewUpdater(store docstore.Store, locks docstore.Locker) *Updater {
	return &Updater{store: store, locks: locks}
}

// ApplyToWaqf performs the read-modify-write cycle against the target
// waqf under its lock. A missing waqf is fatal: the donation references
// a document that does not exist. Version conflicts are retried a
// bounded number of times.
func (u *Updater) ApplyToWaqf(ctx context.Context, d *donation.DonationData, now time.Time) error {
	return u.locks.WithLock(ctx, d.WaqfID, func() error {
		var lastErr error
		for attempt := 0; attempt < casRetries; attempt++ {
			doc, err := u.store.Get(ctx, waqfsCollection, d.WaqfID)
			if err != nil {
				if errors.Is(err, docstore.ErrNotFound) {
					return fmt.Errorf("%w: donation %s references waqf %s", waqf.ErrNotFound, d.ID, d.WaqfID)
				}
				return err
			}

			var w waqf.WaqfData
			if err := docstore.Decode(doc.Data, &w); err != nil {
				return fmt.Errorf("Invalid waqf data structure: %v", err)
			}

			applyDonation(&w, d, now)

			data, err := docstore.Encode(&w)
			if err != nil {
				return err
			}
			_, err = u.store.Set(ctx, waqfsCollection, d.WaqfID, docstore.SetDoc{
				Data:        data,
				Description: doc.Description,
				Version:     doc.Version,
			})
			if err == nil {
				log.Printf("donation %s (%.2f %s) applied to waqf %s", d.ID, d.Amount, d.Currency, d.WaqfID)
				return nil
			}
			if !errors.Is(err, docstore.ErrVersionConflict) {
				return err
			}
			lastErr = err
			log.Printf("version conflict applying donation %s to waqf %s, retrying (%d/%d)",
				d.ID, d.WaqfID, attempt+1, casRetries)
		}
		return lastErr
	})
}

func applyDonation(w *waqf.WaqfData, d *donation.DonationData, now time.Time) {
	w.Financial.TotalDonations += d.Amount
	w.Financial.CurrentBalance += d.Amount

	stamp := now.UTC().Format(time.RFC3339Nano)
	w.UpdatedAt = &stamp
	w.LastContributionDate = &stamp

	if !w.IsRevolvingCapable() {
		return
	}
	t := tranche.NewTranche(w, d.Amount, d.LockPeriodMonths, now.UnixNano(), "donation")
	if t == nil {
		log.Printf("donation %s: no revolving-eligible slice for waqf %s, skipping tranche", d.ID, w.ID)
		return
	}
	w.RevolvingDetails.ContributionTranches = append(w.RevolvingDetails.ContributionTranches, *t)
	log.Printf("donation %s: tranche %s (%.2f) created for waqf %s", d.ID, t.ID, t.Amount, w.ID)
}
