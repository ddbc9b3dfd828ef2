package tranche

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"waqf-platform-backend/internal/domain/waqf"
)

const (
	dayNanos   int64 = 24 * 60 * 60 * 1_000_000_000
	monthNanos int64 = 30 * dayNanos

	minLockMonths = 1
	maxLockMonths = 240

	minConsumableDurationMonths = 1
	maxConsumableDurationMonths = 60
)

func parseNanos(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return n, nil
}

func formatNanos(n int64) string { return strconv.FormatInt(n, 10) }

// RevolvingSlice returns the revolving-eligible portion of amount:
// the whole amount for a pure revolving waqf; for a hybrid, the share
// implied by the initial tranche's proportion of waqf_asset when one
// exists, else the average temporary_revolving percentage across the
// hybrid allocations. Zero means no tranche should be created.
func RevolvingSlice(w *waqf.WaqfData, amount float64) float64 {
	switch w.WaqfType {
	case waqf.TypeTemporaryRevolving:
		return amount
	case waqf.TypeHybrid:
		rd := w.RevolvingDetails
		if rd == nil {
			return 0
		}
		if w.WaqfAsset > 0 {
			for i := range rd.ContributionTranches {
				t := &rd.ContributionTranches[i]
				if strings.HasPrefix(t.ID, "tranche_initial_") {
					return amount * t.Amount / w.WaqfAsset
				}
			}
		}
		if len(w.HybridAllocations) > 0 {
			var total float64
			for _, alloc := range w.HybridAllocations {
				if alloc.Allocations.TemporaryRevolving != nil {
					total += *alloc.Allocations.TemporaryRevolving
				}
			}
			avg := total / float64(len(w.HybridAllocations))
			return amount * avg / 100
		}
		return 0
	}
	return 0
}

// NewTranche builds a locked tranche for the revolving-eligible slice
// of amount. lockOverride, when positive, takes precedence over the
// waqf's default lock period (one month counts as 30 days). Returns nil
// when the slice is zero; the caller logs and skips.
func NewTranche(w *waqf.WaqfData, amount float64, lockOverride *int, nowNanos int64, source string) *waqf.ContributionTranche {
	rd := w.RevolvingDetails
	if rd == nil {
		return nil
	}
	slice := RevolvingSlice(w, amount)
	if slice <= 0 {
		return nil
	}

	lockMonths := rd.LockPeriodMonths
	if lockOverride != nil && *lockOverride > 0 {
		lockMonths = *lockOverride
	}
	maturity := nowNanos + int64(lockMonths)*monthNanos

	return &waqf.ContributionTranche{
		ID:                   fmt.Sprintf("tranche_%s_%d", source, nowNanos),
		Amount:               slice,
		ContributionDate:     formatNanos(nowNanos),
		MaturityDate:         formatNanos(maturity),
		Status:               waqf.TrancheLocked,
		ExpirationPreference: rd.DefaultExpirationPreference,
	}
}

// ReturnOutcome reports what a return request did to the tranche.
type ReturnOutcome struct {
	TrancheID    string  `json:"tranche_id"`
	NetReturn    float64 `json:"net_return"` // amount minus penalty
	Penalty      float64 `json:"penalty"`
	ReleasedNow  float64 `json:"released_now"` // deducted from current_balance by this call
	NewTrancheID string  `json:"new_tranche_id,omitempty"`
	Scheduled    bool    `json:"scheduled,omitempty"` // an installment plan was created instead of a payout
	Early        bool    `json:"early,omitempty"`
}

// MarkReturned processes a return request against the tranche
// identified by trancheID, following the engine's three paths:
// installment scheduling, auto-rollover, or direct payout. Maturity is
// evaluated lazily against nowNanos; nothing is ever scheduled ahead of
// time.
func MarkReturned(w *waqf.WaqfData, trancheID string, nowNanos int64) (*ReturnOutcome, error) {
	rd := w.RevolvingDetails
	if rd == nil {
		return nil, waqf.ErrNotRevolving
	}

	t := rd.Tranche(trancheID)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", waqf.ErrTrancheNotFound, trancheID)
	}
	if t.IsReturned {
		return nil, waqf.ErrAlreadyReturned
	}
	if t.Status == waqf.TrancheRolledOver {
		return nil, waqf.ErrAlreadyRolledOver
	}

	maturity, err := parseNanos(t.MaturityDate)
	if err != nil {
		return nil, errors.New("invalid maturity date format")
	}

	isEarly := nowNanos < maturity
	if isEarly && !rd.EarlyWithdrawalAllowed {
		return nil, fmt.Errorf("%w: tranche matures at %s", waqf.ErrEarlyWithdrawal, t.MaturityDate)
	}

	var penaltyRate float64
	if isEarly && rd.EarlyWithdrawalPenalty != nil {
		penaltyRate = *rd.EarlyWithdrawalPenalty
	}
	penalty := t.Amount * penaltyRate
	if penalty < 0 {
		penalty = 0
	}
	netReturn := t.Amount - penalty
	if netReturn < 0 {
		netReturn = 0
	}

	out := &ReturnOutcome{
		TrancheID: trancheID,
		NetReturn: netReturn,
		Penalty:   penalty,
		Early:     isEarly,
	}

	usesInstallments := rd.PrincipalReturnMethod == waqf.ReturnInstallments && rd.InstallmentSchedule != nil

	switch {
	case usesInstallments:
		if len(t.InstallmentPayments) == 0 {
			t.InstallmentPayments = buildInstallmentPlan(t.ID, netReturn, nowNanos, rd.InstallmentSchedule)
		}
		// Scheduling a payment plan does not itself release funds; each
		// installment is deducted as it is paid.
		t.Status = waqf.TrancheReturnScheduled
		t.IsReturned = false
		t.ReturnedDate = nil
		out.Scheduled = true
		rd.AddNotification(fmt.Sprintf(
			"Installment schedule created for tranche %s. Total to return: %.2f", trancheID, netReturn))

	case !isEarly && rd.AutoRolloverPreference != "" && rd.AutoRolloverPreference != waqf.RolloverNone:
		newID := rollTrancheForward(rd, t, netReturn, rd.LockPeriodMonths, nowNanos)
		out.NewTrancheID = newID
		if rd.AutoRolloverTargetCause != nil {
			rd.AddNotification(fmt.Sprintf(
				"Matured tranche %s rolled over into %s for cause %s", trancheID, newID, *rd.AutoRolloverTargetCause))
		} else {
			rd.AddNotification(fmt.Sprintf(
				"Matured tranche %s rolled over into %s (strategy: %s)", trancheID, newID, rd.AutoRolloverPreference))
		}

	default:
		returned := formatNanos(nowNanos)
		t.Status = waqf.TrancheReturned
		t.IsReturned = true
		t.ReturnedDate = &returned
		out.ReleasedNow = netReturn
		w.Financial.CurrentBalance -= netReturn
		if w.Financial.CurrentBalance < 0 {
			w.Financial.CurrentBalance = 0
		}
	}

	if penalty > 0 {
		t.PenaltyApplied = &penalty
	}
	if isEarly {
		rd.AddNotification(fmt.Sprintf(
			"Early withdrawal processed for tranche %s. Penalty applied: %.2f", trancheID, penalty))
	}

	log.Printf("tranche %s (%.2f) processed for waqf %s: returned=%.2f penalty=%.2f",
		trancheID, t.Amount, w.ID, out.ReleasedNow, penalty)
	return out, nil
}

// rollTrancheForward re-locks net into a successor tranche and marks
// the origin rolled over. The waqf balance is untouched: the funds stay
// in the waqf.
func rollTrancheForward(rd *waqf.RevolvingDetails, origin *waqf.ContributionTranche, net float64, lockMonths int, nowNanos int64) string {
	originID := origin.ID
	newID := fmt.Sprintf("tranche_rollover_%s_%d", originID, nowNanos)
	successor := waqf.ContributionTranche{
		ID:                   newID,
		Amount:               net,
		ContributionDate:     formatNanos(nowNanos),
		MaturityDate:         formatNanos(nowNanos + int64(lockMonths)*monthNanos),
		Status:               waqf.TrancheLocked,
		RolloverOriginID:     &originID,
		ExpirationPreference: origin.ExpirationPreference,
	}
	rd.ContributionTranches = append(rd.ContributionTranches, successor)

	// The append above may have reallocated the tranche slice; re-resolve
	// the origin before mutating it.
	origin = rd.Tranche(originID)
	returned := formatNanos(nowNanos)
	origin.Status = waqf.TrancheRolledOver
	origin.IsReturned = true
	origin.ReturnedDate = &returned
	origin.RolloverTargetID = &newID
	return newID
}

func buildInstallmentPlan(trancheID string, total float64, startNanos int64, schedule *waqf.InstallmentSchedule) []waqf.InstallmentPayment {
	count := schedule.NumberOfInstallments
	if count < 1 {
		count = 1
	}
	intervalNanos := schedule.Frequency.IntervalDays() * dayNanos
	per := total / float64(count)

	payments := make([]waqf.InstallmentPayment, 0, count)
	for i := 0; i < count; i++ {
		payments = append(payments, waqf.InstallmentPayment{
			ID:      fmt.Sprintf("inst_%s_%d", trancheID, i+1),
			Amount:  per,
			DueDate: formatNanos(startNanos + intervalNanos*int64(i+1)),
			Status:  waqf.InstallmentScheduled,
		})
	}
	return payments
}

// Rollover re-locks a matured tranche for an explicit period, with an
// optional target cause recorded in the notification trail.
func Rollover(w *waqf.WaqfData, trancheID string, months int, targetCause *string, nowNanos int64) (string, error) {
	rd := w.RevolvingDetails
	if rd == nil {
		return "", waqf.ErrNotRevolving
	}
	t := rd.Tranche(trancheID)
	if t == nil {
		return "", fmt.Errorf("%w: %s", waqf.ErrTrancheNotFound, trancheID)
	}
	if err := ValidateRollover(t, months, nowNanos); err != nil {
		return "", err
	}

	newID := rollTrancheForward(rd, t, t.Amount, months, nowNanos)
	msg := fmt.Sprintf("Tranche %s manually rolled over for %d months into %s", trancheID, months, newID)
	if targetCause != nil {
		msg += fmt.Sprintf(" (target cause: %s)", *targetCause)
	}
	rd.AddNotification(msg)
	return newID, nil
}

// ValidateRollover rejects a rollover of a returned, already rolled
// over, or unmatured tranche, and bounds the requested period.
func ValidateRollover(t *waqf.ContributionTranche, months int, nowNanos int64) error {
	if t.IsReturned && t.Status != waqf.TrancheRolledOver {
		return waqf.ErrAlreadyReturned
	}
	if t.Status == waqf.TrancheRolledOver {
		return waqf.ErrAlreadyRolledOver
	}

	maturity, err := parseNanos(t.MaturityDate)
	if err != nil {
		return errors.New("invalid maturity date format")
	}
	if nowNanos < maturity {
		return waqf.ErrNotMatured
	}

	if months < minLockMonths {
		return fmt.Errorf("rollover period must be at least %d month", minLockMonths)
	}
	if months > maxLockMonths {
		return fmt.Errorf("rollover period cannot exceed %d months (20 years)", maxLockMonths)
	}
	return nil
}

// ValidateConversion checks that a tranche may be converted into a new
// waqf: not returned, not already converted or rolled over, matured,
// and covered by the waqf's current balance.
func ValidateConversion(t *waqf.ContributionTranche, w *waqf.WaqfData, nowNanos int64) error {
	if t.ConversionDetails != nil {
		return waqf.ErrAlreadyConverted
	}
	if t.Status == waqf.TrancheRolledOver {
		return waqf.ErrAlreadyRolledOver
	}
	if t.IsReturned {
		return waqf.ErrAlreadyReturned
	}

	maturity, err := parseNanos(t.MaturityDate)
	if err != nil {
		return errors.New("invalid maturity date format")
	}
	if nowNanos < maturity {
		days := (maturity - nowNanos) / dayNanos
		return fmt.Errorf("%w: matures in %d days", waqf.ErrNotMatured, days)
	}

	if w.Financial.CurrentBalance < t.Amount {
		return fmt.Errorf("%w: required %.2f, available %.2f",
			waqf.ErrInsufficientFunds, t.Amount, w.Financial.CurrentBalance)
	}
	return nil
}

// Convert spins a matured tranche off into a new permanent or
// consumable waqf. It mutates the source waqf (conversion details,
// balance deduction, notification) and returns the new waqf document
// for the caller to persist.
func Convert(w *waqf.WaqfData, trancheID string, target waqf.Type, consumable *waqf.ConsumableDetails, nowNanos int64) (*waqf.WaqfData, error) {
	rd := w.RevolvingDetails
	if rd == nil {
		return nil, waqf.ErrNotRevolving
	}
	t := rd.Tranche(trancheID)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", waqf.ErrTrancheNotFound, trancheID)
	}
	if err := ValidateConversion(t, w, nowNanos); err != nil {
		return nil, err
	}

	var suffix, notes string
	switch target {
	case waqf.TypePermanent:
		suffix = "Permanent Conversion"
		notes = "Converted to permanent waqf"
	case waqf.TypeTemporaryConsumable:
		if consumable == nil {
			return nil, errors.New("consumable details are required for conversion")
		}
		suffix = "Consumable Conversion"
		notes = "Converted to consumable waqf"
	default:
		return nil, fmt.Errorf("invalid target waqf type in conversion: %s", target)
	}

	now := formatNanos(nowNanos)
	newID := fmt.Sprintf("waqf_converted_%s_%d", trancheID, nowNanos)

	newWaqf := &waqf.WaqfData{
		ID:                   newID,
		Name:                 w.Name + " - " + suffix,
		Description:          "Converted from revolving waqf tranche " + trancheID,
		WaqfAsset:            t.Amount,
		WaqfType:             target,
		ConsumableDetails:    consumable,
		Donor:                w.Donor,
		SelectedCauses:       append([]string(nil), w.SelectedCauses...),
		CauseAllocation:      w.CauseAllocation,
		Status:               waqf.StatusActive,
		Notifications:        w.Notifications,
		ReportingPreferences: w.ReportingPreferences,
		Financial: waqf.FinancialMetrics{
			TotalDonations:    t.Amount,
			CurrentBalance:    t.Amount,
			InvestmentReturns: []float64{},
			CauseAllocations:  map[string]float64{},
		},
		CreatedBy: w.CreatedBy,
		CreatedAt: now,
	}

	t.IsReturned = true
	t.Status = waqf.TrancheReturned
	t.ReturnedDate = &now
	t.ConversionDetails = &waqf.ConversionDetails{
		ConvertedAt:    now,
		NewWaqfID:      newID,
		TargetWaqfType: target,
		Notes:          notes,
	}

	w.Financial.CurrentBalance -= t.Amount
	if w.Financial.CurrentBalance < 0 {
		w.Financial.CurrentBalance = 0
	}
	rd.AddNotification(fmt.Sprintf("Tranche %s (%.2f) converted to %s waqf: %s", trancheID, t.Amount, target, newID))

	return newWaqf, nil
}

// PayInstallment marks one scheduled installment paid and releases its
// amount from the waqf balance. Once every installment is paid the
// tranche itself becomes returned.
func PayInstallment(w *waqf.WaqfData, trancheID, installmentID string, nowNanos int64) (float64, error) {
	rd := w.RevolvingDetails
	if rd == nil {
		return 0, waqf.ErrNotRevolving
	}
	t := rd.Tranche(trancheID)
	if t == nil {
		return 0, fmt.Errorf("%w: %s", waqf.ErrTrancheNotFound, trancheID)
	}

	var payment *waqf.InstallmentPayment
	for i := range t.InstallmentPayments {
		if t.InstallmentPayments[i].ID == installmentID {
			payment = &t.InstallmentPayments[i]
			break
		}
	}
	if payment == nil {
		return 0, fmt.Errorf("installment %s not found on tranche %s", installmentID, trancheID)
	}
	if payment.Status == waqf.InstallmentPaid {
		return 0, fmt.Errorf("installment %s has already been paid", installmentID)
	}

	now := formatNanos(nowNanos)
	payment.Status = waqf.InstallmentPaid
	payment.PaidDate = &now

	w.Financial.CurrentBalance -= payment.Amount
	if w.Financial.CurrentBalance < 0 {
		w.Financial.CurrentBalance = 0
	}

	allPaid := true
	for _, p := range t.InstallmentPayments {
		if p.Status != waqf.InstallmentPaid {
			allPaid = false
			break
		}
	}
	if allPaid {
		t.IsReturned = true
		t.Status = waqf.TrancheReturned
		t.ReturnedDate = &now
	}
	return payment.Amount, nil
}

// MaturedTranches lists tranches past maturity that have not been
// returned and have no return in progress.
func MaturedTranches(w *waqf.WaqfData, nowNanos int64) []waqf.ContributionTranche {
	rd := w.RevolvingDetails
	if rd == nil {
		return nil
	}
	var out []waqf.ContributionTranche
	for _, t := range rd.ContributionTranches {
		maturity, err := parseNanos(t.MaturityDate)
		if err != nil {
			continue
		}
		inProgress := t.Status == waqf.TrancheReturnScheduled || t.Status == waqf.TrancheRolledOver
		if !t.IsReturned && !inProgress && nowNanos >= maturity {
			out = append(out, t)
		}
	}
	return out
}
