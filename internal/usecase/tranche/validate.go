package tranche

import (
	"fmt"

	"waqf-platform-backend/internal/domain/waqf"
)

// ValidateTrancheData checks the structural invariants of a stored
// tranche: positive amount, parseable dates, maturity after
// contribution, and a recognized status.
func ValidateTrancheData(t *waqf.ContributionTranche) error {
	if t.ID == "" {
		return fmt.Errorf("tranche id cannot be empty")
	}
	if t.Amount <= 0 {
		return fmt.Errorf("tranche %s amount must be greater than zero", t.ID)
	}

	contributed, err := parseNanos(t.ContributionDate)
	if err != nil {
		return fmt.Errorf("tranche %s has an invalid contribution date", t.ID)
	}
	maturity, err := parseNanos(t.MaturityDate)
	if err != nil {
		return fmt.Errorf("tranche %s has an invalid maturity date", t.ID)
	}
	if maturity <= contributed {
		return fmt.Errorf("tranche %s maturity date must be after its contribution date", t.ID)
	}

	if t.ReturnedDate != nil && *t.ReturnedDate != "" {
		if _, err := parseNanos(*t.ReturnedDate); err != nil {
			return fmt.Errorf("tranche %s has an invalid returned date", t.ID)
		}
	}

	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("tranche %s has an invalid status: %s", t.ID, t.Status)
	}
	if t.PenaltyApplied != nil && *t.PenaltyApplied < 0 {
		return fmt.Errorf("tranche %s penalty cannot be negative", t.ID)
	}

	for i := range t.InstallmentPayments {
		if err := validateInstallmentPayment(&t.InstallmentPayments[i]); err != nil {
			return fmt.Errorf("tranche %s: %v", t.ID, err)
		}
	}

	if t.ExpirationPreference != nil {
		if err := ValidateExpirationPreference(t.ExpirationPreference); err != nil {
			return fmt.Errorf("tranche %s: %v", t.ID, err)
		}
	}
	if t.ConversionDetails != nil {
		if err := validateConversionDetails(t.ConversionDetails); err != nil {
			return fmt.Errorf("tranche %s: %v", t.ID, err)
		}
	}
	return nil
}

func validateInstallmentPayment(p *waqf.InstallmentPayment) error {
	if p.Amount <= 0 {
		return fmt.Errorf("installment payment %s amount must be positive", p.ID)
	}
	if p.DueDate == "" {
		return fmt.Errorf("installment payment %s is missing its due date", p.ID)
	}
	if _, err := parseNanos(p.DueDate); err != nil {
		return fmt.Errorf("installment payment %s has an invalid due date", p.ID)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("installment payment %s has an invalid status: %s", p.ID, p.Status)
	}
	if p.PaidDate != nil && *p.PaidDate != "" {
		if _, err := parseNanos(*p.PaidDate); err != nil {
			return fmt.Errorf("installment payment %s has an invalid paid date", p.ID)
		}
	}
	return nil
}

func validateConversionDetails(cd *waqf.ConversionDetails) error {
	if cd.ConvertedAt == "" {
		return fmt.Errorf("conversion timestamp cannot be empty")
	}
	if cd.NewWaqfID == "" {
		return fmt.Errorf("conversion is missing the new waqf id")
	}
	switch cd.TargetWaqfType {
	case waqf.TypePermanent, waqf.TypeTemporaryConsumable:
		return nil
	}
	return fmt.Errorf("invalid conversion target type: %s", cd.TargetWaqfType)
}

// ValidateExpirationPreference checks the action-specific constraints
// of an expiration preference.
func ValidateExpirationPreference(p *waqf.ExpirationPreference) error {
	switch p.Action {
	case waqf.ActionRefund, waqf.ActionConvertPermanent:
		return nil
	case waqf.ActionRollover:
		if p.RolloverMonths == nil {
			return fmt.Errorf("rollover preference requires rollover_months")
		}
		if *p.RolloverMonths < minLockMonths || *p.RolloverMonths > maxLockMonths {
			return fmt.Errorf("rollover_months must be between %d and %d", minLockMonths, maxLockMonths)
		}
		return nil
	case waqf.ActionConvertConsumable:
		if p.ConsumableSchedule != nil && !p.ConsumableSchedule.Valid() {
			return fmt.Errorf("invalid consumable schedule: %s", *p.ConsumableSchedule)
		}
		if p.ConsumableDuration != nil {
			if *p.ConsumableDuration < minConsumableDurationMonths || *p.ConsumableDuration > maxConsumableDurationMonths {
				return fmt.Errorf("consumable_duration must be between %d and %d months",
					minConsumableDurationMonths, maxConsumableDurationMonths)
			}
		}
		return nil
	}
	return fmt.Errorf("invalid expiration action: %s", p.Action)
}

// ValidateRevolvingDetails bounds the revolving configuration itself.
func ValidateRevolvingDetails(rd *waqf.RevolvingDetails) error {
	if rd.LockPeriodMonths < minLockMonths {
		return fmt.Errorf("lock period must be at least %d month", minLockMonths)
	}
	if rd.LockPeriodMonths > maxLockMonths {
		return fmt.Errorf("lock period cannot exceed %d months (20 years)", maxLockMonths)
	}

	switch rd.PrincipalReturnMethod {
	case waqf.ReturnLumpSum:
	case waqf.ReturnInstallments:
		if rd.InstallmentSchedule == nil {
			return fmt.Errorf("installment return method requires an installment schedule")
		}
		if rd.InstallmentSchedule.NumberOfInstallments < 1 {
			return fmt.Errorf("installment schedule must have at least one installment")
		}
	default:
		return fmt.Errorf("invalid principal return method: %s", rd.PrincipalReturnMethod)
	}

	if rd.EarlyWithdrawalPenalty != nil {
		if *rd.EarlyWithdrawalPenalty < 0 || *rd.EarlyWithdrawalPenalty > 1 {
			return fmt.Errorf("early withdrawal penalty must be a rate between 0 and 1")
		}
	}

	switch rd.AutoRolloverPreference {
	case "", waqf.RolloverNone, waqf.RolloverSameCause, waqf.RolloverCausePool:
	default:
		return fmt.Errorf("invalid auto rollover preference: %s", rd.AutoRolloverPreference)
	}

	if rd.DefaultExpirationPreference != nil {
		if err := ValidateExpirationPreference(rd.DefaultExpirationPreference); err != nil {
			return err
		}
	}

	for i := range rd.ContributionTranches {
		if err := ValidateTrancheData(&rd.ContributionTranches[i]); err != nil {
			return err
		}
	}
	return nil
}
