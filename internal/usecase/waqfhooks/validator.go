package waqfhooks

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"waqf-platform-backend/internal/domain/waqf"
	"waqf-platform-backend/internal/usecase/tranche"
)

const (
	minNameLen        = 2
	maxNameLen        = 100
	minDescriptionLen = 10
	maxDescriptionLen = 2000

	minWaqfAsset = 100.0
	maxWaqfAsset = 1_000_000_000.0

	minPhoneLen   = 10
	maxPhoneLen   = 20
	minAddressLen = 10
	maxAddressLen = 200

	balanceTolerance    = 0.01
	allocationTolerance = 0.01
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var (
	validReportFrequencies = []string{"quarterly", "semiannually", "yearly"}
	validReportTypes       = []string{"financial", "impact"}
	validDeliveryMethods   = []string{"email", "platform", "both"}
)

// FieldError ties one validation violation to the field that caused it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult collects every violation found in one pass, plus
// non-fatal warnings, so callers see the full picture instead of the
// first failure.
type ValidationResult struct {
	Errors   []FieldError `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

func (r *ValidationResult) addError(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

func (r *ValidationResult) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Err flattens the collected violations into a single error, or nil.
func (r *ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return fmt.Errorf("waqf validation failed: %s", strings.Join(parts, "; "))
}

// Validator holds the tunable parts of waqf validation.
type Validator struct {
	// EnforceHybridSums upgrades the hybrid per-cause 100% sum check
	// from a warning to an error.
	EnforceHybridSums bool
}

func NewValidator(enforceHybridSums bool) *Validator {
	return &Validator{EnforceHybridSums: enforceHybridSums}
}

// ValidateData runs the full field-level validation over a proposed
// waqf record. prev is the stored record for updates, nil on creation.
func (v *Validator) ValidateData(w, prev *waqf.WaqfData) *ValidationResult {
	res := &ValidationResult{}

	name := strings.TrimSpace(w.Name)
	if len(name) < minNameLen {
		res.addError("name", fmt.Sprintf("must be at least %d characters", minNameLen))
	} else if len(name) > maxNameLen {
		res.addError("name", fmt.Sprintf("cannot exceed %d characters", maxNameLen))
	}

	desc := strings.TrimSpace(w.Description)
	if len(desc) < minDescriptionLen {
		res.addError("description", fmt.Sprintf("must be at least %d characters", minDescriptionLen))
	} else if len(desc) > maxDescriptionLen {
		res.addError("description", fmt.Sprintf("cannot exceed %d characters", maxDescriptionLen))
	}

	if w.WaqfAsset < minWaqfAsset {
		res.addError("waqf_asset", fmt.Sprintf("must be at least %.0f", minWaqfAsset))
	} else if w.WaqfAsset > maxWaqfAsset {
		res.addError("waqf_asset", fmt.Sprintf("cannot exceed %.0f", maxWaqfAsset))
	}

	v.validateDonor(&w.Donor, res)

	if len(w.SelectedCauses) == 0 {
		res.addError("selected_causes", "at least one cause must be selected")
	}
	if len(w.CauseAllocation) > 0 {
		var sum float64
		for cause, pct := range w.CauseAllocation {
			if pct < 0 {
				res.addError("cause_allocation", fmt.Sprintf("allocation for %s cannot be negative", cause))
			}
			sum += pct
		}
		if math.Abs(sum-100) > allocationTolerance {
			res.addError("cause_allocation", fmt.Sprintf("percentages must sum to 100, got %.2f", sum))
		}
	}

	if !w.Status.Valid() {
		res.addError("status", fmt.Sprintf("invalid status %q, must be one of %v", w.Status, waqf.ValidStatuses()))
	}
	if prev != nil && !prev.Status.CanTransitionTo(w.Status) {
		res.addError("status", fmt.Sprintf("cannot transition from %s to %s", prev.Status, w.Status))
	}

	if w.CreatedBy == "" {
		res.addError("created_by", "cannot be empty")
	}
	if w.CreatedAt == "" {
		res.addError("created_at", "cannot be empty")
	}

	v.validateReporting(&w.ReportingPreferences, res)
	v.validateFinancial(&w.Financial, res)

	if w.WaqfType == waqf.TypeHybrid && !v.EnforceHybridSums {
		for _, alloc := range w.HybridAllocations {
			if sum := hybridSplitSum(&alloc.Allocations); math.Abs(sum-100) > allocationTolerance {
				res.addWarning(fmt.Sprintf("hybrid allocation percentages for %s sum to %.2f, expected 100", alloc.CauseID, sum))
			}
		}
	}

	return res
}

func (v *Validator) validateDonor(d *waqf.DonorProfile, res *ValidationResult) {
	if strings.TrimSpace(d.Name) == "" {
		res.addError("donor.name", "cannot be empty")
	}
	if !emailPattern.MatchString(d.Email) {
		res.addError("donor.email", "is not a valid email address")
	}
	if n := len(d.Phone); n < minPhoneLen || n > maxPhoneLen {
		res.addError("donor.phone", fmt.Sprintf("must be between %d and %d characters", minPhoneLen, maxPhoneLen))
	}
	if n := len(d.Address); n < minAddressLen || n > maxAddressLen {
		res.addError("donor.address", fmt.Sprintf("must be between %d and %d characters", minAddressLen, maxAddressLen))
	}
}

func (v *Validator) validateReporting(p *waqf.ReportingPreferences, res *ValidationResult) {
	if p.Frequency != "" && !contains(validReportFrequencies, p.Frequency) {
		res.addError("reporting_preferences.frequency",
			fmt.Sprintf("must be one of %v", validReportFrequencies))
	}
	for _, t := range p.ReportTypes {
		if !contains(validReportTypes, t) {
			res.addError("reporting_preferences.report_types",
				fmt.Sprintf("invalid report type %q, must be one of %v", t, validReportTypes))
		}
	}
	if p.DeliveryMethod != "" && !contains(validDeliveryMethods, p.DeliveryMethod) {
		res.addError("reporting_preferences.delivery_method",
			fmt.Sprintf("must be one of %v", validDeliveryMethods))
	}
}

func (v *Validator) validateFinancial(f *waqf.FinancialMetrics, res *ValidationResult) {
	if f.TotalDonations < 0 {
		res.addError("financial.total_donations", "cannot be negative")
	}
	if f.TotalDistributed < 0 {
		res.addError("financial.total_distributed", "cannot be negative")
	}
	if f.CurrentBalance < 0 {
		res.addError("financial.current_balance", "cannot be negative")
	}

	expected := f.TotalDonations - f.TotalDistributed + f.TotalInvestmentReturn
	if math.Abs(expected-f.CurrentBalance) > balanceTolerance {
		res.addError("financial.current_balance",
			fmt.Sprintf("does not match donations minus distributions plus returns (expected %.2f, got %.2f)",
				expected, f.CurrentBalance))
	}
}

// ValidateTypeDetails enforces the type-and-details matrix: each
// variant carries exactly the detail sub-records it needs and none it
// must not have.
func (v *Validator) ValidateTypeDetails(w *waqf.WaqfData) error {
	switch w.WaqfType {
	case waqf.TypePermanent:
		if w.IsHybrid {
			return fmt.Errorf("permanent waqf cannot be hybrid")
		}
		if w.ConsumableDetails != nil {
			return fmt.Errorf("permanent waqf cannot have consumable details")
		}
		if w.RevolvingDetails != nil {
			return fmt.Errorf("permanent waqf cannot have revolving details")
		}

	case waqf.TypeTemporaryConsumable:
		if w.ConsumableDetails == nil {
			return fmt.Errorf("consumable waqf requires consumable details")
		}
		if w.RevolvingDetails != nil {
			return fmt.Errorf("consumable waqf cannot have revolving details")
		}
		if err := validateConsumableDetails(w.ConsumableDetails); err != nil {
			return err
		}

	case waqf.TypeTemporaryRevolving:
		if w.RevolvingDetails == nil {
			return fmt.Errorf("revolving waqf requires revolving details")
		}
		if w.ConsumableDetails != nil {
			return fmt.Errorf("revolving waqf cannot have consumable details")
		}
		if err := tranche.ValidateRevolvingDetails(w.RevolvingDetails); err != nil {
			return err
		}

	case waqf.TypeHybrid:
		if !w.IsHybrid {
			return fmt.Errorf("hybrid waqf type requires the is_hybrid flag")
		}
		if len(w.HybridAllocations) == 0 {
			return fmt.Errorf("hybrid waqf requires hybrid allocations")
		}
		if err := v.validateHybridAllocations(w); err != nil {
			return err
		}
		if w.RevolvingDetails != nil {
			if err := tranche.ValidateRevolvingDetails(w.RevolvingDetails); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("invalid waqf type: %s", w.WaqfType)
	}

	if !w.IsHybrid && len(w.HybridAllocations) > 0 {
		return fmt.Errorf("non-hybrid waqf cannot have hybrid allocations")
	}
	return nil
}

func validateConsumableDetails(d *waqf.ConsumableDetails) error {
	if !d.SpendingSchedule.Valid() {
		return fmt.Errorf("invalid spending schedule: %s", d.SpendingSchedule)
	}

	switch d.SpendingSchedule {
	case waqf.ScheduleMilestoneBased:
		if len(d.Milestones) == 0 {
			return fmt.Errorf("milestone-based spending requires at least one milestone")
		}
	case waqf.SchedulePhased:
		if d.StartDate == nil && d.EndDate == nil && d.MinimumMonthlyDistribution == nil {
			return fmt.Errorf("phased spending requires time boundaries or a minimum monthly distribution")
		}
	case waqf.ScheduleOngoing:
		if d.MinimumMonthlyDistribution == nil && d.TargetAmount == nil && d.TargetBeneficiaries == nil {
			return fmt.Errorf("ongoing spending requires a minimum monthly distribution or target criteria")
		}
	}

	if d.StartDate != nil && d.EndDate != nil && (*d.StartDate == "" || *d.EndDate == "") {
		return fmt.Errorf("consumable start and end dates cannot be empty")
	}
	if d.TargetAmount != nil && *d.TargetAmount <= 0 {
		return fmt.Errorf("target amount must be positive")
	}
	if d.TargetBeneficiaries != nil && *d.TargetBeneficiaries < 1 {
		return fmt.Errorf("target beneficiaries must be at least 1")
	}
	if d.MinimumMonthlyDistribution != nil && *d.MinimumMonthlyDistribution <= 0 {
		return fmt.Errorf("minimum monthly distribution must be positive")
	}
	return nil
}

func (v *Validator) validateHybridAllocations(w *waqf.WaqfData) error {
	for _, alloc := range w.HybridAllocations {
		if alloc.CauseID == "" {
			return fmt.Errorf("hybrid allocation is missing its cause id")
		}
		for _, pct := range []*float64{
			alloc.Allocations.Permanent,
			alloc.Allocations.TemporaryConsumable,
			alloc.Allocations.TemporaryRevolving,
		} {
			if pct != nil && (*pct < 0 || *pct > 100) {
				return fmt.Errorf("hybrid allocation for %s has a percentage outside 0-100", alloc.CauseID)
			}
		}
		if sum := hybridSplitSum(&alloc.Allocations); v.EnforceHybridSums && math.Abs(sum-100) > allocationTolerance {
			return fmt.Errorf("hybrid allocation percentages for %s must sum to 100, got %.2f", alloc.CauseID, sum)
		}
	}
	return nil
}

func hybridSplitSum(s *waqf.HybridAllocationSplit) float64 {
	var sum float64
	for _, pct := range []*float64{s.Permanent, s.TemporaryConsumable, s.TemporaryRevolving} {
		if pct != nil {
			sum += *pct
		}
	}
	return sum
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
