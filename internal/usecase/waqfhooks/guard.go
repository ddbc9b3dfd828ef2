package waqfhooks

import (
	"fmt"
	"log"
	"reflect"
	"strings"

	"waqf-platform-backend/internal/domain/waqf"
)

// CheckFieldRestrictions enforces the two-tier write guard on updates.
//
// Tier one, for every caller: waqf_asset, created_by and created_at are
// frozen at creation and may never change.
//
// Tier two, for the creator only: a restricted set of operational
// fields is off limits, unless the update touches nothing but the
// financial block (the system stamping donation proceeds acts under the
// creator's identity).
func CheckFieldRestrictions(prev, next *waqf.WaqfData, caller string) error {
	if violated := immutableViolations(prev, next); len(violated) > 0 {
		log.Printf("SECURITY VIOLATION: caller %s attempted to modify immutable fields %v on waqf %s",
			caller, violated, prev.ID)
		return fmt.Errorf("%w: FORBIDDEN: %s cannot be modified after creation",
			waqf.ErrImmutableField, strings.Join(violated, ", "))
	}

	if caller != prev.CreatedBy {
		return nil
	}

	changed := restrictedChanges(prev, next)
	if len(changed) == 0 {
		return nil
	}

	if isFinancialOnlyUpdate(prev, next) {
		log.Printf("financial-only update to waqf %s by creator %s allowed", prev.ID, caller)
		return nil
	}

	return fmt.Errorf("%w: %s", waqf.ErrRestrictedField, strings.Join(changed, ", "))
}

func immutableViolations(prev, next *waqf.WaqfData) []string {
	var violated []string
	if next.WaqfAsset != prev.WaqfAsset {
		violated = append(violated, "waqf_asset")
	}
	if next.CreatedBy != prev.CreatedBy {
		violated = append(violated, "created_by")
	}
	if next.CreatedAt != prev.CreatedAt {
		violated = append(violated, "created_at")
	}
	return violated
}

// restrictedChanges lists creator-restricted fields that differ between
// the stored and proposed records.
func restrictedChanges(prev, next *waqf.WaqfData) []string {
	var changed []string

	if !reflect.DeepEqual(prev.SelectedCauses, next.SelectedCauses) {
		changed = append(changed, "selected_causes")
	}
	if prev.Status != next.Status {
		changed = append(changed, "status")
	}
	if !reflect.DeepEqual(prev.IsDonated, next.IsDonated) {
		changed = append(changed, "is_donated")
	}
	if prev.Notifications != next.Notifications {
		changed = append(changed, "notifications")
	}
	if !reflect.DeepEqual(prev.ReportingPreferences, next.ReportingPreferences) {
		changed = append(changed, "reporting_preferences")
	}
	if !reflect.DeepEqual(prev.Financial, next.Financial) {
		changed = append(changed, "financial")
	}
	if !reflect.DeepEqual(prev.LastContributionDate, next.LastContributionDate) {
		changed = append(changed, "last_contribution_date")
	}
	if !reflect.DeepEqual(prev.NextContributionDate, next.NextContributionDate) {
		changed = append(changed, "next_contribution_date")
	}
	if !reflect.DeepEqual(prev.NextReportDate, next.NextReportDate) {
		changed = append(changed, "next_report_date")
	}
	return changed
}

// isFinancialOnlyUpdate reports whether the proposed record differs
// from the stored one only in the financial block, the contribution
// timestamps, the revolving tranche state and updated_at. Donation
// processing produces exactly this shape.
func isFinancialOnlyUpdate(prev, next *waqf.WaqfData) bool {
	p, n := *prev, *next

	p.Financial, n.Financial = waqf.FinancialMetrics{}, waqf.FinancialMetrics{}
	p.LastContributionDate, n.LastContributionDate = nil, nil
	p.NextContributionDate, n.NextContributionDate = nil, nil
	p.UpdatedAt, n.UpdatedAt = nil, nil
	p.RevolvingDetails, n.RevolvingDetails = nil, nil

	return reflect.DeepEqual(p, n)
}
