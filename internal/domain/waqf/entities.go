package waqf

// Type discriminates the four endowment variants. It decides which
// detail sub-record must (or must not) be present on a WaqfData.
type Type string

const (
	TypePermanent           Type = "permanent"
	TypeTemporaryConsumable Type = "temporary_consumable"
	TypeTemporaryRevolving  Type = "temporary_revolving"
	TypeHybrid              Type = "hybrid"
)

type SpendingSchedule string

const (
	ScheduleImmediate      SpendingSchedule = "immediate"
	SchedulePhased         SpendingSchedule = "phased"
	ScheduleMilestoneBased SpendingSchedule = "milestone-based"
	ScheduleOngoing        SpendingSchedule = "ongoing"
)

func (s SpendingSchedule) Valid() bool {
	switch s {
	case ScheduleImmediate, SchedulePhased, ScheduleMilestoneBased, ScheduleOngoing:
		return true
	}
	return false
}

type ReturnMethod string

const (
	ReturnLumpSum      ReturnMethod = "lump_sum"
	ReturnInstallments ReturnMethod = "installments"
)

type RolloverPreference string

const (
	RolloverNone      RolloverPreference = "none"
	RolloverSameCause RolloverPreference = "same_cause"
	RolloverCausePool RolloverPreference = "cause_pool"
)

type InstallmentFrequency string

const (
	FrequencyMonthly   InstallmentFrequency = "monthly"
	FrequencyQuarterly InstallmentFrequency = "quarterly"
	FrequencyAnnually  InstallmentFrequency = "annually"
)

// IntervalDays is the payout cadence in days; unknown values fall back
// to monthly, matching the original schedule builder.
func (f InstallmentFrequency) IntervalDays() int64 {
	switch f {
	case FrequencyQuarterly:
		return 90
	case FrequencyAnnually:
		return 365
	default:
		return 30
	}
}

type DonorProfile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type NotificationPreferences struct {
	ContributionReminders bool `json:"contribution_reminders"`
	ImpactReports         bool `json:"impact_reports"`
	FinancialUpdates      bool `json:"financial_updates"`
}

type ReportingPreferences struct {
	Frequency      string   `json:"frequency"`       // quarterly | semiannually | yearly
	ReportTypes    []string `json:"report_types"`    // financial | impact
	DeliveryMethod string   `json:"delivery_method"` // email | platform | both
}

type FinancialMetrics struct {
	TotalDonations        float64            `json:"total_donations"`
	TotalDistributed      float64            `json:"total_distributed"`
	CurrentBalance        float64            `json:"current_balance"`
	InvestmentReturns     []float64          `json:"investment_returns"`
	TotalInvestmentReturn float64            `json:"total_investment_return"`
	GrowthRate            float64            `json:"growth_rate"`
	CauseAllocations      map[string]float64 `json:"cause_allocations"`
}

type Milestone struct {
	Description  string  `json:"description"`
	TargetDate   string  `json:"target_date"`
	TargetAmount float64 `json:"target_amount"`
}

type ConsumableDetails struct {
	SpendingSchedule           SpendingSchedule `json:"spending_schedule"`
	StartDate                  *string          `json:"start_date,omitempty"`
	EndDate                    *string          `json:"end_date,omitempty"`
	TargetAmount               *float64         `json:"target_amount,omitempty"`
	TargetBeneficiaries        *int             `json:"target_beneficiaries,omitempty"`
	Milestones                 []Milestone      `json:"milestones,omitempty"`
	MinimumMonthlyDistribution *float64         `json:"minimum_monthly_distribution,omitempty"`
}

type InstallmentSchedule struct {
	Frequency            InstallmentFrequency `json:"frequency"`
	NumberOfInstallments int                  `json:"number_of_installments"`
}

type InstallmentStatus string

const (
	InstallmentScheduled InstallmentStatus = "scheduled"
	InstallmentPaid      InstallmentStatus = "paid"
	InstallmentMissed    InstallmentStatus = "missed"
)

func (s InstallmentStatus) Valid() bool {
	switch s {
	case InstallmentScheduled, InstallmentPaid, InstallmentMissed:
		return true
	}
	return false
}

type InstallmentPayment struct {
	ID       string            `json:"id"`
	Amount   float64           `json:"amount"`
	DueDate  string            `json:"due_date"` // nanosecond epoch, decimal string
	Status   InstallmentStatus `json:"status"`
	PaidDate *string           `json:"paid_date,omitempty"`
}

type ExpirationAction string

const (
	ActionRefund            ExpirationAction = "refund"
	ActionRollover          ExpirationAction = "rollover"
	ActionConvertPermanent  ExpirationAction = "convert_permanent"
	ActionConvertConsumable ExpirationAction = "convert_consumable"
)

// ExpirationPreference is the donor's chosen handling of a tranche once
// it matures.
type ExpirationPreference struct {
	Action              ExpirationAction  `json:"action"`
	RolloverMonths      *int              `json:"rollover_months,omitempty"`
	RolloverTargetCause *string           `json:"rollover_target_cause,omitempty"`
	ConsumableSchedule  *SpendingSchedule `json:"consumable_schedule,omitempty"`
	ConsumableDuration  *int              `json:"consumable_duration,omitempty"`
}

type ConversionDetails struct {
	ConvertedAt    string `json:"converted_at"`
	NewWaqfID      string `json:"new_waqf_id"`
	TargetWaqfType Type   `json:"target_waqf_type"` // permanent | temporary_consumable
	Notes          string `json:"notes,omitempty"`
}

// ContributionTranche is one discrete, separately-maturing slice of a
// revolving waqf's principal. Tranches are append-only: returns,
// rollovers and conversions mutate status fields but never remove the
// record (audit requirement).
type ContributionTranche struct {
	ID                   string                `json:"id"`
	Amount               float64               `json:"amount"`
	ContributionDate     string                `json:"contribution_date"` // nanosecond epoch, decimal string
	MaturityDate         string                `json:"maturity_date"`     // nanosecond epoch, decimal string
	IsReturned           bool                  `json:"is_returned"`
	ReturnedDate         *string               `json:"returned_date,omitempty"`
	Status               TrancheStatus         `json:"status,omitempty"`
	PenaltyApplied       *float64              `json:"penalty_applied,omitempty"`
	RolloverOriginID     *string               `json:"rollover_origin_id,omitempty"`
	RolloverTargetID     *string               `json:"rollover_target_id,omitempty"`
	InstallmentPayments  []InstallmentPayment  `json:"installment_payments,omitempty"`
	ExpirationPreference *ExpirationPreference `json:"expiration_preference,omitempty"`
	ConversionDetails    *ConversionDetails    `json:"conversion_details,omitempty"`
}

type RevolvingDetails struct {
	LockPeriodMonths            int                   `json:"lock_period_months"`
	MaturityDate                string                `json:"maturity_date,omitempty"`
	PrincipalReturnMethod       ReturnMethod          `json:"principal_return_method"`
	InstallmentSchedule         *InstallmentSchedule  `json:"installment_schedule,omitempty"`
	EarlyWithdrawalPenalty      *float64              `json:"early_withdrawal_penalty,omitempty"` // rate in [0,1]
	EarlyWithdrawalAllowed      bool                  `json:"early_withdrawal_allowed"`
	ContributionTranches        []ContributionTranche `json:"contribution_tranches,omitempty"`
	AutoRolloverPreference      RolloverPreference    `json:"auto_rollover_preference,omitempty"`
	AutoRolloverTargetCause     *string               `json:"auto_rollover_target_cause,omitempty"`
	DefaultExpirationPreference *ExpirationPreference `json:"default_expiration_preference,omitempty"`
	PendingNotifications        []string              `json:"pending_notifications,omitempty"`
}

// Tranche looks up a tranche by id, or nil.
func (r *RevolvingDetails) Tranche(id string) *ContributionTranche {
	for i := range r.ContributionTranches {
		if r.ContributionTranches[i].ID == id {
			return &r.ContributionTranches[i]
		}
	}
	return nil
}

// AddNotification appends a human-readable pending notification.
func (r *RevolvingDetails) AddNotification(msg string) {
	r.PendingNotifications = append(r.PendingNotifications, msg)
}

type HybridAllocationSplit struct {
	Permanent           *float64 `json:"permanent,omitempty"`
	TemporaryConsumable *float64 `json:"temporary_consumable,omitempty"`
	TemporaryRevolving  *float64 `json:"temporary_revolving,omitempty"`
}

type HybridCauseAllocation struct {
	CauseID     string                `json:"cause_id"`
	Allocations HybridAllocationSplit `json:"allocations"`
}

// WaqfData is the endowment record. The waqf_asset principal is fixed at
// creation for the life of the record; see the immutability guard.
type WaqfData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	WaqfAsset   float64 `json:"waqf_asset"`

	WaqfType          Type                    `json:"waqf_type"`
	IsHybrid          bool                    `json:"is_hybrid"`
	HybridAllocations []HybridCauseAllocation `json:"hybrid_allocations,omitempty"`
	ConsumableDetails *ConsumableDetails      `json:"consumable_details,omitempty"`
	RevolvingDetails  *RevolvingDetails       `json:"revolving_details,omitempty"`

	Donor           DonorProfile       `json:"donor"`
	SelectedCauses  []string           `json:"selected_causes"`
	CauseAllocation map[string]float64 `json:"cause_allocation,omitempty"` // percentage per cause

	Status               Status                  `json:"status"`
	IsDonated            *bool                   `json:"is_donated,omitempty"`
	Notifications        NotificationPreferences `json:"notifications"`
	ReportingPreferences ReportingPreferences    `json:"reporting_preferences"`
	Financial            FinancialMetrics        `json:"financial"`

	CreatedBy            string  `json:"created_by"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            *string `json:"updated_at,omitempty"`
	LastContributionDate *string `json:"last_contribution_date,omitempty"`
	NextContributionDate *string `json:"next_contribution_date,omitempty"`
	NextReportDate       *string `json:"next_report_date,omitempty"`
}

// IsRevolvingCapable reports whether the waqf carries a revolving
// principal: pure revolving, or a hybrid with revolving details.
func (w *WaqfData) IsRevolvingCapable() bool {
	switch w.WaqfType {
	case TypeTemporaryRevolving:
		return true
	case TypeHybrid:
		return w.RevolvingDetails != nil
	}
	return false
}
