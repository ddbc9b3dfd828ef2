package donation

// Status of a donation settlement record.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusFailed:
		return true
	}
	return false
}

// ValidCurrencies is the settlement currency allow-list.
var ValidCurrencies = []string{"USD", "EUR", "GBP", "SAR", "AED"}

func ValidCurrency(code string) bool {
	for _, c := range ValidCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// DonationData is an immutable settlement record. It is read-only input
// to the financial updater: processing a donation never mutates the
// donation document itself.
type DonationData struct {
	ID            string  `json:"id"`
	WaqfID        string  `json:"waqf_id"`
	Date          string  `json:"date"` // ISO timestamp
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        Status  `json:"status"`
	TransactionID *string `json:"transaction_id,omitempty"`
	DonorName     *string `json:"donor_name,omitempty"`

	// LockPeriodMonths overrides the waqf's default lock period for the
	// tranche created from this donation.
	LockPeriodMonths *int `json:"lock_period_months,omitempty"`
}
