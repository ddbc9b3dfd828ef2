package http

import (
	"net/http"
	"time"

	"waqf-platform-backend/internal/domain/docstore"
	"waqf-platform-backend/internal/domain/donation"
	"waqf-platform-backend/internal/usecase/dispatch"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// DonationHandler accepts settlement records and writes them through
// the donations hook, which applies the waqf financial update.
type DonationHandler struct{ svc *dispatch.WriteService }

func NewDonationHandler(svc *dispatch.WriteService) *DonationHandler {
	return &DonationHandler{svc: svc}
}

type createDonationReq struct {
	WaqfID           string  `json:"waqf_id" validate:"required"`
	Amount           float64 `json:"amount" validate:"required,gt=0,dec2"`
	Currency         string  `json:"currency" validate:"required,oneof=USD EUR GBP SAR AED"`
	Date             string  `json:"date"`
	TransactionID    *string `json:"transaction_id" validate:"omitempty,max=128"`
	DonorName        *string `json:"donor_name" validate:"omitempty,max=100"`
	LockPeriodMonths *int    `json:"lock_period_months" validate:"omitempty,gte=1,lte=240"`
}

type donationResponse struct {
	ID      string                `json:"id"`
	Version int64                 `json:"version"`
	Record  donation.DonationData `json:"record"`
}

func (h *DonationHandler) CreateDonation(c echo.Context) error {
	var req createDonationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	d := donation.DonationData{
		ID:               uuid.NewString(),
		WaqfID:           req.WaqfID,
		Date:             req.Date,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Status:           donation.StatusCompleted,
		TransactionID:    req.TransactionID,
		DonorName:        req.DonorName,
		LockPeriodMonths: req.LockPeriodMonths,
	}
	if d.Date == "" {
		d.Date = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := docstore.Encode(&d)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "encoding donation"})
	}

	doc, err := h.svc.Set(c.Request().Context(), callerID(c), "donations", d.ID, docstore.SetDoc{Data: data})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, donationResponse{ID: d.ID, Version: doc.Version, Record: d})
}
