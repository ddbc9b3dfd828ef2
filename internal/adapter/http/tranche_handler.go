package http

import (
	"net/http"

	"waqf-platform-backend/internal/domain/waqf"
	"waqf-platform-backend/internal/usecase/tranche"

	"github.com/labstack/echo/v4"
)

// TrancheHandler exposes the revolving-fund lifecycle: returns,
// rollovers, conversions, installment payouts and the maturity sweep.
type TrancheHandler struct{ uc *tranche.Usecase }

func NewTrancheHandler(uc *tranche.Usecase) *TrancheHandler { return &TrancheHandler{uc: uc} }

func (h *TrancheHandler) ReturnTranche(c echo.Context) error {
	out, err := h.uc.Return(c.Request().Context(), callerID(c), c.Param("waqf_id"), c.Param("tranche_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type rolloverReq struct {
	RolloverMonths int     `json:"rollover_months" validate:"required,gte=1,lte=240"`
	TargetCause    *string `json:"target_cause" validate:"omitempty,max=128"`
}

func (h *TrancheHandler) RolloverTranche(c echo.Context) error {
	var req rolloverReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	newID, err := h.uc.Rollover(c.Request().Context(), callerID(c),
		c.Param("waqf_id"), c.Param("tranche_id"), req.RolloverMonths, req.TargetCause)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"new_tranche_id": newID})
}

type convertReq struct {
	TargetType        string                  `json:"target_type" validate:"required,oneof=permanent temporary_consumable"`
	ConsumableDetails *waqf.ConsumableDetails `json:"consumable_details"`
}

func (h *TrancheHandler) ConvertTranche(c echo.Context) error {
	var req convertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	newWaqfID, err := h.uc.Convert(c.Request().Context(), callerID(c),
		c.Param("waqf_id"), c.Param("tranche_id"), waqf.Type(req.TargetType), req.ConsumableDetails)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"new_waqf_id": newWaqfID})
}

type payInstallmentReq struct {
	InstallmentID string `json:"installment_id" validate:"required"`
}

func (h *TrancheHandler) PayInstallment(c echo.Context) error {
	var req payInstallmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	released, err := h.uc.PayInstallment(c.Request().Context(), callerID(c),
		c.Param("waqf_id"), c.Param("tranche_id"), req.InstallmentID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]float64{"released": released})
}

func (h *TrancheHandler) SweepMatured(c echo.Context) error {
	result, err := h.uc.Sweep(c.Request().Context(), callerID(c), c.Param("waqf_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
