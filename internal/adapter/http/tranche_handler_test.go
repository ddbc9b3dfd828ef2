package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"waqf-platform-backend/internal/domain/docstore"
	"waqf-platform-backend/internal/domain/waqf"
	"waqf-platform-backend/internal/testutil/storemock"
	"waqf-platform-backend/internal/usecase/tranche"

	"github.com/labstack/echo/v4"
)

const trancheTestNow = int64(1_700_000_000_000_000_000)

func seedRevolvingWaqf(t *testing.T, store *storemock.Mem) (string, string) {
	t.Helper()
	lockNanos := int64(6) * 30 * 24 * 3600 * 1_000_000_000
	w := &waqf.WaqfData{
		ID:             "waqf_1",
		Name:           "Revolving Test Waqf",
		WaqfAsset:      500,
		WaqfType:       waqf.TypeTemporaryRevolving,
		SelectedCauses: []string{"education"},
		Status:         waqf.StatusActive,
		Financial:      waqf.FinancialMetrics{TotalDonations: 500, CurrentBalance: 500},
		RevolvingDetails: &waqf.RevolvingDetails{
			LockPeriodMonths:      6,
			PrincipalReturnMethod: waqf.ReturnLumpSum,
			ContributionTranches: []waqf.ContributionTranche{{
				ID:               "tranche_initial_1",
				Amount:           500,
				ContributionDate: strconv.FormatInt(trancheTestNow-lockNanos, 10),
				MaturityDate:     strconv.FormatInt(trancheTestNow-1, 10),
				Status:           waqf.TrancheLocked,
			}},
		},
		CreatedBy: "owner",
		CreatedAt: "1690000000000000000",
	}
	data, err := docstore.Encode(w)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := store.Set(context.Background(), "waqfs", w.ID, docstore.SetDoc{Data: data}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return w.ID, "tranche_initial_1"
}

func newTrancheEnv(t *testing.T) (*echo.Echo, *TrancheHandler, *storemock.Mem, string, string) {
	store := storemock.NewMem()
	waqfID, trancheID := seedRevolvingWaqf(t, store)
	uc := tranche.NewUsecase(store, storemock.NoopLocker{}).
		WithClock(func() int64 { return trancheTestNow })
	return newEchoWithValidator(), NewTrancheHandler(uc), store, waqfID, trancheID
}

func trancheRequest(e *echo.Echo, body string, waqfID, trancheID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(stdhttp.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Caller-Id", "admin")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("waqf_id", "tranche_id")
	c.SetParamValues(waqfID, trancheID)
	return c, rec
}

func TestReturnTranche_OK(t *testing.T) {
	e, h, _, waqfID, trancheID := newTrancheEnv(t)

	c, rec := trancheRequest(e, "", waqfID, trancheID)
	if err := h.ReturnTranche(c); err != nil {
		t.Fatalf("ReturnTranche: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}

	var out tranche.ReturnOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.NetReturn != 500 {
		t.Fatalf("net=%v", out.NetReturn)
	}
}

func TestReturnTranche_SecondReturnConflicts(t *testing.T) {
	e, h, _, waqfID, trancheID := newTrancheEnv(t)

	c, _ := trancheRequest(e, "", waqfID, trancheID)
	if err := h.ReturnTranche(c); err != nil {
		t.Fatalf("first return: %v", err)
	}

	c, rec := trancheRequest(e, "", waqfID, trancheID)
	if err := h.ReturnTranche(c); err != nil {
		t.Fatalf("second return: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestReturnTranche_UnknownWaqf(t *testing.T) {
	e, h, _, _, trancheID := newTrancheEnv(t)

	c, rec := trancheRequest(e, "", "ghost", trancheID)
	if err := h.ReturnTranche(c); err != nil {
		t.Fatalf("ReturnTranche: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestRolloverTranche_ValidatesMonths(t *testing.T) {
	e, h, _, waqfID, trancheID := newTrancheEnv(t)

	c, rec := trancheRequest(e, `{"rollover_months":0}`, waqfID, trancheID)
	if err := h.RolloverTranche(c); err != nil {
		t.Fatalf("RolloverTranche: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRolloverTranche_OK(t *testing.T) {
	e, h, _, waqfID, trancheID := newTrancheEnv(t)

	c, rec := trancheRequest(e, `{"rollover_months":12}`, waqfID, trancheID)
	if err := h.RolloverTranche(c); err != nil {
		t.Fatalf("RolloverTranche: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "tranche_rollover_") {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestConvertTranche_OK(t *testing.T) {
	e, h, store, waqfID, trancheID := newTrancheEnv(t)

	c, rec := trancheRequest(e, `{"target_type":"permanent"}`, waqfID, trancheID)
	if err := h.ConvertTranche(c); err != nil {
		t.Fatalf("ConvertTranche: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := store.Get(context.Background(), "waqfs", resp["new_waqf_id"]); err != nil {
		t.Fatalf("new waqf missing: %v", err)
	}
}

func TestConvertTranche_RejectsUnknownTarget(t *testing.T) {
	e, h, _, waqfID, trancheID := newTrancheEnv(t)

	c, rec := trancheRequest(e, `{"target_type":"galactic"}`, waqfID, trancheID)
	if err := h.ConvertTranche(c); err != nil {
		t.Fatalf("ConvertTranche: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSweepMatured_OK(t *testing.T) {
	e, h, _, waqfID, _ := newTrancheEnv(t)

	c, rec := trancheRequest(e, "", waqfID, "")
	if err := h.SweepMatured(c); err != nil {
		t.Fatalf("SweepMatured: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}

	var result tranche.SweepResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(result.Processed) != 1 {
		t.Fatalf("processed=%v", result.Processed)
	}
}
