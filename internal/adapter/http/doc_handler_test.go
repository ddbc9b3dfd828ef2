package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"waqf-platform-backend/internal/testutil/storemock"
	"waqf-platform-backend/internal/usecase/dispatch"

	"github.com/labstack/echo/v4"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func newDocEnv() (*echo.Echo, *DocHandler, *storemock.Mem) {
	store := storemock.NewMem()
	svc := dispatch.NewWriteService(store)
	return newEchoWithValidator(), NewDocHandler(svc), store
}

func docRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	rd := strings.NewReader(body)
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Caller-Id", "owner")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// -------- tests --------

func TestPutDoc_CreateAndGet(t *testing.T) {
	e, h, _ := newDocEnv()

	c, rec := docRequest(e, stdhttp.MethodPut, "/", `{"note":"hello"}`)
	c.SetParamNames("collection", "key")
	c.SetParamValues("notes", "n1")
	if err := h.PutDoc(c); err != nil {
		t.Fatalf("PutDoc: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Version != 1 {
		t.Fatalf("version=%d", resp.Version)
	}

	c, rec = docRequest(e, stdhttp.MethodGet, "/", "")
	c.SetParamNames("collection", "key")
	c.SetParamValues("notes", "n1")
	if err := h.GetDoc(c); err != nil {
		t.Fatalf("GetDoc: %v", err)
	}
	if rec.Code != stdhttp.StatusOK || !strings.Contains(rec.Body.String(), "hello") {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPutDoc_StaleVersionConflicts(t *testing.T) {
	e, h, _ := newDocEnv()

	c, _ := docRequest(e, stdhttp.MethodPut, "/", `{"a":1}`)
	c.SetParamNames("collection", "key")
	c.SetParamValues("notes", "n1")
	if err := h.PutDoc(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	c, rec := docRequest(e, stdhttp.MethodPut, "/?version=9", `{"a":2}`)
	c.SetParamNames("collection", "key")
	c.SetParamValues("notes", "n1")
	if err := h.PutDoc(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetDoc_Missing(t *testing.T) {
	e, h, _ := newDocEnv()
	c, rec := docRequest(e, stdhttp.MethodGet, "/", "")
	c.SetParamNames("collection", "key")
	c.SetParamValues("notes", "ghost")
	if err := h.GetDoc(c); err != nil {
		t.Fatalf("GetDoc: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestDeleteDoc(t *testing.T) {
	e, h, _ := newDocEnv()

	c, _ := docRequest(e, stdhttp.MethodPut, "/", `{"a":1}`)
	c.SetParamNames("collection", "key")
	c.SetParamValues("notes", "n1")
	if err := h.PutDoc(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	c, rec := docRequest(e, stdhttp.MethodDelete, "/?version=1", "")
	c.SetParamNames("collection", "key")
	c.SetParamValues("notes", "n1")
	if err := h.DeleteDoc(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPutDoc_EmptyBody(t *testing.T) {
	e, h, _ := newDocEnv()
	c, rec := docRequest(e, stdhttp.MethodPut, "/", "")
	c.SetParamNames("collection", "key")
	c.SetParamValues("notes", "n1")
	if err := h.PutDoc(c); err != nil {
		t.Fatalf("PutDoc: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("code=%d", rec.Code)
	}
}
