package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"waqf-platform-backend/internal/domain/docstore"
	"waqf-platform-backend/internal/domain/waqf"
	"waqf-platform-backend/internal/usecase/dispatch"

	"github.com/labstack/echo/v4"
)

// DocHandler exposes the hook-guarded document surface: raw JSON
// payloads keyed by (collection, key), versioned writes.
type DocHandler struct{ svc *dispatch.WriteService }

func NewDocHandler(svc *dispatch.WriteService) *DocHandler { return &DocHandler{svc: svc} }

type docResponse struct {
	Collection  string          `json:"collection"`
	Key         string          `json:"key"`
	Data        json.RawMessage `json:"data"`
	Version     int64           `json:"version"`
	Description string          `json:"description,omitempty"`
}

func (h *DocHandler) PutDoc(c echo.Context) error {
	collection := c.Param("collection")
	key := c.Param("key")
	caller := callerID(c)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(body) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}

	version, err := parseVersion(c.QueryParam("version"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	doc, err := h.svc.Set(c.Request().Context(), caller, collection, key, docstore.SetDoc{
		Data:        body,
		Description: c.QueryParam("description"),
		Version:     version,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toDocResponse(doc))
}

func (h *DocHandler) GetDoc(c echo.Context) error {
	doc, err := h.svc.Get(c.Request().Context(), c.Param("collection"), c.Param("key"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toDocResponse(doc))
}

func (h *DocHandler) DeleteDoc(c echo.Context) error {
	version, err := parseVersion(c.QueryParam("version"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	err = h.svc.Delete(c.Request().Context(), callerID(c), c.Param("collection"), c.Param("key"), version)
	if err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DocHandler) ListDocs(c echo.Context) error {
	docs, err := h.svc.List(c.Request().Context(), c.Param("collection"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]docResponse, 0, len(docs))
	for i := range docs {
		out = append(out, toDocResponse(&docs[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func toDocResponse(doc *docstore.Document) docResponse {
	return docResponse{
		Collection:  doc.Collection,
		Key:         doc.Key,
		Data:        json.RawMessage(doc.Data),
		Version:     doc.Version,
		Description: doc.Description,
	}
}

func callerID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get("X-Caller-Id"))
}

func parseVersion(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, errors.New("version must be a non-negative integer")
	}
	return v, nil
}

// writeError maps domain failures to HTTP statuses: missing documents
// are 404, optimistic-version losses 409, everything else from the
// hooks is a validation failure.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound), errors.Is(err, waqf.ErrNotFound),
		errors.Is(err, waqf.ErrTrancheNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, docstore.ErrVersionConflict),
		errors.Is(err, waqf.ErrAlreadyReturned),
		errors.Is(err, waqf.ErrAlreadyRolledOver),
		errors.Is(err, waqf.ErrAlreadyConverted):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
}
