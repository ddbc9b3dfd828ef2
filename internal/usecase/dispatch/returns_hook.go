package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"waqf-platform-backend/internal/domain/docstore"
	"waqf-platform-backend/internal/usecase/tranche"
)

// ReturnsHook guards the tranche_returns audit collection: records must
// be structurally complete and are append-only.
type ReturnsHook struct{}

func NewReturnsHook() *ReturnsHook { return &ReturnsHook{} }

func (h *ReturnsHook) AssertSet(ctx context.Context, sc *docstore.SetContext) error {
	var req tranche.TrancheReturnRequest
	if err := docstore.Decode(sc.Proposed, &req); err != nil {
		return fmt.Errorf("Invalid tranche return request: %v", err)
	}
	if strings.TrimSpace(req.WaqfID) == "" {
		return fmt.Errorf("return request waqf_id cannot be empty")
	}
	if strings.TrimSpace(req.TrancheID) == "" {
		return fmt.Errorf("return request tranche_id cannot be empty")
	}
	if strings.TrimSpace(req.Timestamp) == "" {
		return fmt.Errorf("return request timestamp cannot be empty")
	}
	return nil
}

// AssertDelete always rejects: the collection is the audit trail.
func (h *ReturnsHook) AssertDelete(ctx context.Context, dc *docstore.DeleteContext) error {
	return errors.New("tranche return records cannot be deleted")
}

func (h *ReturnsHook) OnSet(ctx context.Context, cc *docstore.ChangeContext) error {
	log.Printf("tranche return request recorded: %s by %s", cc.Key, cc.Caller)
	return nil
}
