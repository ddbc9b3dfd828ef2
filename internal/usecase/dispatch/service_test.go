package dispatch

import (
	"context"
	"errors"
	"testing"

	"waqf-platform-backend/internal/domain/docstore"
	"waqf-platform-backend/internal/testutil/storemock"
)

// rewriteHook swaps the proposed payload in assert and records calls.
type rewriteHook struct {
	assertErr error
	onSetErr  error
	rewrite   []byte

	asserts int
	onSets  int
	deletes int
}

func (h *rewriteHook) AssertSet(ctx context.Context, sc *docstore.SetContext) error {
	h.asserts++
	if h.assertErr != nil {
		return h.assertErr
	}
	if h.rewrite != nil {
		sc.Proposed = h.rewrite
	}
	return nil
}

func (h *rewriteHook) AssertDelete(ctx context.Context, dc *docstore.DeleteContext) error {
	h.deletes++
	return h.assertErr
}

func (h *rewriteHook) OnSet(ctx context.Context, cc *docstore.ChangeContext) error {
	h.onSets++
	return h.onSetErr
}

func TestSet_CommitsRewrittenPayload(t *testing.T) {
	store := storemock.NewMem()
	svc := NewWriteService(store)
	hook := &rewriteHook{rewrite: []byte(`{"rewritten":true}`)}
	svc.Register("waqfs", hook)

	doc, err := svc.Set(context.Background(), "owner", "waqfs", "w1", docstore.SetDoc{Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if string(doc.Data) != `{"rewritten":true}` {
		t.Fatalf("data=%s", doc.Data)
	}
	if hook.asserts != 1 || hook.onSets != 1 {
		t.Fatalf("asserts=%d onSets=%d", hook.asserts, hook.onSets)
	}

	stored, err := store.Get(context.Background(), "waqfs", "w1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(stored.Data) != `{"rewritten":true}` {
		t.Fatalf("stored=%s", stored.Data)
	}
}

func TestSet_AssertVetoSkipsCommit(t *testing.T) {
	store := storemock.NewMem()
	svc := NewWriteService(store)
	veto := errors.New("nope")
	hook := &rewriteHook{assertErr: veto}
	svc.Register("waqfs", hook)

	_, err := svc.Set(context.Background(), "owner", "waqfs", "w1", docstore.SetDoc{Data: []byte(`{}`)})
	if !errors.Is(err, veto) {
		t.Fatalf("err=%v", err)
	}
	if hook.onSets != 0 {
		t.Fatal("on_set must not run after a veto")
	}
	if _, err := store.Get(context.Background(), "waqfs", "w1"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("document should not exist: %v", err)
	}
}

func TestSet_VersionConflictSurfaces(t *testing.T) {
	store := storemock.NewMem()
	svc := NewWriteService(store)

	if _, err := svc.Set(context.Background(), "owner", "waqfs", "w1", docstore.SetDoc{Data: []byte(`{"a":1}`)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Set(context.Background(), "owner", "waqfs", "w1", docstore.SetDoc{Data: []byte(`{"a":2}`), Version: 7})
	if !errors.Is(err, docstore.ErrVersionConflict) {
		t.Fatalf("err=%v", err)
	}
}

func TestSet_UnhookedCollectionPassesThrough(t *testing.T) {
	svc := NewWriteService(storemock.NewMem())
	doc, err := svc.Set(context.Background(), "owner", "notes", "n1", docstore.SetDoc{Data: []byte(`{"x":1}`)})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if doc.Version != 1 {
		t.Fatalf("version=%d", doc.Version)
	}
}

func TestDelete_RoutesThroughHook(t *testing.T) {
	store := storemock.NewMem()
	svc := NewWriteService(store)
	veto := errors.New("audit trail")
	hook := &rewriteHook{assertErr: veto}
	svc.Register("tranche_returns", hook)

	if _, err := store.Set(context.Background(), "tranche_returns", "r1", docstore.SetDoc{Data: []byte(`{}`)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := svc.Delete(context.Background(), "admin", "tranche_returns", "r1", 1)
	if !errors.Is(err, veto) {
		t.Fatalf("err=%v", err)
	}
	if _, err := store.Get(context.Background(), "tranche_returns", "r1"); err != nil {
		t.Fatal("document should survive the veto")
	}
}

func TestReturnsHook_AppendOnly(t *testing.T) {
	h := NewReturnsHook()

	sc := &docstore.SetContext{
		Collection: "tranche_returns", Key: "r1",
		Proposed: []byte(`{"waqf_id":"w1","tranche_id":"t1","requested_by":"admin","timestamp":"1700000000000000000"}`),
	}
	if err := h.AssertSet(context.Background(), sc); err != nil {
		t.Fatalf("AssertSet: %v", err)
	}

	sc.Proposed = []byte(`{"waqf_id":"","tranche_id":"t1","timestamp":"1"}`)
	if err := h.AssertSet(context.Background(), sc); err == nil {
		t.Fatal("expected rejection of empty waqf_id")
	}

	if err := h.AssertDelete(context.Background(), &docstore.DeleteContext{Key: "r1"}); err == nil {
		t.Fatal("deletes must be rejected")
	}
}
