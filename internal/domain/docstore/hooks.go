package docstore

import "context"

// SetContext carries a proposed write into the assert hook. The hook
// may rewrite Proposed before the write is committed.
type SetContext struct {
	Collection string
	Key        string
	Caller     string
	Proposed   []byte
	Current    *Document // nil on creation
}

// DeleteContext carries a pending deletion into the assert hook.
type DeleteContext struct {
	Collection string
	Key        string
	Caller     string
	Current    *Document
}

// ChangeContext carries a committed write into the on-set hook.
type ChangeContext struct {
	Collection string
	Key        string
	Caller     string
	Before     *Document // nil on creation
	After      Document
}

// Hook is the per-collection validation and side-effect surface invoked
// around document writes. AssertSet and AssertDelete run pre-commit and
// may veto the operation; OnSet runs post-commit, where failing the
// already-committed write is not possible, so implementations should
// log-and-continue on non-actionable errors.
type Hook interface {
	AssertSet(ctx context.Context, sc *SetContext) error
	AssertDelete(ctx context.Context, dc *DeleteContext) error
	OnSet(ctx context.Context, cc *ChangeContext) error
}
