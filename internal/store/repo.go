package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Document names. Each is persisted as one flat JSON value.
const (
	DocAdmins     = "admin_users"
	DocAuthorized = "authorized_users"
	DocChecklist  = "checklist"
	DocGroups     = "user_groups"
)

// ErrNotFound is returned by Backend.Read for a document that was never written.
var ErrNotFound = errors.New("document not found")

// Backend persists whole documents by name.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	// WriteAll replaces every given document. Backends that can, apply the
	// batch atomically; others return *PartialWriteError when some but not
	// all documents were written.
	WriteAll(ctx context.Context, docs map[string][]byte) error
	Close() error
}

// PartialWriteError reports a batch that was only partly persisted.
type PartialWriteError struct {
	Written []string
	Failed  string
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %s failed after [%s]: %v",
		e.Failed, strings.Join(e.Written, ", "), e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
