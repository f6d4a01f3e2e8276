package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/domain"
)

// Defaults supplies document values used when a document is absent or malformed.
type Defaults struct {
	Groups domain.Groups
}

// Store is the single writable in-memory copy of all documents.
// Mutations go through Update, which persists changed documents before returning.
type Store struct {
	backend Backend
	log     *zap.Logger

	mu         sync.Mutex
	admins     domain.IDSet
	authorized domain.IDSet
	checklist  domain.Checklist
	groups     domain.Groups
}

// PersistError means the in-memory change was applied but could not be written.
type PersistError struct {
	Docs []string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist [%s]: %v", strings.Join(e.Docs, ", "), e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsPersistError reports whether err came from a failed write after a successful mutation.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}

// Load reads every document from backend once, falling back to defaults.
func Load(ctx context.Context, backend Backend, log *zap.Logger, def Defaults) (*Store, error) {
	s := &Store{backend: backend, log: log}

	var err error
	if s.admins, err = loadDoc[domain.IDSet](ctx, s, DocAdmins); err != nil {
		return nil, err
	}
	if s.authorized, err = loadDoc[domain.IDSet](ctx, s, DocAuthorized); err != nil {
		return nil, err
	}
	if s.checklist, err = loadDoc[domain.Checklist](ctx, s, DocChecklist); err != nil {
		return nil, err
	}
	if s.groups, err = loadDoc[domain.Groups](ctx, s, DocGroups); err != nil {
		return nil, err
	}

	if s.admins == nil {
		s.admins = domain.IDSet{}
	}
	if s.authorized == nil {
		s.authorized = domain.IDSet{}
	}
	if s.checklist == nil {
		s.checklist = domain.Checklist{}
	}
	if s.groups == nil {
		s.groups = def.Groups.Clone()
		if s.groups == nil {
			s.groups = domain.Groups{}
		}
	}
	s.dropInvalidSlots()

	log.Info("documents loaded",
		zap.Int("admins", len(s.admins)),
		zap.Int("authorized", len(s.authorized)),
		zap.Int("items", len(s.checklist)),
		zap.Int("groups", len(s.groups)),
	)
	return s, nil
}

// loadDoc decodes one document. Absent and malformed documents yield the
// zero value so the caller substitutes the default; a partial decode is
// never kept.
func loadDoc[T any](ctx context.Context, s *Store, name string) (T, error) {
	var zero T
	data, err := s.backend.Read(ctx, name)
	if errors.Is(err, ErrNotFound) {
		s.log.Info("document absent, using default", zap.String("doc", name))
		return zero, nil
	}
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", name, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.log.Warn("document malformed, using default", zap.String("doc", name), zap.Error(err))
		return zero, nil
	}
	return v, nil
}

func (s *Store) dropInvalidSlots() {
	for name, grp := range s.groups {
		valid := grp.Schedules[:0]
		for _, slot := range grp.Schedules {
			if err := slot.Validate(); err != nil {
				s.log.Warn("dropping invalid schedule entry", zap.String("group", name), zap.Error(err))
				continue
			}
			valid = append(valid, slot)
		}
		grp.Schedules = valid
		if grp.Users == nil {
			grp.Users = domain.IDSet{}
		}
		s.groups[name] = grp
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Admins returns a copy of the admin set.
func (s *Store) Admins() domain.IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admins.Clone()
}

// Authorized returns a copy of the authorized-user set.
func (s *Store) Authorized() domain.IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authorized.Clone()
}

// Checklist returns a copy of the checklist.
func (s *Store) Checklist() domain.Checklist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checklist.Clone()
}

// Groups returns a deep copy of the groups table.
func (s *Store) Groups() domain.Groups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups.Clone()
}

// Tx is a working copy of the documents touched by one Update.
type Tx struct {
	s          *Store
	admins     *domain.IDSet
	authorized *domain.IDSet
	checklist  *domain.Checklist
	groups     *domain.Groups
}

// Admins returns the transaction's mutable admin set.
func (tx *Tx) Admins() *domain.IDSet {
	if tx.admins == nil {
		c := tx.s.admins.Clone()
		tx.admins = &c
	}
	return tx.admins
}

// Authorized returns the transaction's mutable authorized-user set.
func (tx *Tx) Authorized() *domain.IDSet {
	if tx.authorized == nil {
		c := tx.s.authorized.Clone()
		tx.authorized = &c
	}
	return tx.authorized
}

// Checklist returns the transaction's mutable checklist.
func (tx *Tx) Checklist() *domain.Checklist {
	if tx.checklist == nil {
		c := tx.s.checklist.Clone()
		tx.checklist = &c
	}
	return tx.checklist
}

// Groups returns the transaction's mutable groups table.
func (tx *Tx) Groups() *domain.Groups {
	if tx.groups == nil {
		c := tx.s.groups.Clone()
		tx.groups = &c
	}
	return tx.groups
}

type pending struct {
	name  string
	data  []byte
	apply func()
}

// Update runs fn against working copies. If fn fails nothing changes.
// Otherwise the changed documents replace the in-memory copies and are
// written together through the backend; a write failure is returned as
// *PersistError while the in-memory change stands.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{s: s}
	if err := fn(tx); err != nil {
		return err
	}

	var changes []pending
	add := func(name string, cur, next any, apply func()) error {
		oldData, err := encode(cur)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		newData, err := encode(next)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if !bytes.Equal(oldData, newData) {
			changes = append(changes, pending{name: name, data: newData, apply: apply})
		}
		return nil
	}

	if tx.admins != nil {
		if err := add(DocAdmins, s.admins, *tx.admins, func() { s.admins = *tx.admins }); err != nil {
			return err
		}
	}
	if tx.authorized != nil {
		if err := add(DocAuthorized, s.authorized, *tx.authorized, func() { s.authorized = *tx.authorized }); err != nil {
			return err
		}
	}
	if tx.checklist != nil {
		if err := add(DocChecklist, s.checklist, *tx.checklist, func() { s.checklist = *tx.checklist }); err != nil {
			return err
		}
	}
	if tx.groups != nil {
		if err := add(DocGroups, s.groups, *tx.groups, func() { s.groups = *tx.groups }); err != nil {
			return err
		}
	}
	if len(changes) == 0 {
		return nil
	}

	docs := make(map[string][]byte, len(changes))
	names := make([]string, 0, len(changes))
	for _, c := range changes {
		c.apply()
		docs[c.name] = c.data
		names = append(names, c.name)
	}

	if err := s.backend.WriteAll(ctx, docs); err != nil {
		var pw *PartialWriteError
		if errors.As(err, &pw) {
			s.log.Error("documents partially written, disk is inconsistent",
				zap.Strings("written", pw.Written),
				zap.String("failed", pw.Failed),
				zap.Error(pw.Err),
			)
		}
		return &PersistError{Docs: names, Err: err}
	}
	s.log.Debug("documents saved", zap.Strings("docs", names))
	return nil
}
