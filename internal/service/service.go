// Package service holds the bot's use cases: access control, checklist
// editing, user and group management, and reminder registration. It knows
// nothing about Telegram.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/domain"
	"github.com/ykvlv/checklist-bot/internal/scheduler"
	"github.com/ykvlv/checklist-bot/internal/store"
)

var (
	ErrUnknownGroup      = errors.New("unknown group")
	ErrUserNotAuthorized = errors.New("user is not authorized")
)

// Jobs is the scheduler surface the service registers reminders with.
type Jobs interface {
	RegisterWeekly(name string, dest int64, slot domain.Slot) (time.Time, error)
	RegisterOnce(name string, dest int64, delay time.Duration) time.Time
	List() []scheduler.JobInfo
	Location() *time.Location
}

// Service implements every bot operation over the shared documents.
type Service struct {
	store         *store.Store
	jobs          Jobs
	log           *zap.Logger
	selfTestDelay time.Duration
}

// New creates a Service.
func New(st *store.Store, jobs Jobs, log *zap.Logger, selfTestDelay time.Duration) *Service {
	return &Service{store: st, jobs: jobs, log: log, selfTestDelay: selfTestDelay}
}

// IsAuthorized reports whether id may use the bot.
func (s *Service) IsAuthorized(id string) bool {
	return s.store.Authorized().Contains(id)
}

// IsAdmin reports whether id has admin rights.
func (s *Service) IsAdmin(id string) bool {
	return s.store.Admins().Contains(id)
}

// commit applies fn through the store. A failed write is logged and
// swallowed: the in-memory state already reflects the change.
func (s *Service) commit(ctx context.Context, op string, fn func(tx *store.Tx) error) error {
	err := s.store.Update(ctx, fn)
	if err != nil && store.IsPersistError(err) {
		s.log.Error("persist failed, continuing with in-memory state", zap.String("op", op), zap.Error(err))
		return nil
	}
	return err
}

func (s *Service) requireAdmin(caller string) error {
	if !s.IsAdmin(caller) {
		return fmt.Errorf("%w: %s is not an admin", domain.ErrUnauthorized, caller)
	}
	return nil
}

// BootstrapAdmin makes id the first admin when no admin exists yet.
func (s *Service) BootstrapAdmin(ctx context.Context, id string) (bool, error) {
	if id == "" || len(s.store.Admins()) > 0 {
		return false, nil
	}
	id, err := domain.ValidateUserID(id)
	if err != nil {
		return false, err
	}
	err = s.commit(ctx, "bootstrap_admin", func(tx *store.Tx) error {
		tx.Admins().Add(id)
		tx.Authorized().Add(id)
		return nil
	})
	if err != nil {
		return false, err
	}
	s.log.Info("initial admin added", zap.String("user", id))
	return true, nil
}

// Checklist returns the current checklist for callers allowed to see it.
func (s *Service) Checklist(caller string) (domain.Checklist, error) {
	if !s.IsAuthorized(caller) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, caller)
	}
	return s.store.Checklist(), nil
}

// AddItem appends an item. Admin only.
func (s *Service) AddItem(ctx context.Context, caller, text string) (domain.Item, error) {
	if err := s.requireAdmin(caller); err != nil {
		return domain.Item{}, err
	}
	var added domain.Item
	err := s.commit(ctx, "add_item", func(tx *store.Tx) error {
		it, err := tx.Checklist().Add(text)
		added = it
		return err
	})
	return added, err
}

// RemoveItem removes the item at the 1-based position given as text. Admin only.
func (s *Service) RemoveItem(ctx context.Context, caller, arg string) (domain.Item, error) {
	if err := s.requireAdmin(caller); err != nil {
		return domain.Item{}, err
	}
	pos, err := domain.ParsePosition(arg)
	if err != nil {
		return domain.Item{}, err
	}
	var removed domain.Item
	err = s.commit(ctx, "remove_item", func(tx *store.Tx) error {
		it, err := tx.Checklist().Remove(pos)
		removed = it
		return err
	})
	return removed, err
}

// ToggleItem flips the item referenced by a button token and returns the
// checklist to re-render. Any button holder may toggle.
func (s *Service) ToggleItem(ctx context.Context, token string) (domain.Checklist, error) {
	idx, err := domain.ParseToggleToken(token)
	if err != nil {
		return nil, err
	}
	var out domain.Checklist
	err = s.commit(ctx, "toggle_item", func(tx *store.Tx) error {
		c := tx.Checklist()
		if _, err := c.Toggle(idx); err != nil {
			return err
		}
		out = c.Clone()
		return nil
	})
	return out, err
}

// AuthorizeUser adds id to the authorized users. It reports false when id was already present.
func (s *Service) AuthorizeUser(ctx context.Context, caller, id string) (bool, error) {
	if err := s.requireAdmin(caller); err != nil {
		return false, err
	}
	id, err := domain.ValidateUserID(id)
	if err != nil {
		return false, err
	}
	var added bool
	err = s.commit(ctx, "add_user", func(tx *store.Tx) error {
		added = tx.Authorized().Add(id)
		return nil
	})
	return added, err
}

// AddAdmin makes id an admin, authorizing it too. Both documents are
// committed as one batch. It reports false when id was already an admin.
func (s *Service) AddAdmin(ctx context.Context, caller, id string) (bool, error) {
	if err := s.requireAdmin(caller); err != nil {
		return false, err
	}
	id, err := domain.ValidateUserID(id)
	if err != nil {
		return false, err
	}
	var added bool
	err = s.commit(ctx, "add_admin", func(tx *store.Tx) error {
		added = tx.Admins().Add(id)
		tx.Authorized().Add(id)
		return nil
	})
	return added, err
}

// AddToGroup puts an authorized user into a predefined group and arms the
// group's weekly reminders for that user.
func (s *Service) AddToGroup(ctx context.Context, caller, id, group string) (bool, error) {
	if err := s.requireAdmin(caller); err != nil {
		return false, err
	}
	id, err := domain.ValidateUserID(id)
	if err != nil {
		return false, err
	}
	groups := s.store.Groups()
	grp, ok := groups[group]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	if !s.IsAuthorized(id) {
		return false, fmt.Errorf("%w: %s", ErrUserNotAuthorized, id)
	}

	var added bool
	err = s.commit(ctx, "add_to_group", func(tx *store.Tx) error {
		changed, err := tx.Groups().AddMember(group, id)
		added = changed
		return err
	})
	if err != nil || !added {
		return added, err
	}
	dest, _ := strconv.ParseInt(id, 10, 64)
	s.registerSlots(dest, grp.Schedules)
	return true, nil
}

// Groups returns the groups table. Admin only.
func (s *Service) Groups(caller string) (domain.Groups, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.store.Groups(), nil
}

// GroupNames lists the predefined group names.
func (s *Service) GroupNames() []string {
	return s.store.Groups().Names()
}

// Jobs lists scheduled reminders. Admin only.
func (s *Service) Jobs(caller string) ([]scheduler.JobInfo, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.jobs.List(), nil
}

// Location is the zone reminder times are shown in.
func (s *Service) Location() *time.Location {
	return s.jobs.Location()
}

// Start arms the self-test reminder for chatID and the weekly reminders of
// every group caller belongs to. Registration is idempotent.
func (s *Service) Start(caller string, chatID int64) (time.Time, error) {
	if !s.IsAuthorized(caller) {
		return time.Time{}, fmt.Errorf("%w: %s", domain.ErrUnauthorized, caller)
	}
	next := s.jobs.RegisterOnce(scheduler.OnceName(chatID), chatID, s.selfTestDelay)

	groups := s.store.Groups()
	for _, name := range groups.MemberOf(caller) {
		s.registerSlots(chatID, groups[name].Schedules)
	}
	return next, nil
}

// RegisterAll arms weekly reminders for every member of every group.
// Called once at startup; returns the number of jobs registered.
func (s *Service) RegisterAll() int {
	n := 0
	groups := s.store.Groups()
	for _, name := range groups.Names() {
		grp := groups[name]
		for _, user := range grp.Users {
			dest, err := strconv.ParseInt(user, 10, 64)
			if err != nil {
				s.log.Warn("skipping non-numeric group member", zap.String("group", name), zap.String("user", user))
				continue
			}
			n += s.registerSlots(dest, grp.Schedules)
		}
	}
	s.log.Info("weekly reminders registered", zap.Int("jobs", n))
	return n
}

func (s *Service) registerSlots(dest int64, slots []domain.Slot) int {
	n := 0
	for _, slot := range slots {
		if _, err := s.jobs.RegisterWeekly(scheduler.WeeklyName(dest, slot), dest, slot); err != nil {
			s.log.Warn("register weekly failed", zap.Int64("chatID", dest), zap.Error(err))
			continue
		}
		n++
	}
	return n
}
