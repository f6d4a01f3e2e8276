package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/domain"
	"github.com/ykvlv/checklist-bot/internal/scheduler"
	"github.com/ykvlv/checklist-bot/internal/store"
)

const (
	admin = "100"
	user  = "200"
	guest = "300"
)

type fixture struct {
	svc   *Service
	store *store.Store
	sched *scheduler.Scheduler
	dir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	fb, err := store.OpenFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.Load(ctx, fb, zap.NewNop(), store.Defaults{Groups: domain.Groups{
		"south": {Schedules: []domain.Slot{{Day: 1, Hour: 18, Minute: 10}, {Day: 6, Hour: 8, Minute: 10}}},
		"west":  {Schedules: []domain.Slot{{Day: 2, Hour: 18, Minute: 10}}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	sched := scheduler.New(zap.NewNop(), time.UTC, time.Second, func(context.Context, int64, time.Time) {})
	svc := New(st, sched, zap.NewNop(), time.Minute)
	if _, err := svc.BootstrapAdmin(ctx, admin); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AuthorizeUser(ctx, admin, user); err != nil {
		t.Fatal(err)
	}
	return &fixture{svc: svc, store: st, sched: sched, dir: dir}
}

func reload(t *testing.T, f *fixture) *store.Store {
	t.Helper()
	fb, err := store.OpenFiles(f.dir)
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.Load(context.Background(), fb, zap.NewNop(), store.Defaults{})
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestBootstrapAdmin_OnlyWhenEmpty(t *testing.T) {
	f := newFixture(t)
	if !f.svc.IsAdmin(admin) || !f.svc.IsAuthorized(admin) {
		t.Fatal("bootstrap admin missing")
	}
	added, err := f.svc.BootstrapAdmin(context.Background(), "999")
	if err != nil || added {
		t.Fatalf("second bootstrap should be a no-op, got %v (%v)", added, err)
	}
}

func TestAccess_NonAuthorizedCannotMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.store.Checklist()

	checks := []error{}
	_, err := f.svc.AddItem(ctx, guest, "x")
	checks = append(checks, err)
	_, err = f.svc.RemoveItem(ctx, guest, "1")
	checks = append(checks, err)
	_, err = f.svc.AuthorizeUser(ctx, guest, "400")
	checks = append(checks, err)
	_, err = f.svc.AddAdmin(ctx, guest, "400")
	checks = append(checks, err)
	_, err = f.svc.AddToGroup(ctx, guest, user, "south")
	checks = append(checks, err)
	_, err = f.svc.Groups(guest)
	checks = append(checks, err)
	_, err = f.svc.Checklist(guest)
	checks = append(checks, err)
	_, err = f.svc.Start(guest, 300)
	checks = append(checks, err)

	for i, err := range checks {
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("check %d: want ErrUnauthorized, got %v", i, err)
		}
	}
	if len(f.store.Checklist()) != len(before) || f.svc.IsAuthorized("400") || f.svc.IsAdmin("400") {
		t.Fatal("state changed")
	}
	if len(f.sched.List()) != 0 {
		t.Fatal("jobs registered for guest")
	}
}

func TestAccess_AuthorizedNonAdminCannotEdit(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.AddItem(context.Background(), user, "x"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.Checklist(user); err != nil {
		t.Fatalf("authorized user should see checklist: %v", err)
	}
}

func TestRemoveItem_OutOfRangeScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.AddItem(ctx, admin, "Check mic"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.RemoveItem(ctx, admin, "2"); !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("want ErrOutOfRange, got %v", err)
	}
	if _, err := f.svc.RemoveItem(ctx, admin, "abc"); !errors.Is(err, domain.ErrParse) {
		t.Fatalf("want ErrParse, got %v", err)
	}
	c := f.store.Checklist()
	if len(c) != 1 || c[0].Text != "Check mic" {
		t.Fatalf("checklist changed: %v", c)
	}
	it, err := f.svc.RemoveItem(ctx, admin, "1")
	if err != nil || it.Text != "Check mic" {
		t.Fatalf("remove: %+v (%v)", it, err)
	}
}

func TestAddItem_PersistsImmediately(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.AddItem(context.Background(), admin, "Lights"); err != nil {
		t.Fatal(err)
	}
	if c := reload(t, f).Checklist(); len(c) != 1 || c[0].Text != "Lights" {
		t.Fatalf("not persisted: %v", c)
	}
	if _, err := f.svc.AddItem(context.Background(), admin, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestToggleItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, s := range []string{"a", "b"} {
		if _, err := f.svc.AddItem(ctx, admin, s); err != nil {
			t.Fatal(err)
		}
	}
	c, err := f.svc.ToggleItem(ctx, "toggle_1")
	if err != nil {
		t.Fatal(err)
	}
	if c[0].Completed || !c[1].Completed {
		t.Fatalf("unexpected %v", c)
	}
	// Stale token from a longer list.
	if _, err := f.svc.ToggleItem(ctx, "toggle_5"); !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("want ErrOutOfRange, got %v", err)
	}
	if _, err := f.svc.ToggleItem(ctx, "toggle_x"); !errors.Is(err, domain.ErrParse) {
		t.Fatalf("want ErrParse, got %v", err)
	}
	if got := reload(t, f).Checklist(); !got[1].Completed {
		t.Fatal("toggle not persisted")
	}
}

func TestAuthorizeUser_AlreadyPresent(t *testing.T) {
	f := newFixture(t)
	added, err := f.svc.AuthorizeUser(context.Background(), admin, user)
	if err != nil || added {
		t.Fatalf("want already present, got %v (%v)", added, err)
	}
	if _, err := f.svc.AuthorizeUser(context.Background(), admin, "bob"); !errors.Is(err, domain.ErrParse) {
		t.Fatalf("want ErrParse, got %v", err)
	}
}

func TestAddAdmin_AlsoAuthorizesAndPersistsBoth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	added, err := f.svc.AddAdmin(ctx, admin, "555")
	if err != nil || !added {
		t.Fatalf("AddAdmin: %v (%v)", added, err)
	}
	if !f.svc.IsAdmin("555") || !f.svc.IsAuthorized("555") {
		t.Fatal("555 should be admin and authorized")
	}
	st := reload(t, f)
	if !st.Admins().Contains("555") || !st.Authorized().Contains("555") {
		t.Fatal("not persisted")
	}
	added, err = f.svc.AddAdmin(ctx, admin, "555")
	if err != nil || added {
		t.Fatalf("repeat: want already admin, got %v (%v)", added, err)
	}
}

func TestAddToGroup_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddToGroup(ctx, admin, user, "north"); !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("want ErrUnknownGroup, got %v", err)
	}
	if _, err := f.svc.AddToGroup(ctx, admin, guest, "south"); !errors.Is(err, ErrUserNotAuthorized) {
		t.Fatalf("want ErrUserNotAuthorized, got %v", err)
	}

	added, err := f.svc.AddToGroup(ctx, admin, user, "south")
	if err != nil || !added {
		t.Fatalf("AddToGroup: %v (%v)", added, err)
	}
	if jobs := f.sched.List(); len(jobs) != 2 || jobs[0].Dest != 200 {
		t.Fatalf("expected 2 jobs for 200, got %+v", jobs)
	}
	added, err = f.svc.AddToGroup(ctx, admin, user, "south")
	if err != nil || added {
		t.Fatalf("repeat: %v (%v)", added, err)
	}
	if !reload(t, f).Groups()["south"].Users.Contains(user) {
		t.Fatal("membership not persisted")
	}
}

func TestStart_RegistersSelfTestAndGroupSlotsIdempotently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.AddToGroup(ctx, admin, user, "west"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := f.svc.Start(user, 200); err != nil {
			t.Fatal(err)
		}
	}
	jobs := f.sched.List()
	if len(jobs) != 2 {
		t.Fatalf("want selftest + 1 weekly, got %+v", jobs)
	}
	names := map[string]bool{}
	for _, j := range jobs {
		names[j.Name] = true
	}
	if !names["selftest_200"] || !names["reminder_200_2_18:10"] {
		t.Fatalf("unexpected jobs %v", names)
	}
}

func TestRegisterAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.AddToGroup(ctx, admin, user, "south"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.AddToGroup(ctx, admin, admin, "west"); err != nil {
		t.Fatal(err)
	}
	if n := f.svc.RegisterAll(); n != 3 {
		t.Fatalf("want 3 registrations, got %d", n)
	}
	if n := len(f.sched.List()); n != 3 {
		t.Fatalf("want 3 jobs after re-registration, got %d", n)
	}
}

func TestJobs_AdminOnly(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Jobs(user); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.Jobs(admin); err != nil {
		t.Fatal(err)
	}
}
