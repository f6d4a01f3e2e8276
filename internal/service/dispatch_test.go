package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/domain"
	"github.com/ykvlv/checklist-bot/internal/store"
)

type sentReminder struct {
	chatID int64
	opts   []domain.Option
	// checklist state observed at send time
	state domain.Checklist
}

type fakeSender struct {
	st     *store.Store
	sent   []sentReminder
	failTo map[int64]bool
}

func (f *fakeSender) SendReminder(_ context.Context, chatID int64, opts []domain.Option) error {
	if f.failTo[chatID] {
		return errors.New("chat not found")
	}
	f.sent = append(f.sent, sentReminder{chatID: chatID, opts: opts, state: f.st.Checklist()})
	return nil
}

func newDispatchFixture(t *testing.T) (*Dispatcher, *fakeSender, *store.Store) {
	t.Helper()
	fb, err := store.OpenFiles(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.Load(context.Background(), fb, zap.NewNop(), store.Defaults{})
	if err != nil {
		t.Fatal(err)
	}
	err = st.Update(context.Background(), func(tx *store.Tx) error {
		*tx.Checklist() = domain.Checklist{{Text: "Check mic", Completed: true}, {Text: "Lights"}}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	snd := &fakeSender{st: st, failTo: map[int64]bool{}}
	return NewDispatcher(st, snd, zap.NewNop()), snd, st
}

func TestDispatch_ResetThenSend(t *testing.T) {
	d, snd, st := newDispatchFixture(t)
	at := time.Date(2025, time.May, 6, 18, 10, 0, 0, time.UTC)
	d.Dispatch(context.Background(), 42, at)

	if len(snd.sent) != 1 {
		t.Fatalf("want 1 send, got %d", len(snd.sent))
	}
	got := snd.sent[0]
	if got.chatID != 42 {
		t.Fatalf("wrong destination %d", got.chatID)
	}
	for _, it := range got.state {
		if it.Completed {
			t.Fatal("checklist was not reset before send")
		}
	}
	if got.opts[0].Label != "⬜ Check mic" || got.opts[1].Label != "⬜ Lights" {
		t.Fatalf("render not all-incomplete: %+v", got.opts)
	}
	for _, it := range st.Checklist() {
		if it.Completed {
			t.Fatal("reset not kept")
		}
	}
}

func TestDispatch_SameSlotTwiceIsNoop(t *testing.T) {
	d, snd, st := newDispatchFixture(t)
	at := time.Date(2025, time.May, 6, 18, 10, 0, 0, time.UTC)
	ctx := context.Background()
	d.Dispatch(ctx, 42, at)

	// user ticks an item after the reminder; a duplicate fire must not undo it
	if err := st.Update(ctx, func(tx *store.Tx) error {
		_, err := tx.Checklist().Toggle(0)
		return err
	}); err != nil {
		t.Fatal(err)
	}
	d.Dispatch(ctx, 42, at)

	if len(snd.sent) != 1 {
		t.Fatalf("want 1 send, got %d", len(snd.sent))
	}
	if !st.Checklist()[0].Completed {
		t.Fatal("duplicate dispatch reset the checklist")
	}

	d.Dispatch(ctx, 42, at.AddDate(0, 0, 7))
	if len(snd.sent) != 2 {
		t.Fatal("next week's slot should fire")
	}
}

func TestDispatch_DeliveryFailureDoesNotBlockOthers(t *testing.T) {
	d, snd, _ := newDispatchFixture(t)
	snd.failTo[1] = true
	at := time.Date(2025, time.May, 6, 18, 10, 0, 0, time.UTC)
	d.Dispatch(context.Background(), 1, at)
	d.Dispatch(context.Background(), 2, at)
	if len(snd.sent) != 1 || snd.sent[0].chatID != 2 {
		t.Fatalf("unexpected sends %+v", snd.sent)
	}
}

func TestDispatch_ForgetsOldSlots(t *testing.T) {
	d, snd, _ := newDispatchFixture(t)
	now := time.Date(2025, time.May, 6, 18, 10, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	d.Dispatch(context.Background(), 1, now)

	now = now.Add(dispatchMemory + time.Hour)
	if len(d.done) != 1 {
		t.Fatal("expected one record")
	}
	d.Dispatch(context.Background(), 2, now)
	if len(d.done) != 1 {
		t.Fatalf("old record not pruned: %d", len(d.done))
	}
	if len(snd.sent) != 2 {
		t.Fatal("sends missing")
	}
}
