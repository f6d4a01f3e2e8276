package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/domain"
	"github.com/ykvlv/checklist-bot/internal/store"
)

// Sender delivers a reminder render to a destination.
type Sender interface {
	SendReminder(ctx context.Context, chatID int64, opts []domain.Option) error
}

// keep dispatch records a bit longer than one weekly period
const dispatchMemory = 8 * 24 * time.Hour

type slotKey struct {
	dest int64
	at   int64
}

// Dispatcher resets the checklist and sends it when a reminder fires.
type Dispatcher struct {
	store  *store.Store
	sender Sender
	log    *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	done map[slotKey]time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(st *store.Store, sender Sender, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:  st,
		sender: sender,
		log:    log,
		now:    time.Now,
		done:   make(map[slotKey]time.Time),
	}
}

// Dispatch handles one fired slot: reset all items, persist, render, send.
// A second call for the same destination and slot time does nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, dest int64, at time.Time) {
	if !d.claim(dest, at) {
		d.log.Debug("duplicate reminder ignored", zap.Int64("chatID", dest), zap.Time("at", at))
		return
	}

	var opts []domain.Option
	err := d.store.Update(ctx, func(tx *store.Tx) error {
		c := tx.Checklist()
		c.ResetAll()
		opts = c.Render()
		return nil
	})
	switch {
	case err == nil:
	case store.IsPersistError(err):
		d.log.Error("checklist reset not persisted", zap.Int64("chatID", dest), zap.Error(err))
	default:
		d.log.Error("checklist reset failed", zap.Int64("chatID", dest), zap.Error(err))
		return
	}

	if err := d.sender.SendReminder(ctx, dest, opts); err != nil {
		d.log.Error("reminder delivery failed", zap.Int64("chatID", dest), zap.Time("at", at), zap.Error(err))
		return
	}
	d.log.Info("reminder sent", zap.Int64("chatID", dest), zap.Time("at", at), zap.Int("items", len(opts)))
}

func (d *Dispatcher) claim(dest int64, at time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, t := range d.done {
		if now.Sub(t) > dispatchMemory {
			delete(d.done, k)
		}
	}
	key := slotKey{dest: dest, at: at.Unix()}
	if _, ok := d.done[key]; ok {
		return false
	}
	d.done[key] = now
	return true
}
