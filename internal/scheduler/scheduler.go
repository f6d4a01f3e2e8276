package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/domain"
)

// Handler is invoked for each due job with its destination and the nominal
// slot time it fired for.
type Handler func(ctx context.Context, dest int64, at time.Time)

// JobInfo describes a registered job for listing.
type JobInfo struct {
	Name   string
	Dest   int64
	Next   time.Time
	Weekly bool
}

type job struct {
	name   string
	dest   int64
	slot   domain.Slot
	weekly bool
	next   time.Time
}

// Scheduler keeps named jobs in memory and fires them from a ticker loop.
// Registration is an upsert by name.
type Scheduler struct {
	log      *zap.Logger
	loc      *time.Location
	interval time.Duration
	handler  Handler
	now      func() time.Time

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a new Scheduler. Weekly slots are interpreted in loc.
func New(log *zap.Logger, loc *time.Location, interval time.Duration, handler Handler) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Scheduler{
		log:      log,
		loc:      loc,
		interval: interval,
		handler:  handler,
		now:      time.Now,
		jobs:     make(map[string]*job),
	}
}

// WeeklyName is the deterministic job name for a destination and slot.
func WeeklyName(dest int64, slot domain.Slot) string {
	return fmt.Sprintf("reminder_%d_%d_%s", dest, slot.Day, slot.Clock())
}

// OnceName is the job name used for the self-test reminder of a destination.
func OnceName(dest int64) string {
	return fmt.Sprintf("selftest_%d", dest)
}

// RegisterWeekly upserts a weekly job and returns its next fire time.
// Re-registering an identical job keeps its current arming.
func (s *Scheduler) RegisterWeekly(name string, dest int64, slot domain.Slot) (time.Time, error) {
	if err := slot.Validate(); err != nil {
		return time.Time{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[name]; ok && j.weekly && j.dest == dest && j.slot == slot {
		return j.next, nil
	}
	next := domain.NextFire(s.now(), slot, s.loc)
	s.jobs[name] = &job{name: name, dest: dest, slot: slot, weekly: true, next: next}
	s.log.Info("weekly job registered",
		zap.String("job", name),
		zap.Int64("chatID", dest),
		zap.Time("next", next),
	)
	return next, nil
}

// RegisterOnce upserts a one-shot job firing delay from now.
func (s *Scheduler) RegisterOnce(name string, dest int64, delay time.Duration) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.now().Add(delay)
	s.jobs[name] = &job{name: name, dest: dest, next: next}
	s.log.Info("one-shot job registered",
		zap.String("job", name),
		zap.Int64("chatID", dest),
		zap.Time("next", next),
	)
	return next
}

// List returns all registered jobs ordered by next fire time, then name.
func (s *Scheduler) List() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, JobInfo{Name: j.name, Dest: j.dest, Next: j.next, Weekly: j.weekly})
	}
	sortInfos(out)
	return out
}

// Location returns the zone weekly slots are computed in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

type due struct {
	dest int64
	at   time.Time
	name string
}

// tick fires every job whose next time has passed, re-arming weekly jobs
// and dropping one-shot jobs before the handler runs.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var fire []due
	for name, j := range s.jobs {
		if j.next.After(now) {
			continue
		}
		fire = append(fire, due{dest: j.dest, at: j.next, name: name})
		if j.weekly {
			j.next = domain.NextFire(now, j.slot, s.loc)
		} else {
			delete(s.jobs, name)
		}
	}
	s.mu.Unlock()

	sort.Slice(fire, func(i, k int) bool {
		if !fire[i].at.Equal(fire[k].at) {
			return fire[i].at.Before(fire[k].at)
		}
		return fire[i].name < fire[k].name
	})

	for _, d := range fire {
		if ctx.Err() != nil {
			return
		}
		s.log.Debug("job due", zap.String("job", d.name), zap.Time("at", d.at))
		s.handler(ctx, d.dest, d.at)
	}
}

func sortInfos(in []JobInfo) {
	sort.Slice(in, func(i, k int) bool {
		if !in[i].Next.Equal(in[k].Next) {
			return in[i].Next.Before(in[k].Next)
		}
		return in[i].Name < in[k].Name
	})
}
