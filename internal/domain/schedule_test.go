package domain

import (
	"testing"
	"time"
)

// helper: load tz or fail
func mustLoc(t *testing.T, tz string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	return loc
}

func TestSlot_WeekdayMapping(t *testing.T) {
	cases := []struct {
		day  int
		want time.Weekday
	}{
		{0, time.Monday},
		{1, time.Tuesday},
		{5, time.Saturday},
		{6, time.Sunday},
	}
	for _, c := range cases {
		if got := (Slot{Day: c.day}).Weekday(); got != c.want {
			t.Errorf("day %d: want %s, got %s", c.day, c.want, got)
		}
	}
}

func TestNextFire_LaterSameWeek(t *testing.T) {
	loc := mustLoc(t, "Africa/Addis_Ababa")
	// Monday 2025-05-05 09:00 → Tuesday 18:10
	now := time.Date(2025, time.May, 5, 9, 0, 0, 0, loc)
	next := NextFire(now, Slot{Day: 1, Hour: 18, Minute: 10}, loc)
	want := time.Date(2025, time.May, 6, 18, 10, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("want %s, got %s", want, next)
	}
}

func TestNextFire_SameDayBeforeSlot(t *testing.T) {
	loc := mustLoc(t, "Africa/Addis_Ababa")
	now := time.Date(2025, time.May, 6, 18, 9, 0, 0, loc)
	next := NextFire(now, Slot{Day: 1, Hour: 18, Minute: 10}, loc)
	want := time.Date(2025, time.May, 6, 18, 10, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("want %s, got %s", want, next)
	}
}

func TestNextFire_ExactlyAtSlotRollsOverAWeek(t *testing.T) {
	loc := mustLoc(t, "Africa/Addis_Ababa")
	now := time.Date(2025, time.May, 6, 18, 10, 0, 0, loc)
	next := NextFire(now, Slot{Day: 1, Hour: 18, Minute: 10}, loc)
	want := time.Date(2025, time.May, 13, 18, 10, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("want %s, got %s", want, next)
	}
}

func TestNextFire_EarlierWeekdayWrapsToNextWeek(t *testing.T) {
	loc := mustLoc(t, "Africa/Addis_Ababa")
	// Sunday evening → next Tuesday
	now := time.Date(2025, time.May, 11, 20, 0, 0, 0, loc)
	next := NextFire(now, Slot{Day: 1, Hour: 18, Minute: 10}, loc)
	want := time.Date(2025, time.May, 13, 18, 10, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("want %s, got %s", want, next)
	}
}

func TestNextFire_UsesConfiguredZoneNotNowZone(t *testing.T) {
	loc := mustLoc(t, "Africa/Addis_Ababa") // UTC+3
	// 2025-05-06 14:00 UTC is 17:00 in Addis → slot at 18:10 local is 15:10 UTC same day.
	now := time.Date(2025, time.May, 6, 14, 0, 0, 0, time.UTC)
	next := NextFire(now, Slot{Day: 1, Hour: 18, Minute: 10}, loc)
	want := time.Date(2025, time.May, 6, 15, 10, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("want %s, got %s", want, next.UTC())
	}
}

func TestNextFire_AcrossDSTKeepsWallClock(t *testing.T) {
	loc := mustLoc(t, "Europe/Berlin")
	// Saturday before the March 2025 switch → Sunday 08:10 local (CEST).
	now := time.Date(2025, time.March, 29, 12, 0, 0, 0, loc)
	next := NextFire(now, Slot{Day: 6, Hour: 8, Minute: 10}, loc)
	if next.In(loc).Hour() != 8 || next.In(loc).Minute() != 10 {
		t.Fatalf("want 08:10 local, got %s", next.In(loc))
	}
	if next.In(loc).Weekday() != time.Sunday {
		t.Fatalf("want Sunday, got %s", next.In(loc).Weekday())
	}
}

func TestSlot_Validate(t *testing.T) {
	bad := []Slot{{Day: 7}, {Day: -1}, {Hour: 24}, {Minute: 60}}
	for _, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("expected error for %+v", s)
		}
	}
	if err := (Slot{Day: 6, Hour: 23, Minute: 59}).Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestSlot_String(t *testing.T) {
	if got := (Slot{Day: 6, Hour: 8, Minute: 5}).String(); got != "Sunday 08:05" {
		t.Fatalf("got %q", got)
	}
}

func TestLocalizeTime_FormatIncludesZone(t *testing.T) {
	at := time.Date(2025, 5, 6, 15, 10, 0, 0, time.UTC)
	if got := LocalizeTime(at, time.UTC); got != "Tue 06 May 15:10 UTC" {
		t.Fatalf("got %q", got)
	}
	if got := LocalizeTime(at, nil); got != "Tue 06 May 15:10 UTC" {
		t.Fatalf("nil zone: got %q", got)
	}
}
