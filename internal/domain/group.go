package domain

import (
	"fmt"
	"sort"
	"time"
)

// Slot is a weekly recurring instant. Day 0 is Monday and 6 is Sunday.
type Slot struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Validate checks field ranges.
func (s Slot) Validate() error {
	switch {
	case s.Day < 0 || s.Day > 6:
		return fmt.Errorf("%w: day %d", ErrOutOfRange, s.Day)
	case s.Hour < 0 || s.Hour > 23:
		return fmt.Errorf("%w: hour %d", ErrOutOfRange, s.Hour)
	case s.Minute < 0 || s.Minute > 59:
		return fmt.Errorf("%w: minute %d", ErrOutOfRange, s.Minute)
	}
	return nil
}

// Weekday maps Day onto time.Weekday.
func (s Slot) Weekday() time.Weekday {
	return time.Weekday((s.Day + 1) % 7)
}

// DayName returns the English weekday name.
func (s Slot) DayName() string {
	if s.Day < 0 || s.Day > 6 {
		return "?"
	}
	return dayNames[s.Day]
}

// Clock returns HH:MM.
func (s Slot) Clock() string {
	return FormatMinutes(s.Hour*60 + s.Minute)
}

func (s Slot) String() string {
	return s.DayName() + " " + s.Clock()
}

// Group is a predefined set of users sharing one reminder schedule.
type Group struct {
	Users     IDSet  `json:"users"`
	Schedules []Slot `json:"schedules"`
}

// Groups is keyed by group name.
type Groups map[string]Group

// Names returns group names sorted.
func (g Groups) Names() []string {
	out := make([]string, 0, len(g))
	for name := range g {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MemberOf returns the sorted names of groups containing id.
func (g Groups) MemberOf(id string) []string {
	var out []string
	for _, name := range g.Names() {
		if g[name].Users.Contains(id) {
			out = append(out, name)
		}
	}
	return out
}

// AddMember adds id to the named group. It reports whether membership changed.
func (g Groups) AddMember(name, id string) (bool, error) {
	grp, ok := g[name]
	if !ok {
		return false, fmt.Errorf("%w: unknown group %q", ErrValidation, name)
	}
	if !grp.Users.Add(id) {
		return false, nil
	}
	g[name] = grp
	return true, nil
}

// Clone deep-copies the map and its slices.
func (g Groups) Clone() Groups {
	if g == nil {
		return nil
	}
	out := make(Groups, len(g))
	for name, grp := range g {
		slots := make([]Slot, len(grp.Schedules))
		copy(slots, grp.Schedules)
		out[name] = Group{Users: grp.Users.Clone(), Schedules: slots}
	}
	return out
}
