package assets

import "testing"

func TestDefaultGroups(t *testing.T) {
	g, err := DefaultGroups()
	if err != nil {
		t.Fatalf("DefaultGroups: %v", err)
	}
	for _, name := range []string{"south", "west", "east"} {
		grp, ok := g[name]
		if !ok {
			t.Fatalf("missing group %s", name)
		}
		if len(grp.Schedules) != 2 {
			t.Fatalf("%s: want 2 slots, got %d", name, len(grp.Schedules))
		}
		for _, s := range grp.Schedules {
			if err := s.Validate(); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
		}
	}
}
