package domain

import "strconv"

// IDSet is an ordered set of opaque user identifiers as stored on disk.
type IDSet []string

// Contains reports whether id is a member.
func (s IDSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id if absent and reports whether the set changed.
func (s *IDSet) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return nil
	}
	out := make(IDSet, len(s))
	copy(out, s)
	return out
}

// UserKey converts a Telegram user ID to the stored identifier form.
func UserKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
