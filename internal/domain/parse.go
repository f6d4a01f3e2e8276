package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const togglePrefix = "toggle_"

// ToggleToken encodes a 0-based checklist index as callback data.
func ToggleToken(idx int) string {
	return togglePrefix + strconv.Itoa(idx)
}

// IsToggleToken reports whether data looks like a toggle token.
func IsToggleToken(data string) bool {
	return strings.HasPrefix(data, togglePrefix)
}

// ParseToggleToken decodes "toggle_<i>". Stale or malformed tokens yield
// ErrParse or ErrOutOfRange, never a panic.
func ParseToggleToken(data string) (int, error) {
	if !IsToggleToken(data) {
		return 0, fmt.Errorf("%w: token %q", ErrParse, data)
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(data, togglePrefix))
	if err != nil {
		return 0, fmt.Errorf("%w: token %q", ErrParse, data)
	}
	if idx < 0 {
		return 0, fmt.Errorf("%w: token %q", ErrOutOfRange, data)
	}
	return idx, nil
}

// ParsePosition parses a 1-based item number typed by a user.
func ParsePosition(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, fmt.Errorf("%w: empty position", ErrValidation)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, arg)
	}
	return n, nil
}

// ValidateUserID checks that id is a Telegram numeric account id.
func ValidateUserID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty user id", ErrValidation)
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", fmt.Errorf("%w: user id %q", ErrParse, id)
	}
	return id, nil
}

// FormatMinutes returns HH:MM for minutes since midnight (00:00..23:59).
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	h := mins / 60
	m := mins % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}
