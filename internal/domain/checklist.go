package domain

import (
	"fmt"
	"strings"
)

// Item is a single checklist entry. Its position in the Checklist is its only identity.
type Item struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Checklist is the ordered shared list of items.
type Checklist []Item

// Option is one rendered, pressable checklist row.
type Option struct {
	Label string
	Token string // callback data, see ToggleToken
}

const (
	markDone    = "✅"
	markPending = "⬜"
)

// Render returns one option per item in list order. An empty checklist renders to nil.
func (c Checklist) Render() []Option {
	if len(c) == 0 {
		return nil
	}
	out := make([]Option, 0, len(c))
	for i, it := range c {
		mark := markPending
		if it.Completed {
			mark = markDone
		}
		out = append(out, Option{
			Label: mark + " " + it.Text,
			Token: ToggleToken(i),
		})
	}
	return out
}

// Add appends a new incomplete item.
func (c *Checklist) Add(text string) (Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Item{}, fmt.Errorf("%w: empty item text", ErrValidation)
	}
	it := Item{Text: text}
	*c = append(*c, it)
	return it, nil
}

// Remove deletes the item at the 1-based position and returns it.
func (c *Checklist) Remove(pos int) (Item, error) {
	if pos < 1 || pos > len(*c) {
		return Item{}, fmt.Errorf("%w: position %d of %d", ErrOutOfRange, pos, len(*c))
	}
	idx := pos - 1
	removed := (*c)[idx]
	*c = append((*c)[:idx], (*c)[idx+1:]...)
	return removed, nil
}

// Toggle flips the completed flag of the item at the 0-based index.
func (c Checklist) Toggle(idx int) (Item, error) {
	if idx < 0 || idx >= len(c) {
		return Item{}, fmt.Errorf("%w: index %d of %d", ErrOutOfRange, idx, len(c))
	}
	c[idx].Completed = !c[idx].Completed
	return c[idx], nil
}

// ResetAll marks every item incomplete.
func (c Checklist) ResetAll() {
	for i := range c {
		c[i].Completed = false
	}
}

// Clone returns a copy that shares no backing array with c.
func (c Checklist) Clone() Checklist {
	if c == nil {
		return nil
	}
	out := make(Checklist, len(c))
	copy(out, c)
	return out
}
