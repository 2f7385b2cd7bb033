package answers

import (
	"slices"
)

// Collector holds free-text answers, multiple-choice selections and the
// per-player submission lock for one room. Not safe for concurrent use.
type Collector struct {
	texts map[string]string
	mc    map[string][]int
	locks map[string]bool
}

func NewCollector() *Collector {
	return &Collector{
		texts: make(map[string]string),
		mc:    make(map[string][]int),
		locks: make(map[string]bool),
	}
}

// SetText overwrites name's text regardless of its lock.
func (c *Collector) SetText(name, text string) {
	c.texts[name] = text
}

func (c *Collector) Text(name string) string {
	return c.texts[name]
}

func (c *Collector) ClearText(name string) {
	delete(c.texts, name)
}

func (c *Collector) ClearTexts() {
	c.texts = make(map[string]string)
}

func (c *Collector) Texts() map[string]string {
	out := make(map[string]string, len(c.texts))
	for n, t := range c.texts {
		out[n] = t
	}
	return out
}

func (c *Collector) Locked(name string) bool {
	return c.locks[name]
}

func (c *Collector) SetLocked(name string, locked bool) {
	if locked {
		c.locks[name] = true
		return
	}
	delete(c.locks, name)
}

// LockAll locks every given player.
func (c *Collector) LockAll(names []string) {
	for _, n := range names {
		c.locks[n] = true
	}
}

// Unlock clears name's lock and discards its MC selection.
func (c *Collector) Unlock(name string) {
	delete(c.locks, name)
	delete(c.mc, name)
}

// UnlockAll clears every lock and every MC selection.
func (c *Collector) UnlockAll() {
	c.locks = make(map[string]bool)
	c.mc = make(map[string][]int)
}

func (c *Collector) Locks() map[string]bool {
	out := make(map[string]bool, len(c.locks))
	for n, v := range c.locks {
		out[n] = v
	}
	return out
}

// LockedNames returns the locked players in sorted order.
func (c *Collector) LockedNames() []string {
	names := make([]string, 0, len(c.locks))
	for n := range c.locks {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// SetChoices stores a normalized selection for name: indices outside
// [0, optionCount) are dropped, duplicates collapsed, and single-select
// keeps only the last valid index.
func (c *Collector) SetChoices(name string, choices []int, optionCount int, multi bool) []int {
	sel := Normalize(choices, optionCount)
	if !multi && len(sel) > 1 {
		last := -1
		for i := len(choices) - 1; i >= 0; i-- {
			if choices[i] >= 0 && choices[i] < optionCount {
				last = choices[i]
				break
			}
		}
		sel = []int{last}
	}
	if len(sel) == 0 {
		delete(c.mc, name)
		return nil
	}
	c.mc[name] = sel
	return slices.Clone(sel)
}

func (c *Collector) Choices(name string) []int {
	return slices.Clone(c.mc[name])
}

func (c *Collector) AllChoices() map[string][]int {
	out := make(map[string][]int, len(c.mc))
	for n, sel := range c.mc {
		out[n] = slices.Clone(sel)
	}
	return out
}

// Forget drops every transient answer field for name.
func (c *Collector) Forget(name string) {
	delete(c.locks, name)
	delete(c.mc, name)
}

// Normalize returns the sorted distinct indices within [0, optionCount).
// A non-positive optionCount disables the upper bound.
func Normalize(choices []int, optionCount int) []int {
	out := make([]int, 0, len(choices))
	for _, ch := range choices {
		if ch < 0 || (optionCount > 0 && ch >= optionCount) {
			continue
		}
		out = append(out, ch)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SameSet compares two selections ignoring order and duplicates.
func SameSet(a, b []int) bool {
	return slices.Equal(Normalize(a, 0), Normalize(b, 0))
}
