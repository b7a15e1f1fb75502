// SPDX-License-Identifier: MIT
package tuning

import "slices"

// Confirmation counts consecutive stable in-tune blocks per note and marks
// a note confirmed once the count reaches the configured number of frames.
type Confirmation struct {
	frames    int
	counters  map[string]int
	confirmed []string // never mutated in place; published snapshots share it
}

// NewConfirmation returns a confirmation tracker firing after frames
// blocks.
func NewConfirmation(frames int) *Confirmation {
	return &Confirmation{
		frames:   max(frames, 1),
		counters: make(map[string]int),
	}
}

// Observe feeds one classified block. It returns true exactly when label
// becomes confirmed.
func (c *Confirmation) Observe(label string, stable bool, status Status) bool {
	if !stable {
		clear(c.counters)
		return false
	}
	if status != StatusInTune {
		delete(c.counters, label)
		return false
	}
	if c.IsConfirmed(label) {
		return false
	}

	c.counters[label]++
	if c.counters[label] < c.frames {
		return false
	}
	delete(c.counters, label)
	c.confirmed = append(slices.Clip(c.confirmed), label)
	return true
}

// Count returns the current counter for label.
func (c *Confirmation) Count(label string) int { return c.counters[label] }

// IsConfirmed reports whether label has been confirmed.
func (c *Confirmation) IsConfirmed(label string) bool {
	return slices.Contains(c.confirmed, label)
}

// Confirmed returns the confirmed labels in confirmation order. The slice
// must not be modified.
func (c *Confirmation) Confirmed() []string { return c.confirmed }

// Clear forgets every confirmation and counter.
func (c *Confirmation) Clear() {
	clear(c.counters)
	c.confirmed = nil
}
