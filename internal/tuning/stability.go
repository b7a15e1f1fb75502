// SPDX-License-Identifier: MIT
package tuning

// StabilityGate remembers the last K note labels and reports whether they
// all agree. It never allocates after construction.
type StabilityGate struct {
	labels []string
	head   int
	n      int
}

// NewStabilityGate returns a gate over the last k labels. k < 1 is
// treated as 1.
func NewStabilityGate(k int) *StabilityGate {
	return &StabilityGate{labels: make([]string, max(k, 1))}
}

// Push records label as the newest classification and reports stability.
func (g *StabilityGate) Push(label string) bool {
	g.labels[g.head] = label
	g.head = (g.head + 1) % len(g.labels)
	if g.n < len(g.labels) {
		g.n++
	}
	return g.Stable()
}

// Stable reports whether the history is full and every entry is the same
// label.
func (g *StabilityGate) Stable() bool {
	if g.n < len(g.labels) {
		return false
	}
	first := g.labels[0]
	for _, l := range g.labels[1:] {
		if l != first {
			return false
		}
	}
	return true
}

// Len returns the number of labels held, at most K.
func (g *StabilityGate) Len() int { return g.n }

// Reset empties the history.
func (g *StabilityGate) Reset() {
	clear(g.labels)
	g.head, g.n = 0, 0
}
