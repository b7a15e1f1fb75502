// SPDX-License-Identifier: MIT
package tuning

import "testing"

func TestStabilityGate(t *testing.T) {
	tests := []struct {
		name   string
		k      int
		labels []string
		want   bool
	}{
		{"not enough labels", 5, []string{"A4", "A4", "A4", "A4"}, false},
		{"five identical", 5, []string{"A4", "A4", "A4", "A4", "A4"}, true},
		{"one differs", 5, []string{"A4", "A4", "E4", "A4", "A4"}, false},
		{"old disagreement evicted", 3, []string{"E4", "A4", "A4", "A4"}, true},
		{"newest differs", 3, []string{"A4", "A4", "A4", "E4"}, false},
		{"k of one", 1, []string{"E4", "A4"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewStabilityGate(tt.k)
			var got bool
			for _, l := range tt.labels {
				got = g.Push(l)
			}
			if got != tt.want {
				t.Errorf("Push() = %v, want %v", got, tt.want)
			}
			if g.Stable() != got {
				t.Errorf("Stable() = %v disagrees with Push()", g.Stable())
			}
			if want := min(len(tt.labels), tt.k); g.Len() != want {
				t.Errorf("Len() = %d, want %d", g.Len(), want)
			}
		})
	}
}

func TestStabilityGateReset(t *testing.T) {
	g := NewStabilityGate(2)
	g.Push("A4")
	g.Push("A4")
	g.Reset()

	if g.Stable() || g.Len() != 0 {
		t.Errorf("after Reset: Stable() = %v, Len() = %d", g.Stable(), g.Len())
	}
	if g.Push("A4") {
		t.Error("a single label after Reset must not be stable")
	}
}

func TestStabilityGatePushZeroAllocs(t *testing.T) {
	g := NewStabilityGate(5)
	allocs := testing.AllocsPerRun(100, func() {
		g.Push("A4")
	})
	if allocs > 0 {
		t.Errorf("Push allocated %.1f times per run, want 0", allocs)
	}
}
