// SPDX-License-Identifier: MIT
package tuning

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Admission is the tracker's verdict on a block before any spectral work.
type Admission int

const (
	// AdmitAccept means the block should be analysed.
	AdmitAccept Admission = iota
	// AdmitHold means the signal is decaying quickly; keep the last result.
	AdmitHold
	// AdmitLowSignal means the window power is below the power threshold.
	AdmitLowSignal
	// AdmitSkip means the power is too weak to update the estimate.
	AdmitSkip
)

func (a Admission) String() string {
	switch a {
	case AdmitAccept:
		return "accept"
	case AdmitHold:
		return "hold"
	case AdmitLowSignal:
		return "low-signal"
	case AdmitSkip:
		return "skip"
	}
	return fmt.Sprintf("Admission(%d)", int(a))
}

// TrackerConfig holds the smoothing parameters and the reset policies
// applied when a block is rejected.
type TrackerConfig struct {
	AverageSize    int     // moving-average FIFO length
	Alpha          float64 // weight of the previous smoothed value
	PowerThreshold float64 // below: low signal
	MinUpdatePower float64 // below: keep the current estimate
	DecayRatio     float64 // power ratio to the previous block that triggers a hold

	DecayHold              bool // enable the decay hold
	ClearOnLowSignal       bool // clear the FIFO on low signal
	ClearOnOutOfRange      bool // clear the FIFO when the estimate leaves the range
	ResetStabilityOnReject bool // also reset the stability history on either reject
}

// DefaultTrackerConfig returns the tracker defaults.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		AverageSize:       5,
		Alpha:             0.35,
		PowerThreshold:    1e-6,
		MinUpdatePower:    2e-6,
		DecayRatio:        0.3,
		DecayHold:         true,
		ClearOnLowSignal:  true,
		ClearOnOutOfRange: true,
	}
}

// Tracker smooths raw pitch estimates with a moving average followed by an
// exponential filter, and decides which blocks may update them.
type Tracker struct {
	cfg TrackerConfig

	history []float64
	head    int
	n       int

	smoothed  float64
	valid     bool
	lastPower float64
}

// NewTracker returns a tracker for cfg. cfg is assumed validated.
func NewTracker(cfg TrackerConfig) *Tracker {
	return &Tracker{
		cfg:     cfg,
		history: make([]float64, max(cfg.AverageSize, 1)),
	}
}

// Admit classifies a block by its window power and remembers the power
// for the next decay comparison.
func (t *Tracker) Admit(power float64) Admission {
	if t.cfg.DecayHold && t.lastPower > 0 && t.valid && power/t.lastPower < t.cfg.DecayRatio {
		t.lastPower = power
		return AdmitHold
	}
	t.lastPower = power

	switch {
	case power < t.cfg.PowerThreshold:
		return AdmitLowSignal
	case power < t.cfg.MinUpdatePower:
		return AdmitSkip
	}
	return AdmitAccept
}

// Update adds an accepted raw estimate and returns the new smoothed value.
func (t *Tracker) Update(raw float64) float64 {
	t.history[t.head] = raw
	t.head = (t.head + 1) % len(t.history)
	if t.n < len(t.history) {
		t.n++
	}

	mean := stat.Mean(t.history[:t.n], nil)
	if !t.valid {
		t.smoothed = mean
		t.valid = true
	} else {
		t.smoothed = (1-t.cfg.Alpha)*mean + t.cfg.Alpha*t.smoothed
	}
	return t.smoothed
}

// Smoothed returns the current smoothed frequency and whether one exists.
func (t *Tracker) Smoothed() (float64, bool) {
	return t.smoothed, t.valid
}

// HistoryLen returns the number of estimates in the moving average.
func (t *Tracker) HistoryLen() int { return t.n }

// ClearHistory empties the moving-average FIFO. The smoothed value and
// the remembered power survive.
func (t *Tracker) ClearHistory() {
	t.head, t.n = 0, 0
}

// Reset returns the tracker to its initial state.
func (t *Tracker) Reset() {
	t.ClearHistory()
	t.smoothed, t.valid = 0, false
	t.lastPower = 0
}
