// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"sync/atomic"
)

const signMask = 1 << 31

// Gate drops blocks whose peak amplitude does not exceed a threshold. It
// is safe to reconfigure while the capture callback is running.
type Gate struct {
	enabled   atomic.Bool
	threshold atomic.Uint32 // float32 bits of the peak threshold
}

// NewGate returns a gate with the given threshold in 0.0-1.0.
func NewGate(threshold float64, enabled bool) *Gate {
	g := &Gate{}
	g.SetThreshold(threshold)
	g.enabled.Store(enabled)
	return g
}

func (g *Gate) Enable()       { g.enabled.Store(true) }
func (g *Gate) Disable()      { g.enabled.Store(false) }
func (g *Gate) Enabled() bool { return g.enabled.Load() }

// SetThreshold adjusts the gate threshold.
// The value is in the range of 0.0-1.0 where 0 passes everything except
// digital silence and 1 passes only full-scale peaks above 1.
func (g *Gate) SetThreshold(threshold float64) {
	threshold = min(max(threshold, 0), 1)
	g.threshold.Store(math.Float32bits(float32(threshold)))
}

// Threshold returns the current threshold in the range 0.0-1.0.
func (g *Gate) Threshold() float64 {
	return float64(math.Float32frombits(g.threshold.Load()))
}

// Open reports whether block should be passed on. A disabled gate is
// always open.
func (g *Gate) Open(block []float32) bool {
	if !g.enabled.Load() {
		return true
	}
	return peakBits(block) > g.threshold.Load()
}

// Peak returns the largest absolute sample value in block.
func Peak(block []float32) float32 {
	return math.Float32frombits(peakBits(block))
}

// peakBits compares magnitudes as integers: with the sign bit cleared, the
// IEEE-754 bit pattern of a non-negative float orders like the value.
func peakBits(block []float32) uint32 {
	var peak uint32
	for _, s := range block {
		if a := math.Float32bits(s) &^ signMask; a > peak {
			peak = a
		}
	}
	return peak
}
