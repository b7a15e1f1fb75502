// SPDX-License-Identifier: MIT
package analysis

import "gonum.org/v1/gonum/floats"

// MeanPower returns the mean squared amplitude of samples, Σx²/N. The
// engine compares it against the low-signal and decay-hold thresholds.
func MeanPower(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return floats.Dot(samples, samples) / float64(len(samples))
}

// IsSilent reports whether every sample of block is exactly zero. Capture
// backends deliver such blocks while a device is warming up.
func IsSilent(block []float32) bool {
	for _, v := range block {
		if v != 0 {
			return false
		}
	}
	return true
}
