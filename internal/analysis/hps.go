// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// degenerateProduct is the fraction of the previous product's peak below
// which a new product counts as empty. Window sidelobes that survive a
// relative band gate are many orders of magnitude under any real partial.
const degenerateProduct = 1e-4

// HPSConfig parameterises the harmonic product spectrum.
type HPSConfig struct {
	Harmonics  int     // number of spectra multiplied together, including the original
	SampleRate float64 // Hz
	WindowSize int     // W, the FFT length the spectrum came from
}

// HPSEstimator finds the fundamental of a gated magnitude spectrum by
// multiplying it with its own 2x..Hx decimated copies. The spectrum is
// first upsampled Harmonics times by linear interpolation so decimation
// by an integer factor does not lose bin accuracy.
type HPSEstimator struct {
	harmonics int
	binWidth  float64

	upsampled []float64
	acc       []float64
	tmp       []float64
}

// NewHPSEstimator returns an estimator sized for spectra of bins
// magnitudes.
func NewHPSEstimator(cfg HPSConfig, bins int) (*HPSEstimator, error) {
	if cfg.Harmonics < 1 {
		return nil, fmt.Errorf("hps: harmonics must be >= 1, got %d", cfg.Harmonics)
	}
	if cfg.SampleRate <= 0 || cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("hps: sample rate and window size must be positive (got %f, %d)", cfg.SampleRate, cfg.WindowSize)
	}
	h := &HPSEstimator{
		harmonics: cfg.Harmonics,
		binWidth:  cfg.SampleRate / float64(cfg.WindowSize),
	}
	h.grow(bins * cfg.Harmonics)
	return h, nil
}

func (h *HPSEstimator) grow(m int) {
	if cap(h.upsampled) >= m {
		return
	}
	h.upsampled = make([]float64, m)
	h.acc = make([]float64, m)
	h.tmp = make([]float64, m)
}

// Estimate returns the fundamental frequency in Hz. An empty or all-zero
// spectrum yields 0.
func (h *HPSEstimator) Estimate(spectrum []float64) float64 {
	idx := h.productPeak(spectrum)
	return float64(idx) * h.binWidth / float64(h.harmonics)
}

// productPeak returns the argmax of the harmonic product in upsampled bin
// units.
func (h *HPSEstimator) productPeak(spectrum []float64) int {
	n := len(spectrum)
	if n == 0 {
		return 0
	}
	m := n * h.harmonics
	h.grow(m)
	up := h.upsampled[:m]

	factor := float64(h.harmonics)
	for j := range up {
		x := float64(j) / factor
		i := int(x)
		if i >= n-1 {
			up[j] = spectrum[n-1]
			continue
		}
		frac := x - float64(i)
		up[j] = spectrum[i] + frac*(spectrum[i+1]-spectrum[i])
	}

	if norm := floats.Norm(up, 2); norm > 0 {
		floats.Scale(1/norm, up)
	}

	acc := h.acc[:m]
	copy(acc, up)
	length := m

	for f := 2; f <= h.harmonics; f++ {
		decimated := (m + f - 1) / f
		limit := min(length, decimated)
		tmp := h.tmp[:limit]
		for i := range tmp {
			tmp[i] = acc[i] * up[i*f]
		}
		// Over-gated harmonics: keep the last product that still had a peak.
		if floats.Max(tmp) <= degenerateProduct*floats.Max(acc[:length]) {
			break
		}
		h.acc, h.tmp = h.tmp, h.acc
		acc = h.acc
		length = limit
	}

	return floats.MaxIdx(acc[:length])
}
