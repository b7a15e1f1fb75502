// SPDX-License-Identifier: MIT
package analysis

// SpectrumAnalyzer turns a time-domain window into a gated magnitude
// spectrum. The returned slice is owned by the analyzer and is only valid
// until the next call.
type SpectrumAnalyzer interface {
	Analyze(window []float64) []float64
	BinWidth() float64
}

// PitchEstimator extracts a fundamental frequency in Hz from a magnitude
// spectrum.
type PitchEstimator interface {
	Estimate(spectrum []float64) float64
}

var (
	_ SpectrumAnalyzer = (*SpectralFrontEnd)(nil)
	_ PitchEstimator   = (*HPSEstimator)(nil)
)
