// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"math/cmplx"
	"strings"

	applog "tuner/internal/log"
	"tuner/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the analysis taper.
type WindowFunc int

const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

var windowNames = map[WindowFunc]string{
	BartlettHann:    "BartlettHann",
	Blackman:        "Blackman",
	BlackmanNuttall: "BlackmanNuttall",
	Hann:            "Hann",
	Hamming:         "Hamming",
	Lanczos:         "Lanczos",
	Nuttall:         "Nuttall",
}

func (w WindowFunc) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WindowFunc(%d)", int(w))
}

// ErrInvalidFrontEnd is wrapped by every NewSpectralFrontEnd validation
// failure.
var ErrInvalidFrontEnd = errors.New("invalid spectral front end configuration")

// FrontEndConfig describes the analysis window and the noise gate.
type FrontEndConfig struct {
	Size           int        // window length W in samples
	SampleRate     float64    // Hz
	LowCutoffHz    float64    // bins below this are zeroed
	NoiseGateRatio float64    // fraction of band RMS below which bins are zeroed
	BandEdges      []float64  // octave band edges in Hz; nil means DefaultOctaveEdges
	Window         WindowFunc // analysis taper
}

// workspace holds every buffer Analyze touches so the capture callback
// never allocates.
type workspace struct {
	input    []float64    // tapered window
	coeffs   []complex128 // FFT output, W/2+1 values
	spectrum []float64    // W/2 magnitudes, gated in place
	taper    []float64    // precomputed window coefficients
}

// SpectralFrontEnd tapers a window, takes its magnitude spectrum and
// applies the low cutoff and per-octave noise gate.
type SpectralFrontEnd struct {
	cfg       FrontEndConfig
	fft       *fourier.FFT
	binWidth  float64
	cutoffBin int
	bands     []FrequencyBand
	ws        workspace
}

// NewSpectralFrontEnd validates cfg and precomputes the taper, the FFT plan
// and the band layout.
func NewSpectralFrontEnd(cfg FrontEndConfig) (*SpectralFrontEnd, error) {
	if cfg.Size < 2 || cfg.Size%2 != 0 {
		return nil, fmt.Errorf("%w: window size must be an even number >= 2, got %d", ErrInvalidFrontEnd, cfg.Size)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %f", ErrInvalidFrontEnd, cfg.SampleRate)
	}
	if cfg.NoiseGateRatio < 0 {
		return nil, fmt.Errorf("%w: noise gate ratio must not be negative, got %f", ErrInvalidFrontEnd, cfg.NoiseGateRatio)
	}
	if cfg.LowCutoffHz < 0 {
		return nil, fmt.Errorf("%w: low cutoff must not be negative, got %f", ErrInvalidFrontEnd, cfg.LowCutoffHz)
	}
	if cfg.BandEdges == nil {
		cfg.BandEdges = DefaultOctaveEdges
	}

	bins := cfg.Size / 2
	binWidth := cfg.SampleRate / float64(cfg.Size)
	taper := make([]float64, cfg.Size)
	applyWindow(taper, cfg.Window)

	p := &SpectralFrontEnd{
		cfg:       cfg,
		fft:       fourier.NewFFT(cfg.Size),
		binWidth:  binWidth,
		cutoffBin: min(int(cfg.LowCutoffHz/binWidth), bins),
		bands:     OctaveBands(cfg.BandEdges, binWidth, bins),
		ws: workspace{
			input:    make([]float64, cfg.Size),
			coeffs:   make([]complex128, cfg.Size/2+1),
			spectrum: make([]float64, bins),
			taper:    taper,
		},
	}

	if exp := bitint.Log2(cfg.Size); exp >= 0 {
		applog.Debugf("Analysis: front end W=2^%d (%.3f Hz/bin), window %s, cutoff bin %d, %d gate bands",
			exp, binWidth, cfg.Window, p.cutoffBin, len(p.bands))
	} else {
		applog.Debugf("Analysis: front end W=%d (%.3f Hz/bin), window %s, cutoff bin %d, %d gate bands",
			cfg.Size, binWidth, cfg.Window, p.cutoffBin, len(p.bands))
	}
	return p, nil
}

// Analyze returns the gated magnitude spectrum of samples. samples shorter
// than the window are zero padded and extra samples are ignored. The
// result aliases an internal buffer that the next call overwrites.
func (p *SpectralFrontEnd) Analyze(samples []float64) []float64 {
	ws := &p.ws

	n := min(len(samples), p.cfg.Size)
	for i := range n {
		ws.input[i] = samples[i] * ws.taper[i]
	}
	clear(ws.input[n:])

	p.fft.Coefficients(ws.coeffs, ws.input)

	// Real input is symmetric; only the first W/2 bins carry information.
	for i := range ws.spectrum {
		ws.spectrum[i] = cmplx.Abs(ws.coeffs[i])
	}

	clear(ws.spectrum[:p.cutoffBin])
	GateBands(ws.spectrum, p.bands, p.cfg.NoiseGateRatio)

	return ws.spectrum
}

// BinWidth returns the frequency spacing of spectrum bins in Hz.
func (p *SpectralFrontEnd) BinWidth() float64 {
	return p.binWidth
}

// FrequencyForBin returns the centre frequency of bin k, or 0 when k is
// out of range.
func (p *SpectralFrontEnd) FrequencyForBin(k int) float64 {
	if k < 0 || k >= len(p.ws.spectrum) {
		return 0
	}
	return float64(k) * p.binWidth
}

// Bands returns the gate band layout.
func (p *SpectralFrontEnd) Bands() []FrequencyBand {
	return p.bands
}

// Size returns the window length W.
func (p *SpectralFrontEnd) Size() int {
	return p.cfg.Size
}

// ParseWindowFunc converts a window name (case-insensitive) to a
// WindowFunc. Unknown names return Hann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown window function %q", name)
	}
}

// applyWindow fills coeffs with the selected taper. gonum's window
// functions scale their argument in place, so coeffs starts at 1.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hann(coeffs)
	}
}
