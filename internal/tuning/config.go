// SPDX-License-Identifier: MIT
package tuning

import (
	"errors"
	"fmt"

	"tuner/internal/analysis"
)

// Config holds every engine parameter. Values are validated, never
// clamped.
type Config struct {
	SampleRate float64 // Hz
	WindowSize int     // W, samples in the analysis window
	BlockSize  int     // samples delivered per source callback

	Harmonics      int
	NoiseGateRatio float64
	LowCutoffHz    float64
	Window         analysis.WindowFunc
	BandEdges      []float64 // nil means analysis.DefaultOctaveEdges

	MinFrequency float64 // admissible range, Hz
	MaxFrequency float64

	Tracker TrackerConfig

	StabilityFrames    int     // K
	Tolerance          float64 // cents
	ConfirmationFrames int     // C

	// InTuneOnStable fires EventInTune when the note first becomes stable
	// and IN_TUNE. By default it fires only when the status itself changes
	// to IN_TUNE on a stable block.
	InTuneOnStable bool

	DebugInterval int // blocks between debug diagnostics; 0 disables

	Profile Profile
}

// DefaultConfig returns the standard tuner configuration with the default
// profile.
func DefaultConfig() Config {
	p, _ := LookupProfile(DefaultProfileName, nil)
	return Config{
		SampleRate:         48000,
		WindowSize:         32768,
		BlockSize:          8192,
		Harmonics:          5,
		NoiseGateRatio:     0.2,
		LowCutoffHz:        50,
		Window:             analysis.Hann,
		MinFrequency:       50,
		MaxFrequency:       650,
		Tracker:            DefaultTrackerConfig(),
		StabilityFrames:    5,
		Tolerance:          5,
		ConfirmationFrames: 30,
		DebugInterval:      10,
		Profile:            p,
	}
}

// Validate reports every invalid field at once, wrapped in
// ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.SampleRate > 0, "sample rate must be positive, got %g", c.SampleRate)
	check(c.WindowSize >= 2 && c.WindowSize%2 == 0, "window size must be an even number >= 2, got %d", c.WindowSize)
	check(c.BlockSize > 0, "block size must be positive, got %d", c.BlockSize)
	check(c.BlockSize <= c.WindowSize, "block size %d must not exceed window size %d", c.BlockSize, c.WindowSize)
	check(c.Harmonics >= 1, "harmonics must be >= 1, got %d", c.Harmonics)
	check(c.NoiseGateRatio >= 0, "noise gate ratio must not be negative, got %g", c.NoiseGateRatio)
	check(c.LowCutoffHz >= 0, "low cutoff must not be negative, got %g", c.LowCutoffHz)
	check(c.MinFrequency > 0, "minimum frequency must be positive, got %g", c.MinFrequency)
	check(c.MaxFrequency > c.MinFrequency, "maximum frequency %g must exceed minimum %g", c.MaxFrequency, c.MinFrequency)
	check(c.MaxFrequency < c.SampleRate/2, "maximum frequency %g must be below Nyquist (%g)", c.MaxFrequency, c.SampleRate/2)

	t := c.Tracker
	check(t.AverageSize >= 1, "average size must be >= 1, got %d", t.AverageSize)
	check(t.Alpha >= 0 && t.Alpha < 1, "smoothing alpha must be in [0, 1), got %g", t.Alpha)
	check(t.PowerThreshold >= 0, "power threshold must not be negative, got %g", t.PowerThreshold)
	check(t.MinUpdatePower >= t.PowerThreshold, "min update power %g must be >= power threshold %g", t.MinUpdatePower, t.PowerThreshold)
	check(t.DecayRatio >= 0 && t.DecayRatio <= 1, "decay ratio must be in [0, 1], got %g", t.DecayRatio)

	check(c.StabilityFrames >= 1, "stability frames must be >= 1, got %d", c.StabilityFrames)
	check(c.Tolerance >= 0, "tolerance must not be negative, got %g", c.Tolerance)
	check(c.ConfirmationFrames >= 1, "confirmation frames must be >= 1, got %d", c.ConfirmationFrames)
	check(c.DebugInterval >= 0, "debug interval must not be negative, got %d", c.DebugInterval)

	if err := c.Profile.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
