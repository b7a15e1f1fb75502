// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"slices"
	"strings"

	"tuner/internal/analysis"
	"tuner/internal/tuning"
)

func (p ProfileConfig) profile() tuning.Profile {
	out := tuning.Profile{Name: p.Name, Notes: make([]tuning.Note, len(p.Notes))}
	for i, n := range p.Notes {
		out.Notes[i] = tuning.Note{Label: n.Label, Frequency: n.Frequency}
	}
	return out
}

// CustomProfiles returns the profiles declared in the file.
func (c *Config) CustomProfiles() []tuning.Profile {
	out := make([]tuning.Profile, len(c.Profiles))
	for i, p := range c.Profiles {
		out[i] = p.profile()
	}
	return out
}

// AllProfiles returns the custom profiles followed by every built-in whose
// name is not shadowed by a custom one.
func (c *Config) AllProfiles() []tuning.Profile {
	out := c.CustomProfiles()
	for _, b := range tuning.BuiltinProfiles() {
		if !slices.ContainsFunc(c.Profiles, func(p ProfileConfig) bool { return strings.EqualFold(p.Name, b.Name) }) {
			out = append(out, b)
		}
	}
	return out
}

// EngineConfig converts the file settings to an engine configuration,
// resolving the selected profile. The result is not validated.
func (c *Config) EngineConfig() (tuning.Config, error) {
	profile, err := tuning.LookupProfile(c.Tuning.Profile, c.CustomProfiles())
	if err != nil {
		return tuning.Config{}, fmt.Errorf("tuning.profile: %w", err)
	}
	window, err := analysis.ParseWindowFunc(c.Analysis.WindowFunc)
	if err != nil {
		return tuning.Config{}, fmt.Errorf("analysis.window_func: %w", err)
	}

	var edges []float64
	if len(c.Analysis.BandEdges) > 0 {
		edges = c.Analysis.BandEdges
	}

	debugInterval := c.Tuning.DebugInterval
	if !c.Debug {
		debugInterval = 0
	}

	return tuning.Config{
		SampleRate:     c.Audio.SampleRate,
		WindowSize:     c.Analysis.WindowSize,
		BlockSize:      c.Audio.BlockSize,
		Harmonics:      c.Analysis.Harmonics,
		NoiseGateRatio: c.Analysis.NoiseGateRatio,
		LowCutoffHz:    c.Analysis.LowCutoffHz,
		Window:         window,
		BandEdges:      edges,
		MinFrequency:   c.Tuning.MinFrequency,
		MaxFrequency:   c.Tuning.MaxFrequency,
		Tracker: tuning.TrackerConfig{
			AverageSize:            c.Tracking.AverageSize,
			Alpha:                  c.Tracking.Alpha,
			PowerThreshold:         c.Tracking.PowerThreshold,
			MinUpdatePower:         c.Tracking.MinUpdatePower,
			DecayRatio:             c.Tracking.DecayRatio,
			DecayHold:              c.Tracking.DecayHold,
			ClearOnLowSignal:       c.Tracking.ClearOnLowSignal,
			ClearOnOutOfRange:      c.Tracking.ClearOnOutOfRange,
			ResetStabilityOnReject: c.Tracking.ResetStabilityOnReject,
		},
		StabilityFrames:    c.Tracking.StabilityFrames,
		Tolerance:          c.Tuning.ToleranceCents,
		ConfirmationFrames: c.Tuning.ConfirmationFrames,
		InTuneOnStable:     c.Tuning.InTuneOnStable,
		DebugInterval:      debugInterval,
		Profile:            profile,
	}, nil
}
