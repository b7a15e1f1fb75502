// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"

	"tuner/internal/config"
	"tuner/internal/tuning"
)

// NewCaptureSource returns the live input source selected by
// cfg.Audio.Backend. The PortAudio backend requires Initialize.
func NewCaptureSource(cfg *config.Config) (tuning.Source, error) {
	gate := NewGate(cfg.Audio.GateThreshold, cfg.Audio.GateEnabled)

	switch cfg.Audio.Backend {
	case config.BackendPortAudio, "":
		src, err := NewPortAudioSource(cfg, gate)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.BackendMalgo:
		return NewMalgoSource(cfg, gate), nil
	default:
		return nil, fmt.Errorf("%w: unknown audio backend %q", tuning.ErrSourceUnavailable, cfg.Audio.Backend)
	}
}
