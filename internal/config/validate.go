// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"net"

	"tuner/internal/analysis"
	applog "tuner/internal/log"
	"tuner/pkg/bitint"
)

// Validate reports every invalid setting at once. Values are never
// clamped.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}

	a := c.Audio
	check(a.Backend == BackendPortAudio || a.Backend == BackendMalgo,
		"audio.backend: must be %q or %q, got %q", BackendPortAudio, BackendMalgo, a.Backend)
	check(a.InputDevice >= MinDeviceID, "audio.input_device: must be >= %d, got %d", MinDeviceID, a.InputDevice)
	check(a.SampleRate >= MinSampleRate && a.SampleRate <= MaxSampleRate,
		"audio.sample_rate: must be within %d-%d Hz, got %g", MinSampleRate, MaxSampleRate, a.SampleRate)
	check(a.BlockSize > 0, "audio.block_size: must be positive, got %d", a.BlockSize)
	check(a.InputChannels >= 1 && a.InputChannels <= MaxChannels,
		"audio.input_channels: must be within 1-%d, got %d", MaxChannels, a.InputChannels)
	check(a.GateThreshold >= 0 && a.GateThreshold <= 1, "audio.gate_threshold: must be within 0-1, got %g", a.GateThreshold)

	an := c.Analysis
	check(bitint.IsPowerOfTwo(an.WindowSize) && an.WindowSize >= MinWindowSize && an.WindowSize <= MaxWindowSize,
		"analysis.window_size: must be a power of two within %d-%d, got %d", MinWindowSize, MaxWindowSize, an.WindowSize)
	if _, err := analysis.ParseWindowFunc(an.WindowFunc); err != nil {
		errs = append(errs, fmt.Errorf("analysis.window_func: %w", err))
	}
	check(a.BlockSize <= an.WindowSize || an.WindowSize <= 0,
		"audio.block_size: %d exceeds analysis.window_size %d", a.BlockSize, an.WindowSize)

	seen := make(map[string]bool, len(c.Profiles))
	for i, p := range c.Profiles {
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("profiles[%d]: duplicate name %q", i, p.Name))
		}
		seen[p.Name] = true
		if err := p.profile().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("profiles[%d]: %w", i, err))
		}
	}

	t := c.Transport
	check(t.PollInterval > 0, "transport.poll_interval: must be positive, got %s", t.PollInterval)
	if t.WebSocketEnabled {
		if _, _, err := net.SplitHostPort(t.WebSocketAddr); err != nil {
			errs = append(errs, fmt.Errorf("transport.websocket_addr: %w", err))
		}
	}
	if t.UDPEnabled {
		if _, _, err := net.SplitHostPort(t.UDPTargetAddress); err != nil {
			errs = append(errs, fmt.Errorf("transport.udp_target_address: %w", err))
		}
		check(t.UDPSendInterval > 0, "transport.udp_send_interval: must be positive when UDP is enabled, got %s", t.UDPSendInterval)
	}

	// The engine checks its own parameters; report those too.
	if ec, err := c.EngineConfig(); err != nil {
		errs = append(errs, err)
	} else if err := ec.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
