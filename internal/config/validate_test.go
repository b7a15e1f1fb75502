// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"strings"
	"testing"

	"tuner/internal/tuning"
)

func TestNewConfigIsValid(t *testing.T) {
	t.Parallel()
	if err := NewConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"backend", func(c *Config) { c.Audio.Backend = "alsa" }, "audio.backend"},
		{"device", func(c *Config) { c.Audio.InputDevice = -2 }, "audio.input_device"},
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 1000 }, "audio.sample_rate"},
		{"channels", func(c *Config) { c.Audio.InputChannels = 0 }, "audio.input_channels"},
		{"gate", func(c *Config) { c.Audio.GateThreshold = 2 }, "audio.gate_threshold"},
		{"window not pow2", func(c *Config) { c.Analysis.WindowSize = 30000 }, "analysis.window_size"},
		{"window func", func(c *Config) { c.Analysis.WindowFunc = "kaiser" }, "analysis.window_func"},
		{"block larger than window", func(c *Config) { c.Audio.BlockSize = 65536 }, "exceeds"},
		{"unknown profile", func(c *Config) { c.Tuning.Profile = "banjo" }, "tuning.profile"},
		{"bad custom profile", func(c *Config) {
			c.Profiles = []ProfileConfig{{Name: "x", Notes: []NoteConfig{{"A4", 0}}}}
		}, "profiles[0]"},
		{"duplicate custom profile", func(c *Config) {
			p := ProfileConfig{Name: "x", Notes: []NoteConfig{{"A4", 440}}}
			c.Profiles = []ProfileConfig{p, p}
		}, "duplicate name"},
		{"udp address", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "transport.udp_target_address"},
		{"websocket address", func(c *Config) {
			c.Transport.WebSocketEnabled = true
			c.Transport.WebSocketAddr = "8080"
		}, "transport.websocket_addr"},
		{"poll interval", func(c *Config) { c.Transport.PollInterval = 0 }, "transport.poll_interval"},
		{"engine parameter", func(c *Config) { c.Tracking.Alpha = 1.5 }, "alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateReportsEverything(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.Audio.Backend = "alsa"
	cfg.Analysis.Harmonics = 0
	cfg.Tuning.ToleranceCents = -1

	err := cfg.Validate()
	for _, want := range []string{"audio.backend", "harmonics", "tolerance"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	if !errors.Is(err, tuning.ErrInvalidConfig) {
		t.Error("engine errors should wrap tuning.ErrInvalidConfig")
	}
}

func TestAllProfiles(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.Profiles = []ProfileConfig{
		{Name: "guitar", Notes: []NoteConfig{{"D2", 73.42}}},
		{Name: "bass", Notes: []NoteConfig{{"E1", 41.2}}},
	}

	var names []string
	for _, p := range cfg.AllProfiles() {
		names = append(names, p.Name)
	}
	want := "guitar,bass,ukulele,ukulele-low-g"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("AllProfiles() = %s, want %s", got, want)
	}
}

func TestEngineConfigDebugInterval(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()

	ec, err := cfg.EngineConfig()
	if err != nil {
		t.Fatal(err)
	}
	if ec.DebugInterval != 0 {
		t.Errorf("DebugInterval = %d without debug, want 0", ec.DebugInterval)
	}

	cfg.Debug = true
	ec, _ = cfg.EngineConfig()
	if ec.DebugInterval != DefaultDebugInterval {
		t.Errorf("DebugInterval = %d with debug, want %d", ec.DebugInterval, DefaultDebugInterval)
	}
}
