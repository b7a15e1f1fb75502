// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the tuner.
const (
	// Audio capture defaults
	DefaultBackend       = BackendPortAudio
	DefaultDeviceID      = MinDeviceID // System default device
	DefaultSampleRate    = 48000       // Hz
	DefaultBlockSize     = 8192        // Samples per callback, a quarter window
	DefaultChannels      = 1           // Mono
	DefaultLowLatency    = false       // Standard latency mode
	DefaultGateEnabled   = false
	DefaultGateThreshold = 0.0 // Passes everything but digital silence

	// Analysis defaults
	DefaultWindowSize     = 32768 // W, ~0.68 s at 48 kHz
	DefaultWindowFunc     = "Hann"
	DefaultHarmonics      = 5
	DefaultNoiseGateRatio = 0.2
	DefaultLowCutoffHz    = 50.0

	// Tracking defaults
	DefaultAverageSize     = 5
	DefaultAlpha           = 0.35
	DefaultPowerThreshold  = 1e-6
	DefaultMinUpdatePower  = 2e-6
	DefaultDecayRatio      = 0.3
	DefaultStabilityFrames = 5

	// Tuning defaults
	DefaultProfile            = "ukulele"
	DefaultToleranceCents     = 5.0
	DefaultMinFrequency       = 50.0
	DefaultMaxFrequency       = 650.0
	DefaultConfirmationFrames = 30
	DefaultDebugInterval      = 10

	// Transport defaults
	DefaultPollInterval     = 50 * time.Millisecond // 20 Hz consumers
	DefaultWebSocketAddr    = ":8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 50 * time.Millisecond

	DefaultLogLevel = "info"

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MinWindowSize = 1024
	MaxWindowSize = 1 << 18
	MaxChannels   = 32

	// Capture backends
	BackendPortAudio = "portaudio"
	BackendMalgo     = "malgo"
)

// Config represents the application configuration, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug diagnostics.
	LogLevel  string          `yaml:"log_level"` // debug, info, warn, error.
	Audio     AudioConfig     `yaml:"audio"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Tuning    TuningConfig    `yaml:"tuning"`
	Profiles  []ProfileConfig `yaml:"profiles"` // Custom instrument profiles.
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds capture settings.
type AudioConfig struct {
	Backend       string  `yaml:"backend"`        // portaudio or malgo.
	InputDevice   int     `yaml:"input_device"`   // Device index for audio input (-1 for default).
	SampleRate    float64 `yaml:"sample_rate"`    // Sample rate in Hz.
	BlockSize     int     `yaml:"block_size"`     // Samples per processing block.
	InputChannels int     `yaml:"input_channels"` // Channels captured; the first one is analysed.
	LowLatency    bool    `yaml:"low_latency"`    // Request low latency settings from the device.
	GateEnabled   bool    `yaml:"gate_enabled"`   // Drop blocks below the gate threshold.
	GateThreshold float64 `yaml:"gate_threshold"` // Peak amplitude, 0.0-1.0.
}

// AnalysisConfig holds the spectral front end and HPS settings.
type AnalysisConfig struct {
	WindowSize     int       `yaml:"window_size"`      // Analysis window W in samples.
	WindowFunc     string    `yaml:"window_func"`      // Taper name, e.g. Hann, Hamming.
	Harmonics      int       `yaml:"harmonics"`        // HPS harmonic count.
	NoiseGateRatio float64   `yaml:"noise_gate_ratio"` // Fraction of band RMS below which bins are zeroed.
	LowCutoffHz    float64   `yaml:"low_cutoff_hz"`    // Bins below are zeroed.
	BandEdges      []float64 `yaml:"band_edges"`       // Octave band edges; empty means the default layout.
}

// TrackingConfig holds smoothing, hold and stability settings.
type TrackingConfig struct {
	AverageSize            int     `yaml:"average_size"`
	Alpha                  float64 `yaml:"alpha"`
	PowerThreshold         float64 `yaml:"power_threshold"`
	MinUpdatePower         float64 `yaml:"min_update_power"`
	DecayRatio             float64 `yaml:"decay_ratio"`
	DecayHold              bool    `yaml:"decay_hold"`
	ClearOnLowSignal       bool    `yaml:"clear_on_low_signal"`
	ClearOnOutOfRange      bool    `yaml:"clear_on_out_of_range"`
	ResetStabilityOnReject bool    `yaml:"reset_stability_on_reject"`
	StabilityFrames        int     `yaml:"stability_frames"`
}

// TuningConfig holds classification settings.
type TuningConfig struct {
	Profile            string  `yaml:"profile"`
	ToleranceCents     float64 `yaml:"tolerance_cents"`
	MinFrequency       float64 `yaml:"min_frequency"`
	MaxFrequency       float64 `yaml:"max_frequency"`
	ConfirmationFrames int     `yaml:"confirmation_frames"`
	InTuneOnStable     bool    `yaml:"in_tune_on_stable"`
	DebugInterval      int     `yaml:"debug_interval"` // Blocks between debug lines.
}

// ProfileConfig declares a custom instrument profile.
type ProfileConfig struct {
	Name  string       `yaml:"name"`
	Notes []NoteConfig `yaml:"notes"`
}

// NoteConfig is one target note of a custom profile.
type NoteConfig struct {
	Label     string  `yaml:"label"`
	Frequency float64 `yaml:"frequency"`
}

// TransportConfig holds settings for the snapshot consumers.
type TransportConfig struct {
	PollInterval     time.Duration `yaml:"poll_interval"`      // Consumer polling period.
	LogStatus        bool          `yaml:"log_status"`         // Log status transitions.
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Serve snapshots on /ws.
	WebSocketAddr    string        `yaml:"websocket_addr"`     // Listen address, e.g. ":8080".
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send snapshot packets over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090".
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
}

// NewConfig returns a Config holding the built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			Backend:       DefaultBackend,
			InputDevice:   DefaultDeviceID,
			SampleRate:    DefaultSampleRate,
			BlockSize:     DefaultBlockSize,
			InputChannels: DefaultChannels,
			LowLatency:    DefaultLowLatency,
			GateEnabled:   DefaultGateEnabled,
			GateThreshold: DefaultGateThreshold,
		},
		Analysis: AnalysisConfig{
			WindowSize:     DefaultWindowSize,
			WindowFunc:     DefaultWindowFunc,
			Harmonics:      DefaultHarmonics,
			NoiseGateRatio: DefaultNoiseGateRatio,
			LowCutoffHz:    DefaultLowCutoffHz,
		},
		Tracking: TrackingConfig{
			AverageSize:       DefaultAverageSize,
			Alpha:             DefaultAlpha,
			PowerThreshold:    DefaultPowerThreshold,
			MinUpdatePower:    DefaultMinUpdatePower,
			DecayRatio:        DefaultDecayRatio,
			DecayHold:         true,
			ClearOnLowSignal:  true,
			ClearOnOutOfRange: true,
			StabilityFrames:   DefaultStabilityFrames,
		},
		Tuning: TuningConfig{
			Profile:            DefaultProfile,
			ToleranceCents:     DefaultToleranceCents,
			MinFrequency:       DefaultMinFrequency,
			MaxFrequency:       DefaultMaxFrequency,
			ConfirmationFrames: DefaultConfirmationFrames,
			DebugInterval:      DefaultDebugInterval,
		},
		Transport: TransportConfig{
			PollInterval:     DefaultPollInterval,
			LogStatus:        true,
			WebSocketAddr:    DefaultWebSocketAddr,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}
