// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/internal/tuning"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource captures float32 blocks from a PortAudio input stream.
// PortAudio must be initialised for the lifetime of the source.
type PortAudioSource struct {
	channels   int
	blockSize  int
	sampleRate float64

	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	mono []float32 // first channel of an interleaved buffer
	gate *Gate
	fn   tuning.BlockFunc

	gated atomic.Uint64
}

// NewPortAudioSource resolves the configured input device.
func NewPortAudioSource(cfg *config.Config, gate *Gate) (*PortAudioSource, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tuning.ErrSourceUnavailable, err)
	}

	s := &PortAudioSource{
		channels:    cfg.Audio.InputChannels,
		blockSize:   cfg.Audio.BlockSize,
		sampleRate:  cfg.Audio.SampleRate,
		inputDevice: inputDevice,
		mono:        make([]float32, cfg.Audio.BlockSize),
		gate:        gate,
	}

	if cfg.Audio.LowLatency {
		s.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		s.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return s, nil
}

// Device returns the input device in use.
func (s *PortAudioSource) Device() *portaudio.DeviceInfo { return s.inputDevice }

// Gated returns the number of blocks dropped by the gate.
func (s *PortAudioSource) Gated() uint64 { return s.gated.Load() }

// Start opens and starts the input stream, delivering blocks to fn.
func (s *PortAudioSource) Start(fn tuning.BlockFunc) error {
	if s.inputStream != nil {
		return fmt.Errorf("%w: input stream already open", tuning.ErrSourceUnavailable)
	}
	s.fn = fn

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: s.channels,
			Device:   s.inputDevice,
			Latency:  s.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: s.blockSize,
		SampleRate:      s.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, s.processInputStream)
	if err != nil {
		return fmt.Errorf("%w: failed to open input stream: %w", tuning.ErrSourceUnavailable, err)
	}
	s.inputStream = stream

	if err := s.inputStream.Start(); err != nil {
		s.inputStream.Close()
		s.inputStream = nil
		return fmt.Errorf("%w: failed to start input stream: %w", tuning.ErrSourceUnavailable, err)
	}

	applog.Infof("Audio: capturing from %q at %.0f Hz, %d frames per buffer, latency %s",
		s.inputDevice.Name, s.sampleRate, s.blockSize, s.inputLatency)
	return nil
}

// Stop stops and closes the input stream.
func (s *PortAudioSource) Stop() error {
	if s.inputStream == nil {
		return nil
	}
	if err := s.inputStream.Stop(); err != nil {
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	if err := s.inputStream.Close(); err != nil {
		return fmt.Errorf("failed to close input stream: %w", err)
	}
	s.inputStream = nil

	if n := s.gated.Load(); n > 0 {
		applog.Debugf("Audio: gate dropped %d blocks", n)
	}
	return nil
}

// processInputStream is the capture callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
func (s *PortAudioSource) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	block := firstChannel(in, s.channels, s.mono)
	if s.gate != nil && !s.gate.Open(block) {
		s.gated.Add(1)
		return
	}
	s.fn(block)
}

// firstChannel returns the first channel of an interleaved buffer, using
// dst as storage when a copy is needed.
func firstChannel(in []float32, channels int, dst []float32) []float32 {
	if channels <= 1 {
		return in
	}
	frames := min(len(in)/channels, len(dst))
	for i := range frames {
		dst[i] = in[i*channels]
	}
	return dst[:frames]
}
