// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/internal/tuning"

	"github.com/gen2brain/malgo"
)

// MalgoSource captures through miniaudio. The device period is only a
// hint, so callbacks are regrouped into exact blocks.
type MalgoSource struct {
	deviceIndex int
	sampleRate  uint32
	channels    uint32
	blockSize   int
	gate        *Gate

	mu        sync.Mutex
	ctx       *malgo.AllocatedContext
	device    *malgo.Device
	assembler *BlockAssembler
	scratch   []float32
}

// NewMalgoSource returns an unstarted miniaudio source.
func NewMalgoSource(cfg *config.Config, gate *Gate) *MalgoSource {
	return &MalgoSource{
		deviceIndex: cfg.Audio.InputDevice,
		sampleRate:  uint32(cfg.Audio.SampleRate),
		channels:    uint32(cfg.Audio.InputChannels),
		blockSize:   cfg.Audio.BlockSize,
		gate:        gate,
		scratch:     make([]float32, cfg.Audio.BlockSize),
	}
}

// Start initialises the miniaudio context and device and starts capture.
func (s *MalgoSource) Start(fn tuning.BlockFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		return fmt.Errorf("%w: capture already running", tuning.ErrSourceUnavailable)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("%w: init audio context: %w", tuning.ErrSourceUnavailable, err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.SampleRate = s.sampleRate
	deviceConfig.PeriodSizeInFrames = uint32(s.blockSize)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = s.channels

	if s.deviceIndex >= 0 {
		infos, err := ctx.Devices(malgo.Capture)
		if err != nil {
			s.freeContext(ctx)
			return fmt.Errorf("%w: enumerate devices: %w", tuning.ErrSourceUnavailable, err)
		}
		if s.deviceIndex >= len(infos) {
			s.freeContext(ctx)
			return fmt.Errorf("%w: device index %d out of range (have %d devices)",
				tuning.ErrSourceUnavailable, s.deviceIndex, len(infos))
		}
		deviceConfig.Capture.DeviceID = infos[s.deviceIndex].ID.Pointer()
	}

	s.assembler = NewBlockAssembler(s.blockSize, func(block []float32) {
		if s.gate != nil && !s.gate.Open(block) {
			return
		}
		fn(block)
	})

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: s.onData})
	if err != nil {
		s.freeContext(ctx)
		return fmt.Errorf("%w: init device: %w", tuning.ErrSourceUnavailable, err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		s.freeContext(ctx)
		return fmt.Errorf("%w: start device: %w", tuning.ErrSourceUnavailable, err)
	}

	s.ctx, s.device = ctx, device
	applog.Infof("Audio: miniaudio capture at %d Hz, %d channel(s), period %d frames",
		device.SampleRate(), device.CaptureChannels(), s.blockSize)
	return nil
}

// Stop stops the device and releases the context.
func (s *MalgoSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil {
		return nil
	}
	err := s.device.Stop()
	s.device.Uninit()
	s.device = nil
	s.freeContext(s.ctx)
	s.ctx = nil
	if err != nil {
		return fmt.Errorf("stop device: %w", err)
	}
	return nil
}

func (s *MalgoSource) freeContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		applog.Warnf("Audio: uninit context: %v", err)
	}
	ctx.Free()
}

// onData runs on the miniaudio thread.
func (s *MalgoSource) onData(_, input []byte, frames uint32) {
	s.assembler.Write(decodeFirstChannel(input, int(frames), int(s.channels), &s.scratch))
}

// decodeFirstChannel converts interleaved little-endian float32 frames to
// mono samples, growing *scratch when a period is longer than expected.
func decodeFirstChannel(data []byte, frames, channels int, scratch *[]float32) []float32 {
	stride := 4 * max(channels, 1)
	frames = min(frames, len(data)/stride)
	if cap(*scratch) < frames {
		*scratch = make([]float32, frames)
	}
	out := (*scratch)[:frames]
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*stride:]))
	}
	return out
}
