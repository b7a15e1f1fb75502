// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	applog "tuner/internal/log"
	"tuner/internal/tuning"

	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// ErrUnsupportedWAV is returned for WAV files the tuner cannot decode.
var ErrUnsupportedWAV = errors.New("unsupported WAV file")

// WAVSource replays the first channel of a PCM WAV file as a stream of
// blocks. Run feeds the whole file synchronously; Start paces blocks in
// real time on a goroutine when realtime playback is enabled.
type WAVSource struct {
	path       string
	sampleRate float64
	blockSize  int
	samples    []float32
	realtime   bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// OpenWAV decodes the file at path. 16, 24 and 32-bit integer PCM is
// supported.
func OpenWAV(path string, blockSize int) (*WAVSource, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid WAV file", ErrUnsupportedWAV, path)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: %s uses audio format %d, only integer PCM is supported",
			ErrUnsupportedWAV, path, dec.WavAudioFormat)
	}
	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %s has %d-bit samples", ErrUnsupportedWAV, path, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	channels := int(dec.NumChans)
	interleaved := buf.AsFloat32Buffer().Data
	samples := make([]float32, len(interleaved)/channels)
	for i := range samples {
		samples[i] = interleaved[i*channels]
	}

	s := &WAVSource{
		path:       path,
		sampleRate: float64(dec.SampleRate),
		blockSize:  blockSize,
		samples:    samples,
	}
	applog.Debugf("Audio: loaded %s: %d Hz, %d-bit, %d channel(s), %s",
		path, dec.SampleRate, dec.BitDepth, channels, s.Duration())
	return s, nil
}

// SampleRate returns the file's sample rate in Hz.
func (s *WAVSource) SampleRate() float64 { return s.sampleRate }

// Len returns the number of mono samples.
func (s *WAVSource) Len() int { return len(s.samples) }

// Duration returns the playing time of the file.
func (s *WAVSource) Duration() time.Duration {
	if s.sampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(s.samples)) / s.sampleRate * float64(time.Second))
}

// SetRealtime makes Start deliver one block per block period instead of
// as fast as possible.
func (s *WAVSource) SetRealtime(realtime bool) { s.realtime = realtime }

// Run delivers every complete block to fn and returns the number of
// blocks. A trailing partial block is dropped.
func (s *WAVSource) Run(fn tuning.BlockFunc) int {
	return s.run(fn, nil)
}

func (s *WAVSource) run(fn tuning.BlockFunc, stop <-chan struct{}) int {
	a := NewBlockAssembler(s.blockSize, fn)

	var tick <-chan time.Time
	if s.realtime && stop != nil {
		period := time.Duration(float64(s.blockSize) / s.sampleRate * float64(time.Second))
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	blocks := 0
	for off := 0; off < len(s.samples); off += s.blockSize {
		if stop != nil {
			select {
			case <-stop:
				return blocks
			default:
			}
		}
		if tick != nil {
			select {
			case <-stop:
				return blocks
			case <-tick:
			}
		}
		end := min(off+s.blockSize, len(s.samples))
		blocks += a.Write(s.samples[off:end])
	}
	return blocks
}

// Start replays the file on a new goroutine.
func (s *WAVSource) Start(fn tuning.BlockFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return fmt.Errorf("%w: %s is already playing", tuning.ErrSourceUnavailable, s.path)
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		n := s.run(fn, stop)
		applog.Debugf("Audio: %s delivered %d blocks", s.path, n)
	}(s.stop, s.done)
	return nil
}

// Stop halts playback and waits for the goroutine to exit.
func (s *WAVSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return nil
	}
	close(s.stop)
	<-s.done
	s.stop = nil
	return nil
}

// Done is closed when playback started by Start has finished. It is nil
// before the first Start.
func (s *WAVSource) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
