// SPDX-License-Identifier: MIT

// Package utils provides synthetic audio and test doubles shared by the
// tuner's package tests.
package utils

import (
	"math"
	"math/rand/v2"
	"sync"
)

// PluckPartials approximates the harmonic amplitudes of a plucked nylon
// string: fundamental plus four decaying overtones.
var PluckPartials = []float64{1, 0.5, 0.33, 0.25, 0.2}

// ToneGenerator produces a phase-continuous harmonic tone, block by block,
// the way a capture callback would deliver it.
type ToneGenerator struct {
	sampleRate float64
	frequency  float64
	amplitude  float64
	partials   []float64
	n          int
}

// NewToneGenerator returns a generator for a tone at frequency Hz. partials
// holds the relative amplitude of harmonic 1, 2, ...; nil means a pure sine.
// The summed signal is scaled so its peak never exceeds amplitude.
func NewToneGenerator(sampleRate, frequency, amplitude float64, partials []float64) *ToneGenerator {
	if len(partials) == 0 {
		partials = []float64{1}
	}
	return &ToneGenerator{
		sampleRate: sampleRate,
		frequency:  frequency,
		amplitude:  amplitude,
		partials:   partials,
	}
}

// Next fills block with the following len(block) samples.
func (g *ToneGenerator) Next(block []float32) {
	var sum float64
	for _, p := range g.partials {
		sum += math.Abs(p)
	}
	scale := g.amplitude / sum
	for i := range block {
		t := float64(g.n) / g.sampleRate
		var v float64
		for h, p := range g.partials {
			v += p * math.Sin(2*math.Pi*g.frequency*float64(h+1)*t)
		}
		block[i] = float32(v * scale)
		g.n++
	}
}

// Block allocates and returns the next size samples.
func (g *ToneGenerator) Block(size int) []float32 {
	block := make([]float32, size)
	g.Next(block)
	return block
}

// GenerateSine returns size samples of a sine at frequency Hz.
func GenerateSine(size int, sampleRate, frequency, amplitude float64) []float32 {
	return NewToneGenerator(sampleRate, frequency, amplitude, nil).Block(size)
}

// GenerateSine64 is GenerateSine in float64, for feeding the spectral
// front end directly.
func GenerateSine64(size int, sampleRate, frequency, amplitude float64) []float64 {
	out := make([]float64, size)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*frequency*float64(i)/sampleRate)
	}
	return out
}

// GenerateNoise returns deterministic uniform noise in [-amplitude, amplitude].
func GenerateNoise(size int, amplitude float64, seed uint64) []float32 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float32, size)
	for i := range out {
		out[i] = float32((r.Float64()*2 - 1) * amplitude)
	}
	return out
}

// Scale multiplies every sample in place and returns the slice.
func Scale(block []float32, gain float64) []float32 {
	for i := range block {
		block[i] = float32(float64(block[i]) * gain)
	}
	return block
}

// Split cuts samples into consecutive blocks of size; a short tail is
// dropped.
func Split(samples []float32, size int) [][]float32 {
	if size <= 0 {
		return nil
	}
	blocks := make([][]float32, 0, len(samples)/size)
	for off := 0; off+size <= len(samples); off += size {
		blocks = append(blocks, samples[off:off+size])
	}
	return blocks
}

// FindPeakBin returns the index of the largest magnitude in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}

// MockTransport records everything sent to it.
type MockTransport struct {
	mu     sync.Mutex
	Sent   []any
	Closed bool
	Err    error
}

// Send appends data to Sent and returns Err.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, data)
	return m.Err
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MockTransport) Messages() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.Sent))
	copy(out, m.Sent)
	return out
}
