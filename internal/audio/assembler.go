// SPDX-License-Identifier: MIT
package audio

import "tuner/internal/tuning"

// BlockAssembler regroups arbitrarily sized chunks of samples into blocks
// of exactly Size samples. The block handed to the callback is reused.
type BlockAssembler struct {
	buf []float32
	n   int
	fn  tuning.BlockFunc
}

// NewBlockAssembler returns an assembler delivering blocks of size samples
// to fn.
func NewBlockAssembler(size int, fn tuning.BlockFunc) *BlockAssembler {
	return &BlockAssembler{buf: make([]float32, size), fn: fn}
}

// Write appends samples, delivering every block that fills up. It returns
// the number of blocks delivered.
func (a *BlockAssembler) Write(samples []float32) int {
	delivered := 0
	for len(samples) > 0 {
		c := copy(a.buf[a.n:], samples)
		a.n += c
		samples = samples[c:]
		if a.n == len(a.buf) {
			a.fn(a.buf)
			a.n = 0
			delivered++
		}
	}
	return delivered
}

// Pending returns the number of buffered samples not yet delivered.
func (a *BlockAssembler) Pending() int { return a.n }

// Size returns the block size.
func (a *BlockAssembler) Size() int { return len(a.buf) }

// Reset discards buffered samples.
func (a *BlockAssembler) Reset() { a.n = 0 }
