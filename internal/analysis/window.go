// SPDX-License-Identifier: MIT
package analysis

import "fmt"

// RingWindow is the fixed-length rolling history the spectral front end
// analyses. Pushing a block of n samples evicts the n oldest samples; the
// length never changes after construction.
//
// RingWindow is not safe for concurrent use. The engine owns one window and
// only touches it from the capture callback or under its control lock.
type RingWindow struct {
	buf  []float32
	head int // index of the oldest sample
}

// NewRingWindow returns a zero-filled window of size samples. size must be
// positive.
func NewRingWindow(size int) *RingWindow {
	if size <= 0 {
		panic(fmt.Sprintf("analysis: ring window size must be positive, got %d", size))
	}
	return &RingWindow{buf: make([]float32, size)}
}

// Len returns the window length W.
func (w *RingWindow) Len() int {
	return len(w.buf)
}

// Push appends block as the newest samples. A block longer than the window
// leaves only its last Len() samples.
func (w *RingWindow) Push(block []float32) {
	n := len(w.buf)
	if len(block) >= n {
		copy(w.buf, block[len(block)-n:])
		w.head = 0
		return
	}
	// The oldest samples start at head, so the new block overwrites them in
	// place and wraps to the front of the buffer.
	written := copy(w.buf[w.head:], block)
	copy(w.buf, block[written:])
	w.head = (w.head + len(block)) % n
}

// CopyTo writes the window oldest-first into dst, converting to float64.
// dst must hold at least Len() samples.
func (w *RingWindow) CopyTo(dst []float64) {
	i := 0
	for _, v := range w.buf[w.head:] {
		dst[i] = float64(v)
		i++
	}
	for _, v := range w.buf[:w.head] {
		dst[i] = float64(v)
		i++
	}
}

// Samples returns an oldest-first copy of the window.
func (w *RingWindow) Samples() []float32 {
	out := make([]float32, 0, len(w.buf))
	out = append(out, w.buf[w.head:]...)
	return append(out, w.buf[:w.head]...)
}

// Reset zero-fills the window.
func (w *RingWindow) Reset() {
	clear(w.buf)
	w.head = 0
}
