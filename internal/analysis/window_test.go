// SPDX-License-Identifier: MIT
package analysis

import (
	"slices"
	"testing"
)

func TestRingWindowKeepsNewestSamples(t *testing.T) {
	const size = 8
	w := NewRingWindow(size)
	stream := make([]float32, size) // the window starts zero filled

	next := float32(1)
	for _, n := range []int{1, 3, 7, 8, 2, 20, 5} {
		block := make([]float32, n)
		for i := range block {
			block[i] = next
			next++
		}
		w.Push(block)
		stream = append(stream, block...)

		if w.Len() != size {
			t.Fatalf("Len() = %d after pushing %d samples, want %d", w.Len(), n, size)
		}
		want := stream[len(stream)-size:]
		if got := w.Samples(); !slices.Equal(got, want) {
			t.Fatalf("after pushing %d samples: Samples() = %v, want %v", n, got, want)
		}
	}
}

func TestRingWindowCopyTo(t *testing.T) {
	w := NewRingWindow(4)
	w.Push([]float32{1, 2, 3})
	w.Push([]float32{4, 5})

	dst := make([]float64, 4)
	w.CopyTo(dst)
	if want := []float64{2, 3, 4, 5}; !slices.Equal(dst, want) {
		t.Errorf("CopyTo() = %v, want %v", dst, want)
	}
}

func TestRingWindowReset(t *testing.T) {
	w := NewRingWindow(4)
	w.Push([]float32{1, 2, 3})
	w.Reset()

	for i, v := range w.Samples() {
		if v != 0 {
			t.Fatalf("sample %d = %v after Reset, want 0", i, v)
		}
	}
	w.Push([]float32{9})
	if want := []float32{0, 0, 0, 9}; !slices.Equal(w.Samples(), want) {
		t.Errorf("Samples() = %v, want %v", w.Samples(), want)
	}
}

func TestNewRingWindowPanicsOnInvalidSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero size")
		}
	}()
	NewRingWindow(0)
}

func TestRingWindowPushZeroAllocs(t *testing.T) {
	w := NewRingWindow(32768)
	block := make([]float32, 8192)
	dst := make([]float64, 32768)

	allocs := testing.AllocsPerRun(100, func() {
		w.Push(block)
		w.CopyTo(dst)
	})
	if allocs > 0 {
		t.Errorf("Push/CopyTo allocated %.1f times per run, want 0", allocs)
	}
}

func TestMeanPower(t *testing.T) {
	if got := MeanPower([]float64{1, -1, 1, -1}); got != 1 {
		t.Errorf("MeanPower() = %v, want 1", got)
	}
	if got := MeanPower([]float64{0.5, 0, 0, 0}); got != 0.0625 {
		t.Errorf("MeanPower() = %v, want 0.0625", got)
	}
	if got := MeanPower(nil); got != 0 {
		t.Errorf("MeanPower(nil) = %v, want 0", got)
	}
}

func TestIsSilent(t *testing.T) {
	if !IsSilent(make([]float32, 16)) {
		t.Error("zero block should be silent")
	}
	if IsSilent([]float32{0, 0, 1e-9}) {
		t.Error("block with a non-zero sample is not silent")
	}
}
