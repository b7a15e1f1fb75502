// SPDX-License-Identifier: MIT
package bitint

import (
	"fmt"
	"testing"
)

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{-10, 1},
		{0, 1},
		{1, 1},
		{8192, 8192},
		{30000, 32768},
		{32769, 65536},
		{3, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d→%d", tt.n, tt.expected), func(t *testing.T) {
			if got := NextPowerOfTwo(tt.n); got != tt.expected {
				t.Errorf("NextPowerOfTwo(%d) = %d, expected %d", tt.n, got, tt.expected)
			}
		})
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected bool
	}{
		{-8, false},
		{0, false},
		{1, true},
		{2048, true},
		{32768, true},
		{48000, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.n), func(t *testing.T) {
			if got := IsPowerOfTwo(tt.n); got != tt.expected {
				t.Errorf("IsPowerOfTwo(%d) = %v, expected %v", tt.n, got, tt.expected)
			}
		})
	}
}

func TestLog2(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{1, 0},
		{8192, 13},
		{32768, 15},
		{1000, -1},
		{0, -1},
	}

	for _, tt := range tests {
		if got := Log2(tt.n); got != tt.expected {
			t.Errorf("Log2(%d) = %d, expected %d", tt.n, got, tt.expected)
		}
	}
}

func BenchmarkNextPowerOfTwo(b *testing.B) {
	for b.Loop() {
		_ = NextPowerOfTwo(30000)
	}
}
