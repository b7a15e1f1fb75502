// SPDX-License-Identifier: MIT

/*
Package bitint holds the power-of-two arithmetic used when sizing the
analysis window and capture blocks.

The FFT behind the spectral front end is fastest on power-of-two
lengths, so configuration validation rejects other window sizes and
suggests the next valid one:

	if !bitint.IsPowerOfTwo(windowSize) {
		hint := bitint.NextPowerOfTwo(windowSize) // 30000 -> 32768
	}

Both functions are O(1) and allocation free.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Powers of two
// are returned unchanged; size <= 0 yields 1.
//
//	Input  Output
//	8192   8192
//	30000  32768
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	// size-1 keeps exact powers of two from being doubled.
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns log2(n) for a positive power of two n and -1 otherwise.
func Log2(n int) int {
	if !IsPowerOfTwo(n) {
		return -1
	}
	return bits.TrailingZeros(uint(n))
}
