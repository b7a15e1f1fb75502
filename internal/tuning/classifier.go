// SPDX-License-Identifier: MIT
package tuning

import "math"

// CentsError returns the deviation of f from target in cents. Positive
// means sharp. A non-positive target yields 0; f = 0 yields -Inf and a
// negative f NaN.
func CentsError(f, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return 1200 * math.Log2(f/target)
}

// Classify returns the profile note nearest to f in cents and the signed
// deviation from it. Ties go to the note listed first. An empty profile
// or a non-positive f returns the zero Note.
func Classify(f float64, profile Profile) (Note, float64) {
	var (
		best     Note
		bestErr  float64
		bestDist = math.Inf(1)
	)
	for _, n := range profile.Notes {
		c := CentsError(f, n.Frequency)
		if d := math.Abs(c); d < bestDist {
			best, bestErr, bestDist = n, c, d
		}
	}
	return best, bestErr
}
