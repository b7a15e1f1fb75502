// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultOctaveEdges are the band edges, in Hz, used for per-band noise
// gating. Each band spans one octave.
var DefaultOctaveEdges = []float64{50, 100, 200, 400, 800, 1600, 3200, 6400, 12800, 25600}

// FrequencyBand is a contiguous run of spectrum bins [Start, End) covering
// LowHz to HighHz.
type FrequencyBand struct {
	LowHz  float64
	HighHz float64
	Start  int
	End    int
}

// Bins returns the number of bins in the band.
func (b FrequencyBand) Bins() int {
	return b.End - b.Start
}

// OctaveBands maps consecutive edges onto bin ranges of a spectrum with
// the given bin width and length. Bands narrower than two bins, or lying
// above the last bin, are left out.
func OctaveBands(edges []float64, binWidth float64, bins int) []FrequencyBand {
	bands := make([]FrequencyBand, 0, len(edges))
	for j := 0; j+1 < len(edges); j++ {
		start := int(edges[j] / binWidth)
		end := min(int(edges[j+1]/binWidth), bins)
		if end <= start+1 {
			continue
		}
		bands = append(bands, FrequencyBand{
			LowHz:  edges[j],
			HighHz: edges[j+1],
			Start:  start,
			End:    end,
		})
	}
	return bands
}

// GateBands zeroes, band by band, every bin whose magnitude is below
// ratio times the band's RMS magnitude. A band holding a strong partial has
// a high RMS relative to its noise floor, so the floor is removed while the
// partial survives; a band of flat noise loses most of its bins.
func GateBands(spectrum []float64, bands []FrequencyBand, ratio float64) {
	for _, b := range bands {
		band := spectrum[b.Start:b.End]
		rms := math.Sqrt(floats.Dot(band, band) / float64(len(band)))
		thresh := ratio * rms
		for i, v := range band {
			if v < thresh {
				band[i] = 0
			}
		}
	}
}
