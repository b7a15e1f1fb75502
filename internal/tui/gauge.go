// SPDX-License-Identifier: MIT
package tui

import (
	"math"
	"strings"
)

// GaugeRange is the cents span shown on each side of the centre.
const GaugeRange = 50.0

// gaugeScale labels a 41-column gauge.
const gaugeScale = "-50" + "     " + "flat" + "        " + "0" + "       " + "sharp" + "     " + "+50"

// gaugeMarker returns the column of cents on a gauge width columns wide.
// Values beyond the range are pinned to the ends.
func gaugeMarker(cents float64, width int) int {
	if width < 2 {
		return 0
	}
	c := min(max(cents, -GaugeRange), GaugeRange)
	pos := (c + GaugeRange) / (2 * GaugeRange) * float64(width-1)
	return int(math.Round(pos))
}

// renderGauge draws a -50..+50 cents scale with a tick at the centre and
// the needle at cents.
func renderGauge(cents float64, width int, needle bool) string {
	if width <= 0 {
		return ""
	}
	cells := []rune(strings.Repeat("─", width))
	cells[width/2] = '┼'
	if needle {
		cells[gaugeMarker(cents, width)] = '▼'
	}
	return string(cells)
}
