// SPDX-License-Identifier: MIT
package tuning

import (
	"slices"
	"time"
)

// Snapshot is the engine's published state after a processed block.
// Published snapshots are never modified.
type Snapshot struct {
	Note         string    `json:"note"`
	DetectedFreq float64   `json:"detected_freq"`
	TargetFreq   float64   `json:"target_freq"`
	Cents        float64   `json:"cents"`
	Status       Status    `json:"status"`
	Stable       bool      `json:"stable"`
	SignalLevel  float64   `json:"signal_level"`
	Profile      string    `json:"profile"`
	Confirmed    []string  `json:"confirmed"`
	Sequence     uint64    `json:"sequence"`
	Time         time.Time `json:"time"`
}

// IsConfirmed reports whether label is in the confirmed set.
func (s Snapshot) IsConfirmed(label string) bool {
	return slices.Contains(s.Confirmed, label)
}
