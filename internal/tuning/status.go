// SPDX-License-Identifier: MIT
package tuning

import (
	"fmt"
	"math"
)

// Status is the tuning verdict shown to the player.
type Status int

const (
	StatusWaiting Status = iota
	StatusLowSignal
	StatusOutOfRange
	StatusFlat
	StatusSharp
	StatusInTune
)

var statusNames = [...]string{
	StatusWaiting:    "WAITING",
	StatusLowSignal:  "LOW_SIGNAL",
	StatusOutOfRange: "OUT_OF_RANGE",
	StatusFlat:       "FLAT",
	StatusSharp:      "SHARP",
	StatusInTune:     "IN_TUNE",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status by name for JSON consumers.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Pitched reports whether the status carries a note classification.
func (s Status) Pitched() bool {
	return s == StatusFlat || s == StatusSharp || s == StatusInTune
}

// Signal is the outcome of the power and range checks for a block.
type Signal int

const (
	SignalNone       Signal = iota // nothing processed yet
	SignalLow                      // power below threshold
	SignalOutOfRange               // estimate outside the admissible range
	SignalValid                    // estimate accepted
)

// Evaluate maps the latest signal check and cents deviation to a Status.
func Evaluate(sig Signal, cents, tolerance float64) Status {
	switch sig {
	case SignalNone:
		return StatusWaiting
	case SignalLow:
		return StatusLowSignal
	case SignalOutOfRange:
		return StatusOutOfRange
	}
	switch {
	case math.Abs(cents) <= tolerance:
		return StatusInTune
	case cents > 0:
		return StatusSharp
	}
	return StatusFlat
}
