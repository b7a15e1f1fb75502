// SPDX-License-Identifier: MIT
package tuning

import (
	"fmt"
	"time"
)

// EventKind identifies an engine event.
type EventKind int

const (
	// EventNoteChanged fires when a new note becomes stable.
	EventNoteChanged EventKind = iota
	// EventInTune fires when a stable note enters the tolerance.
	EventInTune
	// EventConfirmed fires when a note stayed in tune long enough.
	EventConfirmed
	// EventProfileChanged fires after SetProfile.
	EventProfileChanged
	// EventReset fires after Reset.
	EventReset
)

var eventNames = [...]string{
	EventNoteChanged:    "note_changed",
	EventInTune:         "in_tune",
	EventConfirmed:      "confirmed",
	EventProfileChanged: "profile_changed",
	EventReset:          "reset",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is delivered to the registered EventHandler on the producer
// goroutine.
type Event struct {
	Kind      EventKind `json:"kind"`
	Note      string    `json:"note,omitempty"`
	Frequency float64   `json:"frequency,omitempty"`
	Cents     float64   `json:"cents,omitempty"`
	Profile   string    `json:"profile"`
	Time      time.Time `json:"time"`
}

// String renders the event as a log line.
func (e Event) String() string {
	switch e.Kind {
	case EventNoteChanged:
		return fmt.Sprintf("note detected: %s (%.2f Hz)", e.Note, e.Frequency)
	case EventInTune:
		return fmt.Sprintf("%s is in tune (%+.1f cents)", e.Note, e.Cents)
	case EventConfirmed:
		return fmt.Sprintf("%s confirmed in tune", e.Note)
	case EventProfileChanged:
		return fmt.Sprintf("profile changed to %s", e.Profile)
	case EventReset:
		return "tuner reset"
	}
	return e.Kind.String()
}

// EventHandler receives engine events. It must not block.
type EventHandler func(Event)
