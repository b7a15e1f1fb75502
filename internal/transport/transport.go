// SPDX-License-Identifier: MIT
package transport

import (
	"time"

	"tuner/internal/tuning"
)

// Transport delivers snapshots and events to a consumer outside the
// process. Implementations must be safe for concurrent use and must not
// block the caller.
type Transport interface {
	Send(data any) error
	Close() error
}

// SnapshotSource is the read side of the tuning engine.
type SnapshotSource interface {
	Snapshot() tuning.Snapshot
}

// Message types carried in Message.Type.
const (
	TypeSnapshot = "snapshot"
	TypeEvent    = "event"
)

// Message is the JSON envelope sent to remote clients.
type Message struct {
	Type     string           `json:"type"`
	Snapshot *tuning.Snapshot `json:"snapshot,omitempty"`
	Event    *tuning.Event    `json:"event,omitempty"`
	Time     time.Time        `json:"time"`
}

// NewMessage wraps a tuning.Snapshot or tuning.Event. Other values yield
// false.
func NewMessage(data any) (Message, bool) {
	switch v := data.(type) {
	case Message:
		return v, true
	case tuning.Snapshot:
		return Message{Type: TypeSnapshot, Snapshot: &v, Time: v.Time}, true
	case *tuning.Snapshot:
		return Message{Type: TypeSnapshot, Snapshot: v, Time: v.Time}, true
	case tuning.Event:
		return Message{Type: TypeEvent, Event: &v, Time: v.Time}, true
	case *tuning.Event:
		return Message{Type: TypeEvent, Event: v, Time: v.Time}, true
	}
	return Message{}, false
}

// EventHandler returns a tuning.EventHandler forwarding every event to ts.
func EventHandler(ts ...Transport) tuning.EventHandler {
	return func(ev tuning.Event) {
		for _, t := range ts {
			_ = t.Send(ev)
		}
	}
}
