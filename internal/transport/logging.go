// SPDX-License-Identifier: MIT
package transport

import (
	"sync"

	applog "tuner/internal/log"
	"tuner/internal/tuning"
)

// LoggingTransport logs status transitions of the snapshots it receives.
// It is the headless consumer.
type LoggingTransport struct {
	mu     sync.Mutex
	status tuning.Status
	note   string
	stable bool
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs snapshots whose status, note or stability differ from the
// previous one. Events and other values are ignored.
func (lt *LoggingTransport) Send(data any) error {
	var snap tuning.Snapshot
	switch v := data.(type) {
	case tuning.Snapshot:
		snap = v
	case *tuning.Snapshot:
		snap = *v
	default:
		return nil
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()

	if snap.Status == lt.status && snap.Note == lt.note && snap.Stable == lt.stable {
		return nil
	}
	lt.status, lt.note, lt.stable = snap.Status, snap.Note, snap.Stable

	if snap.Status.Pitched() {
		applog.Infof("Tuner: %s %s %.2f Hz (target %.2f Hz, %+.1f cents, stable=%t)",
			snap.Note, snap.Status, snap.DetectedFreq, snap.TargetFreq, snap.Cents, snap.Stable)
		return nil
	}
	applog.Infof("Tuner: %s", snap.Status)
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
