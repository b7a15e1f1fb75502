// SPDX-License-Identifier: MIT
package transport

import (
	"context"
	"time"

	applog "tuner/internal/log"
)

// DefaultPollInterval is the consumer refresh rate, 20 Hz.
const DefaultPollInterval = 50 * time.Millisecond

// Poller reads the engine's snapshot on a ticker and forwards it to its
// transports whenever the sequence number has moved.
type Poller struct {
	source     SnapshotSource
	interval   time.Duration
	transports []Transport
	lastSeq    uint64
}

// NewPoller returns a poller. A non-positive interval selects
// DefaultPollInterval.
func NewPoller(source SnapshotSource, interval time.Duration, ts ...Transport) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{source: source, interval: interval, transports: ts}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll forwards the current snapshot if it is new and reports whether it
// did.
func (p *Poller) Poll() bool {
	snap := p.source.Snapshot()
	if snap.Sequence == p.lastSeq {
		return false
	}
	p.lastSeq = snap.Sequence

	for _, t := range p.transports {
		if err := t.Send(snap); err != nil {
			applog.Debugf("Transport: send failed: %v", err)
		}
	}
	return true
}
