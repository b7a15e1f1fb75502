// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	applog "tuner/internal/log"
	"tuner/internal/tuning"
)

// Snapshotter is the read side of the tuning engine.
type Snapshotter interface {
	Snapshot() tuning.Snapshot
}

// Publisher sends the latest engine snapshot as a binary packet on every
// tick. Receivers are stateless, so unchanged snapshots are resent.
type Publisher struct {
	sender   *Sender
	source   Snapshotter
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex // guards ticker and doneChan across Start/Stop

	sequenceNum  uint32
	packetBuffer *bytes.Buffer
}

// NewPublisher returns a publisher. A non-positive interval defaults to
// 50ms.
func NewPublisher(interval time.Duration, sender *Sender, source Snapshotter) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp publisher: sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("udp publisher: snapshot source cannot be nil")
	}
	if interval <= 0 {
		interval = 50 * time.Millisecond
		applog.Warnf("UDP: invalid publish interval, defaulting to %s", interval)
	}

	return &Publisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		packetBuffer: bytes.NewBuffer(make([]byte, 0, HeaderSize+16)),
	}, nil
}

// Start launches the publishing goroutine. Calling Start while running is
// a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker != nil {
		applog.Warnf("UDP: publisher already running")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})

	ticker, done := p.ticker, p.doneChan
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-done:
				return
			}
		}
	}()
	applog.Debugf("UDP: publisher started (interval %s)", p.interval)
}

// Stop halts the goroutine and waits for it. Calling Stop when not running
// is a no-op.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	close(p.doneChan)
	p.ticker.Stop()
	p.ticker = nil
	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("UDP: publisher stopped after %d packets", p.sequenceNum)
	return nil
}

// publish runs on the publisher goroutine only.
func (p *Publisher) publish() {
	p.sequenceNum++
	p.packetBuffer.Reset()
	if err := Encode(p.packetBuffer, p.sequenceNum, p.source.Snapshot()); err != nil {
		applog.Errorf("UDP: %v", err)
		return
	}
	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		applog.Debugf("UDP: packet %d: %v", p.sequenceNum, err)
	}
}

// Close stops publishing and closes the sender.
func (p *Publisher) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	return p.sender.Close()
}
