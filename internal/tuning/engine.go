// SPDX-License-Identifier: MIT
/*
Package tuning turns a stream of mono audio blocks into tuning readings.

Each block flows through the same pipeline on the producer goroutine:
sliding window, power check, spectral front end, harmonic product
spectrum, range check, smoothing, note classification, stability gate and
the status machine. The result is published as an immutable Snapshot
that any number of consumers may read at their own rate.

Thread Safety:
  - ProcessBlock, Reset, SetProfile and Stop are serialised by a mutex
  - Snapshot and OnEvent are lock-free (atomic pointers)
  - the spectral path reuses preallocated buffers
*/
package tuning

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tuner/internal/analysis"
	applog "tuner/internal/log"
)

// BlockFunc receives one block of mono samples in [-1, 1].
type BlockFunc func(block []float32)

// Source delivers audio blocks to the engine until stopped.
type Source interface {
	Start(fn BlockFunc) error
	Stop() error
}

type Engine struct {
	// Control plane; orders Start and Stop.
	ctl    sync.Mutex
	source Source

	running atomic.Bool

	// Producer state, guarded by mu.
	mu       sync.Mutex
	cfg      Config
	profile  Profile
	window   *analysis.RingWindow
	samples  []float64
	frontEnd analysis.SpectrumAnalyzer
	hps      analysis.PitchEstimator
	tracker  *Tracker
	gate     *StabilityGate
	confirm  *Confirmation

	lastStatus Status
	lastStable string
	inTune     bool // previous block was stable and in tune
	blocks     uint64
	seq        uint64

	snapshot atomic.Pointer[Snapshot]
	handler  atomic.Pointer[EventHandler]
}

// NewEngine validates cfg and preallocates the whole pipeline.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frontEnd, err := analysis.NewSpectralFrontEnd(analysis.FrontEndConfig{
		Size:           cfg.WindowSize,
		SampleRate:     cfg.SampleRate,
		LowCutoffHz:    cfg.LowCutoffHz,
		NoiseGateRatio: cfg.NoiseGateRatio,
		BandEdges:      cfg.BandEdges,
		Window:         cfg.Window,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	hps, err := analysis.NewHPSEstimator(analysis.HPSConfig{
		Harmonics:  cfg.Harmonics,
		SampleRate: cfg.SampleRate,
		WindowSize: cfg.WindowSize,
	}, cfg.WindowSize/2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := &Engine{
		cfg:      cfg,
		profile:  cfg.Profile.Clone(),
		window:   analysis.NewRingWindow(cfg.WindowSize),
		samples:  make([]float64, cfg.WindowSize),
		frontEnd: frontEnd,
		hps:      hps,
		tracker:  NewTracker(cfg.Tracker),
		gate:     NewStabilityGate(cfg.StabilityFrames),
		confirm:  NewConfirmation(cfg.ConfirmationFrames),
	}
	e.publishWaiting()

	applog.Infof("Engine: profile %s (%d notes), W=%d, block=%d, %.0f Hz",
		e.profile.Name, len(e.profile.Notes), cfg.WindowSize, cfg.BlockSize, cfg.SampleRate)
	return e, nil
}

// Config returns the configuration the engine was built with, with the
// current profile.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg := e.cfg
	cfg.Profile = e.profile.Clone()
	return cfg
}

// Profile returns the active profile.
func (e *Engine) Profile() Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.Clone()
}

// OnEvent registers the event handler; nil removes it. The handler runs on
// the producer goroutine and must not block.
func (e *Engine) OnEvent(h EventHandler) {
	if h == nil {
		e.handler.Store(nil)
		return
	}
	e.handler.Store(&h)
}

// Snapshot returns the most recently published state.
func (e *Engine) Snapshot() Snapshot {
	return *e.snapshot.Load()
}

// Running reports whether a source is attached.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Start attaches src and begins processing its blocks.
func (e *Engine) Start(src Source) error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	if e.running.Load() {
		return ErrAlreadyRunning
	}

	// The source may deliver blocks before Start returns.
	e.running.Store(true)
	if err := src.Start(e.ProcessBlock); err != nil {
		e.running.Store(false)
		if errors.Is(err, ErrSourceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	e.source = src

	applog.Infof("Engine: started")
	return nil
}

// Stop detaches the source and resets the engine state.
func (e *Engine) Stop() error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	if !e.running.Load() {
		return ErrNotRunning
	}

	// Not under mu: stopping a stream waits for an in-flight callback.
	err := e.source.Stop()
	e.source = nil
	e.running.Store(false)

	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to stop audio source: %w", err)
	}
	applog.Infof("Engine: stopped")
	return nil
}

// Reset clears all detection state and the confirmed set.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()
	e.emit(Event{Kind: EventReset, Profile: e.profile.Name, Time: time.Now()})
}

// SetProfile validates p, switches to it and resets all state.
func (e *Engine) SetProfile(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.profile = p.Clone()
	e.resetLocked()

	e.emit(Event{Kind: EventProfileChanged, Profile: p.Name, Time: time.Now()})
	return nil
}

// ClearConfirmed forgets every confirmed note.
func (e *Engine) ClearConfirmed() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.confirm.Clear()
	prev := e.snapshot.Load()
	next := *prev
	next.Confirmed = nil
	e.publish(next)
}

// ProcessBlock runs the detection pipeline over one block. All-zero blocks
// are ignored.
func (e *Engine) ProcessBlock(block []float32) {
	if analysis.IsSilent(block) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.window.Push(block)
	e.window.CopyTo(e.samples)
	power := analysis.MeanPower(e.samples)
	e.blocks++

	switch e.tracker.Admit(power) {
	case AdmitHold, AdmitSkip:
		return
	case AdmitLowSignal:
		e.reject(StatusLowSignal, 0, power, e.cfg.Tracker.ClearOnLowSignal)
		return
	}

	spectrum := e.frontEnd.Analyze(e.samples)
	raw := e.hps.Estimate(spectrum)

	if e.cfg.DebugInterval > 0 && e.blocks%uint64(e.cfg.DebugInterval) == 0 && applog.Enabled(applog.LevelDebug) {
		applog.Debugf("Engine: raw %.2f Hz, power %.2e, range %.0f-%.0f Hz",
			raw, power, e.cfg.MinFrequency, e.cfg.MaxFrequency)
	}

	if raw < e.cfg.MinFrequency || raw > e.cfg.MaxFrequency {
		e.reject(StatusOutOfRange, raw, power, e.cfg.Tracker.ClearOnOutOfRange)
		return
	}

	freq := e.tracker.Update(raw)
	note, cents := Classify(freq, e.profile)
	stable := e.gate.Push(note.Label)
	status := Evaluate(SignalValid, cents, e.cfg.Tolerance)
	now := time.Now()

	if stable && note.Label != e.lastStable {
		e.lastStable = note.Label
		e.emit(Event{Kind: EventNoteChanged, Note: note.Label, Frequency: freq, Cents: cents, Profile: e.profile.Name, Time: now})
	}
	inTune := stable && status == StatusInTune
	entered := e.lastStatus != StatusInTune
	if e.cfg.InTuneOnStable {
		entered = !e.inTune
	}
	if inTune && entered {
		e.emit(Event{Kind: EventInTune, Note: note.Label, Frequency: freq, Cents: cents, Profile: e.profile.Name, Time: now})
	}
	if e.confirm.Observe(note.Label, stable, status) {
		e.emit(Event{Kind: EventConfirmed, Note: note.Label, Frequency: freq, Cents: cents, Profile: e.profile.Name, Time: now})
	}

	e.lastStatus = status
	e.inTune = inTune
	e.publish(Snapshot{
		Note:         note.Label,
		DetectedFreq: freq,
		TargetFreq:   note.Frequency,
		Cents:        cents,
		Status:       status,
		Stable:       stable,
		SignalLevel:  power,
		Profile:      e.profile.Name,
		Confirmed:    e.confirm.Confirmed(),
		Time:         now,
	})
}

// reject publishes a block that produced no classification.
func (e *Engine) reject(status Status, freq, power float64, clearHistory bool) {
	if clearHistory {
		e.tracker.ClearHistory()
	}
	if e.cfg.Tracker.ResetStabilityOnReject {
		e.gate.Reset()
	}
	e.confirm.Observe("", false, status)

	if status != e.lastStatus {
		switch status {
		case StatusLowSignal:
			applog.Infof("Engine: audio signal too low")
		case StatusOutOfRange:
			applog.Infof("Engine: frequency out of range: %.2f Hz", freq)
		}
	}
	e.lastStatus = status
	e.inTune = false

	e.publish(Snapshot{
		DetectedFreq: freq,
		Status:       status,
		SignalLevel:  power,
		Profile:      e.profile.Name,
		Confirmed:    e.confirm.Confirmed(),
		Time:         time.Now(),
	})
}

func (e *Engine) resetLocked() {
	e.window.Reset()
	e.tracker.Reset()
	e.gate.Reset()
	e.confirm.Clear()
	e.lastStatus = StatusWaiting
	e.lastStable = ""
	e.inTune = false
	e.blocks = 0
	e.publishWaiting()
}

func (e *Engine) publishWaiting() {
	e.publish(Snapshot{
		Status:  StatusWaiting,
		Profile: e.profile.Name,
		Time:    time.Now(),
	})
}

// publish stamps the next sequence number and swaps the snapshot in.
func (e *Engine) publish(s Snapshot) {
	e.seq++
	s.Sequence = e.seq
	e.snapshot.Store(&s)
}

func (e *Engine) emit(ev Event) {
	if ev.Kind != EventReset {
		applog.Infof("Engine: %s", ev)
	}
	if h := e.handler.Load(); h != nil {
		(*h)(ev)
	}
}
