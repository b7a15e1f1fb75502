// SPDX-License-Identifier: MIT
package tuning

import (
	"errors"
	"math"
	"slices"
	"sync"
	"testing"

	"tuner/pkg/utils"
)

func newTestEngine(t testing.TB, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

// feedTone pushes n blocks of a plucked-string tone at freq Hz.
func feedTone(e *Engine, gen *utils.ToneGenerator, blockSize, n int) {
	block := make([]float32, blockSize)
	for range n {
		gen.Next(block)
		e.ProcessBlock(block)
	}
}

func pluck(freq float64) *utils.ToneGenerator {
	return utils.NewToneGenerator(48000, freq, 0.5, utils.PluckPartials)
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) handle(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) of(kind EventKind) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, ev := range l.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestEngineInitialSnapshot(t *testing.T) {
	e := newTestEngine(t, nil)
	s := e.Snapshot()

	if s.Status != StatusWaiting || s.Note != "" || s.Stable {
		t.Errorf("initial snapshot = %+v", s)
	}
	if s.Profile != DefaultProfileName {
		t.Errorf("Profile = %q, want %q", s.Profile, DefaultProfileName)
	}
}

func TestEngineDetectsInTuneA4(t *testing.T) {
	e := newTestEngine(t, nil)
	var log eventLog
	e.OnEvent(log.handle)

	feedTone(e, pluck(440), 8192, 40)
	s := e.Snapshot()

	if s.Note != "A4" {
		t.Fatalf("Note = %q, want A4 (snapshot %+v)", s.Note, s)
	}
	if math.Abs(s.Cents) >= 5 {
		t.Errorf("Cents = %.2f, want |cents| < 5", s.Cents)
	}
	if s.Status != StatusInTune || !s.Stable {
		t.Errorf("Status = %v, Stable = %v, want IN_TUNE and stable", s.Status, s.Stable)
	}
	if s.TargetFreq != 440 {
		t.Errorf("TargetFreq = %v, want 440", s.TargetFreq)
	}
	if want := CentsError(s.DetectedFreq, s.TargetFreq); s.Cents != want {
		t.Errorf("Cents = %v, want CentsError(detected, target) = %v", s.Cents, want)
	}

	changed := log.of(EventNoteChanged)
	if len(changed) != 1 || changed[0].Note != "A4" {
		t.Errorf("note changed events = %+v, want one for A4", changed)
	}
	if inTune := log.of(EventInTune); len(inTune) > 1 {
		t.Errorf("got %d in-tune events, want at most 1", len(inTune))
	}
}

// scriptedPitch replays fixed raw estimates, repeating the last one.
type scriptedPitch struct {
	freqs []float64
	i     int
}

func (s *scriptedPitch) Estimate([]float64) float64 {
	f := s.freqs[min(s.i, len(s.freqs)-1)]
	s.i++
	return f
}

func repeat(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = freq
	}
	return out
}

func TestEngineInTuneEvent(t *testing.T) {
	tests := []struct {
		name     string
		onStable bool
		raw      []float64
		want     int
	}{
		// IN_TUNE from the first block, so the status never changes once
		// the note is stable.
		{"in tune before stable", false, repeat(440, 12), 0},
		{"in tune before stable, on stable", true, repeat(440, 12), 1},
		// Stable and SHARP, then the pitch settles onto A4.
		{"sharp then in tune", false, append(repeat(460, 8), repeat(440, 12)...), 1},
		{"sharp then in tune, on stable", true, append(repeat(460, 8), repeat(440, 12)...), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, func(c *Config) { c.InTuneOnStable = tt.onStable })
			e.hps = &scriptedPitch{freqs: tt.raw}
			var log eventLog
			e.OnEvent(log.handle)

			feedTone(e, pluck(440), 8192, len(tt.raw))

			if s := e.Snapshot(); s.Status != StatusInTune || !s.Stable {
				t.Fatalf("snapshot = %+v, want stable IN_TUNE", s)
			}
			inTune := log.of(EventInTune)
			if len(inTune) != tt.want {
				t.Fatalf("got %d in-tune events, want %d", len(inTune), tt.want)
			}
			for _, ev := range inTune {
				if ev.Note != "A4" {
					t.Errorf("in-tune event for %q, want A4", ev.Note)
				}
			}
		})
	}
}

func TestEngineClassifiesDetunedString(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		p, _ := LookupProfile("guitar", nil)
		c.Profile = p
	})

	// 20 cents flat of G3.
	freq := 196 * math.Pow(2, -20.0/1200)
	feedTone(e, pluck(freq), 8192, 40)
	s := e.Snapshot()

	if s.Note != "G3" || s.Status != StatusFlat {
		t.Fatalf("snapshot = %+v, want G3 FLAT", s)
	}
	if s.Cents > -10 || s.Cents < -30 {
		t.Errorf("Cents = %.2f, want about -20", s.Cents)
	}
}

func TestEngineConfirmsAfterConsecutiveBlocks(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.ConfirmationFrames = 10 })
	var log eventLog
	e.OnEvent(log.handle)

	feedTone(e, pluck(440), 8192, 40)

	confirmed := log.of(EventConfirmed)
	if len(confirmed) != 1 || confirmed[0].Note != "A4" {
		t.Fatalf("confirmed events = %+v, want exactly one for A4", confirmed)
	}
	if s := e.Snapshot(); !slices.Equal(s.Confirmed, []string{"A4"}) {
		t.Errorf("Confirmed = %v, want [A4]", s.Confirmed)
	}

	e.ClearConfirmed()
	if s := e.Snapshot(); len(s.Confirmed) != 0 || s.Note != "A4" {
		t.Errorf("after ClearConfirmed: %+v", s)
	}
}

func TestEngineIgnoresZeroBlocks(t *testing.T) {
	e := newTestEngine(t, nil)
	before := e.Snapshot()

	e.ProcessBlock(make([]float32, 8192))
	if after := e.Snapshot(); after.Sequence != before.Sequence {
		t.Errorf("zero block published a snapshot: %+v", after)
	}
}

func TestEngineLowSignal(t *testing.T) {
	e := newTestEngine(t, nil)
	e.ProcessBlock(utils.GenerateNoise(8192, 1e-4, 1))

	s := e.Snapshot()
	if s.Status != StatusLowSignal || s.Note != "" || s.Stable {
		t.Errorf("snapshot = %+v, want LOW_SIGNAL without a note", s)
	}
}

func TestEngineLowSignalAfterTone(t *testing.T) {
	e := newTestEngine(t, nil)
	feedTone(e, pluck(440), 8192, 20)

	for i := range 6 {
		e.ProcessBlock(utils.GenerateNoise(8192, 1e-4, uint64(i+1)))
	}
	s := e.Snapshot()
	if s.Status != StatusLowSignal || s.Note != "" || s.Stable {
		t.Errorf("snapshot = %+v, want LOW_SIGNAL without a note", s)
	}
}

func TestEngineOutOfRange(t *testing.T) {
	e := newTestEngine(t, nil)
	feedTone(e, pluck(900), 8192, 8)

	s := e.Snapshot()
	if s.Status != StatusOutOfRange || s.Note != "" || s.Stable {
		t.Errorf("snapshot = %+v, want OUT_OF_RANGE without a note", s)
	}
	if s.DetectedFreq <= 650 {
		t.Errorf("DetectedFreq = %.2f, want above the range", s.DetectedFreq)
	}
}

func TestEngineDecayHold(t *testing.T) {
	// With the block as long as the window a quieter block changes the
	// window power in one step.
	e := newTestEngine(t, func(c *Config) {
		c.WindowSize = 16384
		c.BlockSize = 16384
	})
	gen := pluck(440)
	feedTone(e, gen, 16384, 10)
	held := e.Snapshot()
	if held.Note != "A4" {
		t.Fatalf("setup: Note = %q, want A4", held.Note)
	}

	quiet := utils.Scale(gen.Block(16384), 0.1)
	e.ProcessBlock(quiet)
	if s := e.Snapshot(); s.Sequence != held.Sequence {
		t.Fatalf("decaying block updated the snapshot: %+v", s)
	}

	// Same level again: no longer decaying, so the block is analysed.
	e.ProcessBlock(utils.Scale(gen.Block(16384), 0.1))
	if s := e.Snapshot(); s.Sequence == held.Sequence {
		t.Error("steady quiet block did not update the snapshot")
	}
}

func TestEngineSetProfileResets(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.ConfirmationFrames = 5 })
	var log eventLog
	e.OnEvent(log.handle)
	feedTone(e, pluck(440), 8192, 30)
	if s := e.Snapshot(); s.Note != "A4" || len(s.Confirmed) == 0 {
		t.Fatalf("setup: snapshot = %+v", s)
	}

	guitar, _ := LookupProfile("guitar", nil)
	if err := e.SetProfile(guitar); err != nil {
		t.Fatalf("SetProfile() error = %v", err)
	}

	s := e.Snapshot()
	if s.Status != StatusWaiting || s.Note != "" || s.Stable || len(s.Confirmed) != 0 {
		t.Errorf("snapshot after SetProfile = %+v", s)
	}
	if s.Profile != "guitar" || e.Profile().Name != "guitar" {
		t.Errorf("profile = %q / %q, want guitar", s.Profile, e.Profile().Name)
	}
	if got := log.of(EventProfileChanged); len(got) != 1 || got[0].Profile != "guitar" {
		t.Errorf("profile events = %+v", got)
	}

	// The first block after the switch starts from an empty window.
	e.ProcessBlock(utils.GenerateNoise(8192, 1e-4, 3))
	if s := e.Snapshot(); s.Status != StatusLowSignal {
		t.Errorf("Status = %v after switch, want LOW_SIGNAL", s.Status)
	}
}

func TestEngineSetProfileRejectsInvalid(t *testing.T) {
	e := newTestEngine(t, nil)
	err := e.SetProfile(Profile{Name: "broken"})
	if !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("SetProfile() error = %v, want ErrInvalidProfile", err)
	}
	if e.Profile().Name != DefaultProfileName {
		t.Errorf("profile changed to %q", e.Profile().Name)
	}
}

func TestEngineReset(t *testing.T) {
	e := newTestEngine(t, nil)
	feedTone(e, pluck(440), 8192, 20)
	e.Reset()

	s := e.Snapshot()
	if s.Status != StatusWaiting || s.Note != "" || s.DetectedFreq != 0 {
		t.Errorf("snapshot after Reset = %+v", s)
	}
}

type fakeSource struct {
	startErr error
	stopErr  error
	fn       BlockFunc
	started  bool
	stopped  bool
}

func (f *fakeSource) Start(fn BlockFunc) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.fn = fn
	f.started = true
	return nil
}

func (f *fakeSource) Stop() error {
	f.stopped = true
	return f.stopErr
}

func TestEngineStartStop(t *testing.T) {
	e := newTestEngine(t, nil)
	src := &fakeSource{}

	if err := e.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() before Start error = %v, want ErrNotRunning", err)
	}
	if err := e.Start(src); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !e.Running() {
		t.Error("Running() = false after Start")
	}
	if err := e.Start(&fakeSource{}); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	gen := pluck(440)
	for range 20 {
		src.fn(gen.Block(8192))
	}
	if e.Snapshot().Note != "A4" {
		t.Errorf("blocks from the source were not processed: %+v", e.Snapshot())
	}

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !src.stopped || e.Running() {
		t.Errorf("stopped = %v, Running() = %v", src.stopped, e.Running())
	}
	if s := e.Snapshot(); s.Status != StatusWaiting {
		t.Errorf("Status after Stop = %v, want WAITING", s.Status)
	}
}

func TestEngineStartFailure(t *testing.T) {
	e := newTestEngine(t, nil)
	cause := errors.New("no input device")

	err := e.Start(&fakeSource{startErr: cause})
	if !errors.Is(err, ErrSourceUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("Start() error = %v, want ErrSourceUnavailable wrapping the cause", err)
	}
	if e.Running() {
		t.Error("engine running after failed Start")
	}
	if err := e.Start(&fakeSource{}); err != nil {
		t.Errorf("Start() after failure error = %v", err)
	}
}

func TestEngineConcurrentSnapshots(t *testing.T) {
	e := newTestEngine(t, nil)
	gen := pluck(440)
	blocks := make([][]float32, 12)
	for i := range blocks {
		blocks[i] = gen.Block(8192)
	}

	var wg sync.WaitGroup
	done := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last uint64
			for {
				select {
				case <-done:
					return
				default:
				}
				s := e.Snapshot()
				if s.Sequence < last {
					t.Errorf("sequence went backwards: %d after %d", s.Sequence, last)
					return
				}
				last = s.Sequence
			}
		}()
	}

	for _, b := range blocks {
		e.ProcessBlock(b)
	}
	e.Reset()
	close(done)
	wg.Wait()
}

func BenchmarkEngineProcessBlock(b *testing.B) {
	e := newTestEngine(b, nil)
	gen := pluck(440)
	block := gen.Block(8192)

	b.ReportAllocs()
	for b.Loop() {
		e.ProcessBlock(block)
	}
}
