// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"tuner/internal/audio"
	"tuner/internal/config"
	"tuner/internal/tui"
	"tuner/internal/tuning"
)

// RunProfiles prints every profile the configuration can select, marking
// the active one.
func RunProfiles(w io.Writer, cfg *config.Config) error {
	for _, p := range cfg.AllProfiles() {
		marker := " "
		if strings.EqualFold(p.Name, cfg.Tuning.Profile) {
			marker = "*"
		}
		notes := make([]string, len(p.Notes))
		for i, n := range p.Notes {
			notes[i] = fmt.Sprintf("%s %.2f", n.Label, n.Frequency)
		}
		fmt.Fprintf(w, "%s %-16s %s\n", marker, p.Name, strings.Join(notes, ", "))
	}
	return nil
}

// RunList prints the audio devices, or runs the device picker when
// interactive is set. PortAudio must be initialised.
func RunList(w io.Writer, interactive bool) error {
	if !interactive {
		return audio.ListDevices(w)
	}
	d, ok, err := tui.PickInputDevice()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	fmt.Fprintf(w, "Selected [%d] %s\nRun with --device %d or set audio.input_device: %d\n", d.ID, d.Name, d.ID, d.ID)
	return nil
}

// RunAnalyze feeds a WAV file through a fresh engine and prints one line
// per published reading plus every event. The engine runs at the file's
// sample rate.
func RunAnalyze(w io.Writer, opts *Options) error {
	cfg := opts.Config
	src, err := audio.OpenWAV(opts.File, cfg.Audio.BlockSize)
	if err != nil {
		return err
	}

	ec, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	ec.SampleRate = src.SampleRate()

	engine, err := tuning.NewEngine(ec)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.File, err)
	}
	engine.OnEvent(func(ev tuning.Event) {
		fmt.Fprintf(w, "          ! %s\n", ev)
	})

	fmt.Fprintf(w, "%s: %.0f Hz, %s, profile %s\n", opts.File, src.SampleRate(), src.Duration().Round(time.Millisecond), ec.Profile.Name)

	blockDur := float64(cfg.Audio.BlockSize) / src.SampleRate()
	var blocks int
	var lastSeq uint64
	report := func(block []float32) {
		engine.ProcessBlock(block)
		blocks++
		snap := engine.Snapshot()
		if snap.Sequence == lastSeq {
			return
		}
		lastSeq = snap.Sequence
		fmt.Fprintln(w, formatReading(float64(blocks)*blockDur, snap))
	}

	if opts.Realtime {
		src.SetRealtime(true)
		if err := engine.Start(sourceFunc{src, report}); err != nil {
			return err
		}
		<-src.Done()
	} else {
		src.Run(report)
	}

	// Stop resets the engine, so read the confirmed set first.
	final := engine.Snapshot()
	if opts.Realtime {
		if err := engine.Stop(); err != nil {
			return err
		}
	}
	if len(final.Confirmed) > 0 {
		fmt.Fprintf(w, "confirmed: %s\n", strings.Join(final.Confirmed, ", "))
	}
	return nil
}

// sourceFunc replaces the engine's block callback with fn so realtime
// replay reports every reading.
type sourceFunc struct {
	src *audio.WAVSource
	fn  tuning.BlockFunc
}

func (s sourceFunc) Start(tuning.BlockFunc) error { return s.src.Start(s.fn) }
func (s sourceFunc) Stop() error                  { return s.src.Stop() }

func formatReading(at float64, s tuning.Snapshot) string {
	line := fmt.Sprintf("%8.2fs  %-12s", at, s.Status)
	switch {
	case s.Status.Pitched():
		line += fmt.Sprintf(" %-4s %8.2f Hz %+6.1f cents", s.Note, s.DetectedFreq, s.Cents)
		if s.Stable {
			line += "  stable"
		}
	case s.Status == tuning.StatusOutOfRange:
		line += fmt.Sprintf(" %13.2f Hz", s.DetectedFreq)
	}
	return line
}
