// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"strings"
	"testing"

	"tuner/internal/audio"
	"tuner/internal/tuning"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeEngine struct {
	snap     tuning.Snapshot
	profile  tuning.Profile
	resets   int
	cleared  int
	setErr   error
	profiles []string
}

func (f *fakeEngine) Snapshot() tuning.Snapshot { return f.snap }
func (f *fakeEngine) Profile() tuning.Profile   { return f.profile }
func (f *fakeEngine) Reset()                    { f.resets++ }
func (f *fakeEngine) ClearConfirmed()           { f.cleared++ }

func (f *fakeEngine) SetProfile(p tuning.Profile) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.profile = p
	f.profiles = append(f.profiles, p.Name)
	f.snap = tuning.Snapshot{Profile: p.Name}
	return nil
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testProfiles(t *testing.T) []tuning.Profile {
	t.Helper()
	var out []tuning.Profile
	for _, name := range []string{"ukulele", "guitar", "ukulele-low-g"} {
		p, err := tuning.LookupProfile(name, nil)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, p)
	}
	return out
}

func TestGaugeMarker(t *testing.T) {
	tests := []struct {
		cents float64
		want  int
	}{
		{0, 20},
		{-50, 0},
		{50, 40},
		{-80, 0},
		{120, 40},
		{25, 30},
		{-12.4, 15},
	}
	for _, tt := range tests {
		if got := gaugeMarker(tt.cents, gaugeWidth); got != tt.want {
			t.Errorf("gaugeMarker(%g) = %d, want %d", tt.cents, got, tt.want)
		}
	}
}

func TestRenderGauge(t *testing.T) {
	g := []rune(renderGauge(0, gaugeWidth, true))
	if len(g) != gaugeWidth || g[20] != '▼' {
		t.Errorf("centred needle: %q", string(g))
	}
	g = []rune(renderGauge(-50, gaugeWidth, true))
	if g[0] != '▼' || g[20] != '┼' {
		t.Errorf("flat needle: %q", string(g))
	}
	if strings.ContainsRune(renderGauge(10, gaugeWidth, false), '▼') {
		t.Error("needle drawn without a pitched status")
	}
	if renderGauge(0, 0, true) != "" {
		t.Error("zero width should draw nothing")
	}
	if len([]rune(gaugeScale)) != gaugeWidth {
		t.Errorf("scale is %d columns, want %d", len([]rune(gaugeScale)), gaugeWidth)
	}
}

func TestTunerModelKeys(t *testing.T) {
	profiles := testProfiles(t)
	eng := &fakeEngine{profile: profiles[1], snap: tuning.Snapshot{Profile: "guitar"}}
	m := NewTunerModel(eng, profiles)
	if m.current != 1 {
		t.Fatalf("current profile %d, want 1 (guitar)", m.current)
	}

	m.Update(keyPress('p'))
	m.Update(keyPress('p'))
	if want := []string{"ukulele-low-g", "ukulele"}; strings.Join(eng.profiles, ",") != strings.Join(want, ",") {
		t.Errorf("profiles set %v, want %v", eng.profiles, want)
	}

	m.Update(keyPress('r'))
	m.Update(keyPress('c'))
	if eng.resets != 1 || eng.cleared != 1 {
		t.Errorf("resets=%d cleared=%d, want 1 and 1", eng.resets, eng.cleared)
	}

	if _, cmd := m.Update(keyPress('q')); cmd == nil {
		t.Fatal("q should return a command")
	} else if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestTunerModelProfileError(t *testing.T) {
	profiles := testProfiles(t)
	eng := &fakeEngine{profile: profiles[0], setErr: errors.New("boom")}
	m := NewTunerModel(eng, profiles)

	m.Update(keyPress('p'))
	if m.current != 0 || m.err == nil {
		t.Errorf("current=%d err=%v, want 0 and an error", m.current, m.err)
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("error not shown in view")
	}
}

func TestTunerModelEventLog(t *testing.T) {
	eng := &fakeEngine{profile: testProfiles(t)[0]}
	m := NewTunerModel(eng, testProfiles(t))

	for i := range maxLogLines + 10 {
		m.HandleEvent(tuning.Event{Kind: tuning.EventNoteChanged, Note: string(rune('A' + i%7))})
		if i%20 == 19 {
			m.Update(tickMsg{})
		}
	}
	m.Update(tickMsg{})
	if len(m.log) != maxLogLines {
		t.Errorf("log has %d lines, want %d", len(m.log), maxLogLines)
	}

	// A full queue drops instead of blocking.
	for range eventQueue + 5 {
		m.HandleEvent(tuning.Event{Kind: tuning.EventReset})
	}
}

func TestTunerModelView(t *testing.T) {
	profiles := testProfiles(t)
	eng := &fakeEngine{
		profile: profiles[0],
		snap: tuning.Snapshot{
			Note: "A4", DetectedFreq: 441, TargetFreq: 440, Cents: 3.9,
			Status: tuning.StatusInTune, Stable: true, Profile: "ukulele",
			Confirmed: []string{"A4", "E4"},
		},
	}
	m := NewTunerModel(eng, profiles)
	m.Update(tickMsg{})

	view := m.View()
	for _, want := range []string{"ukulele", "IN_TUNE", "441.00 Hz", "+3.9 cents", "stable", "A4 ✓", "E4 ✓", "p: next profile"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	eng.snap = tuning.Snapshot{Status: tuning.StatusOutOfRange, DetectedFreq: 900, Profile: "ukulele"}
	m.Update(tickMsg{})
	if view := m.View(); !strings.Contains(view, "OUT_OF_RANGE") || !strings.Contains(view, "900.00 Hz") {
		t.Errorf("out of range view:\n%s", view)
	}
}

func TestDevicePicker(t *testing.T) {
	fetch := func() ([]audio.Device, error) {
		return []audio.Device{
			{ID: 0, Name: "Speakers", MaxOutputChannels: 2},
			{ID: 1, Name: "Built-in Mic", MaxInputChannels: 1, DefaultSampleRate: 48000},
			{ID: 2, Name: "Interface", MaxInputChannels: 2, MaxOutputChannels: 2, DefaultSampleRate: 96000},
		}, nil
	}

	var model tea.Model = NewDevicePickerModel(fetch)
	msg := model.Init()()
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(msg)

	picker := model.(DevicePickerModel)
	if len(picker.devices) != 2 {
		t.Fatalf("offered %d devices, want 2 inputs", len(picker.devices))
	}
	if strings.Contains(picker.View(), "Speakers") {
		t.Error("output-only device listed")
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(model.View(), "96000 Hz") {
		t.Errorf("detail screen:\n%s", model.View())
	}
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("choosing a device should quit")
	}

	d, ok := model.(DevicePickerModel).Chosen()
	if !ok || d.ID != 2 {
		t.Errorf("chosen %+v, %v; want device 2", d, ok)
	}
}

func TestDevicePickerError(t *testing.T) {
	var model tea.Model = NewDevicePickerModel(func() ([]audio.Device, error) {
		return nil, errors.New("no host API")
	})
	msg := model.Init()()
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(msg)
	if !strings.Contains(model.View(), "no host API") {
		t.Errorf("view:\n%s", model.View())
	}
	if _, ok := model.(DevicePickerModel).Chosen(); ok {
		t.Error("nothing should be chosen")
	}
}
