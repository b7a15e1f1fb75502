// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tuner/internal/tuning"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	refreshInterval = 50 * time.Millisecond
	maxLogLines     = 50
	gaugeWidth      = 41
	eventQueue      = 64
)

// Engine is the part of tuning.Engine the view drives.
type Engine interface {
	Snapshot() tuning.Snapshot
	Profile() tuning.Profile
	SetProfile(p tuning.Profile) error
	Reset()
	ClearConfirmed()
}

type keyMap struct {
	Profile key.Binding
	Reset   key.Binding
	Clear   key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Profile: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next profile")),
	Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear confirmed")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tickMsg time.Time

// TunerModel is the live tuner screen. It polls the engine at 20 Hz and
// drains engine events into a scrolling log.
type TunerModel struct {
	engine   Engine
	profiles []tuning.Profile
	current  int

	events chan tuning.Event
	snap   tuning.Snapshot
	log    []string
	err    error
	width  int
}

// NewTunerModel returns a model cycling through profiles with p. The
// engine's active profile is selected first when it is in the list.
func NewTunerModel(engine Engine, profiles []tuning.Profile) *TunerModel {
	m := &TunerModel{
		engine:   engine,
		profiles: profiles,
		events:   make(chan tuning.Event, eventQueue),
		snap:     engine.Snapshot(),
	}
	active := engine.Profile().Name
	for i, p := range profiles {
		if p.Name == active {
			m.current = i
			break
		}
	}
	return m
}

// HandleEvent queues ev for display. It is meant to be registered with
// Engine.OnEvent and never blocks; events are dropped when the view
// falls behind.
func (m *TunerModel) HandleEvent(ev tuning.Event) {
	select {
	case m.events <- ev:
	default:
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *TunerModel) Init() tea.Cmd {
	return tick()
}

func (m *TunerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.refresh()
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Profile):
			m.nextProfile()
		case key.Matches(msg, keys.Reset):
			m.engine.Reset()
			m.refresh()
		case key.Matches(msg, keys.Clear):
			m.engine.ClearConfirmed()
			m.addLog("confirmations cleared")
			m.refresh()
		}
	}
	return m, nil
}

func (m *TunerModel) refresh() {
	m.snap = m.engine.Snapshot()
	for {
		select {
		case ev := <-m.events:
			m.addLog(ev.String())
		default:
			return
		}
	}
}

func (m *TunerModel) nextProfile() {
	if len(m.profiles) == 0 {
		return
	}
	next := (m.current + 1) % len(m.profiles)
	if err := m.engine.SetProfile(m.profiles[next]); err != nil {
		m.err = err
		return
	}
	m.current = next
	m.err = nil
	m.refresh()
}

func (m *TunerModel) addLog(line string) {
	m.log = append(m.log, time.Now().Format("15:04:05")+"  "+line)
	if over := len(m.log) - maxLogLines; over > 0 {
		m.log = append(m.log[:0], m.log[over:]...)
	}
}

func (m *TunerModel) View() string {
	s := m.snap
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tuner · " + s.Profile))
	b.WriteString("\n\n")

	note := s.Note
	if note == "" {
		note = "--"
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		noteStyle.BorderForeground(statusColors[s.Status]).Render(note),
		"  ",
		m.readout(),
	))
	b.WriteString("\n\n")

	pitched := s.Status.Pitched()
	b.WriteString(dimStyle.Render(gaugeScale))
	b.WriteString("\n")
	b.WriteString(statusStyle(s.Status).Render(renderGauge(s.Cents, gaugeWidth, pitched)))
	b.WriteString("\n\n")

	b.WriteString(m.noteRow())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	start := max(len(m.log)-8, 0)
	for _, line := range m.log[start:] {
		b.WriteString(dimStyle.Render(line) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(m.help()))
	return b.String()
}

func (m *TunerModel) readout() string {
	s := m.snap
	status := statusStyle(s.Status).Render(s.Status.String())
	if !s.Status.Pitched() {
		if s.Status == tuning.StatusOutOfRange && s.DetectedFreq > 0 {
			return fmt.Sprintf("%s\n%.2f Hz", status, s.DetectedFreq)
		}
		return status
	}
	stability := dimStyle.Render("settling")
	if s.Stable {
		stability = highlightStyle.Render("stable")
	}
	return fmt.Sprintf("%s  %s\n%.2f Hz → %.2f Hz\n%+.1f cents",
		status, stability, s.DetectedFreq, s.TargetFreq, s.Cents)
}

// noteRow renders the profile's notes, marking the current one and the
// confirmed ones.
func (m *TunerModel) noteRow() string {
	if len(m.profiles) == 0 {
		return ""
	}
	p := m.profiles[m.current]
	cells := make([]string, len(p.Notes))
	for i, n := range p.Notes {
		label := n.Label
		if m.snap.IsConfirmed(n.Label) {
			label += " ✓"
		}
		switch {
		case n.Label == m.snap.Note && m.snap.Status.Pitched():
			cells[i] = statusStyle(m.snap.Status).Render("[" + label + "]")
		case m.snap.IsConfirmed(n.Label):
			cells[i] = highlightStyle.Render(" " + label + " ")
		default:
			cells[i] = infoStyle.Render(" " + label + " ")
		}
	}
	return strings.Join(cells, " ")
}

func (m *TunerModel) help() string {
	bindings := []key.Binding{keys.Profile, keys.Reset, keys.Clear, keys.Quit}
	parts := make([]string, len(bindings))
	for i, k := range bindings {
		h := k.Help()
		parts[i] = h.Key + ": " + h.Desc
	}
	return strings.Join(parts, " • ")
}

// RunTuner runs the tuner screen until the user quits or ctx is done.
// Engine events go to the screen and to every handler in forward.
func RunTuner(ctx context.Context, engine *tuning.Engine, profiles []tuning.Profile, forward ...tuning.EventHandler) error {
	m := NewTunerModel(engine, profiles)
	engine.OnEvent(func(ev tuning.Event) {
		m.HandleEvent(ev)
		for _, h := range forward {
			h(ev)
		}
	})
	defer engine.OnEvent(nil)

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
