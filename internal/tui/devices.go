// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"tuner/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	DetailScreen
)

// DevicePickerModel lets the user choose a capture device.
type DevicePickerModel struct {
	fetch         func() ([]audio.Device, error)
	devices       []audio.Device
	selectedIndex int
	chosen        *audio.Device
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// NewDevicePickerModel returns a picker over the devices fetch reports.
// Devices without input channels are not offered.
func NewDevicePickerModel(fetch func() ([]audio.Device, error)) DevicePickerModel {
	return DevicePickerModel{fetch: fetch, activeScreen: ListScreen}
}

func (m DevicePickerModel) Init() tea.Cmd {
	return func() tea.Msg {
		devices, err := m.fetch()
		if err != nil {
			return errMsg{err}
		}
		inputs := devices[:0:0]
		for _, d := range devices {
			if d.MaxInputChannels > 0 {
				inputs = append(inputs, d)
			}
		}
		return devicesMsg{inputs}
	}
}

func (m DevicePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.render()

	case devicesMsg:
		m.devices = msg.devices
		m.render()

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case ListScreen:
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.devices) > 0 {
					m.activeScreen = DetailScreen
				}
			}
		case DetailScreen:
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
				m.activeScreen = ListScreen
			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				d := m.devices[m.selectedIndex]
				m.chosen = &d
				return m, tea.Quit
			}
		}
		m.render()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *DevicePickerModel) render() {
	if !m.ready {
		return
	}
	if m.activeScreen == DetailScreen {
		m.viewport.SetContent(m.renderDetail())
		return
	}
	m.viewport.SetContent(m.renderDevices())
}

// Chosen returns the device confirmed with Enter, if any.
func (m DevicePickerModel) Chosen() (audio.Device, bool) {
	if m.chosen == nil {
		return audio.Device{}, false
	}
	return *m.chosen, true
}

func (m DevicePickerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Input Devices")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Details • q: Quit")
	} else {
		title = titleStyle.Render("Input Device")
		help = infoStyle.Render("Enter: Use this device • Esc: Back • q: Quit")
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m DevicePickerModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No input devices found."
	}

	var sb strings.Builder
	for i, d := range m.devices {
		line := fmt.Sprintf("[%d] %s\n    %d input channel(s), %.0f Hz\n",
			d.ID, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
		if i == m.selectedIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m DevicePickerModel) renderDetail() string {
	d := m.devices[m.selectedIndex]
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", highlightStyle.Render(d.Name))
	fmt.Fprintf(&sb, "  ID:                  %d\n", d.ID)
	fmt.Fprintf(&sb, "  Type:                %s\n", d.Type())
	fmt.Fprintf(&sb, "  Input channels:      %d\n", d.MaxInputChannels)
	fmt.Fprintf(&sb, "  Default sample rate: %.0f Hz\n", d.DefaultSampleRate)
	fmt.Fprintf(&sb, "  Low input latency:   %s\n", d.LowInputLatency)
	fmt.Fprintf(&sb, "  High input latency:  %s\n", d.HighInputLatency)
	return sb.String()
}

// PickInputDevice runs the picker and returns the chosen device. ok is
// false when the user quit without choosing.
func PickInputDevice() (device audio.Device, ok bool, err error) {
	final, err := tea.NewProgram(NewDevicePickerModel(audio.GetDevices), tea.WithAltScreen()).Run()
	if err != nil {
		return audio.Device{}, false, err
	}
	device, ok = final.(DevicePickerModel).Chosen()
	return device, ok, nil
}
