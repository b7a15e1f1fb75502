// SPDX-License-Identifier: MIT
package tui

import (
	"tuner/internal/tuning"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))

	noteStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder())

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

var statusColors = map[tuning.Status]lipgloss.Color{
	tuning.StatusWaiting:    "#767676",
	tuning.StatusLowSignal:  "#767676",
	tuning.StatusOutOfRange: "#FF5F5F",
	tuning.StatusFlat:       "#FFAF00",
	tuning.StatusSharp:      "#FF8700",
	tuning.StatusInTune:     "#25A065",
}

func statusStyle(s tuning.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(statusColors[s]).Bold(true)
}
