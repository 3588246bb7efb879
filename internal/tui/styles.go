// Package tui implements the Bubble Tea playback view.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	colorGreen  = lipgloss.Color("#9ece6a") // green
	colorYellow = lipgloss.Color("#e0af68") // yellow
	colorBlue   = lipgloss.Color("#7aa2f7") // blue
	colorGray   = lipgloss.Color("#565f89") // comment
	colorWhite  = lipgloss.Color("#c0caf5") // foreground
)

// Styles used for rendering the playback view.
var (
	// Title style for the header.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			PaddingLeft(1)

	// Node badge styles by activity in the current frame.
	idleNodeStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	sendNodeStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	recvNodeStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	bothNodeStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	// Frame summary line.
	summaryStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			PaddingLeft(1)

	// Transmission rows below the node grid.
	txStyle = lipgloss.NewStyle().
		Foreground(colorGray).
		PaddingLeft(2)

	// Status bar at the bottom.
	statusStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingLeft(1)

	// Error text.
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d75f6b")).
			PaddingLeft(1)
)

// originatorPalette colors packet origins. Slots are assigned by sorted
// originator id, so an origin keeps its color for the whole run.
var originatorPalette = []lipgloss.Color{
	"#7aa2f7", // blue
	"#9ece6a", // green
	"#e0af68", // yellow
	"#bb9af7", // magenta
	"#7dcfff", // cyan
	"#f7768e", // red
}

// selfDiscoveryMark labels a node broadcasting its own presence.
const selfDiscoveryMark = "*"
