package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines the playback keybindings.
type keyMap struct {
	PlayPause key.Binding
	StepFwd   key.Binding
	StepBack  key.Binding
	SpeedUp   key.Binding
	SpeedDown key.Binding
	Restart   key.Binding
	SeekPct   key.Binding
	Stats     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		StepFwd: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "step forward"),
		),
		StepBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "step back"),
		),
		SpeedUp: key.NewBinding(
			key.WithKeys("up", "+"),
			key.WithHelp("↑", "faster"),
		),
		SpeedDown: key.NewBinding(
			key.WithKeys("down", "-"),
			key.WithHelp("↓", "slower"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		SeekPct: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("0-9", "seek to percent"),
		),
		Stats: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "stats"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.StepFwd, k.StepBack, k.SpeedUp, k.SpeedDown, k.Stats, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.StepFwd, k.StepBack, k.Restart, k.SeekPct},
		{k.SpeedUp, k.SpeedDown, k.Stats, k.Help, k.Quit},
	}
}
