package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-sim/traceplay/internal/core/config"
	"github.com/mesh-sim/traceplay/internal/core/playback"
	"github.com/mesh-sim/traceplay/internal/core/trace"
	"github.com/mesh-sim/traceplay/internal/replay"
)

// UIState represents the current state of the playback view.
type UIState int

const (
	stateLoading UIState = iota
	stateReady
)

// recordingLoadedMsg is sent when the trace has been loaded and processed.
type recordingLoadedMsg struct {
	rec *replay.Recording
	err error
}

// tickMsg drives playback while running.
type tickMsg time.Time

// Model is the main Bubble Tea model for trace playback.
type Model struct {
	svc  *replay.Service
	cfg  *config.Config
	path string

	state      UIState
	keys       keyMap
	help       help.Model
	spinner    spinner.Model
	progress   progress.Model
	rec        *replay.Recording
	ctrl       *playback.Controller
	origOrder  []trace.NodeID
	origStyles map[trace.NodeID]lipgloss.Style
	width      int
	height     int
	err        error
	notice     string
	showStats  bool
	quitting   bool
}

// New creates a playback model for the given trace file. Loading happens
// asynchronously after the program starts.
func New(svc *replay.Service, cfg *config.Config, path string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorBlue)

	pr := progress.New(
		progress.WithSolidFill("#7aa2f7"),
		progress.WithoutPercentage(),
	)

	return Model{
		svc:      svc,
		cfg:      cfg,
		path:     path,
		state:    stateLoading,
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		progress: pr,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadRecording())
}

// loadRecording runs the full processing pipeline off the UI loop.
func (m Model) loadRecording() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		rec, err := m.svc.LoadRecording(ctx, m.path)
		return recordingLoadedMsg{rec: rec, err: err}
	}
}

// tickInterval is how often playback advances while running.
func (m Model) tickInterval() time.Duration {
	ms := m.cfg.Playback.TickMS
	if ms <= 0 {
		ms = 50
	}
	return time.Duration(ms) * time.Millisecond
}

// scheduleTick schedules the next playback tick. The chain stops whenever
// playback pauses; ToggleRunning restarts it.
func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.tickInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = msg.Width - 24
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}
		return m, nil

	case recordingLoadedMsg:
		m.state = stateReady
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rec = msg.rec
		m.ctrl = m.svc.NewController(msg.rec)
		m.origOrder, m.origStyles = originatorStyles(msg.rec)
		if m.rec.Empty() {
			m.notice = "nothing to play: trace has no timeline events"
		}
		return m, nil

	case tickMsg:
		if m.ctrl == nil || !m.ctrl.Running() {
			return m, nil
		}
		m.ctrl.Advance(m.tickInterval())
		return m, m.scheduleTick()

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.state != stateReady || m.err != nil || m.ctrl == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.PlayPause):
		if err := m.ctrl.ToggleRunning(); err != nil {
			m.notice = "nothing to play: trace has no timeline events"
			return m, nil
		}
		m.notice = ""
		if m.ctrl.Running() {
			return m, m.scheduleTick()
		}

	case key.Matches(msg, m.keys.StepFwd):
		m.ctrl.Step(1)

	case key.Matches(msg, m.keys.StepBack):
		m.ctrl.Step(-1)

	case key.Matches(msg, m.keys.SpeedUp):
		m.ctrl.SetSpeed(m.ctrl.Speed() * 2)

	case key.Matches(msg, m.keys.SpeedDown):
		m.ctrl.SetSpeed(m.ctrl.Speed() / 2)

	case key.Matches(msg, m.keys.Restart):
		if !m.rec.Empty() {
			m.ctrl.Seek(m.rec.Frames[0].Time)
		}

	case key.Matches(msg, m.keys.SeekPct):
		if !m.rec.Empty() {
			frames := m.rec.Frames
			first := frames[0].Time
			last := frames[len(frames)-1].Time
			tenth := int64(msg.String()[0] - '0')
			m.ctrl.Seek(first + (last-first)*tenth/10)
		}

	case key.Matches(msg, m.keys.Stats):
		m.showStats = !m.showStats

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}
