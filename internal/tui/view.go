package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-sim/traceplay/internal/core/timeline"
	"github.com/mesh-sim/traceplay/internal/core/trace"
	"github.com/mesh-sim/traceplay/internal/replay"
)

// displayWindowMS pads the transmission list around the cursor so fast
// deliveries stay on screen for a few ticks instead of flashing by.
const displayWindowMS = 5

// maxVisibleTxs caps the transmission list so large frames don't push the
// status bar off screen.
const maxVisibleTxs = 8

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch {
	case m.state == stateLoading:
		return "\n " + m.spinner.View() + " Loading trace...\n"

	case m.err != nil:
		return "\n" + errStyle.Render("✘ "+m.err.Error()) + "\n\n" + statusStyle.Render("press q to quit") + "\n"
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("traceplay " + m.path))
	b.WriteString("\n\n")

	if m.rec.Empty() {
		b.WriteString(summaryStyle.Render("trace has no playable events"))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	frame, _ := m.ctrl.Frame()

	b.WriteString(m.renderNodes(frame))
	b.WriteString("\n")
	b.WriteString(m.renderLegend())
	b.WriteString(summaryStyle.Render(frame.Summary))
	b.WriteString("\n\n")

	if m.showStats {
		b.WriteString(m.renderStats())
	} else {
		b.WriteString(m.renderTransmissions())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus(frame))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(statusStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderNodes draws one badge per node, colored by its activity in the
// current frame. A trailing mark flags nodes broadcasting their own
// discovery packet.
func (m Model) renderNodes(frame timeline.Frame) string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(" ")
	lineLen := 1

	for _, id := range m.rec.Topology.Nodes() {
		label := fmt.Sprintf("[%d]", id)
		if slices.Contains(frame.SelfDiscoverers, id) {
			label += selfDiscoveryMark
		}

		sending := frame.IsSender(id)
		receiving := frame.IsReceiver(id)

		var styled string
		switch {
		case sending && receiving:
			styled = bothNodeStyle.Render(label)
		case sending:
			styled = sendNodeStyle.Render(label)
		case receiving:
			styled = recvNodeStyle.Render(label)
		default:
			styled = idleNodeStyle.Render(label)
		}

		if lineLen+len(label)+1 > width {
			b.WriteString("\n ")
			lineLen = 1
		}
		b.WriteString(styled)
		b.WriteString(" ")
		lineLen += len(label) + 1
	}

	return b.String()
}

// originatorStyles assigns each packet origin a palette slot by sorted id.
func originatorStyles(rec *replay.Recording) ([]trace.NodeID, map[trace.NodeID]lipgloss.Style) {
	set := make(map[trace.NodeID]struct{})
	for _, ev := range rec.Events {
		if ev.Kind == trace.KindSend || ev.Kind == trace.KindRecv {
			set[ev.Originator] = struct{}{}
		}
	}

	ids := make([]trace.NodeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	styles := make(map[trace.NodeID]lipgloss.Style, len(ids))
	for i, id := range ids {
		styles[id] = lipgloss.NewStyle().Foreground(originatorPalette[i%len(originatorPalette)])
	}
	return ids, styles
}

// renderLegend shows one swatch per packet origin.
func (m Model) renderLegend() string {
	if len(m.origOrder) == 0 {
		return ""
	}

	parts := make([]string, 0, len(m.origOrder))
	for _, id := range m.origOrder {
		parts = append(parts, m.origStyles[id].Render(fmt.Sprintf("●%d", id)))
	}
	return statusStyle.Render("origins") + " " + strings.Join(parts, " ") + "\n"
}

// renderTransmissions lists deliveries in flight near the cursor.
func (m Model) renderTransmissions() string {
	cursor := m.ctrl.CursorTime()

	var visible []trace.Transmission
	for _, tx := range m.rec.Transmissions {
		if float64(tx.SendTime)-displayWindowMS <= cursor && cursor <= float64(tx.ArrivalTime)+displayWindowMS {
			visible = append(visible, tx)
		}
	}

	if len(visible) == 0 {
		return txStyle.Render("no transmissions in flight") + "\n"
	}

	var b strings.Builder
	shown := visible
	if len(shown) > maxVisibleTxs {
		shown = shown[:maxVisibleTxs]
	}

	for _, tx := range shown {
		line := fmt.Sprintf("%d → %d  origin %d  %dms → %dms  ttl %d  hops %d",
			tx.Sender, tx.Receiver, tx.Originator, tx.SendTime, tx.ArrivalTime, tx.TTL, tx.PathLength)
		b.WriteString(txStyle.Render(line))
		b.WriteString("\n")
	}

	if extra := len(visible) - len(shown); extra > 0 {
		b.WriteString(txStyle.Render(fmt.Sprintf("... %d more", extra)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderStats draws the per-node counters reported at the end of the trace.
func (m Model) renderStats() string {
	if len(m.rec.Stats) == 0 {
		return txStyle.Render("trace has no statistics rows") + "\n"
	}

	var b strings.Builder
	b.WriteString(txStyle.Render(fmt.Sprintf("%5s %6s %9s %10s %8s", "NODE", "SENT", "RECEIVED", "FORWARDED", "DROPPED")))
	b.WriteString("\n")

	for _, s := range m.rec.Stats {
		b.WriteString(txStyle.Render(fmt.Sprintf("%5d %6d %9d %10d %8d", s.Node, s.Sent, s.Received, s.Forwarded, s.Dropped)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderStatus draws the scrubber and playback state line.
func (m Model) renderStatus(frame timeline.Frame) string {
	st := m.ctrl.State()

	mode := "paused"
	if st.Running {
		mode = "playing"
	}

	label := fmt.Sprintf("t=%dms  %gx  %s  frame %d/%d",
		frame.Time, st.Speed, mode, st.FrameIndex+1, len(m.rec.Frames))

	return statusStyle.Render(label) + "\n" + " " + m.progress.ViewAs(m.ctrl.Progress())
}
