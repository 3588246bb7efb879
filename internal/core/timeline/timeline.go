// Package timeline groups correlated trace events into ordered, renderable
// frames, one per distinct timestamp.
package timeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-sim/traceplay/internal/core/trace"
)

// summaryMaxParts bounds how many clauses the frame summary lists before
// truncating, matching the status line of the original visualizer.
const summaryMaxParts = 3

// Frame is one discrete snapshot of the timeline at a single timestamp.
// Frames are immutable once built: build-once, read-many.
type Frame struct {
	Time int64

	// Senders and Receivers are the nodes active at this timestamp, each
	// sorted ascending.
	Senders   []trace.NodeID
	Receivers []trace.NodeID

	// SelfDiscoverers is the subset of Senders broadcasting their own
	// discovery rather than forwarding.
	SelfDiscoverers []trace.NodeID

	// Transmissions are the correlated deliveries whose send time equals
	// this frame's time, in correlation order.
	Transmissions []trace.Transmission

	// Summary is a deterministic human-readable synopsis of the frame.
	Summary string
}

// IsSender reports whether the node broadcasts in this frame.
func (f Frame) IsSender(id trace.NodeID) bool {
	_, ok := slices.BinarySearch(f.Senders, id)
	return ok
}

// IsReceiver reports whether the node receives in this frame.
func (f Frame) IsReceiver(id trace.NodeID) bool {
	_, ok := slices.BinarySearch(f.Receivers, id)
	return ok
}

// Build groups SEND and RECV events by exact timestamp into frames ordered
// by strictly ascending time. A timestamp with no SEND or RECV event produces
// no frame; TOPOLOGY and STATS events never do. Transmissions are attached to
// the frame whose time equals their send time.
func Build(events []trace.Event, txs []trace.Transmission) []Frame {
	type group struct {
		senders   map[trace.NodeID]struct{}
		receivers map[trace.NodeID]struct{}
		selfDisc  map[trace.NodeID]struct{}
		origins   map[trace.NodeID][]trace.NodeID // forwarder -> originators
	}

	groups := make(map[int64]*group)
	at := func(ts int64) *group {
		g := groups[ts]
		if g == nil {
			g = &group{
				senders:   make(map[trace.NodeID]struct{}),
				receivers: make(map[trace.NodeID]struct{}),
				selfDisc:  make(map[trace.NodeID]struct{}),
				origins:   make(map[trace.NodeID][]trace.NodeID),
			}
			groups[ts] = g
		}
		return g
	}

	for _, ev := range events {
		switch ev.Kind {
		case trace.KindSend:
			g := at(ev.Time)
			g.senders[ev.Sender] = struct{}{}
			if ev.SelfDiscovery() {
				g.selfDisc[ev.Sender] = struct{}{}
			} else {
				g.origins[ev.Sender] = append(g.origins[ev.Sender], ev.Originator)
			}
		case trace.KindRecv:
			at(ev.Time).receivers[ev.Receiver] = struct{}{}
		}
	}

	txByTime := make(map[int64][]trace.Transmission)
	for _, tx := range txs {
		txByTime[tx.SendTime] = append(txByTime[tx.SendTime], tx)
	}

	times := make([]int64, 0, len(groups))
	for ts := range groups {
		times = append(times, ts)
	}
	slices.Sort(times)

	frames := make([]Frame, 0, len(times))
	for _, ts := range times {
		g := groups[ts]
		f := Frame{
			Time:            ts,
			Senders:         sortedSet(g.senders),
			Receivers:       sortedSet(g.receivers),
			SelfDiscoverers: sortedSet(g.selfDisc),
			Transmissions:   txByTime[ts],
		}
		f.Summary = summarize(f, g.origins)
		frames = append(frames, f)
	}

	return frames
}

func sortedSet(set map[trace.NodeID]struct{}) []trace.NodeID {
	out := make([]trace.NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// summarize builds the frame's status line: who broadcasts their own
// discovery, who forwards whose packet, who receives. Bounded and fully
// determined by the frame contents.
func summarize(f Frame, origins map[trace.NodeID][]trace.NodeID) string {
	var parts []string

	if len(f.SelfDiscoverers) > 0 {
		parts = append(parts, fmt.Sprintf("nodes %s broadcast their own discovery",
			joinNodes(f.SelfDiscoverers)))
	}

	forwarders := make([]trace.NodeID, 0, len(origins))
	for id := range origins {
		forwarders = append(forwarders, id)
	}
	slices.Sort(forwarders)
	for _, id := range forwarders {
		origs := slices.Clone(origins[id])
		slices.Sort(origs)
		origs = slices.Compact(origs)
		parts = append(parts, fmt.Sprintf("node %d forwards node %s's packet", id, joinNodes(origs)))
	}

	if len(f.Receivers) > 0 {
		parts = append(parts, fmt.Sprintf("nodes %s receive packets", joinNodes(f.Receivers)))
	}

	if len(parts) == 0 {
		return "no activity"
	}
	if len(parts) > summaryMaxParts {
		parts = append(parts[:summaryMaxParts], "...")
	}
	return strings.Join(parts, " | ")
}

func joinNodes(ids []trace.NodeID) string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(strs, ",")
}
