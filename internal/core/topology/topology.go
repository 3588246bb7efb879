// Package topology derives the static undirected connectivity graph from
// trace events.
package topology

import (
	"slices"

	"github.com/mesh-sim/traceplay/internal/core/trace"
)

// Topology is the undirected mesh graph. It is built once from a trace and
// immutable afterward; all accessors are read-only.
type Topology struct {
	nodes map[trace.NodeID]struct{}
	adj   map[trace.NodeID]map[trace.NodeID]struct{}
}

// Build constructs the graph from TOPOLOGY events. Node ids appearing as
// sender, receiver, or originator in SEND/RECV events are unioned in even
// when no TOPOLOGY row mentions them, so correlation never looks up a node
// the graph is missing. Self-loops are ignored and edges deduplicated, so the
// result depends only on the input set, not its order.
func Build(events []trace.Event) *Topology {
	t := &Topology{
		nodes: make(map[trace.NodeID]struct{}),
		adj:   make(map[trace.NodeID]map[trace.NodeID]struct{}),
	}

	for _, ev := range events {
		switch ev.Kind {
		case trace.KindTopology:
			t.addEdge(ev.Sender, ev.Receiver)
		case trace.KindSend:
			t.addNode(ev.Sender)
			t.addNode(ev.Originator)
		case trace.KindRecv:
			t.addNode(ev.Receiver)
			t.addNode(ev.Originator)
		}
	}

	return t
}

func (t *Topology) addNode(id trace.NodeID) {
	t.nodes[id] = struct{}{}
}

func (t *Topology) addEdge(a, b trace.NodeID) {
	t.addNode(a)
	t.addNode(b)
	if a == b {
		return
	}

	if t.adj[a] == nil {
		t.adj[a] = make(map[trace.NodeID]struct{})
	}
	if t.adj[b] == nil {
		t.adj[b] = make(map[trace.NodeID]struct{})
	}
	t.adj[a][b] = struct{}{}
	t.adj[b][a] = struct{}{}
}

// Contains reports whether the node is known to the graph.
func (t *Topology) Contains(id trace.NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// HasEdge reports whether an undirected link exists between a and b.
func (t *Topology) HasEdge(a, b trace.NodeID) bool {
	_, ok := t.adj[a][b]
	return ok
}

// Nodes returns all node ids in ascending order.
func (t *Topology) Nodes() []trace.NodeID {
	out := make([]trace.NodeID, 0, len(t.nodes))
	for id := range t.nodes {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Neighbors returns the nodes adjacent to id in ascending order.
func (t *Topology) Neighbors(id trace.NodeID) []trace.NodeID {
	out := make([]trace.NodeID, 0, len(t.adj[id]))
	for n := range t.adj[id] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Edges returns all undirected edges as ordered pairs (smaller id first),
// sorted ascending.
func (t *Topology) Edges() [][2]trace.NodeID {
	var out [][2]trace.NodeID
	for a, nbrs := range t.adj {
		for b := range nbrs {
			if a < b {
				out = append(out, [2]trace.NodeID{a, b})
			}
		}
	}
	slices.SortFunc(out, func(x, y [2]trace.NodeID) int {
		if x[0] != y[0] {
			return int(x[0] - y[0])
		}
		return int(x[1] - y[1])
	})
	return out
}

// NodeCount returns the number of nodes.
func (t *Topology) NodeCount() int { return len(t.nodes) }

// EdgeCount returns the number of undirected edges.
func (t *Topology) EdgeCount() int {
	n := 0
	for _, nbrs := range t.adj {
		n += len(nbrs)
	}
	return n / 2
}
