// Package trace defines the typed event model for mesh-discovery simulation
// traces and the parsing from raw CSV records into events.
package trace

import "fmt"

// NodeID identifies a mesh node in the trace.
type NodeID int

// Kind discriminates the four record kinds found in a trace.
type Kind int

const (
	KindTopology Kind = iota
	KindSend
	KindRecv
	KindStats
)

// String returns the trace-file spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindTopology:
		return "TOPOLOGY"
	case KindSend:
		return "SEND"
	case KindRecv:
		return "RECV"
	case KindStats:
		return "STATS"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is one typed trace record. The kind determines which fields are
// meaningful; unused fields are zero.
//
//   - KindTopology: Sender and Receiver hold the undirected link pair.
//   - KindSend: Time, Sender, Originator, TTL, PathLength. Receiver is unset
//     because a send is a broadcast fan-out.
//   - KindRecv: Time, Receiver, Originator, TTL, PathLength. Sender is unset
//     and inferred later by correlation.
//   - KindStats: see Stats; raw STATS rows are decoded separately.
type Event struct {
	Kind       Kind
	Time       int64 // milliseconds since simulation start
	Sender     NodeID
	Receiver   NodeID
	Originator NodeID
	TTL        int
	PathLength int
	RSSI       int

	// Seq is the original row position, used as a stable tie-break for
	// events sharing a timestamp.
	Seq int
}

// SelfDiscovery reports whether a SEND event is a node broadcasting its own
// discovery packet rather than forwarding someone else's.
func (e Event) SelfDiscovery() bool {
	return e.Kind == KindSend && e.PathLength <= 1 && e.Sender == e.Originator
}

// Stats holds the terminal per-node counters logged at the end of a
// simulation run. STATS rows repurpose the regular columns (sender_id is the
// node, receiver_id the sent count, originator_id the received count, ttl the
// forwarded count, path_length the dropped count); Stats carries the decoded
// meaning.
type Stats struct {
	Node      NodeID
	Sent      int
	Received  int
	Forwarded int
	Dropped   int
}

// Transmission is a correlated point-to-point delivery: one SEND matched to
// the RECV it caused at a topology-adjacent node.
type Transmission struct {
	Sender      NodeID
	Receiver    NodeID
	Originator  NodeID
	SendTime    int64
	ArrivalTime int64
	TTL         int
	PathLength  int
}

// Delay returns the propagation delay of the transmission in milliseconds.
func (t Transmission) Delay() int64 {
	return t.ArrivalTime - t.SendTime
}

func (t Transmission) String() string {
	return fmt.Sprintf("%d -> %d (origin %d, t=%d+%dms)",
		t.Sender, t.Receiver, t.Originator, t.SendTime, t.Delay())
}
