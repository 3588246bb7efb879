// Package correlate matches broadcast SEND events to the RECV events they
// produced at neighboring nodes, reconstructing point-to-point transmissions
// from a loosely-ordered trace.
package correlate

import (
	"slices"

	"github.com/mesh-sim/traceplay/internal/core/topology"
	"github.com/mesh-sim/traceplay/internal/core/trace"
)

// DefaultMaxDelay is the default propagation-delay window in milliseconds.
// The simulator delivers one hop in ~1ms; the wider default tolerates
// hand-edited and resampled traces.
const DefaultMaxDelay int64 = 5

// sendKey addresses the broadcasts of one sender for one originator.
type sendKey struct {
	sender     trace.NodeID
	originator trace.NodeID
}

// sendRef tracks which receivers a broadcast has already been matched to. A
// broadcast delivers at most once per neighbor.
type sendRef struct {
	ev     trace.Event
	served map[trace.NodeID]struct{}
}

// Correlate matches RECV events to the SEND that caused them and returns the
// reconstructed transmissions ordered by ascending send time. A RECV at node
// R with originator O is attributed to the closest prior SEND within the
// delay window whose sender is a topology neighbor of R and whose originator
// is O; the RECV must arrive strictly after the send and at most maxDelay ms
// later. Each RECV is consumed by at most one SEND, and a SEND delivers at
// most once per receiver. maxDelay <= 0 selects DefaultMaxDelay.
//
// An unmatched event on either side is a normal outcome, not an error: the
// neighbor may be out of range or the packet lost. Correlation never fails.
func Correlate(events []trace.Event, topo *topology.Topology, maxDelay int64) []trace.Transmission {
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	sends := make(map[sendKey][]*sendRef)
	var recvs []trace.Event

	for _, ev := range events {
		switch ev.Kind {
		case trace.KindSend:
			key := sendKey{sender: ev.Sender, originator: ev.Originator}
			sends[key] = append(sends[key], &sendRef{
				ev:     ev,
				served: make(map[trace.NodeID]struct{}),
			})
		case trace.KindRecv:
			recvs = append(recvs, ev)
		}
	}

	byTime := func(a, b trace.Event) int {
		if a.Time != b.Time {
			if a.Time < b.Time {
				return -1
			}
			return 1
		}
		return a.Seq - b.Seq
	}
	for _, list := range sends {
		slices.SortStableFunc(list, func(a, b *sendRef) int { return byTime(a.ev, b.ev) })
	}
	slices.SortStableFunc(recvs, byTime)

	var txs []trace.Transmission
	for _, recv := range recvs {
		send := claimSend(sends, topo, recv, maxDelay)
		if send == nil {
			continue
		}

		send.served[recv.Receiver] = struct{}{}
		txs = append(txs, trace.Transmission{
			Sender:      send.ev.Sender,
			Receiver:    recv.Receiver,
			Originator:  recv.Originator,
			SendTime:    send.ev.Time,
			ArrivalTime: recv.Time,
			TTL:         send.ev.TTL,
			PathLength:  send.ev.PathLength,
		})
	}

	slices.SortStableFunc(txs, func(a, b trace.Transmission) int {
		if a.SendTime != b.SendTime {
			if a.SendTime < b.SendTime {
				return -1
			}
			return 1
		}
		if a.ArrivalTime != b.ArrivalTime {
			if a.ArrivalTime < b.ArrivalTime {
				return -1
			}
			return 1
		}
		return int(a.Receiver - b.Receiver)
	})

	return txs
}

// claimSend finds the closest prior unconsumed SEND that can explain recv:
// the latest send time wins across all neighboring senders, ties going to
// the later trace row. Returns nil when no send qualifies. A receiver absent
// from the topology has no neighbors and simply never matches.
func claimSend(sends map[sendKey][]*sendRef, topo *topology.Topology, recv trace.Event, maxDelay int64) *sendRef {
	var best *sendRef

	for _, nbr := range topo.Neighbors(recv.Receiver) {
		list := sends[sendKey{sender: nbr, originator: recv.Originator}]

		// Walk candidates backward from the latest send strictly before the
		// recv; the first one inside the window that has not already served
		// this receiver is this sender's best offer.
		for i := len(list) - 1; i >= 0; i-- {
			ref := list[i]
			delay := recv.Time - ref.ev.Time
			if delay <= 0 {
				continue
			}
			if delay > maxDelay {
				break
			}
			if _, taken := ref.served[recv.Receiver]; taken {
				continue
			}
			if best == nil || ref.ev.Time > best.ev.Time ||
				(ref.ev.Time == best.ev.Time && ref.ev.Seq > best.ev.Seq) {
				best = ref
			}
			break
		}
	}

	return best
}
