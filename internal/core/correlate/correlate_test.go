package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-sim/traceplay/internal/core/topology"
	"github.com/mesh-sim/traceplay/internal/core/trace"
)

func chainTopology(t *testing.T, pairs ...[2]trace.NodeID) *topology.Topology {
	t.Helper()
	var events []trace.Event
	for _, p := range pairs {
		events = append(events, trace.Event{Kind: trace.KindTopology, Sender: p[0], Receiver: p[1]})
	}
	return topology.Build(events)
}

func TestCorrelateSingleHop(t *testing.T) {
	t.Parallel()

	// Topology 1-2-3. Node 1 broadcasts at t=10, node 2 receives at t=11.
	// Node 3 is not adjacent to 1 and must get nothing.
	topo := chainTopology(t, [2]trace.NodeID{1, 2}, [2]trace.NodeID{2, 3})
	events := []trace.Event{
		{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, TTL: 5, PathLength: 1, Seq: 0},
		{Kind: trace.KindRecv, Time: 11, Receiver: 2, Originator: 1, TTL: 5, PathLength: 1, Seq: 1},
	}

	txs := Correlate(events, topo, 5)

	require.Len(t, txs, 1)
	assert.Equal(t, trace.Transmission{
		Sender: 1, Receiver: 2, Originator: 1,
		SendTime: 10, ArrivalTime: 11, TTL: 5, PathLength: 1,
	}, txs[0])
}

func TestCorrelateClosestPriorSendWins(t *testing.T) {
	t.Parallel()

	// Two sends from node 1 at t=10 and t=12, one recv at node 2 at t=13.
	// Both are inside the window; the closest prior send wins.
	topo := chainTopology(t, [2]trace.NodeID{1, 2})
	events := []trace.Event{
		{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, TTL: 6, PathLength: 1, Seq: 0},
		{Kind: trace.KindSend, Time: 12, Sender: 1, Originator: 1, TTL: 6, PathLength: 1, Seq: 1},
		{Kind: trace.KindRecv, Time: 13, Receiver: 2, Originator: 1, TTL: 6, PathLength: 1, Seq: 2},
	}

	txs := Correlate(events, topo, 5)

	require.Len(t, txs, 1)
	assert.Equal(t, int64(12), txs[0].SendTime)
	assert.Equal(t, int64(13), txs[0].ArrivalTime)
}

func TestCorrelateSendServesReceiverOnce(t *testing.T) {
	t.Parallel()

	// Two sends and two recvs at the same receiver. The first recv claims the
	// closest send; the second must fall back to the earlier one because a
	// broadcast delivers at most once per receiver.
	topo := chainTopology(t, [2]trace.NodeID{1, 2})
	events := []trace.Event{
		{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, TTL: 6, PathLength: 1, Seq: 0},
		{Kind: trace.KindSend, Time: 11, Sender: 1, Originator: 1, TTL: 6, PathLength: 1, Seq: 1},
		{Kind: trace.KindRecv, Time: 12, Receiver: 2, Originator: 1, TTL: 6, PathLength: 1, Seq: 2},
		{Kind: trace.KindRecv, Time: 13, Receiver: 2, Originator: 1, TTL: 6, PathLength: 1, Seq: 3},
	}

	txs := Correlate(events, topo, 5)

	require.Len(t, txs, 2)
	assert.Equal(t, int64(10), txs[0].SendTime)
	assert.Equal(t, int64(13), txs[0].ArrivalTime)
	assert.Equal(t, int64(11), txs[1].SendTime)
	assert.Equal(t, int64(12), txs[1].ArrivalTime)
}

func TestCorrelateFanOut(t *testing.T) {
	t.Parallel()

	// Hub node 2 broadcasts; neighbors 1, 3, 4 all receive.
	topo := chainTopology(t,
		[2]trace.NodeID{1, 2}, [2]trace.NodeID{2, 3}, [2]trace.NodeID{2, 4})
	events := []trace.Event{
		{Kind: trace.KindSend, Time: 20, Sender: 2, Originator: 2, TTL: 6, PathLength: 1, Seq: 0},
		{Kind: trace.KindRecv, Time: 21, Receiver: 1, Originator: 2, TTL: 6, PathLength: 1, Seq: 1},
		{Kind: trace.KindRecv, Time: 21, Receiver: 3, Originator: 2, TTL: 6, PathLength: 1, Seq: 2},
		{Kind: trace.KindRecv, Time: 21, Receiver: 4, Originator: 2, TTL: 6, PathLength: 1, Seq: 3},
	}

	txs := Correlate(events, topo, 5)

	require.Len(t, txs, 3)
	receivers := []trace.NodeID{txs[0].Receiver, txs[1].Receiver, txs[2].Receiver}
	assert.ElementsMatch(t, []trace.NodeID{1, 3, 4}, receivers)
}

func TestCorrelateWindowBounds(t *testing.T) {
	t.Parallel()

	topo := chainTopology(t, [2]trace.NodeID{1, 2})

	tests := []struct {
		name     string
		recvTime int64
		maxDelay int64
		want     int
	}{
		{name: "simultaneous recv cannot be caused", recvTime: 10, maxDelay: 5, want: 0},
		{name: "just inside window", recvTime: 15, maxDelay: 5, want: 1},
		{name: "just outside window", recvTime: 16, maxDelay: 5, want: 0},
		{name: "recv before send", recvTime: 9, maxDelay: 5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			events := []trace.Event{
				{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, TTL: 6, PathLength: 1, Seq: 0},
				{Kind: trace.KindRecv, Time: tt.recvTime, Receiver: 2, Originator: 1, TTL: 6, PathLength: 1, Seq: 1},
			}

			txs := Correlate(events, topo, tt.maxDelay)
			assert.Len(t, txs, tt.want)
		})
	}
}

func TestCorrelateOutOfOrderRows(t *testing.T) {
	t.Parallel()

	// Recv rows appear before their sends and out of time order.
	topo := chainTopology(t, [2]trace.NodeID{1, 2})
	events := []trace.Event{
		{Kind: trace.KindRecv, Time: 23, Receiver: 2, Originator: 1, TTL: 6, PathLength: 1, Seq: 0},
		{Kind: trace.KindRecv, Time: 11, Receiver: 2, Originator: 1, TTL: 6, PathLength: 1, Seq: 1},
		{Kind: trace.KindSend, Time: 22, Sender: 1, Originator: 1, TTL: 6, PathLength: 1, Seq: 2},
		{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, TTL: 6, PathLength: 1, Seq: 3},
	}

	txs := Correlate(events, topo, 5)

	require.Len(t, txs, 2)
	assert.Equal(t, int64(10), txs[0].SendTime)
	assert.Equal(t, int64(11), txs[0].ArrivalTime)
	assert.Equal(t, int64(22), txs[1].SendTime)
	assert.Equal(t, int64(23), txs[1].ArrivalTime)
}

func TestCorrelateOriginatorMismatch(t *testing.T) {
	t.Parallel()

	topo := chainTopology(t, [2]trace.NodeID{1, 2})
	events := []trace.Event{
		{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, TTL: 6, PathLength: 1, Seq: 0},
		// Reception of a different originator's packet; must not match.
		{Kind: trace.KindRecv, Time: 11, Receiver: 2, Originator: 5, TTL: 6, PathLength: 1, Seq: 1},
	}

	txs := Correlate(events, topo, 5)
	assert.Empty(t, txs)
}

func TestCorrelateUnknownSenderIsNoop(t *testing.T) {
	t.Parallel()

	// Sender 9 exists only via defensive closure and has no neighbors.
	topo := topology.Build([]trace.Event{
		{Kind: trace.KindTopology, Sender: 1, Receiver: 2},
		{Kind: trace.KindSend, Time: 10, Sender: 9, Originator: 9},
	})
	events := []trace.Event{
		{Kind: trace.KindSend, Time: 10, Sender: 9, Originator: 9, TTL: 6, PathLength: 1},
	}

	txs := Correlate(events, topo, 5)
	assert.Empty(t, txs)
}

func TestCorrelateProperties(t *testing.T) {
	t.Parallel()

	// Dense little scenario: chain 1-2-3 with forwarding. Every produced
	// transmission must satisfy the soundness invariants.
	const maxDelay = int64(3)
	topo := chainTopology(t, [2]trace.NodeID{1, 2}, [2]trace.NodeID{2, 3})
	events := []trace.Event{
		{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, TTL: 6, PathLength: 1, Seq: 0},
		{Kind: trace.KindRecv, Time: 11, Receiver: 2, Originator: 1, TTL: 6, PathLength: 1, Seq: 1},
		{Kind: trace.KindSend, Time: 15, Sender: 2, Originator: 1, TTL: 5, PathLength: 2, Seq: 2},
		{Kind: trace.KindRecv, Time: 16, Receiver: 1, Originator: 1, TTL: 5, PathLength: 2, Seq: 3},
		{Kind: trace.KindRecv, Time: 16, Receiver: 3, Originator: 1, TTL: 5, PathLength: 2, Seq: 4},
		{Kind: trace.KindSend, Time: 30, Sender: 3, Originator: 3, TTL: 6, PathLength: 1, Seq: 5},
		{Kind: trace.KindRecv, Time: 31, Receiver: 2, Originator: 3, TTL: 6, PathLength: 1, Seq: 6},
	}

	txs := Correlate(events, topo, maxDelay)
	require.NotEmpty(t, txs)

	seen := make(map[[3]int64]bool)
	for _, tx := range txs {
		assert.Greater(t, tx.ArrivalTime, tx.SendTime, "arrival must follow send: %s", tx)
		assert.LessOrEqual(t, tx.Delay(), maxDelay, "delay within window: %s", tx)
		assert.True(t, topo.HasEdge(tx.Sender, tx.Receiver), "sender and receiver adjacent: %s", tx)

		key := [3]int64{int64(tx.Receiver), int64(tx.Originator), tx.ArrivalTime}
		assert.False(t, seen[key], "recv consumed twice: %s", tx)
		seen[key] = true
	}
}
