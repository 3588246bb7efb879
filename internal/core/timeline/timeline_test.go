package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-sim/traceplay/internal/core/trace"
)

func TestBuildGroupsByTimestamp(t *testing.T) {
	t.Parallel()

	events := []trace.Event{
		{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, PathLength: 1},
		{Kind: trace.KindRecv, Time: 10, Receiver: 2, Originator: 1},
		{Kind: trace.KindSend, Time: 20, Sender: 2, Originator: 1, PathLength: 2},
		// Topology and stats never appear in the timeline.
		{Kind: trace.KindTopology, Sender: 1, Receiver: 2},
	}
	txs := []trace.Transmission{
		{Sender: 2, Receiver: 3, Originator: 1, SendTime: 20, ArrivalTime: 21},
	}

	frames := Build(events, txs)

	require.Len(t, frames, 2)

	assert.Equal(t, int64(10), frames[0].Time)
	assert.Equal(t, []trace.NodeID{1}, frames[0].Senders)
	assert.Equal(t, []trace.NodeID{2}, frames[0].Receivers)
	assert.Equal(t, []trace.NodeID{1}, frames[0].SelfDiscoverers)
	assert.Empty(t, frames[0].Transmissions)

	assert.Equal(t, int64(20), frames[1].Time)
	assert.Equal(t, []trace.NodeID{2}, frames[1].Senders)
	assert.Empty(t, frames[1].SelfDiscoverers)
	require.Len(t, frames[1].Transmissions, 1)
	assert.Equal(t, trace.NodeID(3), frames[1].Transmissions[0].Receiver)
}

func TestBuildFrameOrdering(t *testing.T) {
	t.Parallel()

	// Out-of-order input still yields strictly increasing frame times.
	events := []trace.Event{
		{Kind: trace.KindSend, Time: 30, Sender: 3, Originator: 3, PathLength: 1},
		{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, PathLength: 1},
		{Kind: trace.KindRecv, Time: 30, Receiver: 1, Originator: 3},
		{Kind: trace.KindSend, Time: 20, Sender: 2, Originator: 2, PathLength: 1},
	}

	frames := Build(events, nil)

	require.Len(t, frames, 3)
	for i := 1; i < len(frames); i++ {
		assert.Greater(t, frames[i].Time, frames[i-1].Time)
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Build(nil, nil))

	// Only topology and stats rows: still no frames.
	events := []trace.Event{
		{Kind: trace.KindTopology, Sender: 1, Receiver: 2},
	}
	assert.Empty(t, Build(events, nil))
}

func TestFrameMembership(t *testing.T) {
	t.Parallel()

	events := []trace.Event{
		{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, PathLength: 1},
		{Kind: trace.KindSend, Time: 10, Sender: 3, Originator: 1, PathLength: 2},
		{Kind: trace.KindRecv, Time: 10, Receiver: 2, Originator: 1},
	}

	frames := Build(events, nil)
	require.Len(t, frames, 1)
	f := frames[0]

	assert.True(t, f.IsSender(1))
	assert.True(t, f.IsSender(3))
	assert.False(t, f.IsSender(2))
	assert.True(t, f.IsReceiver(2))
	assert.False(t, f.IsReceiver(1))
}

func TestSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []trace.Event
		want   string
	}{
		{
			name: "own discovery",
			events: []trace.Event{
				{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, PathLength: 1},
			},
			want: "nodes 1 broadcast their own discovery",
		},
		{
			name: "forward",
			events: []trace.Event{
				{Kind: trace.KindSend, Time: 10, Sender: 2, Originator: 1, PathLength: 2},
			},
			want: "node 2 forwards node 1's packet",
		},
		{
			name: "mixed",
			events: []trace.Event{
				{Kind: trace.KindSend, Time: 10, Sender: 1, Originator: 1, PathLength: 1},
				{Kind: trace.KindRecv, Time: 10, Receiver: 2, Originator: 1},
				{Kind: trace.KindRecv, Time: 10, Receiver: 4, Originator: 1},
			},
			want: "nodes 1 broadcast their own discovery | nodes 2,4 receive packets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frames := Build(tt.events, nil)
			require.Len(t, frames, 1)
			assert.Equal(t, tt.want, frames[0].Summary)
		})
	}
}

func TestSummaryDeterministic(t *testing.T) {
	t.Parallel()

	events := []trace.Event{
		{Kind: trace.KindSend, Time: 10, Sender: 5, Originator: 2, PathLength: 3},
		{Kind: trace.KindSend, Time: 10, Sender: 3, Originator: 1, PathLength: 2},
		{Kind: trace.KindRecv, Time: 10, Receiver: 9, Originator: 1},
		{Kind: trace.KindRecv, Time: 10, Receiver: 6, Originator: 2},
	}

	first := Build(events, nil)[0].Summary
	for range 10 {
		assert.Equal(t, first, Build(events, nil)[0].Summary)
	}
}
