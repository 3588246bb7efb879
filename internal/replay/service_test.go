package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-sim/traceplay/internal/core/config"
	"github.com/mesh-sim/traceplay/internal/core/trace"
)

const sampleTrace = `time_ms,event,sender_id,receiver_id,originator_id,ttl,path_length,rssi
0,TOPOLOGY,1,2,,,,
0,TOPOLOGY,2,3,,,,
0,TOPOLOGY,2,4,,,,
10,SEND,1,,1,6,1,-40
11,RECV,,2,1,6,1,-45
15,SEND,2,,1,5,2,-40
16,RECV,,3,1,5,2,-50
16,RECV,,4,1,5,2,-48
5000,STATS,1,1,1,0,0,
5000,STATS,2,1,2,1,0,
`

func writeTrace(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.csv")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func newService(t *testing.T) *Service {
	t.Helper()
	cfg := config.DefaultConfig()
	return New(&cfg, zerolog.Nop())
}

func TestLoadRecording(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	rec, err := svc.LoadRecording(context.Background(), writeTrace(t, sampleTrace))
	require.NoError(t, err)

	assert.Equal(t, 4, rec.Topology.NodeCount())
	assert.Equal(t, 3, rec.Topology.EdgeCount())
	assert.Equal(t, 2, rec.EventCount(trace.KindSend))
	assert.Equal(t, 3, rec.EventCount(trace.KindRecv))
	require.Len(t, rec.Stats, 2)

	// 1->2 at t=10, then the forward 2->{3,4} at t=15.
	require.Len(t, rec.Transmissions, 3)
	assert.Equal(t, trace.NodeID(1), rec.Transmissions[0].Sender)
	assert.Equal(t, trace.NodeID(2), rec.Transmissions[0].Receiver)

	// Frames at t=10, 11, 15, 16.
	require.Len(t, rec.Frames, 4)
	first, last := rec.TimeRange()
	assert.Equal(t, int64(10), first)
	assert.Equal(t, int64(16), last)
	assert.False(t, rec.Empty())
}

func TestLoadRecordingEmptyTrace(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	rec, err := svc.LoadRecording(context.Background(), writeTrace(t, ""))
	require.NoError(t, err)

	assert.True(t, rec.Empty())
	assert.Empty(t, rec.Frames)

	ctrl := svc.NewController(rec)
	assert.True(t, ctrl.Empty())
	assert.Error(t, ctrl.ToggleRunning())
}

func TestLoadRecordingMissingFile(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	_, err := svc.LoadRecording(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestNewControllerUsesPlaybackConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Playback.MaxSpeed = 2
	cfg.Playback.DefaultSpeed = 2
	svc := New(&cfg, zerolog.Nop())

	rec, err := svc.LoadRecording(context.Background(), writeTrace(t, sampleTrace))
	require.NoError(t, err)

	ctrl := svc.NewController(rec)
	assert.Equal(t, 2.0, ctrl.Speed())

	ctrl.SetSpeed(100)
	assert.Equal(t, 2.0, ctrl.Speed())
}

func TestDiscoverTraces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	for _, name := range []string{"a.csv", "sub/b.csv", "ignore.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	cfg := config.DefaultConfig()
	cfg.TraceDirs = []string{filepath.Join(dir, "**", "*.csv")}
	svc := New(&cfg, zerolog.Nop())

	found, err := svc.DiscoverTraces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "sub", "b.csv"),
	}, found)
}
