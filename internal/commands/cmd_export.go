package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mesh-sim/traceplay/internal/core/trace"
	"github.com/mesh-sim/traceplay/internal/replay"
)

type ExportCmd struct {
	flags  *Flags
	output string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "export",
		Usage:       "Export a processed trace as JSON",
		UsageText:   "traceplay export [options] <trace file>",
		Description: "Runs the full pipeline (parse, topology, correlation, timeline) and writes the result as JSON.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to file instead of stdout",
				Destination: &cmd.output,
			},
		},
		Action: cmd.run,
	})

	return app
}

type exportTransmission struct {
	Sender      trace.NodeID `json:"sender"`
	Receiver    trace.NodeID `json:"receiver"`
	Originator  trace.NodeID `json:"originator"`
	SendTime    int64        `json:"send_time_ms"`
	ArrivalTime int64        `json:"arrival_time_ms"`
	TTL         int          `json:"ttl"`
	PathLength  int          `json:"path_length"`
}

type exportFrame struct {
	Time            int64                `json:"time_ms"`
	Senders         []trace.NodeID       `json:"senders"`
	Receivers       []trace.NodeID       `json:"receivers"`
	SelfDiscoverers []trace.NodeID       `json:"self_discoverers,omitempty"`
	Transmissions   []exportTransmission `json:"transmissions,omitempty"`
	Summary         string               `json:"summary"`
}

type exportStats struct {
	Node      trace.NodeID `json:"node"`
	Sent      int          `json:"sent"`
	Received  int          `json:"received"`
	Forwarded int          `json:"forwarded"`
	Dropped   int          `json:"dropped"`
}

type exportDoc struct {
	Source        string               `json:"source"`
	Nodes         []trace.NodeID       `json:"nodes"`
	Edges         [][2]trace.NodeID    `json:"edges"`
	Stats         []exportStats        `json:"stats,omitempty"`
	Transmissions []exportTransmission `json:"transmissions"`
	Frames        []exportFrame        `json:"frames"`
	SkippedRows   int                  `json:"skipped_rows,omitempty"`
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("trace file argument is required")
	}

	rec, err := cmd.flags.Service.LoadRecording(ctx, path)
	if err != nil {
		return fmt.Errorf("load trace: %w", err)
	}

	var out io.Writer = c.Root().Writer
	if cmd.output != "" {
		f, err := os.Create(cmd.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(buildExportDoc(rec))
}

func buildExportDoc(rec *replay.Recording) exportDoc {
	stats := make([]exportStats, 0, len(rec.Stats))
	for _, s := range rec.Stats {
		stats = append(stats, exportStats{
			Node:      s.Node,
			Sent:      s.Sent,
			Received:  s.Received,
			Forwarded: s.Forwarded,
			Dropped:   s.Dropped,
		})
	}

	doc := exportDoc{
		Source:        rec.Source,
		Nodes:         rec.Topology.Nodes(),
		Edges:         rec.Topology.Edges(),
		Stats:         stats,
		Transmissions: exportTransmissions(rec.Transmissions),
		Frames:        make([]exportFrame, 0, len(rec.Frames)),
		SkippedRows:   rec.SkippedRows,
	}

	for _, f := range rec.Frames {
		doc.Frames = append(doc.Frames, exportFrame{
			Time:            f.Time,
			Senders:         f.Senders,
			Receivers:       f.Receivers,
			SelfDiscoverers: f.SelfDiscoverers,
			Transmissions:   exportTransmissions(f.Transmissions),
			Summary:         f.Summary,
		})
	}

	return doc
}

func exportTransmissions(txs []trace.Transmission) []exportTransmission {
	out := make([]exportTransmission, 0, len(txs))
	for _, tx := range txs {
		out = append(out, exportTransmission{
			Sender:      tx.Sender,
			Receiver:    tx.Receiver,
			Originator:  tx.Originator,
			SendTime:    tx.SendTime,
			ArrivalTime: tx.ArrivalTime,
			TTL:         tx.TTL,
			PathLength:  tx.PathLength,
		})
	}
	return out
}
