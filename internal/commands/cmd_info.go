package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/mesh-sim/traceplay/internal/core/trace"
	"github.com/mesh-sim/traceplay/internal/printer"
)

type InfoCmd struct {
	flags *Flags
}

// NewInfoCmd creates a new info command
func NewInfoCmd(flags *Flags) *InfoCmd {
	return &InfoCmd{flags: flags}
}

// Register adds the info command to the application
func (cmd *InfoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "info",
		Usage:       "Summarize a trace file",
		UsageText:   "traceplay info <trace file>",
		Description: "Prints topology size, event counts, time range, and per-node statistics for a trace.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *InfoCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("trace file argument is required")
	}

	p := printer.Ctx(ctx)

	rec, err := cmd.flags.Service.LoadRecording(ctx, path)
	if err != nil {
		return fmt.Errorf("load trace: %w", err)
	}

	out := c.Root().Writer

	start, end := rec.TimeRange()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Source\t%s\n", rec.Source)
	_, _ = fmt.Fprintf(w, "Nodes\t%d\n", rec.Topology.NodeCount())
	_, _ = fmt.Fprintf(w, "Links\t%d\n", rec.Topology.EdgeCount())
	_, _ = fmt.Fprintf(w, "Events\t%d (%d sends, %d receives)\n",
		len(rec.Events), rec.EventCount(trace.KindSend), rec.EventCount(trace.KindRecv))
	_, _ = fmt.Fprintf(w, "Transmissions\t%d\n", len(rec.Transmissions))
	_, _ = fmt.Fprintf(w, "Frames\t%d\n", len(rec.Frames))
	_, _ = fmt.Fprintf(w, "Time range\t%dms - %dms\n", start, end)
	_ = w.Flush()

	if rec.SkippedRows > 0 {
		fmt.Fprintln(out)
		p.Warnf("Skipped %d malformed row(s)", rec.SkippedRows)
	}

	if len(rec.Stats) > 0 {
		fmt.Fprintln(out)
		sw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(sw, "NODE\tSENT\tRECEIVED\tFORWARDED\tDROPPED")
		for _, s := range rec.Stats {
			_, _ = fmt.Fprintf(sw, "%d\t%d\t%d\t%d\t%d\n", s.Node, s.Sent, s.Received, s.Forwarded, s.Dropped)
		}
		_ = sw.Flush()
	}

	return nil
}
