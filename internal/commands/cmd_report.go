package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/mesh-sim/traceplay/internal/core/trace"
	"github.com/mesh-sim/traceplay/internal/replay"
	"github.com/mesh-sim/traceplay/pkg/tmpl"
)

type ReportCmd struct {
	flags *Flags
	raw   bool
}

// NewReportCmd creates a new report command
func NewReportCmd(flags *Flags) *ReportCmd {
	return &ReportCmd{flags: flags}
}

// Register adds the report command to the application
func (cmd *ReportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "report",
		Usage:       "Render a markdown report for a trace",
		UsageText:   "traceplay report [options] <trace file>",
		Description: "Summarizes discovery propagation in a trace as a styled markdown report.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print plain markdown without terminal styling",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.run,
	})

	return app
}

const reportTemplate = `# Trace Report: {{ .Source }}

## Topology

- **Nodes:** {{ .Nodes }}
- **Links:** {{ .Links }}

## Activity

- **Events:** {{ .Events }} ({{ .Sends }} sends, {{ .Recvs }} receives)
- **Correlated transmissions:** {{ .Transmissions }}
- **Delivery rate:** {{ pct .DeliveredSends .Sends }} of sends reached at least one neighbor
- **Timeline:** {{ .Frames }} frames from {{ .Start | ms }} to {{ .End | ms }}
{{- if .SkippedRows }}
- **Skipped rows:** {{ .SkippedRows }}
{{- end }}
{{- if .Stats }}

## Per-Node Statistics

| Node | Sent | Received | Forwarded | Dropped |
|-----:|-----:|---------:|----------:|--------:|
{{- range .Stats }}
| {{ .Node }} | {{ .Sent }} | {{ .Received }} | {{ .Forwarded }} | {{ .Dropped }} |
{{- end }}
{{- end }}
`

type reportData struct {
	Source         string
	Nodes          int
	Links          int
	Events         int
	Sends          int
	Recvs          int
	DeliveredSends int
	Transmissions  int
	Frames         int
	Start          int64
	End            int64
	SkippedRows    int
	Stats          []trace.Stats
}

func (cmd *ReportCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("trace file argument is required")
	}

	rec, err := cmd.flags.Service.LoadRecording(ctx, path)
	if err != nil {
		return fmt.Errorf("load trace: %w", err)
	}

	md, err := tmpl.Render(reportTemplate, buildReportData(rec))
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	out := c.Root().Writer

	if cmd.raw {
		_, _ = fmt.Fprint(out, md)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	styled, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("style report: %w", err)
	}

	_, _ = fmt.Fprint(out, styled)
	return nil
}

func buildReportData(rec *replay.Recording) reportData {
	start, end := rec.TimeRange()

	data := reportData{
		Source:        rec.Source,
		Nodes:         rec.Topology.NodeCount(),
		Links:         rec.Topology.EdgeCount(),
		Events:        len(rec.Events),
		Transmissions: len(rec.Transmissions),
		Frames:        len(rec.Frames),
		Start:         start,
		End:           end,
		SkippedRows:   rec.SkippedRows,
		Stats:         rec.Stats,
	}

	type sendKey struct {
		sender trace.NodeID
		time   int64
	}
	delivered := make(map[sendKey]struct{}, len(rec.Transmissions))
	for _, tx := range rec.Transmissions {
		delivered[sendKey{tx.Sender, tx.SendTime}] = struct{}{}
	}

	for _, ev := range rec.Events {
		switch ev.Kind {
		case trace.KindSend:
			data.Sends++
			if _, ok := delivered[sendKey{ev.Sender, ev.Time}]; ok {
				data.DeliveredSends++
			}
		case trace.KindRecv:
			data.Recvs++
		}
	}

	return data
}
