package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/mesh-sim/traceplay/internal/printer"
)

type LsCmd struct {
	flags *Flags
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "ls",
		Usage:       "List discovered trace files",
		UsageText:   "traceplay ls",
		Description: "Displays trace files found under the configured trace_dirs globs.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	traces, err := cmd.flags.Service.DiscoverTraces(ctx)
	if err != nil {
		return fmt.Errorf("discover traces: %w", err)
	}

	if len(traces) == 0 {
		p.Infof("No traces found; set trace_dirs in %s", cmd.flags.ConfigPath)
		return nil
	}

	out := c.Root().Writer

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PATH\tSIZE\tMODIFIED")

	for _, path := range traces {
		info, err := os.Stat(path)
		if err != nil {
			_, _ = fmt.Fprintf(w, "%s\t-\t-\n", path)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", path, info.Size(), info.ModTime().Format("2006-01-02 15:04"))
	}

	_ = w.Flush()
	return nil
}
