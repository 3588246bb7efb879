package commands

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/mesh-sim/traceplay/internal/printer"
	"github.com/mesh-sim/traceplay/internal/tui"
)

type PlayCmd struct {
	flags *Flags
}

// NewPlayCmd creates a new play command
func NewPlayCmd(flags *Flags) *PlayCmd {
	return &PlayCmd{flags: flags}
}

// Register adds the play command to the application
func (cmd *PlayCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "play",
		Usage:       "Replay a trace in the terminal",
		UsageText:   "traceplay play [trace file]",
		Description: "Opens an interactive playback view for the given trace file.\n\nWith no argument, discovered traces from configured trace_dirs are offered in a picker.",
		Action:      cmd.Run,
	})

	return app
}

// Run executes the playback TUI. Exported for use as default command.
func (cmd *PlayCmd) Run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()

	if path == "" {
		selected, err := cmd.pickTrace(ctx)
		if err != nil {
			return err
		}
		if selected == "" {
			printer.Ctx(ctx).Infof("No trace selected")
			return nil
		}
		path = selected
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open trace: %w", err)
	}

	m := tui.New(cmd.flags.Service, cmd.flags.Config, path)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}

// pickTrace offers discovered trace files in an interactive picker.
func (cmd *PlayCmd) pickTrace(ctx context.Context) (string, error) {
	traces, err := cmd.flags.Service.DiscoverTraces(ctx)
	if err != nil {
		return "", fmt.Errorf("discover traces: %w", err)
	}

	if len(traces) == 0 {
		return "", fmt.Errorf("no trace file given and no traces found in configured trace_dirs")
	}

	options := make([]huh.Option[string], len(traces))
	for i, t := range traces {
		options[i] = huh.NewOption(t, t)
	}

	var selected string
	err = huh.NewSelect[string]().
		Title("Select a trace to replay").
		Options(options...).
		Value(&selected).
		Run()
	if err != nil {
		if err == huh.ErrUserAborted {
			return "", nil
		}
		return "", fmt.Errorf("select trace: %w", err)
	}

	return selected, nil
}
