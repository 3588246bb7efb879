package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/mesh-sim/traceplay/internal/core/trace"
	"github.com/mesh-sim/traceplay/internal/printer"
)

type TxCmd struct {
	flags    *Flags
	maxDelay int64
}

// NewTxCmd creates a new tx command
func NewTxCmd(flags *Flags) *TxCmd {
	return &TxCmd{flags: flags}
}

// Register adds the tx command to the application
func (cmd *TxCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tx",
		Usage:       "List correlated transmissions in a trace",
		UsageText:   "traceplay tx [options] <trace file>",
		Description: "Pairs each SEND with the matching RECV on every neighboring node and prints one row per delivery.",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "max-delay",
				Usage:       "maximum send-to-receive delay in ms (overrides config)",
				Destination: &cmd.maxDelay,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *TxCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("trace file argument is required")
	}

	if cmd.maxDelay > 0 {
		cmd.flags.Config.Correlate.MaxDelayMS = cmd.maxDelay
	}

	p := printer.Ctx(ctx)

	rec, err := cmd.flags.Service.LoadRecording(ctx, path)
	if err != nil {
		return fmt.Errorf("load trace: %w", err)
	}

	if len(rec.Transmissions) == 0 {
		p.Infof("No transmissions correlated")
		return nil
	}

	out := c.Root().Writer

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEND\tARRIVAL\tDELAY\tSENDER\tRECEIVER\tORIGIN\tTTL\tHOPS")

	for _, tx := range rec.Transmissions {
		_, _ = fmt.Fprintf(w, "%dms\t%dms\t%dms\t%d\t%d\t%d\t%d\t%d\n",
			tx.SendTime, tx.ArrivalTime, tx.Delay(), tx.Sender, tx.Receiver, tx.Originator, tx.TTL, tx.PathLength)
	}

	_ = w.Flush()

	if term.IsTerminal(int(os.Stdout.Fd())) {
		type sendKey struct {
			sender trace.NodeID
			time   int64
		}
		delivered := make(map[sendKey]struct{}, len(rec.Transmissions))
		for _, tx := range rec.Transmissions {
			delivered[sendKey{tx.Sender, tx.SendTime}] = struct{}{}
		}

		unmatched := 0
		for _, ev := range rec.Events {
			if ev.Kind != trace.KindSend {
				continue
			}
			if _, ok := delivered[sendKey{ev.Sender, ev.Time}]; !ok {
				unmatched++
			}
		}

		fmt.Fprintln(out)
		p.Infof("%d transmission(s), %d send(s) with no observed delivery", len(rec.Transmissions), unmatched)
	}

	return nil
}
