package cli

import (
	"context"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/raffle/internal/raffle"
)

// DrawCmd returns the draw command.
func DrawCmd(a *app) *Command {
	fs := flag.NewFlagSet("draw", flag.ContinueOnError)
	suspense := fs.Duration("suspense", 0, "Roll through the entries for this long before revealing the winner")
	seed := fs.Uint64("seed", 0, "Seed the random source for a reproducible draw")

	return &Command{
		Flags: fs,
		Usage: "draw [flags]",
		Short: "Draw a winner from the eligible entries",
		Group: groupDraw,
		Examples: []string{
			"draw",
			"draw --suspense 5s",
			"draw --seed 42",
		},
		Long: `Draw one winner uniformly at random from the eligible entries and record it.

Every eligible entry is one equally likely outcome, so a user with several
eligible entries has several chances. Drawn entries stay eligible.
--suspense only changes what is shown, never who wins.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			sel := raffle.NewSelector(nil)
			if fs.Changed("seed") {
				sel = raffle.NewSeededSelector(*seed)
			}

			return execDraw(ctx, o, a, sel, *suspense)
		},
	}
}

func execDraw(ctx context.Context, o *IO, a *app, sel *raffle.Selector, suspense time.Duration) error {
	var (
		winner raffle.Winner
		ticker []string
	)

	err := a.updateSession(ctx, func(sess *raffle.Session) error {
		var err error

		winner, err = sess.Draw(sel, a.clock.Now())
		if err != nil {
			return err
		}

		if suspense > 0 {
			entry := raffle.Entry{Username: winner.Username, Text: winner.Text, ID: winner.ID}
			ticker = sel.Ticker(sess.Eligible, entry)
		}

		return nil
	})
	if err != nil {
		return err
	}

	a.logger.WithField("draw_id", winner.DrawID).Debug("recorded winner")

	rollTicker(ctx, o, a, ticker, suspense)

	o.Println(o.Highlight("Winner: @%s", winner.Username))

	if winner.Text != "" {
		o.Printf("  %q\n", winner.Text)
	}

	return nil
}

// rollTicker prints the ticker tiles spread evenly over d. The winner is
// already recorded, so canceling only cuts the show short.
func rollTicker(ctx context.Context, o *IO, a *app, ticker []string, d time.Duration) {
	if len(ticker) == 0 {
		return
	}

	step := d / time.Duration(len(ticker))

	for _, user := range ticker {
		select {
		case <-ctx.Done():
			return
		case <-a.clock.After(step):
		}

		o.Printf("  @%s\n", user)
	}
}
