package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/raffle/internal/raffle"
)

// ClearCmd returns the clear command.
func ClearCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("clear", flag.ContinueOnError),
		Usage: "clear",
		Short: "Remove all entries (winners are kept)",
		Group: groupEntries,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			var removed int

			err := a.updateSession(ctx, func(sess *raffle.Session) error {
				removed = len(sess.Entries)
				sess.ClearEntries()

				return nil
			})
			if err != nil {
				return err
			}

			o.Printf("Cleared %d entries\n", removed)

			return nil
		},
	}
}

// ClearResultsCmd returns the clear-results command.
func ClearResultsCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("clear-results", flag.ContinueOnError),
		Usage: "clear-results",
		Short: "Remove all recorded winners",
		Group: groupResults,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			var removed int

			err := a.updateSession(ctx, func(sess *raffle.Session) error {
				removed = sess.Ledger.Len()
				sess.ClearResults()

				return nil
			})
			if err != nil {
				return err
			}

			o.Printf("Cleared %d winners\n", removed)

			return nil
		},
	}
}
