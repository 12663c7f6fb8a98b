package cli

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/raffle/internal/raffle"
)

// EligibleCmd returns the eligible command.
func EligibleCmd(a *app) *Command {
	fs := flag.NewFlagSet("eligible", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print as JSON")

	return &Command{
		Flags: fs,
		Usage: "eligible [--json]",
		Short: "List eligible users by entry count",
		Group: groupDraw,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return a.viewSession(ctx, func(sess *raffle.Session) error {
				users := sess.EligibleByUser()

				if *asJSON {
					data, err := json.MarshalIndent(users, "", "  ")
					if err != nil {
						return fmt.Errorf("marshal json: %w", err)
					}

					o.Println(string(data))

					return nil
				}

				if len(users) == 0 {
					o.Println("No eligible entries")

					return nil
				}

				for _, u := range users {
					o.Printf("@%-30s %d\n", u.Username, u.Entries)
				}

				return nil
			})
		},
	}
}

// StatsCmd returns the stats command.
func StatsCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("stats", flag.ContinueOnError),
		Usage: "stats",
		Short: "Show entry and winner counts",
		Group: groupDraw,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return a.viewSession(ctx, func(sess *raffle.Session) error {
				o.Printf("%s winners=%d\n", formatStats(sess.Stats()), sess.Ledger.Len())

				return nil
			})
		},
	}
}
