package cli

import (
	"context"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/raffle/internal/export"
	"github.com/calvinalkan/raffle/internal/raffle"
)

// ResultsCmd returns the results command.
func ResultsCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("results", flag.ContinueOnError),
		Usage: "results",
		Short: "List recorded winners, newest first",
		Group: groupResults,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return a.viewSession(ctx, func(sess *raffle.Session) error {
				winners := sess.Ledger.Export()
				if len(winners) == 0 {
					o.Println("No winners yet")

					return nil
				}

				for i := len(winners) - 1; i >= 0; i-- {
					w := winners[i]
					o.Printf("%s  @%s  %s\n", w.Time.Format(export.TimeLayout), w.Username, oneLine(w.Text))
				}

				return nil
			})
		},
	}
}

// ExportCmd returns the export command.
func ExportCmd(a *app) *Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.StringP("format", "f", export.FormatCSV, "Output format: csv or json")
	output := fs.StringP("output", "o", "", "Write to file instead of stdout")

	return &Command{
		Flags: fs,
		Usage: "export [--format csv|json] [-o file]",
		Short: "Export recorded winners",
		Group: groupResults,
		Examples: []string{
			"export > winners.csv",
			"export -f json -o winners.json",
		},
		Long: `Export recorded winners in draw order.

CSV has the columns time, username and comment with every field quoted.
JSON is an indented array of winner objects. Files are replaced atomically.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return a.viewSession(ctx, func(sess *raffle.Session) error {
				winners := sess.Ledger.Export()

				if *output == "" {
					var buf strings.Builder

					err := export.Write(&buf, *format, winners)
					if err != nil {
						return err
					}

					o.Println(buf.String())

					return nil
				}

				path := *output
				if !filepath.IsAbs(path) {
					path = filepath.Join(a.cfg.EffectiveCwd, path)
				}

				err := export.WriteFile(path, *format, winners)
				if err != nil {
					return err
				}

				o.Printf("Exported %d winners to %s\n", len(winners), *output)

				return nil
			})
		},
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
