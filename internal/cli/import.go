package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/raffle/internal/importer"
	"github.com/calvinalkan/raffle/internal/raffle"
)

// ImportCmd returns the import command.
func ImportCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("import", flag.ContinueOnError),
		Usage: "import <file>",
		Short: "Load entries from a CSV or JSON file",
		Group: groupEntries,
		Examples: []string{
			"import comments.csv",
			"import export.json",
		},
		Long: `Load entries from a CSV or JSON file, replacing the current entries.

CSV files need a header row with "username" and "comment" (or "text")
columns. JSON files hold an array of objects with "username", "user" or
"author" and "text" or "comment" keys. All entries start out eligible until
rules are applied. Winners are kept.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errFileRequired
			}

			return execImport(ctx, o, a, args[0])
		},
	}
}

func execImport(ctx context.Context, o *IO, a *app, name string) error {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.cfg.EffectiveCwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	records, err := importer.ParseFile(name, data)
	if err != nil {
		return err
	}

	return ingest(ctx, o, a, records, "from "+name)
}

// ingest replaces the session entries with records and reports the counts.
func ingest(ctx context.Context, o *IO, a *app, records []raffle.Record, source string) error {
	var stats raffle.Stats

	err := a.updateSession(ctx, func(sess *raffle.Session) error {
		sess.Ingest(records)
		stats = sess.Stats()

		return nil
	})
	if err != nil {
		return err
	}

	a.logger.WithField("records", len(records)).Debug("ingested")

	if dropped := len(records) - stats.Total; dropped > 0 {
		o.Warn(fmt.Sprintf("%d records had no username", dropped), "they were skipped")
	}

	o.Printf("Imported %d entries %s\n", stats.Total, source)
	o.Println(formatStats(stats))

	return nil
}
