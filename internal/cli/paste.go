package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/raffle/internal/importer"
)

// PasteCmd returns the paste command.
func PasteCmd(a *app) *Command {
	fs := flag.NewFlagSet("paste", flag.ContinueOnError)
	text := fs.StringP("text", "t", "", "Pasted text (default: read stdin)")

	return &Command{
		Flags: fs,
		Usage: "paste [--text <text>]",
		Short: "Load entries from pasted lines",
		Group: groupEntries,
		Examples: []string{
			"paste < comments.txt",
			"paste --text \"alice: count me in @bob\"",
		},
		Long: `Load entries from free text, one entry per line, replacing the current
entries. Lines look like "username: comment", "@username" or "username".
Reads stdin unless --text is given.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			input := *text

			if !fs.Changed("text") {
				if a.stdin == nil {
					return fmt.Errorf("paste: %w", errNoStdin)
				}

				data, err := io.ReadAll(a.stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}

				input = string(data)
			}

			records, err := importer.ParsePaste(input)
			if err != nil {
				return err
			}

			return ingest(ctx, o, a, records, "from pasted text")
		},
	}
}
