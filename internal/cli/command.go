package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command groups, in the order they appear in the usage listing.
const (
	groupEntries = "Entries"
	groupDraw    = "Drawing"
	groupResults = "Results"
	groupSetup   = "Setup"
)

// Command is one raffle subcommand.
type Command struct {
	// Flags holds the command's own flags. Global flags are parsed before
	// the command name and never reach this set.
	Flags *flag.FlagSet

	// Usage follows "raffle" in help output. Its first word is the command
	// name, e.g. "import <file>" or "token set [token] | clear | show".
	Usage string

	// Short is the one-line description in the command listing.
	Short string

	// Long replaces Short in "raffle <cmd> --help" when set.
	Long string

	// Group is the heading the command is listed under.
	Group string

	// Examples are full invocations shown in command help.
	Examples []string

	// Exec runs with the positional args left after flag parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine formats the command for the listing, padding Usage to width.
func (c *Command) HelpLine(width int) string {
	return fmt.Sprintf("    %-*s  %s", width, c.Usage, c.Short)
}

// PrintHelp writes "raffle <cmd> --help" output to o's stdout.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: raffle", c.Usage)
	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags != nil && c.Flags.HasFlags() {
		var buf strings.Builder

		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()

		o.Println()
		o.Println("Flags:")
		o.Printf("%s", buf.String())
	}

	if len(c.Examples) > 0 {
		o.Println()
		o.Println("Examples:")

		for _, ex := range c.Examples {
			o.Println("  raffle", ex)
		}
	}
}

// Run parses args into Flags and calls Exec. Returns the exit code.
// --help prints help to stdout; a bad flag prints the error followed by
// help to stderr.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(io.Discard)

	err := c.Flags.Parse(args)

	switch {
	case errors.Is(err, flag.ErrHelp):
		c.PrintHelp(o)

		return 0
	case err != nil:
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(errorIO(o))

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return 0
}

// printCommandList writes cmds under their group headings. Groups keep the
// order of their first command.
func printCommandList(w io.Writer, cmds []*Command) {
	width := 0
	for _, cmd := range cmds {
		width = max(width, len(cmd.Usage))
	}

	var groups []string

	byGroup := make(map[string][]*Command)

	for _, cmd := range cmds {
		if _, ok := byGroup[cmd.Group]; !ok {
			groups = append(groups, cmd.Group)
		}

		byGroup[cmd.Group] = append(byGroup[cmd.Group], cmd)
	}

	for i, group := range groups {
		if i > 0 {
			fprintln(w)
		}

		fprintln(w, "  "+group+":")

		for _, cmd := range byGroup[group] {
			fprintln(w, cmd.HelpLine(width))
		}
	}
}

// errorIO returns an IO whose stdout is o's stderr.
func errorIO(o *IO) *IO {
	return &IO{out: o.errOut, errOut: o.errOut, highlight: o.highlight}
}
