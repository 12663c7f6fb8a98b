package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/raffle/internal/store"
)

// TokenCmd returns the token command.
func TokenCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("token", flag.ContinueOnError),
		Usage: "token set [token] | clear | show",
		Short: "Manage the saved Graph API token",
		Group: groupSetup,
		Examples: []string{
			"token set",
			"token set EAAB...",
			"token show",
		},
		Long: `Manage the Graph API access token saved in the state directory.

"token set" without an argument prompts with hidden input on a terminal and
reads one line from stdin otherwise. The token is stored as plain text and
never expires. RAFFLE_TOKEN and "fetch --token" take precedence over it.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errTokenAction
			}

			switch args[0] {
			case "set":
				return execTokenSet(ctx, o, a, args[1:])
			case "clear":
				return execTokenClear(ctx, o, a)
			case "show":
				return execTokenShow(ctx, o, a)
			default:
				return fmt.Errorf("%w, got %q", errTokenAction, args[0])
			}
		},
	}
}

func execTokenSet(ctx context.Context, o *IO, a *app, args []string) error {
	var (
		token string
		err   error
	)

	if len(args) > 0 {
		token = args[0]
	} else {
		token, err = readToken(a)
		if err != nil {
			return err
		}
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errTokenEmpty
	}

	err = a.withStore(ctx, func(s *store.Store) error {
		return s.Set(ctx, store.KeyGraphToken, token)
	})
	if err != nil {
		return err
	}

	o.Println("Token saved")

	return nil
}

func readToken(a *app) (string, error) {
	if a.stdin == nil {
		return "", errNoStdin
	}

	if isTerminal(a.stdin) {
		line := liner.NewLiner()
		defer func() { _ = line.Close() }()

		line.SetCtrlCAborts(true)

		token, err := line.PasswordPrompt("Graph API token: ")
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}

		return token, nil
	}

	scanner := bufio.NewScanner(a.stdin)
	if !scanner.Scan() {
		err := scanner.Err()
		if err == nil {
			return "", errNoStdin
		}

		return "", fmt.Errorf("read token: %w", err)
	}

	return scanner.Text(), nil
}

func execTokenClear(ctx context.Context, o *IO, a *app) error {
	err := a.withStore(ctx, func(s *store.Store) error {
		return s.Delete(ctx, store.KeyGraphToken)
	})
	if err != nil {
		return err
	}

	o.Println("Token cleared")

	return nil
}

func execTokenShow(ctx context.Context, o *IO, a *app) error {
	var (
		saved string
		ok    bool
	)

	err := a.withStore(ctx, func(s *store.Store) error {
		var err error

		saved, ok, err = s.Get(ctx, store.KeyGraphToken)

		return err
	})
	if err != nil {
		return err
	}

	if ok {
		o.Println("saved:", maskToken(saved))
	} else {
		o.Println("saved: (none)")
	}

	if env := a.env[EnvToken]; env != "" {
		o.Printf("%s: %s (takes precedence)\n", EnvToken, maskToken(env))
	}

	return nil
}

// maskToken keeps the first four characters of a token.
func maskToken(token string) string {
	const visible = 4
	if len(token) <= visible {
		return strings.Repeat("*", len(token))
	}

	return token[:visible] + strings.Repeat("*", min(len(token)-visible, 8))
}
