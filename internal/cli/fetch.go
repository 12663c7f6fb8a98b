package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/raffle/internal/graph"
	"github.com/calvinalkan/raffle/internal/store"
)

// FetchCmd returns the fetch command.
func FetchCmd(a *app) *Command {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	token := fs.String("token", "", "Graph API access token (default: RAFFLE_TOKEN, then the saved token)")
	limit := fs.Int("cap", 0, "Stop after this many comments (default: fetch_cap from config)")

	return &Command{
		Flags: fs,
		Usage: "fetch <post-url> [flags]",
		Short: "Load entries from a post's comments",
		Group: groupEntries,
		Examples: []string{
			"fetch https://www.instagram.com/p/abc123/",
			"fetch https://www.instagram.com/p/abc123/ --cap 500",
		},
		Long: `Fetch all comments of a public post through the Graph API and load them as
entries, replacing the current entries.

Pages are fetched one at a time. Any API error aborts the fetch and leaves
the current entries untouched. Fetching stops at the comment cap.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errPostURLRequired
			}

			commentCap := a.cfg.FetchCap
			if fs.Changed("cap") {
				commentCap = *limit
			}

			return execFetch(ctx, o, a, args[0], *token, commentCap)
		},
	}
}

func execFetch(ctx context.Context, o *IO, a *app, postURL, flagToken string, commentCap int) error {
	if commentCap <= 0 {
		return fmt.Errorf("cap must be > 0, got %d", commentCap)
	}

	token, err := resolveToken(ctx, a, flagToken)
	if err != nil {
		return err
	}

	opts := []graph.Option{
		graph.WithBaseURL(a.cfg.GraphBaseURL),
		graph.WithAPIVersion(a.cfg.GraphAPIVersion),
		graph.WithLogger(a.logger),
	}
	if a.httpClient != nil {
		opts = append(opts, graph.WithHTTPClient(a.httpClient))
	}

	client := graph.NewClient(opts...)

	comments, truncated, err := client.FetchPostComments(ctx, postURL, token, commentCap)
	if err != nil {
		return err
	}

	if truncated {
		o.Warn(fmt.Sprintf("comment cap of %d reached", commentCap), "raise --cap or fetch_cap to load more")
	}

	return ingest(ctx, o, a, graph.Records(comments), "from "+postURL)
}

// resolveToken picks the access token: flag, then environment, then store.
func resolveToken(ctx context.Context, a *app, flagToken string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}

	if tok := a.env[EnvToken]; tok != "" {
		return tok, nil
	}

	var token string

	err := a.withStore(ctx, func(s *store.Store) error {
		saved, ok, err := s.Get(ctx, store.KeyGraphToken)
		if err != nil {
			return err
		}

		if ok {
			token = saved
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	if token == "" {
		return "", errTokenRequired
	}

	return token, nil
}
