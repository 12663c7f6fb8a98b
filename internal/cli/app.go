package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/calvinalkan/raffle/internal/config"
	"github.com/calvinalkan/raffle/internal/logging"
	"github.com/calvinalkan/raffle/internal/raffle"
	"github.com/calvinalkan/raffle/internal/store"
)

// app carries what commands share for one invocation.
type app struct {
	cfg        *config.Config
	env        map[string]string
	stdin      io.Reader
	clock      clockwork.Clock
	logger     logging.Logger
	httpClient *http.Client
}

// commands lists every command in help order.
func (a *app) commands() []*Command {
	return []*Command{
		ImportCmd(a),
		PasteCmd(a),
		FetchCmd(a),
		ClearCmd(a),
		ApplyCmd(a),
		EligibleCmd(a),
		StatsCmd(a),
		DrawCmd(a),
		ResultsCmd(a),
		ExportCmd(a),
		ClearResultsCmd(a),
		TokenCmd(a),
		PrintConfigCmd(a),
	}
}

// withStore opens the session store for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(*store.Store) error) (err error) {
	s, err := store.Open(ctx, a.cfg.StateDirAbs, a.logger)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, s.Close())
	}()

	return fn(s)
}

// viewSession loads the session for reading.
func (a *app) viewSession(ctx context.Context, fn func(*raffle.Session) error) error {
	return a.withStore(ctx, func(s *store.Store) error {
		sess, err := s.LoadSession(ctx)
		if err != nil {
			return err
		}

		return fn(sess)
	})
}

// updateSession loads the session, applies fn and saves the result.
// Nothing is saved when fn fails.
func (a *app) updateSession(ctx context.Context, fn func(*raffle.Session) error) error {
	return a.withStore(ctx, func(s *store.Store) error {
		sess, err := s.LoadSession(ctx)
		if err != nil {
			return err
		}

		err = fn(sess)
		if err != nil {
			return err
		}

		return s.SaveSession(ctx, sess)
	})
}

func formatStats(st raffle.Stats) string {
	return fmt.Sprintf("total=%d eligible=%d excluded=%d", st.Total, st.Eligible, st.Excluded)
}
