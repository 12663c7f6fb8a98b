package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/calvinalkan/raffle/internal/logging"
	"github.com/calvinalkan/raffle/internal/raffle"
)

// LoadSession reads the persisted session. A fresh database yields an empty
// session.
func (s *Store) LoadSession(ctx context.Context) (*raffle.Session, error) {
	entries, err := s.loadEntries(ctx, "entries")
	if err != nil {
		return nil, err
	}

	eligible, err := s.loadEntries(ctx, "eligible")
	if err != nil {
		return nil, err
	}

	winners, err := s.loadWinners(ctx)
	if err != nil {
		return nil, err
	}

	return &raffle.Session{
		Entries:  entries,
		Eligible: eligible,
		Ledger:   raffle.NewLedger(winners...),
	}, nil
}

// SaveSession replaces the persisted session with sess in one transaction.
func (s *Store) SaveSession(ctx context.Context, sess *raffle.Session) error {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save txn: %w", err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"entries", "eligible", "winners"} {
		_, err = tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	err = insertEntries(ctx, tx, "entries", sess.Entries)
	if err != nil {
		return err
	}

	err = insertEntries(ctx, tx, "eligible", sess.Eligible)
	if err != nil {
		return err
	}

	var winners []raffle.Winner
	if sess.Ledger != nil {
		winners = sess.Ledger.Export()
	}

	err = insertWinners(ctx, tx, winners)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit save txn: %w", err)
	}

	committed = true

	s.logger.WithFields(logging.Fields{
		"entries":  len(sess.Entries),
		"eligible": len(sess.Eligible),
		"winners":  len(winners),
	}).Debug("saved session")

	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, table string, entries []raffle.Entry) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (seq, username, text, comment_id) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}

	defer func() { _ = stmt.Close() }()

	for i, entry := range entries {
		_, err = stmt.ExecContext(ctx, i, entry.Username, entry.Text, entry.ID)
		if err != nil {
			return fmt.Errorf("insert %s row %d (@%s): %w", table, i, entry.Username, err)
		}
	}

	return nil
}

func insertWinners(ctx context.Context, tx *sql.Tx, winners []raffle.Winner) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO winners (seq, drawn_at_ns, username, text, comment_id, draw_id)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare winners insert: %w", err)
	}

	defer func() { _ = stmt.Close() }()

	for i, w := range winners {
		_, err = stmt.ExecContext(ctx, i, w.Time.UnixNano(), w.Username, w.Text, w.ID, w.DrawID)
		if err != nil {
			return fmt.Errorf("insert winner %d (@%s): %w", i, w.Username, err)
		}
	}

	return nil
}

func (s *Store) loadEntries(ctx context.Context, table string) ([]raffle.Entry, error) {
	rows, err := s.sql.QueryContext(ctx, "SELECT username, text, comment_id FROM "+table+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	defer func() { _ = rows.Close() }()

	var out []raffle.Entry

	for rows.Next() {
		var e raffle.Entry

		err = rows.Scan(&e.Username, &e.Text, &e.ID)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}

		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return out, nil
}

func (s *Store) loadWinners(ctx context.Context) ([]raffle.Winner, error) {
	rows, err := s.sql.QueryContext(ctx, `
		SELECT drawn_at_ns, username, text, comment_id, draw_id
		FROM winners ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query winners: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var out []raffle.Winner

	for rows.Next() {
		var (
			w  raffle.Winner
			ns int64
		)

		err = rows.Scan(&ns, &w.Username, &w.Text, &w.ID, &w.DrawID)
		if err != nil {
			return nil, fmt.Errorf("scan winners: %w", err)
		}

		w.Time = time.Unix(0, ns).UTC()
		out = append(out, w)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate winners: %w", err)
	}

	return out, nil
}
