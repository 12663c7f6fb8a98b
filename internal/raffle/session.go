package raffle

import (
	"cmp"
	"slices"
	"time"
)

// Session is the state a giveaway carries between commands.
//
// Entries is replaced on ingest, Eligible is recomputed in full by
// ApplyRules, and Ledger only grows until ClearResults.
type Session struct {
	Entries  []Entry
	Eligible []Entry
	Ledger   *Ledger
}

// Stats are the counters shown after ingest and rule application.
type Stats struct {
	Total    int
	Eligible int
	Excluded int
}

// UserCount is the number of eligible entries held by one user.
type UserCount struct {
	Username string `json:"username"`
	Entries  int    `json:"entries"`
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{Ledger: NewLedger()}
}

// Ingest normalizes records and replaces the session's entries with them.
// Every ingested entry starts out eligible until rules are applied.
// Returns the number of entries kept.
func (s *Session) Ingest(records []Record) int {
	s.Entries = Normalize(records)
	s.Eligible = slices.Clone(s.Entries)

	return len(s.Entries)
}

// ClearEntries drops all entries and the eligible set. Winners are kept.
func (s *Session) ClearEntries() {
	s.Entries = nil
	s.Eligible = nil
}

// ApplyRules recomputes the eligible set from all entries.
// On invalid rules the session is left unchanged.
func (s *Session) ApplyRules(cfg RuleConfig) (Stats, error) {
	err := cfg.Validate()
	if err != nil {
		return Stats{}, err
	}

	s.Eligible = Apply(s.Entries, cfg)

	return s.Stats(), nil
}

// Draw picks a winner from the eligible set and records it at the given time.
func (s *Session) Draw(sel *Selector, at time.Time) (Winner, error) {
	entry, err := sel.Draw(s.Eligible)
	if err != nil {
		return Winner{}, err
	}

	return s.ledger().Record(entry, at), nil
}

// ClearResults empties the ledger.
func (s *Session) ClearResults() {
	s.ledger().Clear()
}

// Stats returns the entry counters.
func (s *Session) Stats() Stats {
	return Stats{
		Total:    len(s.Entries),
		Eligible: len(s.Eligible),
		Excluded: len(s.Entries) - len(s.Eligible),
	}
}

// EligibleByUser groups the eligible set by username, sorted by entry count
// (most first) then username.
func (s *Session) EligibleByUser() []UserCount {
	counts := make(map[string]int)

	var order []string

	for _, entry := range s.Eligible {
		if counts[entry.Username] == 0 {
			order = append(order, entry.Username)
		}

		counts[entry.Username]++
	}

	out := make([]UserCount, 0, len(order))
	for _, user := range order {
		out = append(out, UserCount{Username: user, Entries: counts[user]})
	}

	slices.SortFunc(out, func(a, b UserCount) int {
		if c := cmp.Compare(b.Entries, a.Entries); c != 0 {
			return c
		}

		return cmp.Compare(a.Username, b.Username)
	})

	return out
}

func (s *Session) ledger() *Ledger {
	if s.Ledger == nil {
		s.Ledger = NewLedger()
	}

	return s.Ledger
}
