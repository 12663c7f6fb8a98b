package raffle_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/raffle/internal/raffle"
)

func entries(records ...raffle.Record) []raffle.Entry {
	return raffle.Normalize(records)
}

func usernames(es []raffle.Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Username)
	}

	return out
}

func texts(es []raffle.Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Text)
	}

	return out
}

func TestApplyDistinctMentions(t *testing.T) {
	t.Parallel()

	in := entries(
		raffle.Record{Username: "a", Text: "hi @b @c"},
		raffle.Record{Username: "a", Text: "hi @b"},
	)

	cfg := raffle.RuleConfig{MinMentions: 2, DistinctMentions: true, MaxEntriesPerUser: 5}

	got := raffle.Apply(in, cfg)

	if diff := cmp.Diff([]string{"hi @b @c"}, texts(got)); diff != "" {
		t.Errorf("eligible mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyRawMentionsCountsDuplicates(t *testing.T) {
	t.Parallel()

	in := entries(
		raffle.Record{Username: "a", Text: "@b @b"},
		raffle.Record{Username: "c", Text: "@b"},
	)

	raw := raffle.Apply(in, raffle.RuleConfig{MinMentions: 2, MaxEntriesPerUser: 1})
	if diff := cmp.Diff([]string{"a"}, usernames(raw)); diff != "" {
		t.Errorf("raw count mismatch (-want +got):\n%s", diff)
	}

	distinct := raffle.Apply(in, raffle.RuleConfig{MinMentions: 2, DistinctMentions: true, MaxEntriesPerUser: 1})
	if len(distinct) != 0 {
		t.Errorf("distinct count accepted %v, want none", usernames(distinct))
	}
}

func TestApplyMaxEntriesKeepsFirstInInputOrder(t *testing.T) {
	t.Parallel()

	in := entries(
		raffle.Record{Username: "Same", Text: "one"},
		raffle.Record{Username: " @same", Text: "two"},
		raffle.Record{Username: "SAME ", Text: "three"},
	)

	got := raffle.Apply(in, raffle.RuleConfig{MaxEntriesPerUser: 1})

	if diff := cmp.Diff([]string{"one"}, texts(got)); diff != "" {
		t.Errorf("eligible mismatch (-want +got):\n%s", diff)
	}

	got = raffle.Apply(in, raffle.RuleConfig{MaxEntriesPerUser: 2})

	if diff := cmp.Diff([]string{"one", "two"}, texts(got)); diff != "" {
		t.Errorf("eligible mismatch with cap 2 (-want +got):\n%s", diff)
	}
}

func TestApplyPerUserCapCountsOnlyAcceptedEntries(t *testing.T) {
	t.Parallel()

	in := entries(
		raffle.Record{Username: "a", Text: "no keyword"},
		raffle.Record{Username: "a", Text: "win this"},
	)

	got := raffle.Apply(in, raffle.RuleConfig{Keywords: []string{"win"}, MaxEntriesPerUser: 1})

	if diff := cmp.Diff([]string{"win this"}, texts(got)); diff != "" {
		t.Errorf("eligible mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyBlacklistMatchesNormalizedVariants(t *testing.T) {
	t.Parallel()

	in := []raffle.Entry{
		{Username: "spammer", Text: "1"},
		{Username: "ok", Text: "2"},
		{Username: "spammer", Text: "3"},
	}

	cfg := raffle.RuleConfig{
		MaxEntriesPerUser: 10,
		Blacklist:         raffle.BlacklistOf("  @SPAMMER "),
	}

	got := raffle.Apply(in, cfg)

	if diff := cmp.Diff([]string{"ok"}, usernames(got)); diff != "" {
		t.Errorf("eligible mismatch (-want +got):\n%s", diff)
	}

	// Entries that were not normalized upstream still hit the blacklist.
	raw := []raffle.Entry{{Username: " @Spammer", Text: "x"}}
	if got := raffle.Apply(raw, cfg); len(got) != 0 {
		t.Errorf("unnormalized spammer accepted: %v", got)
	}
}

func TestApplyKeywords(t *testing.T) {
	t.Parallel()

	in := entries(
		raffle.Record{Username: "a", Text: "I want to WIN"},
		raffle.Record{Username: "b", Text: "win the prize"},
		raffle.Record{Username: "c", Text: "nothing here"},
		raffle.Record{Username: "d", Text: "prize only"},
	)

	for _, tt := range []struct {
		name string
		cfg  raffle.RuleConfig
		want []string
	}{
		{
			name: "empty keywords accept everything",
			cfg:  raffle.RuleConfig{},
			want: []string{"a", "b", "c", "d"},
		},
		{
			name: "blank keywords are ignored",
			cfg:  raffle.RuleConfig{Keywords: []string{" ", ""}},
			want: []string{"a", "b", "c", "d"},
		},
		{
			name: "any keyword",
			cfg:  raffle.RuleConfig{Keywords: []string{"win", "prize"}},
			want: []string{"a", "b", "d"},
		},
		{
			name: "all keywords",
			cfg:  raffle.RuleConfig{Keywords: []string{"win", "prize"}, MatchAll: true},
			want: []string{"b"},
		},
		{
			name: "case sensitive",
			cfg:  raffle.RuleConfig{Keywords: []string{"WIN"}, CaseSensitive: true},
			want: []string{"a"},
		},
		{
			name: "case insensitive folds keywords too",
			cfg:  raffle.RuleConfig{Keywords: []string{"WIN"}},
			want: []string{"a", "b"},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.cfg
			cfg.MaxEntriesPerUser = 1

			got := raffle.Apply(in, cfg)

			if diff := cmp.Diff(tt.want, usernames(got)); diff != "" {
				t.Errorf("eligible mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyMinMentionsZeroAcceptsNoMentions(t *testing.T) {
	t.Parallel()

	in := entries(raffle.Record{Username: "a", Text: "no mentions"})

	got := raffle.Apply(in, raffle.RuleConfig{MinMentions: 0, MaxEntriesPerUser: 1})
	require.Len(t, got, 1)
}

func TestApplyIsFullRecomputation(t *testing.T) {
	t.Parallel()

	in := entries(
		raffle.Record{Username: "a", Text: "1"},
		raffle.Record{Username: "a", Text: "2"},
	)

	strict := raffle.RuleConfig{MaxEntriesPerUser: 1}
	loose := raffle.RuleConfig{MaxEntriesPerUser: 2}

	first := raffle.Apply(in, strict)
	second := raffle.Apply(in, strict)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated apply differs (-first +second):\n%s", diff)
	}

	if got := raffle.Apply(in, loose); len(got) != 2 {
		t.Errorf("loose apply kept %d entries, want 2", len(got))
	}
}

func TestRuleConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, raffle.DefaultRules().Validate())
	require.ErrorIs(t, raffle.RuleConfig{MaxEntriesPerUser: 0}.Validate(), raffle.ErrInvalidRules)
	require.ErrorIs(t, raffle.RuleConfig{MaxEntriesPerUser: 1, MinMentions: -1}.Validate(), raffle.ErrInvalidRules)
}

func TestParseKeywords(t *testing.T) {
	t.Parallel()

	got := raffle.ParseKeywords(" win, prize ,, ,giveaway")
	if diff := cmp.Diff([]string{"win", "prize", "giveaway"}, got); diff != "" {
		t.Errorf("ParseKeywords mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string(nil), raffle.ParseKeywords("  "), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blank keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestBlacklistOf(t *testing.T) {
	t.Parallel()

	got := raffle.BlacklistOf("@Bad", " bad ", "", "@", "other")

	want := map[string]bool{"bad": true, "other": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BlacklistOf mismatch (-want +got):\n%s", diff)
	}
}
