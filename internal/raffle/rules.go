package raffle

import (
	"fmt"
	"strings"
)

// RuleConfig holds the eligibility rules applied by [Apply].
// It is supplied fresh on every application.
type RuleConfig struct {
	// Keywords the comment text must contain. Empty disables the keyword rule.
	Keywords []string
	// MatchAll requires every keyword to match instead of any.
	MatchAll bool
	// CaseSensitive disables case folding for keyword matching.
	CaseSensitive bool
	// MinMentions is the minimum number of @-mentions (>= 0).
	MinMentions int
	// DistinctMentions counts distinct mentioned users instead of occurrences.
	DistinctMentions bool
	// MaxEntriesPerUser caps accepted entries per username (>= 1).
	MaxEntriesPerUser int
	// Blacklist holds normalized usernames that are never eligible.
	Blacklist map[string]bool
}

// DefaultRules returns rules that accept every entry once per user.
func DefaultRules() RuleConfig {
	return RuleConfig{MaxEntriesPerUser: 1}
}

// Validate checks the numeric bounds of the rules.
func (c RuleConfig) Validate() error {
	if c.MinMentions < 0 {
		return fmt.Errorf("%w: min mentions must be >= 0, got %d", ErrInvalidRules, c.MinMentions)
	}

	if c.MaxEntriesPerUser < 1 {
		return fmt.Errorf("%w: max entries per user must be >= 1, got %d", ErrInvalidRules, c.MaxEntriesPerUser)
	}

	return nil
}

// BlacklistOf builds a blacklist set from raw usernames.
// Names are normalized; names empty after normalization are skipped.
func BlacklistOf(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))

	for _, name := range names {
		user := NormalizeUsername(name)
		if user == "" {
			continue
		}

		set[user] = true
	}

	return set
}

// ParseKeywords splits a comma separated keyword list, trimming each keyword
// and discarding empty ones.
func ParseKeywords(raw string) []string {
	var keywords []string

	for part := range strings.SplitSeq(raw, ",") {
		kw := strings.TrimSpace(part)
		if kw == "" {
			continue
		}

		keywords = append(keywords, kw)
	}

	return keywords
}

// Apply filters entries against cfg and returns the eligible set.
//
// Checks run per entry in order: blacklist, keywords, mentions, per-user cap.
// The per-user count only counts entries accepted in this pass. Accepted
// entries keep their input order. Nothing is memoized between calls.
func Apply(entries []Entry, cfg RuleConfig) []Entry {
	maxEntries := max(cfg.MaxEntriesPerUser, 1)
	needles := keywordNeedles(cfg.Keywords, cfg.CaseSensitive)
	perUser := make(map[string]int)
	eligible := make([]Entry, 0, len(entries))

	for _, entry := range entries {
		user := NormalizeUsername(entry.Username)
		if user == "" || cfg.Blacklist[user] {
			continue
		}

		if len(needles) > 0 && !matchKeywords(entry.Text, needles, cfg.MatchAll, cfg.CaseSensitive) {
			continue
		}

		if ParseMentions(entry.Text).Count(cfg.DistinctMentions) < cfg.MinMentions {
			continue
		}

		if perUser[user] >= maxEntries {
			continue
		}

		perUser[user]++

		eligible = append(eligible, Entry{Username: user, Text: entry.Text, ID: entry.ID})
	}

	return eligible
}

func keywordNeedles(keywords []string, caseSensitive bool) []string {
	needles := make([]string, 0, len(keywords))

	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}

		if !caseSensitive {
			kw = strings.ToLower(kw)
		}

		needles = append(needles, kw)
	}

	return needles
}

func matchKeywords(text string, needles []string, matchAll, caseSensitive bool) bool {
	haystack := text
	if !caseSensitive {
		haystack = strings.ToLower(text)
	}

	for _, needle := range needles {
		found := strings.Contains(haystack, needle)
		if matchAll && !found {
			return false
		}

		if !matchAll && found {
			return true
		}
	}

	return matchAll
}
