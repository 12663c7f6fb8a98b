package raffle

import "strings"

// Record is a raw (username, text) pair as read from an importer or the
// Graph API, before normalization.
type Record struct {
	Username string
	Text     string
	ID       string
}

// Entry is a normalized comment eligible for rule evaluation.
// Username is trimmed, stripped of leading '@' and lowercased.
type Entry struct {
	Username string
	Text     string
	ID       string
}

// NormalizeUsername trims whitespace, strips all leading '@' characters and
// lowercases the result.
func NormalizeUsername(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "@")

	return strings.ToLower(s)
}

// NewEntry normalizes a raw username and text into an Entry.
// Returns false if the username is empty after normalization.
func NewEntry(username, text, id string) (Entry, bool) {
	user := NormalizeUsername(username)
	if user == "" {
		return Entry{}, false
	}

	return Entry{Username: user, Text: text, ID: id}, true
}

// Normalize converts raw records into entries, dropping records whose
// username normalizes to empty. Input order is preserved.
func Normalize(records []Record) []Entry {
	entries := make([]Entry, 0, len(records))

	for _, rec := range records {
		entry, ok := NewEntry(rec.Username, rec.Text, rec.ID)
		if !ok {
			continue
		}

		entries = append(entries, entry)
	}

	return entries
}
