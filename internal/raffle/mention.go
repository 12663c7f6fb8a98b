package raffle

import "regexp"

// mentionPattern matches '@' followed by the platform's username charset.
var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

// Mentions describes the @-mentions found in a comment body.
type Mentions struct {
	// Distinct holds the normalized mentioned usernames in first-seen order.
	Distinct []string
	// Raw is the number of mention occurrences, duplicates included.
	Raw int
}

// Count returns the distinct count if distinct is set, the raw count otherwise.
func (m Mentions) Count(distinct bool) int {
	if distinct {
		return len(m.Distinct)
	}

	return m.Raw
}

// ParseMentions extracts the mentions from text.
func ParseMentions(text string) Mentions {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return Mentions{}
	}

	seen := make(map[string]bool, len(matches))
	distinct := make([]string, 0, len(matches))

	for _, match := range matches {
		user := NormalizeUsername(match[1])
		if seen[user] {
			continue
		}

		seen[user] = true
		distinct = append(distinct, user)
	}

	return Mentions{Distinct: distinct, Raw: len(matches)}
}
