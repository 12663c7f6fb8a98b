package raffle

import "math/rand/v2"

// tickerRepeat is how many times each eligible username appears in the
// suspense ticker.
const tickerRepeat = 3

// Selector picks winners uniformly at random from an eligible set.
type Selector struct {
	rng *rand.Rand
}

// NewSelector returns a Selector drawing from src.
// A nil src uses a randomly seeded PCG source.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &Selector{rng: rand.New(src)}
}

// NewSeededSelector returns a Selector with a deterministic source.
func NewSeededSelector(seed uint64) *Selector {
	return NewSelector(rand.NewPCG(seed, seed))
}

// Draw returns one entry chosen uniformly over the entry instances in
// eligible. Users with several accepted entries get one chance per entry.
// Nothing is removed from eligible.
func (s *Selector) Draw(eligible []Entry) (Entry, error) {
	if len(eligible) == 0 {
		return Entry{}, ErrEmptyPool
	}

	return eligible[s.rng.IntN(len(eligible))], nil
}

// Ticker builds the cosmetic suspense sequence shown before a winner is
// revealed: every eligible username repeated three times, shuffled, with the
// last tile replaced by the winner. The ticker never influences which entry
// wins.
func (s *Selector) Ticker(eligible []Entry, winner Entry) []string {
	if len(eligible) == 0 {
		return nil
	}

	ticker := make([]string, 0, len(eligible)*tickerRepeat)
	for range tickerRepeat {
		for _, entry := range eligible {
			ticker = append(ticker, entry.Username)
		}
	}

	s.rng.Shuffle(len(ticker), func(i, j int) {
		ticker[i], ticker[j] = ticker[j], ticker[i]
	})

	ticker[len(ticker)-1] = winner.Username

	return ticker
}
