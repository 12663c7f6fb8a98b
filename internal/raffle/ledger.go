package raffle

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Winner is a drawn entry as recorded in the ledger.
type Winner struct {
	Time     time.Time
	Username string
	Text     string
	ID       string
	DrawID   string
}

// Ledger is the append-only record of winners in draw order.
type Ledger struct {
	winners []Winner
}

// NewLedger returns a ledger holding winners, in the given order.
// Used to restore a persisted ledger.
func NewLedger(winners ...Winner) *Ledger {
	return &Ledger{winners: slices.Clone(winners)}
}

// Record appends entry as a winner drawn at the given time.
func (l *Ledger) Record(entry Entry, at time.Time) Winner {
	w := Winner{
		Time:     at.UTC(),
		Username: entry.Username,
		Text:     entry.Text,
		ID:       entry.ID,
		DrawID:   newDrawID(),
	}

	l.winners = append(l.winners, w)

	return w
}

// Clear removes all winners.
func (l *Ledger) Clear() {
	l.winners = nil
}

// Len returns the number of recorded winners.
func (l *Ledger) Len() int {
	return len(l.winners)
}

// Export returns a copy of the winners in draw order.
func (l *Ledger) Export() []Winner {
	out := make([]Winner, len(l.winners))
	copy(out, l.winners)

	return out
}

func newDrawID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
