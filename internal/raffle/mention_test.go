package raffle_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/raffle/internal/raffle"
)

func TestParseMentions(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name         string
		text         string
		wantDistinct []string
		wantRaw      int
	}{
		{name: "no mentions", text: "I want to win", wantDistinct: nil, wantRaw: 0},
		{name: "two distinct", text: "hi @b @c", wantDistinct: []string{"b", "c"}, wantRaw: 2},
		{name: "duplicates count raw", text: "@b @b @B", wantDistinct: []string{"b"}, wantRaw: 3},
		{name: "charset", text: "@john.doe_99! and @x", wantDistinct: []string{"john.doe_99", "x"}, wantRaw: 2},
		{name: "bare at sign", text: "email me @ home", wantDistinct: nil, wantRaw: 0},
		{name: "adjacent", text: "@a@b", wantDistinct: []string{"a", "b"}, wantRaw: 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := raffle.ParseMentions(tt.text)

			if diff := cmp.Diff(tt.wantDistinct, got.Distinct, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Distinct mismatch (-want +got):\n%s", diff)
			}

			if got.Raw != tt.wantRaw {
				t.Errorf("Raw=%d, want=%d", got.Raw, tt.wantRaw)
			}

			if got.Count(true) != len(tt.wantDistinct) {
				t.Errorf("Count(true)=%d, want=%d", got.Count(true), len(tt.wantDistinct))
			}

			if got.Count(false) != tt.wantRaw {
				t.Errorf("Count(false)=%d, want=%d", got.Count(false), tt.wantRaw)
			}
		})
	}
}
