package importer_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/raffle/internal/importer"
	"github.com/calvinalkan/raffle/internal/raffle"
)

func TestParseCSV(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		in   string
		want []raffle.Record
	}{
		{
			name: "basic",
			in:   "username,comment\nalice,I want it\nbob,me too\n",
			want: []raffle.Record{
				{Username: "alice", Text: "I want it"},
				{Username: "bob", Text: "me too"},
			},
		},
		{
			name: "header is case insensitive and reordered",
			in:   "Comment, USERNAME\nhello,@carol\n",
			want: []raffle.Record{{Username: "@carol", Text: "hello"}},
		},
		{
			name: "quoted fields keep commas and quotes",
			in:   "username,comment\ndave,\"win, please \"\"now\"\"\"\n",
			want: []raffle.Record{{Username: "dave", Text: `win, please "now"`}},
		},
		{
			name: "rows missing username or comment are skipped",
			in:   "username,comment\n,orphan comment\nerin,\nfrank,ok\n\n",
			want: []raffle.Record{{Username: "frank", Text: "ok"}},
		},
		{
			name: "short rows are tolerated",
			in:   "username,comment\ngrace\nheidi,yes\n",
			want: []raffle.Record{{Username: "heidi", Text: "yes"}},
		},
		{
			name: "text alias and id column",
			in:   "id,username,text\n17,ivan,@a @b\n",
			want: []raffle.Record{{Username: "ivan", Text: "@a @b", ID: "17"}},
		},
		{
			name: "crlf line endings",
			in:   "username,comment\r\njudy,hi\r\n",
			want: []raffle.Record{{Username: "judy", Text: "hi"}},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := importer.ParseCSV(strings.NewReader(tt.in))
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCSVErrors(t *testing.T) {
	t.Parallel()

	_, err := importer.ParseCSV(strings.NewReader("name,comment\na,b\n"))
	require.ErrorIs(t, err, raffle.ErrParse)

	_, err = importer.ParseCSV(strings.NewReader("username,body\na,b\n"))
	require.ErrorIs(t, err, raffle.ErrParse)

	_, err = importer.ParseCSV(strings.NewReader(""))
	require.ErrorIs(t, err, raffle.ErrEmptyInput)
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	in := `[
		{"username": "alice", "text": "hello"},
		{"user": "bob", "comment": "hey"},
		{"author": "carol", "text": "", "comment": "fallback"},
		{"username": "", "user": "dave", "text": "x", "id": 123},
		{"id": "c5", "username": "erin", "text": "with id"},
		{"username": "fay", "text": "big id", "id": 17895695668004551},
		"not an object",
		{"text": "no user"}
	]`

	got, err := importer.ParseJSON([]byte(in))
	require.NoError(t, err)

	want := []raffle.Record{
		{Username: "alice", Text: "hello"},
		{Username: "bob", Text: "hey"},
		{Username: "carol", Text: "fallback"},
		{Username: "dave", Text: "x", ID: "123"},
		{Username: "erin", Text: "with id", ID: "c5"},
		{Username: "fay", Text: "big id", ID: "17895695668004551"},
		{Text: "no user"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSONErrors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`{"username":"a"}`, `[{"username":`, `nope`, `[] []`} {
		_, err := importer.ParseJSON([]byte(in))
		require.ErrorIs(t, err, raffle.ErrParse, "input %q", in)
	}
}

func TestParsePaste(t *testing.T) {
	t.Parallel()

	in := `
alice: I want to win @bob
   @carol
dave
@@erin

frank:   spaced   comment
time: 12:30 meeting
`

	got, err := importer.ParsePaste(in)
	require.NoError(t, err)

	want := []raffle.Record{
		{Username: "alice", Text: "I want to win @bob"},
		{Username: "carol"},
		{Username: "dave"},
		{Username: "erin"},
		{Username: "frank", Text: "spaced   comment"},
		{Username: "time", Text: "12:30 meeting"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePasteEmpty(t *testing.T) {
	t.Parallel()

	_, err := importer.ParsePaste("  \n\t\n")
	require.ErrorIs(t, err, raffle.ErrEmptyInput)
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	got, err := importer.ParseFile("comments.CSV", []byte("\xEF\xBB\xBFusername,comment\na,b\n"))
	require.NoError(t, err)
	require.Equal(t, []raffle.Record{{Username: "a", Text: "b"}}, got)

	got, err = importer.ParseFile("export.json", []byte(`[{"username":"x","text":"y"}]`))
	require.NoError(t, err)
	require.Equal(t, []raffle.Record{{Username: "x", Text: "y"}}, got)

	_, err = importer.ParseFile("comments.txt", []byte("a: b"))
	require.ErrorIs(t, err, raffle.ErrParse)

	_, err = importer.ParseFile("comments.csv", []byte("  \n"))
	require.ErrorIs(t, err, raffle.ErrEmptyInput)
}
