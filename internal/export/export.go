// Package export writes the results ledger as CSV or JSON.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/natefinch/atomic"

	"github.com/calvinalkan/raffle/internal/raffle"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// TimeLayout is the timestamp layout used in exports (UTC, millisecond precision).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrUnknownFormat is returned for formats other than csv and json.
var ErrUnknownFormat = errors.New("unknown export format")

var csvHeader = []string{"time", "username", "comment"}

// commentNewlines flattens line breaks inside comments.
var commentNewlines = strings.NewReplacer("\r\n", " ", "\n", " ")

// winnerJSON is the exported JSON shape of a winner.
type winnerJSON struct {
	Time     string `json:"time"`
	Username string `json:"username"`
	Text     string `json:"text"`
	ID       string `json:"id,omitempty"`
	DrawID   string `json:"draw_id,omitempty"`
}

// Write writes winners in the given format.
func Write(w io.Writer, format string, winners []raffle.Winner) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, winners)
	case FormatJSON:
		return WriteJSON(w, winners)
	default:
		return fmt.Errorf("%w: %q (want csv or json)", ErrUnknownFormat, format)
	}
}

// WriteFile writes winners to path atomically: readers see either the old
// file or the complete new one.
func WriteFile(path, format string, winners []raffle.Winner) error {
	var buf bytes.Buffer

	err := Write(&buf, format, winners)
	if err != nil {
		return err
	}

	err = atomic.WriteFile(path, &buf)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// WriteCSV writes a "time,username,comment" table. Every field is quoted with
// embedded quotes doubled, usernames carry a leading '@', and line breaks in
// comments become spaces. Rows are separated by '\n' with no trailing newline.
func WriteCSV(w io.Writer, winners []raffle.Winner) error {
	rows := make([]string, 0, len(winners)+1)
	rows = append(rows, csvRow(csvHeader))

	for _, win := range winners {
		rows = append(rows, csvRow([]string{
			formatTime(win.Time),
			"@" + win.Username,
			commentNewlines.Replace(win.Text),
		}))
	}

	_, err := io.WriteString(w, strings.Join(rows, "\n"))
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	return nil
}

// WriteJSON writes winners as a pretty-printed JSON array in draw order.
func WriteJSON(w io.Writer, winners []raffle.Winner) error {
	out := make([]winnerJSON, 0, len(winners))

	for _, win := range winners {
		out = append(out, winnerJSON{
			Time:     formatTime(win.Time),
			Username: win.Username,
			Text:     win.Text,
			ID:       win.ID,
			DrawID:   win.DrawID,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write json: %w", err)
	}

	return nil
}

func csvRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}

	return strings.Join(quoted, ",")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
