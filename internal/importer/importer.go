// Package importer reads raw comment records from CSV files, JSON files and
// pasted text.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/calvinalkan/raffle/internal/raffle"
)

// utf8BOM is stripped from the start of imported files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Column and key aliases accepted by the importers, in priority order.
var (
	csvUserColumns    = []string{"username"}
	csvCommentColumns = []string{"comment", "text"}
	jsonUserKeys      = []string{"username", "user", "author"}
	jsonTextKeys      = []string{"text", "comment"}
)

// pasteLine matches "username: comment text".
var pasteLine = regexp.MustCompile(`^([^:]+):\s*(.+)$`)

// ParseFile dispatches on the file extension (.csv or .json).
func ParseFile(name string, data []byte) ([]raffle.Record, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", raffle.ErrEmptyInput, name)
	}

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q (want .csv or .json)", raffle.ErrParse, ext)
	}
}

// ParseCSV reads a CSV document whose header row names a username column and
// a comment column (matched case-insensitively, "text" accepted for the
// comment). An optional "id" column is carried through. Rows missing a
// username or a comment are skipped.
func ParseCSV(r io.Reader) ([]raffle.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, raffle.ErrEmptyInput
	}

	if err != nil {
		return nil, fmt.Errorf("%w: csv header: %w", raffle.ErrParse, err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}

	idxUser := columnIndex(header, csvUserColumns...)
	if idxUser < 0 {
		return nil, fmt.Errorf("%w: csv header has no username column", raffle.ErrParse)
	}

	idxComment := columnIndex(header, csvCommentColumns...)
	if idxComment < 0 {
		return nil, fmt.Errorf("%w: csv header has no comment column", raffle.ErrParse)
	}

	idxID := columnIndex(header, "id")

	var records []raffle.Record

	for {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: csv: %w", raffle.ErrParse, readErr)
		}

		username := strings.TrimSpace(field(row, idxUser))
		text := strings.TrimSpace(field(row, idxComment))

		if username == "" || text == "" {
			continue
		}

		records = append(records, raffle.Record{
			Username: username,
			Text:     text,
			ID:       strings.TrimSpace(field(row, idxID)),
		})
	}

	return records, nil
}

// ParseJSON reads a JSON array of objects. The username comes from the first
// non-empty of "username", "user" or "author"; the text from "text" or
// "comment". Array elements that are not objects are skipped.
func ParseJSON(data []byte) ([]raffle.Record, error) {
	var items []any

	// Numbers stay json.Number: comment IDs exceed float64 precision.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err := dec.Decode(&items)
	if err != nil {
		return nil, fmt.Errorf("%w: json: %w", raffle.ErrParse, err)
	}

	if dec.More() {
		return nil, fmt.Errorf("%w: json: trailing data after array", raffle.ErrParse)
	}

	records := make([]raffle.Record, 0, len(items))

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		records = append(records, raffle.Record{
			Username: firstString(obj, jsonUserKeys...),
			Text:     firstString(obj, jsonTextKeys...),
			ID:       firstString(obj, "id"),
		})
	}

	return records, nil
}

// ParsePaste reads free text, one record per non-blank line. A line is either
// "username: comment", a bare "@username" or a bare username.
func ParsePaste(text string) ([]raffle.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, raffle.ErrEmptyInput
	}

	var records []raffle.Record

	for line := range strings.Lines(text) {
		row := strings.TrimSpace(line)
		if row == "" {
			continue
		}

		if m := pasteLine.FindStringSubmatch(row); m != nil {
			records = append(records, raffle.Record{
				Username: strings.TrimSpace(m[1]),
				Text:     strings.TrimSpace(m[2]),
			})

			continue
		}

		if strings.HasPrefix(row, "@") {
			records = append(records, raffle.Record{Username: strings.TrimSpace(strings.TrimLeft(row, "@"))})

			continue
		}

		records = append(records, raffle.Record{Username: row})
	}

	return records, nil
}

func columnIndex(header []string, names ...string) int {
	for _, name := range names {
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), name) {
				return i
			}
		}
	}

	return -1
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}

	return ""
}
