package csvimport

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const (
	// ListSeparator splits multi-valued cells (category, location).
	ListSeparator = "|"

	// DateLayout is the day.month.year format used by start_date and end_date.
	DateLayout = "02.01.2006"
)

// Row is one parsed data line: raw cell values addressed by column name.
type Row struct {
	schema *Schema
	values []string
}

// ParseRow splits line into cells. Cells are trimmed and NFC-normalised so
// titles typed with combining characters still match stored records. A
// field count that differs from the header yields *FieldCountError.
func (s *Schema) ParseRow(line string) (Row, error) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), s.delimiter)
	if len(parts) != s.Len() {
		return Row{}, &FieldCountError{FirstField: strings.TrimSpace(parts[0]), Got: len(parts), Want: s.Len()}
	}
	for i, p := range parts {
		parts[i] = norm.NFC.String(strings.TrimSpace(p))
	}
	return Row{schema: s, values: parts}, nil
}

// Get returns the cell for col, or "" for an unknown column.
func (r Row) Get(col string) string {
	if r.schema == nil {
		return ""
	}
	i, ok := r.schema.pos[col]
	if !ok {
		return ""
	}
	return r.values[i]
}

// ID is the row's own identifier, used as the outcome prefix.
func (r Row) ID() string { return r.Get(ColID) }

// List splits a multi-valued cell on ListSeparator. Tokens are trimmed,
// empty tokens dropped and repeats collapsed, keeping first-seen order.
func (r Row) List(col string) []string {
	raw := r.Get(col)
	if raw == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range strings.Split(raw, ListSeparator) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// StartDate parses start_date; unparseable or empty values fall back to
// 1 January of now's year.
func (r Row) StartDate(now time.Time) time.Time {
	if t, err := time.Parse(DateLayout, r.Get(ColStartDate)); err == nil {
		return t
	}
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// EndDate parses end_date; unparseable or empty values fall back to
// 31 December, one hundred years after now's year.
func (r Row) EndDate(now time.Time) time.Time {
	if t, err := time.Parse(DateLayout, r.Get(ColEndDate)); err == nil {
		return t
	}
	return time.Date(now.Year()+100, time.December, 31, 0, 0, 0, 0, time.UTC)
}
