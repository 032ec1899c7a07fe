// Package parser implements the FileParser collaborator for CSV datasets.
// The first record is treated as the header row; scalar values are coerced
// to float64 / bool where they parse cleanly and kept as strings otherwise.
package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/datachat/core"
)

// Options configures CSV parsing.
type Options struct {
	// Comma is the field delimiter.
	Comma rune
	// TrimLeadingSpace ignores leading white space in a field.
	TrimLeadingSpace bool
	// LazyQuotes allows bare quotes inside unquoted fields.
	LazyQuotes bool
}

// CSV parses comma-separated datasets into ordered rows.
type CSV struct {
	opts Options
}

// NewCSV creates a CSV parser with optional overrides.
func NewCSV(optFns ...func(o *Options)) *CSV {
	opts := Options{Comma: ',', TrimLeadingSpace: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CSV{opts: opts}
}

// Parse implements core.FileParser. It returns the parsed rows together with
// the original textual content.
func (p *CSV) Parse(ctx context.Context, file core.File) ([]core.Row, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	raw := string(file.Content)
	r := csv.NewReader(strings.NewReader(raw))
	r.Comma = p.opts.Comma
	r.TrimLeadingSpace = p.opts.TrimLeadingSpace
	r.LazyQuotes = p.opts.LazyQuotes

	records, err := r.ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", file.Name, err)
	}
	if len(records) < 2 {
		return nil, "", fmt.Errorf("failed to parse %s: need a header row and at least one data row", file.Name)
	}

	header := records[0]
	rows := make([]core.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(core.Row, len(header))
		for i, col := range header {
			if i >= len(record) {
				row[col] = ""
				continue
			}
			row[col] = coerce(record[i])
		}
		rows = append(rows, row)
	}

	return rows, raw, nil
}

// coerce converts a CSV field to its most specific scalar representation.
func coerce(field string) any {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(trimmed); err == nil {
		return b
	}
	return field
}
