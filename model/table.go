package model

import (
	"fmt"
	"strings"
)

// Delimiter identifies how the cells of a detected table were separated
type Delimiter int

const (
	DelimiterNone Delimiter = iota
	DelimiterTab
	DelimiterPipe
	DelimiterSpaces
)

// String returns a string representation of the delimiter
func (d Delimiter) String() string {
	switch d {
	case DelimiterTab:
		return "tab"
	case DelimiterPipe:
		return "pipe"
	case DelimiterSpaces:
		return "spaces"
	default:
		return "none"
	}
}

// Table is a table detected in the raw text of a page
type Table struct {
	ID        int        `json:"table_id"`
	Page      int        `json:"page_number"`
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	Delimiter Delimiter  `json:"-"`
}

// RowCount returns the number of data rows (headers excluded)
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns
func (t *Table) ColCount() int {
	return len(t.Headers)
}

// Validate checks that the table has headers and that every row has exactly
// one cell per header.
func (t *Table) Validate() error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("table %d: no headers", t.ID)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("table %d: row %d has %d cells, want %d", t.ID, i, len(row), len(t.Headers))
		}
	}
	return nil
}

// ToMarkdown converts the table to markdown format
func (t *Table) ToMarkdown() string {
	if len(t.Headers) == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for _, cell := range cells {
			sb.WriteString("| ")
			sb.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	writeRow(t.Headers)
	sb.WriteString(strings.Repeat("|---", len(t.Headers)))
	sb.WriteString("|\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	return sb.String()
}

// ToCSV converts the table to CSV format, headers first
func (t *Table) ToCSV() string {
	var sb strings.Builder
	writeRow := func(cells []string) {
		for j, text := range cells {
			if strings.ContainsAny(text, ",\"\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(cells)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	writeRow(t.Headers)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return sb.String()
}
