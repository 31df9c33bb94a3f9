package view

import (
	"fmt"
	"strings"
)

// Column keys accepted by the columns flag.
const (
	ColumnName      = 'n'
	ColumnIP        = 'i'
	ColumnTimestamp = 'T'
	ColumnISO       = 'I'
	ColumnAgo       = 'A'
)

// Column describes one selectable display column.
type Column struct {
	Key   rune
	Short string // table header
	Long  string // flag usage text
}

// Registry lists the selectable columns in canonical order.
var Registry = []Column{
	{ColumnName, "computer name", "computer name"},
	{ColumnIP, "IP address", "IP address"},
	{ColumnTimestamp, "timestamp", "timestamp of last seen"},
	{ColumnISO, "last seen at", "last seen in ISO 8601 format"},
	{ColumnAgo, "last seen", `last seen in "time ago" format`},
}

// Lookup resolves a column key against the registry.
func Lookup(key rune) (Column, bool) {
	for _, c := range Registry {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Keys returns every registered column key as a string.
func Keys() string {
	var b strings.Builder
	for _, c := range Registry {
		b.WriteRune(c.Key)
	}
	return b.String()
}

// Usage renders the column legend used in the flag help text.
func Usage() string {
	parts := make([]string, 0, len(Registry))
	for _, c := range Registry {
		parts = append(parts, fmt.Sprintf("%c: %s", c.Key, c.Long))
	}
	return strings.Join(parts, ", ")
}

// ParseColumns validates a column selection string and resolves it to
// registry entries, preserving the requested order.
func ParseColumns(selection string) ([]Column, error) {
	if selection == "" {
		return nil, fmt.Errorf("empty column selection")
	}
	columns := make([]Column, 0, len(selection))
	for _, key := range selection {
		c, ok := Lookup(key)
		if !ok {
			return nil, fmt.Errorf("'%s' is not a valid list of columns (allowed: %s)", selection, Keys())
		}
		columns = append(columns, c)
	}
	return columns, nil
}
