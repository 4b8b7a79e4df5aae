// Package searchterm derives search terms from the rows of an agreements listing.
// It pulls one column out of a row snapshot (Extract) and reduces the values to a
// single term (CommonPrefix, DeriveTerm) that the UI tests type into the search box.
package searchterm

import (
	"context"
	"fmt"
	"strings"
)

// Column identifies a listing column by its meaning, not its position.
type Column int

const (
	ColumnName Column = iota
	ColumnID
	ColumnDate
)

func (c Column) String() string {
	switch c {
	case ColumnName:
		return "name"
	case ColumnID:
		return "id"
	case ColumnDate:
		return "date"
	default:
		return fmt.Sprintf("column(%d)", int(c))
	}
}

// ParseColumn accepts the names returned by Column.String.
func ParseColumn(s string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return ColumnName, nil
	case "id":
		return ColumnID, nil
	case "date":
		return ColumnDate, nil
	default:
		return 0, fmt.Errorf("unknown column %q (want name, id or date)", s)
	}
}

// Row gives typed access to one listed item.
// Cell reports the raw cell text and whether the row has that cell at all.
type Row interface {
	Cell(col Column) (string, bool)
}

// Cells is a row snapshot keyed by column.
type Cells map[Column]string

// Cell implements Row.
func (c Cells) Cell(col Column) (string, bool) {
	v, ok := c[col]
	return v, ok
}

// RowSource supplies a fresh snapshot of the currently visible rows.
type RowSource interface {
	Rows(ctx context.Context) ([]Cells, error)
}

// Extract returns the trimmed, non-empty values of col, one per row, in row order.
// Rows with a missing or blank cell contribute nothing.
func Extract[R Row](rows []R, col Column) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		raw, ok := row.Cell(col)
		if !ok {
			continue
		}
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	return values
}

// ExtractFrom reads a snapshot from src and extracts col from it.
func ExtractFrom(ctx context.Context, src RowSource, col Column) ([]string, error) {
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s column: %w", col, err)
	}
	return Extract(rows, col), nil
}
