package browser

import (
	"context"
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/agreements-e2e/internal/searchterm"
)

// snapshotRowsJS returns [name, id, date] per visible row; a missing cell is null.
const snapshotRowsJS = `(selector) => Array.from(document.querySelectorAll(selector))
	.filter((row) => !row.hidden)
	.map((row) => {
		const name = row.querySelector('td:nth-child(1) button');
		const id = row.querySelector('td:nth-child(2)');
		const date = row.querySelector('td:nth-child(3)');
		return [name && name.textContent, id && id.textContent, date && date.textContent];
	})`

var snapshotColumns = []searchterm.Column{searchterm.ColumnName, searchterm.ColumnID, searchterm.ColumnDate}

// VisibleRows reads the listing rows currently shown on a page. Every call
// takes a new snapshot.
type VisibleRows struct {
	page playwright.Page
}

// Rows implements searchterm.RowSource.
func (v VisibleRows) Rows(ctx context.Context) ([]searchterm.Cells, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := v.page.Evaluate(snapshotRowsJS, "#agreements-table tbody tr")
	if err != nil {
		return nil, fmt.Errorf("snapshot listing rows: %w", err)
	}
	return cellsFromSnapshot(raw)
}

// cellsFromSnapshot converts the JSON value returned by snapshotRowsJS.
func cellsFromSnapshot(raw any) ([]searchterm.Cells, error) {
	list, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected row snapshot type %T", raw)
	}

	rows := make([]searchterm.Cells, 0, len(list))
	for i, item := range list {
		values, ok := item.([]any)
		if !ok {
			return nil, fmt.Errorf("row %d: unexpected type %T", i, item)
		}
		cells := make(searchterm.Cells, len(snapshotColumns))
		for j, col := range snapshotColumns {
			if j >= len(values) {
				break
			}
			if s, ok := values[j].(string); ok {
				cells[col] = s
			}
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// ExtractAgreementNames returns the names of the visible rows.
func ExtractAgreementNames(t *testing.T, page playwright.Page) []string {
	t.Helper()
	return extract(t, page, searchterm.ColumnName)
}

// ExtractAgreementIDs returns the IDs of the visible rows.
func ExtractAgreementIDs(t *testing.T, page playwright.Page) []string {
	t.Helper()
	return extract(t, page, searchterm.ColumnID)
}

// ExtractLastModifiedDates returns the last-modified dates of the visible rows.
func ExtractLastModifiedDates(t *testing.T, page playwright.Page) []string {
	t.Helper()
	return extract(t, page, searchterm.ColumnDate)
}

func extract(t *testing.T, page playwright.Page, col searchterm.Column) []string {
	t.Helper()
	values, err := searchterm.ExtractFrom(context.Background(), VisibleRows{page: page}, col)
	if err != nil {
		t.Fatalf("extract %s: %v", col, err)
	}
	return values
}

// SearchByExtractedName types the common prefix of the visible names.
func SearchByExtractedName(t *testing.T, page playwright.Page) searchterm.Derivation {
	t.Helper()
	return searchByExtracted(t, page, searchterm.ColumnName)
}

// SearchByExtractedID types the common prefix of the visible IDs.
func SearchByExtractedID(t *testing.T, page playwright.Page) searchterm.Derivation {
	t.Helper()
	return searchByExtracted(t, page, searchterm.ColumnID)
}

// SearchByExtractedDate types the first visible last-modified date.
func SearchByExtractedDate(t *testing.T, page playwright.Page) searchterm.Derivation {
	t.Helper()
	return searchByExtracted(t, page, searchterm.ColumnDate)
}

// searchByExtracted derives a term from the visible rows and types it. When
// the column is empty nothing is typed and the derivation reports !OK.
func searchByExtracted(t *testing.T, page playwright.Page, col searchterm.Column) searchterm.Derivation {
	t.Helper()

	d, err := searchterm.Derive(context.Background(), VisibleRows{page: page}, col)
	if err != nil {
		t.Fatalf("derive %s search term: %v", col, err)
	}
	if !d.OK {
		t.Logf("no %s values to search for", col)
		return d
	}
	t.Logf("extracted %d %s value(s), searching for %q (%s)", len(d.Values), col, d.Term, d.Strategy)
	SearchAgreements(t, page, d.Term)
	return d
}
