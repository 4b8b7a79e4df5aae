package agreements

import (
	"context"

	"github.com/kuitang/agreements-e2e/internal/searchterm"
)

// listingColumns are the columns the agreements listing shows.
var listingColumns = []searchterm.Column{
	searchterm.ColumnName,
	searchterm.ColumnID,
	searchterm.ColumnDate,
}

// ListingSource snapshots a listing for term derivation. Every call to Rows
// re-runs the query, so the snapshot reflects the store at that moment.
type ListingSource struct {
	svc    *Service
	params ListParams
}

// Source returns a searchterm.RowSource over the listing selected by params.
func (s *Service) Source(params ListParams) *ListingSource {
	return &ListingSource{svc: s, params: params}
}

// Rows implements searchterm.RowSource.
func (l *ListingSource) Rows(ctx context.Context) ([]searchterm.Cells, error) {
	result, err := l.svc.List(ctx, l.params)
	if err != nil {
		return nil, err
	}
	rows := make([]searchterm.Cells, 0, len(result.Agreements))
	for _, a := range result.Agreements {
		cells := make(searchterm.Cells, len(listingColumns))
		for _, col := range listingColumns {
			if v, ok := a.Cell(col); ok {
				cells[col] = v
			}
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// DeriveSearchTerm reduces one column of the listing to the term a user
// would type to find those rows again.
func (s *Service) DeriveSearchTerm(ctx context.Context, params ListParams, col searchterm.Column) (searchterm.Derivation, error) {
	return searchterm.Derive(ctx, s.Source(params), col)
}
