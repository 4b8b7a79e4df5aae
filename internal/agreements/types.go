package agreements

import (
	"errors"
	"time"

	"github.com/kuitang/agreements-e2e/internal/errs"
	"github.com/kuitang/agreements-e2e/internal/searchterm"
)

const (
	// IDPrefix starts every agreement ID so listings share a common prefix.
	IDPrefix = "AGR-"

	// DateLayout is the agreement date format (MM/DD/YY).
	DateLayout = "01/02/06"

	// ListDateLayout is how the last-modified date is shown and searched.
	ListDateLayout = "01/02/2006"
)

// ErrNotFound is returned when no agreement has the requested ID.
var ErrNotFound = errs.New(errs.NotFound, "agreement not found")

// ErrIDCollision is returned when a freshly generated ID is already taken.
var ErrIDCollision = errors.New("agreement id collision")

// Agreement is one maintenance agreement.
type Agreement struct {
	ID                             string    `json:"id"`
	Name                           string    `json:"name"`
	Date                           string    `json:"date"`
	Notes                          string    `json:"notes"`
	ResponsibleParty               string    `json:"responsible_party"`
	MaintenanceOwnerResponsibility string    `json:"maintenance_owner_responsibility"`
	MaintenanceReasoning           string    `json:"maintenance_reasoning"`
	CreatedAt                      time.Time `json:"created_at"`
	UpdatedAt                      time.Time `json:"updated_at"`
}

// LastModified is the date shown in the listing's date column.
func (a Agreement) LastModified() string {
	return a.UpdatedAt.UTC().Format(ListDateLayout)
}

// Cell exposes the listing columns so agreements can feed term derivation.
func (a Agreement) Cell(col searchterm.Column) (string, bool) {
	switch col {
	case searchterm.ColumnName:
		return a.Name, true
	case searchterm.ColumnID:
		return a.ID, true
	case searchterm.ColumnDate:
		return a.LastModified(), true
	default:
		return "", false
	}
}

// CreateParams contains parameters for creating an agreement.
type CreateParams struct {
	Name                           string `json:"name"`
	Date                           string `json:"date"`
	Notes                          string `json:"notes"`
	ResponsibleParty               string `json:"responsible_party"`
	MaintenanceOwnerResponsibility string `json:"maintenance_owner_responsibility"`
	MaintenanceReasoning           string `json:"maintenance_reasoning"`
}

// UpdateParams contains parameters for updating an agreement.
// Nil fields are left unchanged.
type UpdateParams struct {
	Name                           *string `json:"name,omitempty"`
	Date                           *string `json:"date,omitempty"`
	Notes                          *string `json:"notes,omitempty"`
	ResponsibleParty               *string `json:"responsible_party,omitempty"`
	MaintenanceOwnerResponsibility *string `json:"maintenance_owner_responsibility,omitempty"`
	MaintenanceReasoning           *string `json:"maintenance_reasoning,omitempty"`
}

// Sort orders a listing.
type Sort string

const (
	SortLastModified Sort = "last_modified"
	SortName         Sort = "name"
	SortID           Sort = "id"
)

// ParseSort accepts the listing sort keys; "" selects SortLastModified.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "":
		return SortLastModified, nil
	case SortLastModified, SortName, SortID:
		return Sort(s), nil
	default:
		return "", errs.Newf(errs.InvalidArgument, "unknown sort %q (want last_modified, name or id)", s)
	}
}

// Label is the text of the sort option in the UI.
func (s Sort) Label() string {
	switch s {
	case SortName:
		return "Agreement Name"
	case SortID:
		return "Agreement ID"
	default:
		return "Last Modified"
	}
}

// ListParams selects and orders a page of agreements.
type ListParams struct {
	Sort   Sort
	Query  string
	Limit  int
	Offset int
}

// ListResult is a page of agreements.
type ListResult struct {
	Agreements []Agreement `json:"agreements"`
	TotalCount int         `json:"total_count"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
	Sort       Sort        `json:"sort"`
	Query      string      `json:"query,omitempty"`
}
