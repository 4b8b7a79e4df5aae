package agreements

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kuitang/agreements-e2e/internal/errs"
)

const (
	MaxNameLength  = 200
	MaxNotesLength = 20000
	MaxFieldLength = 2000
)

func normalizeCreate(p CreateParams) (CreateParams, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Date = strings.TrimSpace(p.Date)
	if err := validateName(p.Name); err != nil {
		return p, err
	}
	if err := validateDate(p.Date); err != nil {
		return p, err
	}
	if err := validateLength("notes", p.Notes, MaxNotesLength); err != nil {
		return p, err
	}
	for _, f := range []struct {
		name, value string
	}{
		{"responsible_party", p.ResponsibleParty},
		{"maintenance_owner_responsibility", p.MaintenanceOwnerResponsibility},
		{"maintenance_reasoning", p.MaintenanceReasoning},
	} {
		if err := validateLength(f.name, f.value, MaxFieldLength); err != nil {
			return p, err
		}
	}
	return p, nil
}

// apply merges the non-nil fields of p into a and validates the result.
func (p UpdateParams) apply(a Agreement) (Agreement, error) {
	merged := CreateParams{
		Name:                           a.Name,
		Date:                           a.Date,
		Notes:                          a.Notes,
		ResponsibleParty:               a.ResponsibleParty,
		MaintenanceOwnerResponsibility: a.MaintenanceOwnerResponsibility,
		MaintenanceReasoning:           a.MaintenanceReasoning,
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&merged.Name, p.Name)
	set(&merged.Date, p.Date)
	set(&merged.Notes, p.Notes)
	set(&merged.ResponsibleParty, p.ResponsibleParty)
	set(&merged.MaintenanceOwnerResponsibility, p.MaintenanceOwnerResponsibility)
	set(&merged.MaintenanceReasoning, p.MaintenanceReasoning)

	merged, err := normalizeCreate(merged)
	if err != nil {
		return a, err
	}
	a.Name = merged.Name
	a.Date = merged.Date
	a.Notes = merged.Notes
	a.ResponsibleParty = merged.ResponsibleParty
	a.MaintenanceOwnerResponsibility = merged.MaintenanceOwnerResponsibility
	a.MaintenanceReasoning = merged.MaintenanceReasoning
	return a, nil
}

func validateName(name string) error {
	if name == "" {
		return errs.New(errs.InvalidArgument, "name is required")
	}
	return validateLength("name", name, MaxNameLength)
}

// validateDate accepts "" or a real MM/DD/YY calendar date.
func validateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return errs.Newf(errs.InvalidArgument, "date %q must be MM/DD/YY", date)
	}
	return nil
}

func validateLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return errs.Newf(errs.InvalidArgument, "%s exceeds %d characters", field, max)
	}
	return nil
}
