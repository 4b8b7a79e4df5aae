// Package testutil provides shared rapid generators for property-based tests.
// All e2e tests should use these generators instead of defining their own.
package testutil

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/kuitang/agreements-e2e/internal/agreements"
)

// =============================================================================
// Agreement Field Generators
// =============================================================================

// AgreementNameGenerator generates valid agreement names (non-empty, no
// surrounding whitespace).
func AgreementNameGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`Agreement [A-Za-z0-9][A-Za-z0-9 _-]{2,40}[A-Za-z0-9]`)
}

// AgreementDateGenerator generates real MM/DD/YY calendar dates.
func AgreementDateGenerator() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		month := rapid.IntRange(1, 12).Draw(t, "month")
		day := rapid.IntRange(1, 28).Draw(t, "day")
		year := rapid.IntRange(0, 99).Draw(t, "year")
		return fmt.Sprintf("%02d/%02d/%02d", month, day, year)
	})
}

// InvalidAgreementDateGenerator generates dates the service must reject.
func InvalidAgreementDateGenerator() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.Just("13/01/24"),
		rapid.Just("02/30/24"),
		rapid.Just("2024-01-01"),
		rapid.StringMatching(`[a-z]{3,8}`),
	)
}

// AgreementTextGenerator generates free text for the optional fields (can be empty).
func AgreementTextGenerator() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.Just(""),
		rapid.StringMatching(`[A-Za-z0-9 .,!?]{1,120}`),
	)
}

// AgreementGenerator generates a complete, valid create request.
func AgreementGenerator() *rapid.Generator[agreements.CreateParams] {
	return rapid.Custom(func(t *rapid.T) agreements.CreateParams {
		return agreements.CreateParams{
			Name:                           AgreementNameGenerator().Draw(t, "name"),
			Date:                           AgreementDateGenerator().Draw(t, "date"),
			Notes:                          AgreementTextGenerator().Draw(t, "notes"),
			ResponsibleParty:               AgreementTextGenerator().Draw(t, "responsible_party"),
			MaintenanceOwnerResponsibility: AgreementTextGenerator().Draw(t, "maintenance_owner_responsibility"),
			MaintenanceReasoning:           AgreementTextGenerator().Draw(t, "maintenance_reasoning"),
		}
	})
}

// SortGenerator generates the listing sort keys.
func SortGenerator() *rapid.Generator[agreements.Sort] {
	return rapid.SampledFrom([]agreements.Sort{
		agreements.SortLastModified,
		agreements.SortName,
		agreements.SortID,
	})
}

// =============================================================================
// Query Generators
// =============================================================================

// UnknownDocumentIDGenerator generates document IDs that are never processed.
func UnknownDocumentIDGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`missing-[a-z0-9]{6,12}\.pdf`)
}
