package browser

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/agreements-e2e/internal/agreements"
)

var (
	previewURL = regexp.MustCompile(`/agreements/AGR-[0-9A-F]+$`)
	listURL    = regexp.MustCompile(`/agreements(\?.*)?$`)
)

// =============================================================================
// Create, edit, delete
// =============================================================================

// CreateAgreementWithRandomData clicks "Create agreement" on the listing,
// fills the form with random data and saves. It waits for the preview and
// checks the heading shows the new name.
func CreateAgreementWithRandomData(t *testing.T, page playwright.Page) agreements.CreateParams {
	t.Helper()

	click(t, page, AgreementPage.CreateAgreementButton)
	WaitForSelector(t, page, AgreementPage.AgreementNameInput)

	data := RandomAgreement()
	fillForm(t, page, data)
	click(t, page, AgreementPage.SaveAgreementButton)

	WaitForURL(t, page, previewURL)
	if got := TextOf(t, page, AgreementPage.AgreementNameDisplay); got != data.Name {
		t.Fatalf("preview heading = %q, want %q", got, data.Name)
	}
	return data
}

// EditAgreementWithRandomData replaces every field of the previewed agreement.
// Must be called on a preview page.
func EditAgreementWithRandomData(t *testing.T, page playwright.Page) agreements.CreateParams {
	t.Helper()

	click(t, page, AgreementPage.EditAgreementButton)
	WaitForSelector(t, page, AgreementPage.AgreementNameInput)

	data := RandomAgreement()
	fillForm(t, page, data)
	click(t, page, AgreementPage.SaveAgreementButton)

	WaitForURL(t, page, previewURL)
	if got := TextOf(t, page, AgreementPage.AgreementNameDisplay); got != data.Name {
		t.Fatalf("preview heading after edit = %q, want %q", got, data.Name)
	}
	return data
}

// fillForm replaces the contents of all six form fields.
func fillForm(t *testing.T, page playwright.Page, data agreements.CreateParams) {
	t.Helper()

	fields := []struct {
		selector string
		value    string
	}{
		{AgreementPage.AgreementNameInput, data.Name},
		{AgreementPage.AgreementDateInput, data.Date},
		{AgreementPage.AgreementNotesTextarea, data.Notes},
		{AgreementPage.ResponsiblePartyInput, data.ResponsibleParty},
		{AgreementPage.MaintenanceOwnerResponsibilityInput, data.MaintenanceOwnerResponsibility},
		{AgreementPage.MaintenanceReasoningInput, data.MaintenanceReasoning},
	}
	for _, f := range fields {
		if err := page.Locator(f.selector).Fill(f.value); err != nil {
			t.Fatalf("Failed to fill %s: %v", f.selector, err)
		}
	}
}

// DeleteAgreementWithConfirmation deletes the previewed agreement through the
// confirmation dialog and waits for the listing.
func DeleteAgreementWithConfirmation(t *testing.T, page playwright.Page) {
	t.Helper()

	click(t, page, AgreementPage.DeleteAgreementButton)
	WaitForSelector(t, page, AgreementPage.DeleteConfirmButton)
	click(t, page, AgreementPage.DeleteConfirmButton)
	WaitForURL(t, page, listURL)
}

// DeleteAgreementWithCancellation opens the delete dialog and cancels it. The
// preview must still be usable afterwards.
func DeleteAgreementWithCancellation(t *testing.T, page playwright.Page) {
	t.Helper()

	click(t, page, AgreementPage.DeleteAgreementButton)
	WaitForSelector(t, page, AgreementPage.DeleteCancelButton)
	click(t, page, AgreementPage.DeleteCancelButton)

	err := page.Locator(AgreementPage.DeleteDialog).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(browserMaxTimeoutMS),
	})
	if err != nil {
		t.Fatalf("delete dialog stayed open after cancel: %v", err)
	}
	WaitForSelector(t, page, AgreementPage.EditAgreementButton)
}

// =============================================================================
// Navigation
// =============================================================================

// NavigateToFirstAgreementPreview opens the first visible row and returns the
// name it clicked.
func NavigateToFirstAgreementPreview(t *testing.T, page playwright.Page) string {
	t.Helper()

	link := WaitForSelector(t, page, AgreementPage.FirstAgreementLink)
	name, err := link.TextContent()
	if err != nil {
		t.Fatalf("Failed to read first agreement name: %v", err)
	}
	if err := link.Click(); err != nil {
		t.Fatalf("Failed to open first agreement: %v", err)
	}
	WaitForURL(t, page, previewURL)
	return strings.TrimSpace(name)
}

// NavigateBack uses the preview's back button to return to the listing.
func NavigateBack(t *testing.T, page playwright.Page) {
	t.Helper()

	click(t, page, AgreementPage.BackButton)
	WaitForURL(t, page, listURL)
	WaitForSelector(t, page, AgreementPage.SearchInput)
}

// =============================================================================
// Sort
// =============================================================================

// OpenSortByDropdown opens the sort menu and waits for it to show.
func OpenSortByDropdown(t *testing.T, page playwright.Page) {
	t.Helper()

	click(t, page, AgreementPage.SortByButton)
	WaitForSelector(t, page, AgreementPage.SortMenu)
}

func SortByAgreementName(t *testing.T, page playwright.Page) {
	t.Helper()
	sortBy(t, page, AgreementPage.SortByAgreementName, agreements.SortName)
}

func SortByLastModified(t *testing.T, page playwright.Page) {
	t.Helper()
	sortBy(t, page, AgreementPage.SortByLastModified, agreements.SortLastModified)
}

func SortByAgreementID(t *testing.T, page playwright.Page) {
	t.Helper()
	sortBy(t, page, AgreementPage.SortByAgreementID, agreements.SortID)
}

func sortBy(t *testing.T, page playwright.Page, option string, key agreements.Sort) {
	t.Helper()

	OpenSortByDropdown(t, page)
	click(t, page, option)
	WaitForURL(t, page, regexp.MustCompile(`[?&]sort=`+regexp.QuoteMeta(string(key))+`(&|$)`))
	WaitForSelector(t, page, AgreementPage.SearchInput)
}

// =============================================================================
// Search
// =============================================================================

// SearchAgreements replaces the search box contents with term.
func SearchAgreements(t *testing.T, page playwright.Page, term string) {
	t.Helper()

	if err := page.Locator(AgreementPage.SearchInput).Fill(term); err != nil {
		t.Fatalf("Failed to type search term %q: %v", term, err)
	}
}

// ClearSearch empties the search box.
func ClearSearch(t *testing.T, page playwright.Page) {
	t.Helper()
	SearchAgreements(t, page, "")
}

// VisibleRowCount returns how many listing rows are shown right now.
func VisibleRowCount(t *testing.T, page playwright.Page) int {
	t.Helper()

	n, err := page.Locator(AgreementPage.VisibleRows).Count()
	if err != nil {
		t.Fatalf("Failed to count visible rows: %v", err)
	}
	return n
}

// WaitForRowCount polls until exactly want rows are visible.
func WaitForRowCount(t *testing.T, page playwright.Page, want int) {
	t.Helper()

	deadline := time.Now().Add(browserMaxTimeout)
	for {
		got := VisibleRowCount(t, page)
		if got == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("visible rows = %d, want %d", got, want)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// WaitForAtLeastRows polls until at least atLeast rows are visible.
func WaitForAtLeastRows(t *testing.T, page playwright.Page, atLeast int) int {
	t.Helper()

	deadline := time.Now().Add(browserMaxTimeout)
	for {
		got := VisibleRowCount(t, page)
		if got >= atLeast {
			return got
		}
		if time.Now().After(deadline) {
			t.Fatalf("visible rows = %d, want at least %d", got, atLeast)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// CreateAgreements creates n random agreements through the UI and returns to
// the listing after each one.
func CreateAgreements(t *testing.T, page playwright.Page, n int) []agreements.CreateParams {
	t.Helper()

	created := make([]agreements.CreateParams, 0, n)
	for range n {
		created = append(created, CreateAgreementWithRandomData(t, page))
		NavigateBack(t, page)
	}
	return created
}

func click(t *testing.T, page playwright.Page, selector string) {
	t.Helper()

	if err := WaitForSelector(t, page, selector).Click(); err != nil {
		t.Fatalf("Failed to click %s: %v", selector, err)
	}
}
