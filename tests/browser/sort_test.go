package browser

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/agreements-e2e/internal/agreements"
)

// assertListingOrder checks the visible IDs against the server's own order.
func assertListingOrder(t *testing.T, env *BrowserTestEnv, page playwright.Page, sortKey agreements.Sort) {
	t.Helper()

	result, err := env.Server.Agreements.List(context.Background(), agreements.ListParams{Sort: sortKey})
	if err != nil {
		t.Fatalf("list agreements: %v", err)
	}
	want := make([]string, 0, len(result.Agreements))
	for _, a := range result.Agreements {
		want = append(want, a.ID)
	}

	if got := ExtractAgreementIDs(t, page); !slices.Equal(got, want) {
		t.Fatalf("%s order = %q, want %q", sortKey, got, want)
	}
}

func TestBrowser_Sort(t *testing.T) {
	t.Run("TC-SORT01 sort by agreement name", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)
		WaitForAtLeastRows(t, page, 2)

		SortByAgreementName(t, page)

		names := ExtractAgreementNames(t, page)
		if !slices.IsSortedFunc(names, func(a, b string) int {
			return strings.Compare(strings.ToLower(a), strings.ToLower(b))
		}) {
			t.Fatalf("names not sorted: %q", names)
		}
		assertListingOrder(t, env, page, agreements.SortName)
	})

	t.Run("TC-SORT02 sort by last modified", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)
		WaitForAtLeastRows(t, page, 2)

		SortByLastModified(t, page)

		assertListingOrder(t, env, page, agreements.SortLastModified)
	})

	t.Run("TC-SORT03 sort by agreement ID", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)
		WaitForAtLeastRows(t, page, 2)

		SortByAgreementID(t, page)

		if ids := ExtractAgreementIDs(t, page); !slices.IsSorted(ids) {
			t.Fatalf("ids not sorted: %q", ids)
		}
		assertListingOrder(t, env, page, agreements.SortID)
	})

	t.Run("TC-SORT04 all sort options in sequence", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 3)
		WaitForAtLeastRows(t, page, 3)

		steps := []struct {
			sort func(*testing.T, playwright.Page)
			key  agreements.Sort
		}{
			{SortByAgreementName, agreements.SortName},
			{SortByLastModified, agreements.SortLastModified},
			{SortByAgreementID, agreements.SortID},
			{SortByAgreementName, agreements.SortName},
		}
		for _, step := range steps {
			step.sort(t, page)
			WaitForRowCount(t, page, 3)
			assertListingOrder(t, env, page, step.key)
		}
	})

	t.Run("TC-SORT05 sort dropdown opens", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)

		OpenSortByDropdown(t, page)
		for _, option := range []string{
			AgreementPage.SortByLastModified,
			AgreementPage.SortByAgreementName,
			AgreementPage.SortByAgreementID,
		} {
			WaitForSelector(t, page, option)
		}

		// A second click closes it again.
		click(t, page, AgreementPage.SortByButton)
		err := page.Locator(AgreementPage.SortMenu).WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateHidden,
			Timeout: playwright.Float(browserMaxTimeoutMS),
		})
		if err != nil {
			t.Fatalf("sort menu did not close: %v", err)
		}
	})
}
