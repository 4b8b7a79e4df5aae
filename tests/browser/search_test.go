package browser

import (
	"strings"
	"testing"
	"time"

	"github.com/kuitang/agreements-e2e/internal/agreements"
	"github.com/kuitang/agreements-e2e/internal/searchterm"
)

// assertAllVisibleContain checks that every value contains term, ignoring
// case like the search box does.
func assertAllVisibleContain(t *testing.T, values []string, term string) {
	t.Helper()

	needle := strings.ToLower(term)
	for _, v := range values {
		if !strings.Contains(strings.ToLower(v), needle) {
			t.Fatalf("visible value %q does not contain search term %q", v, term)
		}
	}
}

func TestBrowser_SearchByID(t *testing.T) {
	t.Run("TC-SEARCH01 dynamic search by extracted ID prefix", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)
		WaitForAtLeastRows(t, page, 2)

		d := SearchByExtractedID(t, page)

		if !d.OK || !strings.HasPrefix(d.Term, agreements.IDPrefix) {
			t.Fatalf("ID prefix = %q, want it to start with %q", d.Term, agreements.IDPrefix)
		}
		WaitForRowCount(t, page, 2)
		assertAllVisibleContain(t, ExtractAgreementIDs(t, page), d.Term)
	})

	t.Run("TC-SEARCH02 exact extracted ID", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 1)

		ids := ExtractAgreementIDs(t, page)
		if len(ids) == 0 {
			t.Fatal("no IDs listed")
		}
		SearchAgreements(t, page, ids[0])

		WaitForRowCount(t, page, 1)
	})

	t.Run("TC-SEARCH03 partial extracted ID", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)

		ids := ExtractAgreementIDs(t, page)
		partial := searchterm.Partial(ids[0], 4)
		SearchAgreements(t, page, partial)

		WaitForAtLeastRows(t, page, 1)
		assertAllVisibleContain(t, ExtractAgreementIDs(t, page), partial)
	})
}

func TestBrowser_SearchByName(t *testing.T) {
	t.Run("TC-SEARCH04 dynamic search by extracted name prefix", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)
		WaitForAtLeastRows(t, page, 2)

		d := SearchByExtractedName(t, page)

		if !strings.HasPrefix(d.Term, "Agreement Name ") {
			t.Fatalf("name prefix = %q, want the shared %q", d.Term, "Agreement Name ")
		}
		WaitForRowCount(t, page, 2)
	})

	t.Run("TC-SEARCH05 exact extracted name", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)

		names := ExtractAgreementNames(t, page)
		SearchAgreements(t, page, names[0])

		WaitForRowCount(t, page, 1)
		if got := ExtractAgreementNames(t, page); got[0] != names[0] {
			t.Fatalf("exact search shows %q, want %q", got, names[0])
		}
	})

	t.Run("TC-SEARCH06 partial extracted name", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)

		names := ExtractAgreementNames(t, page)
		partial := searchterm.Partial(names[0], 8)
		SearchAgreements(t, page, partial)

		WaitForAtLeastRows(t, page, 1)
		assertAllVisibleContain(t, ExtractAgreementNames(t, page), partial)
	})
}

func TestBrowser_SearchByDate(t *testing.T) {
	t.Run("TC-SEARCH07 dynamic search by extracted date", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 1)

		d := SearchByExtractedDate(t, page)

		if d.Strategy != searchterm.StrategyFirstValue || d.Term != d.Values[0] {
			t.Fatalf("date derivation = %+v, want the first value verbatim", d)
		}
		WaitForAtLeastRows(t, page, 1)
		assertAllVisibleContain(t, ExtractLastModifiedDates(t, page), d.Term)
	})

	t.Run("TC-SEARCH08 today's date", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 1)

		SearchAgreements(t, page, time.Now().UTC().Format(agreements.ListDateLayout))

		WaitForRowCount(t, page, 1)
	})

	t.Run("TC-SEARCH09 every distinct extracted date", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)

		seen := make(map[string]bool)
		for _, date := range ExtractLastModifiedDates(t, page) {
			if seen[date] {
				continue
			}
			seen[date] = true

			SearchAgreements(t, page, date)
			WaitForAtLeastRows(t, page, 1)
			assertAllVisibleContain(t, ExtractLastModifiedDates(t, page), date)
			ClearSearch(t, page)
		}
		if len(seen) == 0 {
			t.Fatal("no dates listed")
		}
	})
}

func TestBrowser_SearchCombined(t *testing.T) {
	t.Run("TC-SEARCH10 search by every extracted column", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)
		initial := WaitForAtLeastRows(t, page, 2)

		SearchByExtractedID(t, page)
		WaitForRowCount(t, page, initial)
		ClearSearch(t, page)

		SearchByExtractedName(t, page)
		WaitForRowCount(t, page, initial)
		ClearSearch(t, page)

		SearchByExtractedDate(t, page)
		WaitForAtLeastRows(t, page, 1)
	})

	t.Run("TC-SEARCH11 filtered count then clear", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)
		initial := WaitForAtLeastRows(t, page, 2)

		ids := ExtractAgreementIDs(t, page)
		SearchAgreements(t, page, ids[0])
		WaitForRowCount(t, page, 1)

		ClearSearch(t, page)
		WaitForRowCount(t, page, initial)
	})

	t.Run("TC-SEARCH12 no results", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 1)

		SearchAgreements(t, page, "NONEXISTENT_TERM_XYZ_12345")

		WaitForRowCount(t, page, 0)
		WaitForSelector(t, page, AgreementPage.NoResults)
	})

	t.Run("TC-SEARCH13 search ignores case", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)

		name := ExtractAgreementNames(t, page)[0]

		SearchAgreements(t, page, strings.ToLower(name))
		lower := WaitForAtLeastRows(t, page, 1)
		ClearSearch(t, page)

		SearchAgreements(t, page, strings.ToUpper(name))
		WaitForRowCount(t, page, lower)
	})

	t.Run("TC-SEARCH14 sequential searches", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 3)
		WaitForAtLeastRows(t, page, 3)

		ids := ExtractAgreementIDs(t, page)
		names := ExtractAgreementNames(t, page)

		for _, term := range []string{ids[0], names[0], ids[1]} {
			SearchAgreements(t, page, term)
			WaitForRowCount(t, page, 1)
		}
	})

	t.Run("server-side query pre-fills the search box", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 2)
		names := ExtractAgreementNames(t, page)

		Navigate(t, page, env.BaseURL, "/agreements?q="+strings.ReplaceAll(names[0], " ", "+"))

		WaitForRowCount(t, page, 1)
		value, err := page.Locator(AgreementPage.SearchInput).InputValue()
		if err != nil {
			t.Fatalf("read search box: %v", err)
		}
		if value != names[0] {
			t.Fatalf("search box = %q, want %q", value, names[0])
		}
	})
}
