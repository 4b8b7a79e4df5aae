package browser

import "testing"

func TestBrowser_Flows(t *testing.T) {
	t.Run("TC-INT01 create edit sort search delete", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)

		CreateAgreementWithRandomData(t, page)
		edited := EditAgreementWithRandomData(t, page)
		NavigateBack(t, page)

		SortByAgreementName(t, page)
		SearchByExtractedName(t, page)
		WaitForRowCount(t, page, 1)
		ClearSearch(t, page)

		if got := NavigateToFirstAgreementPreview(t, page); got != edited.Name {
			t.Fatalf("opened %q, want %q", got, edited.Name)
		}
		DeleteAgreementWithConfirmation(t, page)
		WaitForRowCount(t, page, 0)
	})

	t.Run("TC-INT02 several agreements sorted and searched", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)
		CreateAgreements(t, page, 3)
		WaitForAtLeastRows(t, page, 3)

		SortByAgreementName(t, page)
		SortByLastModified(t, page)
		SortByAgreementID(t, page)

		SearchByExtractedID(t, page)
		WaitForRowCount(t, page, 3)
		ClearSearch(t, page)
		SearchByExtractedName(t, page)
		WaitForRowCount(t, page, 3)
	})

	t.Run("TC-INT03 edit, cancel delete, confirm delete", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)

		CreateAgreementWithRandomData(t, page)
		EditAgreementWithRandomData(t, page)
		DeleteAgreementWithCancellation(t, page)
		DeleteAgreementWithConfirmation(t, page)

		if n := agreementCount(t, env); n != 0 {
			t.Fatalf("agreement survived deletion: count = %d", n)
		}
	})

	t.Run("TC-INT05 navigation between operations", func(t *testing.T) {
		env := SetupBrowserTestEnv(t)
		page := env.OpenAgreements(t)

		CreateAgreementWithRandomData(t, page)
		EditAgreementWithRandomData(t, page)
		NavigateBack(t, page)
		NavigateToFirstAgreementPreview(t, page)
		NavigateBack(t, page)

		SortByAgreementName(t, page)
		SearchAgreements(t, page, "Agreement")
		WaitForRowCount(t, page, 1)
		ClearSearch(t, page)
		WaitForRowCount(t, page, 1)
	})
}
