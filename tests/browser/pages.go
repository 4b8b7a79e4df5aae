package browser

// AgreementPage holds the selectors of the agreements UI, one place for every
// element the tests touch.
var AgreementPage = struct {
	// Listing
	CreateAgreementButton string
	SearchInput           string
	SortByButton          string
	SortMenu              string
	SortByLastModified    string
	SortByAgreementName   string
	SortByAgreementID     string
	AgreementTable        string
	VisibleRows           string
	FirstAgreementLink    string
	NoResults             string

	// Create and edit form
	AgreementNameInput                  string
	AgreementDateInput                  string
	AgreementNotesTextarea              string
	ResponsiblePartyInput               string
	MaintenanceOwnerResponsibilityInput string
	MaintenanceReasoningInput           string
	CancelAgreementButton               string
	SaveAgreementButton                 string

	// Preview
	BackButton             string
	EditAgreementButton    string
	DeleteAgreementButton  string
	AgreementNameDisplay   string
	AgreementIDDisplay     string
	AgreementNotesRendered string
	DeleteDialog           string
	DeleteCancelButton     string
	DeleteConfirmButton    string
}{
	CreateAgreementButton: "#create-agreement",
	SearchInput:           "#search-input",
	SortByButton:          "#sort-by-button",
	SortMenu:              "#sort-menu",
	SortByLastModified:    "#sort-last-modified",
	SortByAgreementName:   "#sort-agreement-name",
	SortByAgreementID:     "#sort-agreement-id",
	AgreementTable:        "#agreements-table",
	VisibleRows:           "#agreements-table tbody tr:visible",
	FirstAgreementLink:    "#agreements-table tbody tr:visible td:nth-child(1) button",
	NoResults:             "#no-results",

	AgreementNameInput:                  "#agreement-name-input",
	AgreementDateInput:                  "#agreement-date-input",
	AgreementNotesTextarea:              "#agreement-notes",
	ResponsiblePartyInput:               "#responsible-party",
	MaintenanceOwnerResponsibilityInput: "#maintenance-owner-responsibility",
	MaintenanceReasoningInput:           "#maintenance-reasoning",
	CancelAgreementButton:               "#cancel-agreement",
	SaveAgreementButton:                 "#save-agreement",

	BackButton:             "#back-button",
	EditAgreementButton:    "#edit-agreement",
	DeleteAgreementButton:  "#delete-agreement",
	AgreementNameDisplay:   "#agreement-name",
	AgreementIDDisplay:     "#agreement-id",
	AgreementNotesRendered: "#agreement-notes-rendered",
	DeleteDialog:           "#delete-dialog",
	DeleteCancelButton:     "#delete-cancel",
	DeleteConfirmButton:    "#delete-confirm",
}
