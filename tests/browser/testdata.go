package browser

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/kuitang/agreements-e2e/internal/agreements"
)

const randomIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var noteWords = []string{"notes", "comment", "detail", "info", "remark", "memo"}

// randomID returns 8 random base-36 characters.
func randomID() string {
	var b strings.Builder
	for range 8 {
		b.WriteByte(randomIDAlphabet[rand.IntN(len(randomIDAlphabet))])
	}
	return b.String()
}

// RandomAgreementName returns e.g. "Agreement Name a1b2c3d4".
func RandomAgreementName() string {
	return "Agreement Name " + randomID()
}

// RandomAgreementDate returns an MM/DD/YY date between 1995 and 2024.
// Days stop at 28 so every month is valid.
func RandomAgreementDate() string {
	year := (95 + rand.IntN(30)) % 100
	month := 1 + rand.IntN(12)
	day := 1 + rand.IntN(28)
	return fmt.Sprintf("%02d/%02d/%02d", month, day, year)
}

// RandomAgreementNotes returns two to five note words followed by a random id.
func RandomAgreementNotes() string {
	count := 2 + rand.IntN(4)
	parts := make([]string, 0, count+1)
	for range count {
		parts = append(parts, noteWords[rand.IntN(len(noteWords))])
	}
	return strings.Join(append(parts, randomID()), " ")
}

func RandomResponsibleParty() string {
	return "Responsible Party " + randomID()
}

func RandomMaintenanceOwnerResponsibility() string {
	return "Maintenance owner responsibility " + randomID()
}

func RandomMaintenanceReasoning() string {
	return "Maintenance reasoning " + randomID()
}

// RandomAgreement fills every form field with fresh random data.
func RandomAgreement() agreements.CreateParams {
	return agreements.CreateParams{
		Name:                           RandomAgreementName(),
		Date:                           RandomAgreementDate(),
		Notes:                          RandomAgreementNotes(),
		ResponsibleParty:               RandomResponsibleParty(),
		MaintenanceOwnerResponsibility: RandomMaintenanceOwnerResponsibility(),
		MaintenanceReasoning:           RandomMaintenanceReasoning(),
	}
}
