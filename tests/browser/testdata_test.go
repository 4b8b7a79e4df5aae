package browser

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kuitang/agreements-e2e/internal/agreements"
)

// These run without a browser.

func TestRandomAgreement_Formats(t *testing.T) {
	patterns := map[string]*regexp.Regexp{
		"name":      regexp.MustCompile(`^Agreement Name [0-9a-z]{8}$`),
		"date":      regexp.MustCompile(`^(0[1-9]|1[0-2])/(0[1-9]|1[0-9]|2[0-8])/\d\d$`),
		"notes":     regexp.MustCompile(`^((notes|comment|detail|info|remark|memo) ){2,5}[0-9a-z]{8}$`),
		"party":     regexp.MustCompile(`^Responsible Party [0-9a-z]{8}$`),
		"owner":     regexp.MustCompile(`^Maintenance owner responsibility [0-9a-z]{8}$`),
		"reasoning": regexp.MustCompile(`^Maintenance reasoning [0-9a-z]{8}$`),
	}

	for range 500 {
		a := RandomAgreement()
		values := map[string]string{
			"name":      a.Name,
			"date":      a.Date,
			"notes":     a.Notes,
			"party":     a.ResponsibleParty,
			"owner":     a.MaintenanceOwnerResponsibility,
			"reasoning": a.MaintenanceReasoning,
		}
		for field, re := range patterns {
			if !re.MatchString(values[field]) {
				t.Fatalf("%s %q does not match %s", field, values[field], re)
			}
		}
	}
}

func TestRandomAgreementDate_ParsesInRange(t *testing.T) {
	for range 500 {
		d := RandomAgreementDate()
		parsed, err := time.Parse(agreements.DateLayout, d)
		if err != nil {
			t.Fatalf("date %q does not parse: %v", d, err)
		}
		if y := parsed.Year(); y < 1995 || y > 2024 {
			t.Fatalf("date %q out of range: year %d", d, y)
		}
	}
}

func TestRandomID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := randomID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if strings.Trim(id, randomIDAlphabet) != "" {
			t.Fatalf("id %q has characters outside base 36", id)
		}
	}
}
