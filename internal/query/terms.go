package query

import (
	"strings"
	"unicode"
)

// stopwords never narrow a match; they are dropped before matching.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about above after all also an and any are as at be been before being
		between both but by can could did do does each either every for from had
		has have he her his how i if in into is it its may might more most must
		no nor not of on only or other our out over own per same shall she should
		so such than that the their them then there these they this those through
		to under until upon very was we were what when where which while who whom
		why will with within without would you your`) {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether w is ignored when matching.
func IsStopword(w string) bool {
	_, ok := stopwords[strings.ToLower(w)]
	return ok
}

// Words splits s into lower-case runs of letters and digits.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Terms returns the distinct non-stopword words of q in order, at most max.
func Terms(q string, max int) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0)
	for _, w := range Words(q) {
		if IsStopword(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
		if max > 0 && len(terms) == max {
			break
		}
	}
	return terms
}

// matchesAll reports whether every term is a prefix of some word of text.
func matchesAll(text string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	words := Words(text)
	for _, term := range terms {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
