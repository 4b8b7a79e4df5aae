package searchterm

import (
	"strings"
	"unicode/utf8"
)

// FallbackLength is how many characters of the first item are used when no
// longer shared prefix exists.
const FallbackLength = 3

// CommonPrefix returns the longest leading substring shared by every item.
//
// A single item yields only its first FallbackLength characters, and inputs
// whose items share nothing fall back to the same truncation of the first
// item rather than the empty string. An empty first item therefore yields "".
func CommonPrefix(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return Partial(items[0], FallbackLength)
	}

	prefix := items[0]
	for _, item := range items[1:] {
		for !strings.HasPrefix(item, prefix) {
			prefix = dropLastRune(prefix)
			if prefix == "" {
				return Partial(items[0], FallbackLength)
			}
		}
	}

	if prefix == "" {
		return Partial(items[0], FallbackLength)
	}
	return prefix
}

// Partial returns the first min(n, length) characters of s.
func Partial(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func dropLastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
