// Package normalize canonicalizes user-supplied names before they are stored
// or compared, so uniqueness holds for visually identical strings.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Name returns s in NFC form with surrounding whitespace trimmed and internal
// whitespace runs collapsed to a single space. Case is preserved.
//
//	"  Café   Deals " -> "Café Deals"
func Name(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Username is Name with control characters removed.
func Username(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return Name(s)
}

// SearchKey folds s for case-insensitive matching: NFKD, combining marks dropped, lowercased.
//
//	"Café" -> "cafe"
func SearchKey(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return Name(s)
}
