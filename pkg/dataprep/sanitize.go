package dataprep

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"datacleaner/pkg/core"
)

// keptPunctuation is the punctuation SanitizeText leaves in place.
const keptPunctuation = ".,!?-"

// SanitizeText deletes every rune that is not a letter, digit, whitespace or
// one of keptPunctuation, then trims surrounding whitespace. Input is NFC
// normalised first so accented letters written with combining marks survive.
func SanitizeText(s string) string {
	s = norm.NFC.String(s)
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			return r
		case strings.ContainsRune(keptPunctuation, r):
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(cleaned)
}

// RemoveSpecialCharacters sanitises every present cell of every text column.
// It returns the number of cells that changed.
func RemoveSpecialCharacters(t *core.Table) int {
	changed := 0
	for _, c := range t.Columns() {
		if c.Kind != core.Text {
			continue
		}
		for i, ok := range c.Valid {
			if !ok {
				continue
			}
			if s := SanitizeText(c.Strs[i]); s != c.Strs[i] {
				c.Strs[i] = s
				changed++
			}
		}
	}
	return changed
}
