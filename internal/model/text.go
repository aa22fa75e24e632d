package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText canonicalizes topic text arriving from the store or from
// user input: NFC so visually identical strings compare equal regardless
// of which client composed them, and trimmed of surrounding whitespace.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
