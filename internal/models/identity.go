package models

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"
)

// NormalizeTitle lowercases a title and collapses internal whitespace so
// cosmetic differences between fetches of the same listing do not
// produce distinct identities.
func NormalizeTitle(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(title)), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// IdentityKey derives the stable cross-cycle identity of a listing from
// its normalized title, source, and a source-specific secondary
// discriminator (company for job boards, link for deal feeds).
func IdentityKey(title, source, secondary string) string {
	composite := NormalizeTitle(title) + "|" + strings.ToLower(strings.TrimSpace(source)) +
		"|" + strings.ToLower(strings.TrimSpace(secondary))
	sum := sha256.Sum256([]byte(composite))
	return fmt.Sprintf("%x", sum)
}
