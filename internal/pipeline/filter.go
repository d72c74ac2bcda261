package pipeline

import (
	"strings"

	"dealhawk/internal/models"
)

// Relevant reports whether any allowlist term appears, case-insensitively,
// in the listing's title or tags. An empty allowlist keeps everything.
func Relevant(l models.Listing, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}
	text := strings.ToLower(l.Title + " " + strings.Join(l.Tags, " "))
	for _, term := range allowlist {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
