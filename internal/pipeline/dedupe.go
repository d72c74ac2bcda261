package pipeline

import (
	"dealhawk/internal/models"
)

// Dedupe removes within-batch repeats by identity key. The first
// occurrence in input order wins; later occurrences are dropped, not
// merged. Cross-cycle repeat suppression belongs to the lifecycle
// manager.
func Dedupe(listings []models.Listing) []models.Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if _, dup := seen[l.IdentityKey]; dup {
			continue
		}
		seen[l.IdentityKey] = struct{}{}
		out = append(out, l)
	}
	return out
}
