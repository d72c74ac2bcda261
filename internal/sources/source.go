// Package sources contains the per-site listing adapters. Adapters are
// thin I/O wrappers: they fetch, decode, and hand back loose RawListing
// records. Anything smarter happens downstream.
package sources

import (
	"context"
	"time"

	"dealhawk/internal/models"
)

// Adapter fetches raw listings from one source. Implementations must
// honor ctx cancellation and enforce their own request timeout; a
// failing adapter returns an error and the aggregator degrades it to
// zero listings for the cycle.
type Adapter interface {
	Fetch(ctx context.Context, keywords []string, since time.Time) ([]models.RawListing, error)
	Name() string
}
