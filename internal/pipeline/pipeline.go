// Package pipeline turns raw source records into decided, admitted
// listings: normalize, filter, dedupe, categorize, decide, admit.
package pipeline

import (
	"time"

	"dealhawk/internal/decision"
	"dealhawk/internal/lifecycle"
	"dealhawk/internal/logger"
	"dealhawk/internal/models"
)

// CycleStats counts what happened to listings during one cycle.
type CycleStats struct {
	Fetched        int
	Normalized     int
	Relevant       int
	Deduped        int
	DeadlinePassed int
	Decided        int
	Admitted       int
	Refreshed      int
	Suppressed     int
	Expired        int
}

// Pipeline wires the processing stages together.
type Pipeline struct {
	allowlist []string
	engine    *decision.Engine
	lifecycle *lifecycle.Manager
}

// New creates a Pipeline. An empty allowlist means every normalized
// listing is considered relevant.
func New(allowlist []string, engine *decision.Engine, lc *lifecycle.Manager) *Pipeline {
	return &Pipeline{
		allowlist: allowlist,
		engine:    engine,
		lifecycle: lc,
	}
}

// Process runs one full cycle over the fetched raw records and returns
// the newly admitted listings, the listings that expired this cycle,
// and stage counters. Expired listings are swept before any admission
// so a deal that lapsed since the previous cycle cannot be refreshed.
func (p *Pipeline) Process(raw []models.RawListing, now time.Time) (admitted, expired []models.Listing, stats CycleStats) {
	stats = CycleStats{Fetched: len(raw)}

	expired = p.lifecycle.Sweep(now)
	stats.Expired = len(expired)

	normalized := make([]models.Listing, 0, len(raw))
	for _, r := range raw {
		l, ok := Normalize(r, now)
		if !ok {
			logger.Debug("Dropped malformed record from %s: %q", r.Source, r.Title)
			continue
		}
		normalized = append(normalized, l)
	}
	stats.Normalized = len(normalized)

	relevant := normalized[:0]
	for _, l := range normalized {
		if Relevant(l, p.allowlist) {
			relevant = append(relevant, l)
		}
	}
	stats.Relevant = len(relevant)

	deduped := Dedupe(relevant)
	stats.Deduped = len(deduped)

	for i := range deduped {
		l := &deduped[i]

		if l.Deadline != nil && l.Deadline.Before(now) {
			stats.DeadlinePassed++
			continue
		}

		l.Category = Categorize(l.Title)
		verdict := p.engine.Decide(l, now)
		l.Verdict = &verdict
		stats.Decided++

		switch p.lifecycle.Admit(l, now) {
		case lifecycle.Admitted:
			stats.Admitted++
			admitted = append(admitted, *l)
		case lifecycle.Refreshed:
			stats.Refreshed++
		case lifecycle.Suppressed:
			stats.Suppressed++
		}
	}

	logger.Info("Cycle processed: %d fetched, %d relevant, %d deduped, %d admitted, %d refreshed, %d expired",
		stats.Fetched, stats.Relevant, stats.Deduped, stats.Admitted, stats.Refreshed, stats.Expired)

	return admitted, expired, stats
}
