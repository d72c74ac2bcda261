// Package trends maintains the bounded per-identity value series that
// gives the decision engine its price-trend context.
package trends

import (
	"math"
	"time"

	"dealhawk/internal/logger"
	"dealhawk/internal/models"
	"dealhawk/internal/storage"
)

// Tracker owns all TrendRecords. Series are loaded from storage at
// startup and flushed after every cycle; each series is capped at the
// configured capacity with oldest-first eviction.
type Tracker struct {
	store    *storage.Storage
	records  map[string]*models.TrendRecord
	capacity int
}

// Move describes a significant value change between an identity's two
// most recent samples.
type Move struct {
	IdentityKey string
	Title       string
	Previous    float64
	Current     float64
	ChangePct   float64
}

// New creates a Tracker backed by the given storage, loading any
// persisted series.
func New(store *storage.Storage, capacity int) *Tracker {
	t := &Tracker{
		store:    store,
		records:  make(map[string]*models.TrendRecord),
		capacity: capacity,
	}

	persisted, err := store.LoadTrendRecords()
	if err != nil {
		logger.Warn("Failed to load persisted trend series: %v", err)
	} else {
		t.records = persisted
		logger.Info("Loaded %d persisted trend series", len(persisted))
	}

	return t
}

// Update appends one observed sample for the identity. A nil value is
// a no-op: decisions without a parsed price record nothing.
func (t *Tracker) Update(identity, title string, value *float64, discount float64, now time.Time) {
	if value == nil {
		return
	}

	rec, ok := t.records[identity]
	if !ok {
		rec = &models.TrendRecord{
			IdentityKey: identity,
			Title:       title,
			FirstSeen:   now,
		}
		t.records[identity] = rec
	}

	rec.Samples = append(rec.Samples, models.TrendSample{
		Value:     *value,
		Timestamp: now,
		Discount:  discount,
	})
	if len(rec.Samples) > t.capacity {
		rec.Samples = rec.Samples[len(rec.Samples)-t.capacity:]
	}
	rec.LastUpdated = now
}

// TrendOf compares the identity's two most recent samples. Fewer than
// two samples means unknown.
func (t *Tracker) TrendOf(identity string) models.Trend {
	return t.records[identity].Direction()
}

// Record returns the series for one identity, or nil.
func (t *Tracker) Record(identity string) *models.TrendRecord {
	return t.records[identity]
}

// Len returns the number of tracked identities.
func (t *Tracker) Len() int {
	return len(t.records)
}

// MovesSince returns the identities updated at or after since whose two
// latest samples differ by at least thresholdPct percent.
func (t *Tracker) MovesSince(since time.Time, thresholdPct float64) []Move {
	var moves []Move
	for _, rec := range t.records {
		if rec.LastUpdated.Before(since) || len(rec.Samples) < 2 {
			continue
		}
		prev := rec.Samples[len(rec.Samples)-2].Value
		curr := rec.Samples[len(rec.Samples)-1].Value
		if prev <= 0 {
			continue
		}
		changePct := (curr - prev) / prev * 100
		if math.Abs(changePct) < thresholdPct {
			continue
		}
		moves = append(moves, Move{
			IdentityKey: rec.IdentityKey,
			Title:       rec.Title,
			Previous:    prev,
			Current:     curr,
			ChangePct:   changePct,
		})
	}
	return moves
}

// Flush persists the full trend store.
func (t *Tracker) Flush() error {
	return t.store.ReplaceTrendRecords(t.records)
}
