package models

import (
	"time"
)

// TrendSample is one observed (value, timestamp, discount) point for an
// identity.
type TrendSample struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Discount  float64   `json:"discount"`
}

// TrendRecord holds the bounded, oldest-first value series for one
// listing identity. Owned exclusively by the trend tracker.
type TrendRecord struct {
	IdentityKey string        `json:"identity_key"`
	Title       string        `json:"title"`
	Samples     []TrendSample `json:"samples"`
	FirstSeen   time.Time     `json:"first_seen"`
	LastUpdated time.Time     `json:"last_updated"`
}

// Direction compares the two most recent samples. Fewer than two
// samples means the trend is unknown.
func (r *TrendRecord) Direction() Trend {
	if r == nil || len(r.Samples) < 2 {
		return TrendUnknown
	}
	latest := r.Samples[len(r.Samples)-1].Value
	previous := r.Samples[len(r.Samples)-2].Value
	switch {
	case latest < previous:
		return TrendDecreasing
	case latest > previous:
		return TrendIncreasing
	default:
		return TrendStable
	}
}
