// Package models defines the core domain entities: raw and canonical
// listings, verdicts, and trend records.
package models

import (
	"errors"
	"time"
)

// Category is the product/posting category assigned by the categorizer.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryFashion     Category = "fashion"
	CategoryBeauty      Category = "beauty"
	CategorySports      Category = "sports"
	CategoryHomeKitchen Category = "home_kitchen"
	CategoryBooks       Category = "books"
	CategoryGeneral     Category = "general"
)

// Trend is the direction of change between the two most recent tracked
// value samples for an identity.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
	TrendUnknown    Trend = "unknown"
)

// Decision is the accept/hold classification of a verdict.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionHold   Decision = "hold"
)

// State is the lifecycle state of an admitted listing. A listing moves
// from active to expired exactly once and never back.
type State string

const (
	StateActive  State = "active"
	StateExpired State = "expired"
)

// RawListing is the loose, source-specific record handed over by a
// source adapter. No field is guaranteed to be present.
type RawListing struct {
	Source      string   `json:"source"`
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	Location    string   `json:"location,omitempty"`
	RawPrice    string   `json:"price,omitempty"`
	Discount    float64  `json:"discount_percent,omitempty"`
	RawRating   string   `json:"rating,omitempty"`
	Link        string   `json:"link"`
	RawPostedAt string   `json:"posted_at,omitempty"`
	RawDeadline string   `json:"deadline,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	LimitedTime bool     `json:"limited_time,omitempty"`
}

// Verdict is the decision engine's output for one listing instance.
// It is immutable once produced; a re-fetch of the same identity gets a
// fresh Verdict.
type Verdict struct {
	Decision   Decision  `json:"decision"`
	Confidence int       `json:"confidence"`
	Reason     string    `json:"reason"`
	Category   Category  `json:"category"`
	Trend      Trend     `json:"trend"`
	DecidedAt  time.Time `json:"decided_at"`
}

// Listing is the canonical record flowing through the pipeline.
// Price is nil when unparsable; zero would corrupt threshold
// comparisons downstream.
type Listing struct {
	IdentityKey  string     `json:"identity_key"`
	AdmissionID  string     `json:"admission_id,omitempty"`
	Title        string     `json:"title"`
	Company      string     `json:"company,omitempty"`
	Location     string     `json:"location,omitempty"`
	Source       string     `json:"source"`
	Category     Category   `json:"category"`
	Price        *float64   `json:"price,omitempty"`
	Discount     float64    `json:"discount_percent"`
	Rating       float64    `json:"rating"`
	Link         string     `json:"link"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	LimitedTime  bool       `json:"limited_time,omitempty"`
	DiscoveredAt time.Time  `json:"discovered_at"`
	ExpiresAt    time.Time  `json:"expires_at,omitempty"`
	Verdict      *Verdict   `json:"verdict,omitempty"`
}

// Validate checks listing field constraints.
func (l *Listing) Validate() error {
	if l.IdentityKey == "" {
		return errors.New("identity key must not be empty")
	}
	if l.Title == "" {
		return errors.New("listing title must not be empty")
	}
	if l.Link == "" {
		return errors.New("listing link must not be empty")
	}
	if l.Source == "" {
		return errors.New("listing source must not be empty")
	}
	if l.Discount < 0 || l.Discount > 100 {
		return errors.New("discount percent must be between 0 and 100")
	}
	if l.Rating < 0 || l.Rating > 5 {
		return errors.New("rating must be between 0.0 and 5.0")
	}
	if l.Price != nil && *l.Price < 0 {
		return errors.New("price must not be negative")
	}
	if l.DiscoveredAt.IsZero() {
		return errors.New("discovered at must be set")
	}
	if !l.ExpiresAt.IsZero() && l.ExpiresAt.Before(l.DiscoveredAt) {
		return errors.New("expires at must not precede discovered at")
	}
	if l.Verdict != nil {
		if l.Verdict.Confidence < 0 || l.Verdict.Confidence > 100 {
			return errors.New("verdict confidence must be between 0 and 100")
		}
		if l.Verdict.Decision != DecisionAccept && l.Verdict.Decision != DecisionHold {
			return errors.New("verdict decision must be accept or hold")
		}
	}
	return nil
}
