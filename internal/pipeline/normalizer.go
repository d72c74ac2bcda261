// Package pipeline implements the per-cycle batch stages: normalization,
// relevance filtering, deduplication, categorization, and the
// orchestration that feeds decided listings into the lifecycle manager.
package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"dealhawk/internal/models"
)

var (
	// digitRunRegexp captures the first contiguous digit run of a price
	digitRunRegexp = regexp.MustCompile(`\d+`)
	// ratingRegexp captures a numeric rating in the 0.0–5.0 range
	ratingRegexp = regexp.MustCompile(`\b([0-5](?:\.\d{1,2})?)\b`)
	// relativeTimeRegexp captures "N hours/days/weeks ago" phrases
	relativeTimeRegexp = regexp.MustCompile(`(?i)^(\d+)\s*(minute|hour|day|week|month)s?\s+ago$`)

	currencyStripper = strings.NewReplacer("₹", "", "$", "", "€", "", "£", "", ",", "", ".", "", "\n", " ")

	absoluteLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"Jan 2, 2006",
		"2 Jan 2006",
	}
)

// Normalize maps one loose source record into a canonical Listing.
// Returns false only when no usable title or link can be derived;
// unparsable secondary fields degrade to neutral values instead.
func Normalize(raw models.RawListing, now time.Time) (models.Listing, bool) {
	title := normalizeText(raw.Title)
	link := strings.TrimSpace(raw.Link)
	if title == "" || link == "" {
		return models.Listing{}, false
	}

	secondary := strings.TrimSpace(raw.Company)
	if secondary == "" {
		secondary = link
	}

	discount := raw.Discount
	if discount < 0 {
		discount = 0
	}
	if discount > 100 {
		discount = 100
	}

	l := models.Listing{
		IdentityKey:  models.IdentityKey(title, raw.Source, secondary),
		Title:        title,
		Company:      normalizeText(raw.Company),
		Location:     normalizeText(raw.Location),
		Source:       strings.ToLower(strings.TrimSpace(raw.Source)),
		Price:        ParsePrice(raw.RawPrice),
		Discount:     discount,
		Rating:       ParseRating(raw.RawRating),
		Link:         link,
		PostedAt:     ParseWhen(raw.RawPostedAt, now),
		Deadline:     ParseWhen(raw.RawDeadline, now),
		Tags:         normalizeTags(raw.Tags),
		LimitedTime:  raw.LimitedTime,
		DiscoveredAt: now,
	}
	return l, true
}

// ParsePrice extracts a numeric price from strings like "₹2,999" or
// "$1200 only". Comma and dot separators are dropped before the digit
// run is read, so "₹12.99" is 1299. Unparsable input yields nil, never
// zero: zero would corrupt threshold comparisons downstream.
func ParsePrice(raw string) *float64 {
	cleaned := currencyStripper.Replace(raw)
	match := digitRunRegexp.FindString(cleaned)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseRating extracts a 0.0–5.0 rating from strings like
// "4.2 out of 5". Unparsable input yields 0.
func ParseRating(raw string) float64 {
	match := ratingRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return 0
	}
	v, err := strconv.ParseFloat(match[1], 64)
	if err != nil || v < 0 || v > 5 {
		return 0
	}
	return v
}

// ParseWhen accepts absolute timestamps and relative phrases ("today",
// "3 days ago"). Unparsable dates are unknown, not failures: the
// listing still flows with a nil timestamp.
func ParseWhen(raw string, now time.Time) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	switch strings.ToLower(s) {
	case "today", "just now":
		t := now
		return &t
	case "yesterday":
		t := now.AddDate(0, 0, -1)
		return &t
	}

	if m := relativeTimeRegexp.FindStringSubmatch(s); len(m) == 3 {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		var t time.Time
		switch strings.ToLower(m[2]) {
		case "minute":
			t = now.Add(-time.Duration(n) * time.Minute)
		case "hour":
			t = now.Add(-time.Duration(n) * time.Hour)
		case "day":
			t = now.AddDate(0, 0, -n)
		case "week":
			t = now.AddDate(0, 0, -7*n)
		case "month":
			t = now.AddDate(0, -n, 0)
		}
		return &t
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// normalizeText strips leading/trailing whitespace and collapses
// internal whitespace.
func normalizeText(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := normalizeText(tag); t != "" {
			out = append(out, t)
		}
	}
	return out
}
