package pipeline

import (
	"testing"
	"time"

	"dealhawk/internal/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"₹2,999", ptrF(2999)},
		{"$1200 only", ptrF(1200)},
		{"€45", ptrF(45)},
		{"₹12.99", ptrF(1299)},
		{"9159\n.", ptrF(9159)},
		{"1,23,456", ptrF(123456)},
		{"Free", nil},
		{"", nil},
		{"price on request", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParsePrice(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func ptrF(v float64) *float64 { return &v }

func TestParseRating(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"4.2 out of 5", 4.2},
		{"4.2", 4.2},
		{"5", 5},
		{"0", 0},
		{"no rating", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseRating(tt.input); got != tt.want {
				t.Errorf("ParseRating(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseWhen(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  *time.Time
	}{
		{"today", &now},
		{"just now", &now},
		{"yesterday", ptrT(now.AddDate(0, 0, -1))},
		{"3 days ago", ptrT(now.AddDate(0, 0, -3))},
		{"2 hours ago", ptrT(now.Add(-2 * time.Hour))},
		{"1 week ago", ptrT(now.AddDate(0, 0, -7))},
		{"2026-08-15", ptrT(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))},
		{"2026-08-15T10:30:00Z", ptrT(time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC))},
		{"sometime soon", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseWhen(tt.input, now)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseWhen(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("ParseWhen(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func ptrT(t time.Time) *time.Time { return &t }

func TestNormalize(t *testing.T) {
	now := time.Now()

	t.Run("full record", func(t *testing.T) {
		raw := models.RawListing{
			Source:    "DealFeed",
			Title:     "  Nike   Running Shoes  ",
			Company:   "SportsMart",
			RawPrice:  "₹2,999",
			Discount:  45,
			RawRating: "4.4 out of 5",
			Link:      "https://example.com/nike",
			Tags:      []string{" shoes ", ""},
		}

		l, ok := Normalize(raw, now)
		if !ok {
			t.Fatal("Normalize() rejected a valid record")
		}
		if l.Title != "Nike Running Shoes" {
			t.Errorf("Title = %q", l.Title)
		}
		if l.Source != "dealfeed" {
			t.Errorf("Source = %q, want lowercased", l.Source)
		}
		if l.Price == nil || *l.Price != 2999 {
			t.Errorf("Price = %v, want 2999", l.Price)
		}
		if l.Rating != 4.4 {
			t.Errorf("Rating = %v, want 4.4", l.Rating)
		}
		if len(l.Tags) != 1 || l.Tags[0] != "shoes" {
			t.Errorf("Tags = %v, want [shoes]", l.Tags)
		}
		if l.IdentityKey == "" {
			t.Error("IdentityKey not derived")
		}
	})

	t.Run("missing title rejected", func(t *testing.T) {
		if _, ok := Normalize(models.RawListing{Source: "x", Link: "https://example.com"}, now); ok {
			t.Error("Normalize() accepted record without title")
		}
	})

	t.Run("missing link rejected", func(t *testing.T) {
		if _, ok := Normalize(models.RawListing{Source: "x", Title: "Deal"}, now); ok {
			t.Error("Normalize() accepted record without link")
		}
	})

	t.Run("unparsable fields degrade to neutral", func(t *testing.T) {
		raw := models.RawListing{
			Source:      "dealfeed",
			Title:       "Mystery Deal",
			RawPrice:    "call for price",
			RawRating:   "n/a",
			RawPostedAt: "whenever",
			Link:        "https://example.com/deal",
		}
		l, ok := Normalize(raw, now)
		if !ok {
			t.Fatal("Normalize() rejected record with unparsable secondary fields")
		}
		if l.Price != nil {
			t.Errorf("Price = %v, want nil", l.Price)
		}
		if l.Rating != 0 {
			t.Errorf("Rating = %v, want 0", l.Rating)
		}
		if l.PostedAt != nil {
			t.Errorf("PostedAt = %v, want nil", l.PostedAt)
		}
	})

	t.Run("discount clamped", func(t *testing.T) {
		raw := models.RawListing{
			Source: "dealfeed", Title: "Deal", Link: "https://example.com",
			Discount: 180,
		}
		l, _ := Normalize(raw, now)
		if l.Discount != 100 {
			t.Errorf("Discount = %v, want clamped to 100", l.Discount)
		}
	})

	t.Run("identity stable across retitle whitespace and source case", func(t *testing.T) {
		a, _ := Normalize(models.RawListing{Source: "DealFeed", Title: "Nike  Shoes", Link: "https://example.com/x", Company: "Acme"}, now)
		b, _ := Normalize(models.RawListing{Source: "dealfeed", Title: "nike shoes", Link: "https://example.com/x", Company: "Acme"}, now)
		if a.IdentityKey != b.IdentityKey {
			t.Errorf("identity keys differ: %q vs %q", a.IdentityKey, b.IdentityKey)
		}
	})
}
