package decision

import (
	"testing"
	"time"

	"dealhawk/internal/models"
	"dealhawk/internal/storage"
	"dealhawk/internal/trends"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return New(DefaultConfig(), trends.New(store, 20))
}

func ptr(v float64) *float64 { return &v }

func TestDecideCascade(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name           string
		listing        models.Listing
		wantDecision   models.Decision
		wantConfidence int
	}{
		{
			name: "excellent discount short-circuits",
			listing: models.Listing{
				IdentityKey: "a", Title: "Cheap Laptop", Category: models.CategoryElectronics,
				Discount: 60, Rating: 2.0, Price: ptr(80000),
			},
			wantDecision:   models.DecisionAccept,
			wantConfidence: 95,
		},
		{
			name: "category thresholds met",
			listing: models.Listing{
				IdentityKey: "b", Title: "Nike Running Shoes", Category: models.CategoryFashion,
				Discount: 45, Rating: 4.4, Price: ptr(2999),
			},
			wantDecision:   models.DecisionAccept,
			wantConfidence: 85,
		},
		{
			name: "low price with high rating",
			listing: models.Listing{
				IdentityKey: "c", Title: "Mystery Novel", Category: models.CategoryBooks,
				Discount: 10, Rating: 4.5, Price: ptr(499),
			},
			wantDecision:   models.DecisionAccept,
			wantConfidence: 75,
		},
		{
			name: "high discount alone",
			listing: models.Listing{
				IdentityKey: "d", Title: "Unknown Gadget", Category: models.CategoryGeneral,
				Discount: 42, Rating: 0,
			},
			wantDecision:   models.DecisionAccept,
			wantConfidence: 70,
		},
		{
			name: "nothing matches",
			listing: models.Listing{
				IdentityKey: "e", Title: "Full Price Item", Category: models.CategoryGeneral,
				Discount: 5, Rating: 3.0, Price: ptr(9000),
			},
			wantDecision:   models.DecisionHold,
			wantConfidence: 30,
		},
		{
			name: "nil price skips price-dependent rules",
			listing: models.Listing{
				IdentityKey: "f", Title: "Laptop Deal", Category: models.CategoryElectronics,
				Discount: 35, Rating: 4.8,
			},
			wantDecision:   models.DecisionHold,
			wantConfidence: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)
			v := engine.Decide(&tt.listing, now)
			if v.Decision != tt.wantDecision {
				t.Errorf("Decision = %v, want %v", v.Decision, tt.wantDecision)
			}
			if v.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %d, want %d (reason: %s)", v.Confidence, tt.wantConfidence, v.Reason)
			}
		})
	}
}

func TestDecideSeesDropOnSecondSighting(t *testing.T) {
	engine := newTestEngine(t)
	base := time.Now()

	l := models.Listing{
		IdentityKey: "trend-1", Title: "Dropping Headphones", Category: models.CategoryGeneral,
		Discount: 20, Rating: 3.0, Price: ptr(1000),
	}

	// First sighting: one sample, no trend yet, cascade falls through
	// to hold.
	v1 := engine.Decide(&l, base)
	if v1.Decision != models.DecisionHold {
		t.Fatalf("first sighting Decision = %v, want hold", v1.Decision)
	}
	if v1.Trend != models.TrendUnknown {
		t.Errorf("first sighting Trend = %v, want unknown", v1.Trend)
	}

	// Second sighting at a lower price: the drop is recorded before the
	// trend is read, so it combines with the discount immediately.
	l.Price = ptr(850)
	v2 := engine.Decide(&l, base.Add(time.Hour))
	if v2.Decision != models.DecisionAccept {
		t.Fatalf("second sighting Decision = %v, want accept", v2.Decision)
	}
	if v2.Confidence != 80 {
		t.Errorf("second sighting Confidence = %d, want 80", v2.Confidence)
	}
	if v2.Trend != models.TrendDecreasing {
		t.Errorf("second sighting Trend = %v, want decreasing", v2.Trend)
	}
}

func TestDecideDeterministic(t *testing.T) {
	now := time.Now()
	l := models.Listing{
		IdentityKey: "det-1", Title: "Makeup Kit", Category: models.CategoryBeauty,
		Discount: 30, Rating: 4.1, Price: ptr(1500),
	}

	a := newTestEngine(t).Decide(&l, now)
	b := newTestEngine(t).Decide(&l, now)
	if a != b {
		t.Errorf("identical inputs produced different verdicts:\n%+v\n%+v", a, b)
	}
}

func TestUnknownCategoryUsesDefaultThresholds(t *testing.T) {
	engine := newTestEngine(t)

	l := models.Listing{
		IdentityKey: "g", Title: "Generic Item", Category: models.CategoryGeneral,
		Discount: 36, Rating: 4.1, Price: ptr(9000),
	}
	v := engine.Decide(&l, time.Now())
	if v.Confidence != 85 {
		t.Errorf("Confidence = %d, want 85 via default thresholds (reason: %s)", v.Confidence, v.Reason)
	}
}
