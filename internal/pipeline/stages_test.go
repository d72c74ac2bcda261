package pipeline

import (
	"testing"

	"dealhawk/internal/models"
)

func TestRelevant(t *testing.T) {
	allowlist := []string{"laptop", "Machine Learning", "deal"}

	tests := []struct {
		name    string
		listing models.Listing
		want    bool
	}{
		{"term in title", models.Listing{Title: "Gaming Laptop Sale"}, true},
		{"case insensitive", models.Listing{Title: "MACHINE learning engineer"}, true},
		{"term in tags", models.Listing{Title: "Big Discount", Tags: []string{"deal", "flash"}}, true},
		{"no match", models.Listing{Title: "Garden Hose", Tags: []string{"outdoor"}}, false},
		{"substring match", models.Listing{Title: "Laptops for students"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relevant(tt.listing, allowlist); got != tt.want {
				t.Errorf("Relevant(%q) = %v, want %v", tt.listing.Title, got, tt.want)
			}
		})
	}

	t.Run("empty allowlist keeps everything", func(t *testing.T) {
		if !Relevant(models.Listing{Title: "Anything"}, nil) {
			t.Error("Relevant() = false with empty allowlist, want true")
		}
	})
}

func TestDedupeFirstWins(t *testing.T) {
	listings := []models.Listing{
		{IdentityKey: "a", Title: "First A", Discount: 50},
		{IdentityKey: "b", Title: "Only B"},
		{IdentityKey: "a", Title: "Second A", Discount: 10},
	}

	got := Dedupe(listings)
	if len(got) != 2 {
		t.Fatalf("Dedupe() returned %d listings, want 2", len(got))
	}
	if got[0].Title != "First A" || got[0].Discount != 50 {
		t.Errorf("Dedupe() kept %+v, want the first occurrence", got[0])
	}
	if got[1].IdentityKey != "b" {
		t.Errorf("Dedupe() reordered output: %+v", got)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		title string
		want  models.Category
	}{
		{"Gaming Laptop 16GB", models.CategoryElectronics},
		{"Smart Watch Pro", models.CategoryElectronics},
		{"Nike Running Shoes", models.CategoryFashion},
		{"Matte Lipstick Set", models.CategoryBeauty},
		{"Home Gym Kit", models.CategorySports},
		{"Air Fryer 5L", models.CategoryHomeKitchen},
		{"Bestselling Novel", models.CategoryBooks},
		{"Garden Hose", models.CategoryGeneral},
		{"", models.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := Categorize(tt.title); got != tt.want {
				t.Errorf("Categorize(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}
