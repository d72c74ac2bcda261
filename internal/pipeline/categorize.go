package pipeline

import (
	"strings"

	"dealhawk/internal/models"
)

// categoryRules are evaluated in order; the first category with a
// matching keyword wins. Order matters because keyword sets overlap
// ("smart watch" must land in electronics before "sports" can claim
// "watch"-adjacent titles).
var categoryRules = []struct {
	category models.Category
	keywords []string
}{
	{models.CategoryElectronics, []string{"laptop", "computer", "phone", "smartphone", "headphone", "camera", "watch"}},
	{models.CategoryFashion, []string{"shirt", "jeans", "dress", "shoes", "nike", "adidas", "levis"}},
	{models.CategoryBeauty, []string{"lipstick", "foundation", "makeup", "beauty", "cosmetic"}},
	{models.CategorySports, []string{"running", "fitness", "sports", "gym", "workout"}},
	{models.CategoryHomeKitchen, []string{"kitchen", "appliance", "home", "washing", "fryer"}},
	{models.CategoryBooks, []string{"book", "novel", "author"}},
}

// Categorize assigns a category from title keywords. Deterministic and
// pure; unmatched titles fall through to general.
func Categorize(title string) models.Category {
	lower := strings.ToLower(title)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryGeneral
}
