// Package decision implements the rule cascade that classifies each
// listing as accept or hold with a confidence score.
package decision

import (
	"fmt"
	"time"

	"dealhawk/internal/models"
	"dealhawk/internal/trends"
)

// Thresholds are the per-category acceptance bounds.
type Thresholds struct {
	MinDiscount float64
	MaxPrice    float64
	MinRating   float64
}

// Config holds the tunable cascade parameters.
type Config struct {
	Categories        map[models.Category]Thresholds
	Default           Thresholds
	LowPriceThreshold float64
}

// DefaultConfig returns the stock category thresholds.
func DefaultConfig() Config {
	return Config{
		Categories: map[models.Category]Thresholds{
			models.CategoryElectronics: {MinDiscount: 15, MaxPrice: 50000, MinRating: 4.0},
			models.CategoryFashion:     {MinDiscount: 30, MaxPrice: 5000, MinRating: 4.0},
			models.CategoryBeauty:      {MinDiscount: 40, MaxPrice: 2000, MinRating: 4.0},
			models.CategorySports:      {MinDiscount: 25, MaxPrice: 15000, MinRating: 4.2},
			models.CategoryHomeKitchen: {MinDiscount: 20, MaxPrice: 50000, MinRating: 4.0},
			models.CategoryBooks:       {MinDiscount: 50, MaxPrice: 500, MinRating: 4.5},
		},
		Default:           Thresholds{MinDiscount: 20, MaxPrice: 10000, MinRating: 4.0},
		LowPriceThreshold: 2000,
	}
}

// Engine evaluates listings against the cascade. Rules are ordered by
// decreasing confidence and the first match wins.
type Engine struct {
	config  Config
	tracker *trends.Tracker
}

// New creates an Engine using the given tracker for trend context.
func New(config Config, tracker *trends.Tracker) *Engine {
	if config.Categories == nil {
		config.Categories = DefaultConfig().Categories
	}
	return &Engine{config: config, tracker: tracker}
}

func (e *Engine) thresholdsFor(category models.Category) Thresholds {
	if t, ok := e.config.Categories[category]; ok {
		return t
	}
	return e.config.Default
}

// Decide produces a verdict for one listing. The observed price is
// recorded in the trend tracker before the trend is read, so a drop is
// visible the same cycle it is observed: two sightings at 1000 then
// 850 yield a decreasing trend on the second sighting.
func (e *Engine) Decide(l *models.Listing, now time.Time) models.Verdict {
	e.tracker.Update(l.IdentityKey, l.Title, l.Price, l.Discount, now)
	trend := e.tracker.TrendOf(l.IdentityKey)
	return e.evaluate(l, trend, now)
}

func (e *Engine) evaluate(l *models.Listing, trend models.Trend, now time.Time) models.Verdict {
	v := models.Verdict{
		Category:  l.Category,
		Trend:     trend,
		DecidedAt: now,
	}
	rules := e.thresholdsFor(l.Category)

	switch {
	case l.Discount >= 50:
		v.Decision = models.DecisionAccept
		v.Confidence = 95
		v.Reason = fmt.Sprintf("Excellent discount: %.0f%%", l.Discount)

	case l.Price != nil && l.Discount >= rules.MinDiscount &&
		l.Rating >= rules.MinRating && *l.Price <= rules.MaxPrice:
		v.Decision = models.DecisionAccept
		v.Confidence = 85
		v.Reason = fmt.Sprintf("Good deal: %.0f%% off, %.1f/5 stars, ₹%.0f",
			l.Discount, l.Rating, *l.Price)

	case trend == models.TrendDecreasing && l.Discount >= 15:
		v.Decision = models.DecisionAccept
		v.Confidence = 80
		v.Reason = fmt.Sprintf("Price dropping + %.0f%% discount", l.Discount)

	case l.Price != nil && *l.Price < e.config.LowPriceThreshold && l.Rating >= 4.0:
		v.Decision = models.DecisionAccept
		v.Confidence = 75
		v.Reason = fmt.Sprintf("Good price (₹%.0f) with high rating (%.1f/5)", *l.Price, l.Rating)

	case l.Discount >= 40:
		v.Decision = models.DecisionAccept
		v.Confidence = 70
		v.Reason = fmt.Sprintf("High discount: %.0f%%", l.Discount)

	default:
		v.Decision = models.DecisionHold
		v.Confidence = 30
		price := "price unknown"
		if l.Price != nil {
			price = fmt.Sprintf("₹%.0f", *l.Price)
		}
		v.Reason = fmt.Sprintf("Wait for better deal (Current: %.0f%% off, %s, %.1f/5)",
			l.Discount, price, l.Rating)
	}

	return v
}
