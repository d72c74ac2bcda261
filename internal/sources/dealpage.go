package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"dealhawk/internal/models"
)

const dealPageUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var discountBadgeRegexp = regexp.MustCompile(`(\d{1,3})\s*%`)

// DealPageClient scrapes a deals landing page that exposes no API.
// Selectors target the common card markup; missing cells degrade to
// empty fields rather than errors.
type DealPageClient struct {
	pageURL string
	limit   int
	client  *http.Client
}

// NewDealPageClient creates an HTML deal page adapter.
func NewDealPageClient(pageURL string, limit int, timeout time.Duration) *DealPageClient {
	return &DealPageClient{
		pageURL: pageURL,
		limit:   limit,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *DealPageClient) Name() string {
	return "dealpage"
}

func (c *DealPageClient) Fetch(ctx context.Context, keywords []string, since time.Time) ([]models.RawListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", dealPageUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deal page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deal page: %w", err)
	}

	base, err := url.Parse(c.pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page URL: %w", err)
	}

	var raw []models.RawListing
	doc.Find(".deal-card, [data-deal-id]").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(raw) >= c.limit {
			return false
		}

		link := card.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}
		abs, err := base.Parse(href)
		if err != nil {
			return true
		}

		title := strings.TrimSpace(card.Find(".deal-title, h2, h3").First().Text())
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}

		raw = append(raw, models.RawListing{
			Source:      c.Name(),
			Title:       title,
			RawPrice:    strings.TrimSpace(card.Find(".deal-price, .price").First().Text()),
			Discount:    parseDiscountBadge(card.Find(".deal-badge, .discount").First().Text()),
			RawRating:   strings.TrimSpace(card.Find(".deal-rating, .rating").First().Text()),
			Link:        abs.String(),
			LimitedTime: card.Find(".deal-timer, .countdown").Length() > 0,
		})
		return true
	})

	return raw, nil
}

// parseDiscountBadge extracts the percentage from badge text like
// "45% off" or "-30%". Unparsable badges mean zero discount.
func parseDiscountBadge(text string) float64 {
	m := discountBadgeRegexp.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v > 100 {
		return 0
	}
	return v
}
