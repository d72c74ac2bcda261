package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dealhawk/internal/models"
)

// DealFeedClient fetches e-commerce deals from a JSON deals API. The
// feed returns rich typed fields: discount percent, rating string,
// price string with currency.
type DealFeedClient struct {
	baseURL string
	limit   int
	client  *http.Client
}

type dealFeedResponse struct {
	Status string         `json:"status"`
	Deals  []dealFeedItem `json:"deals"`
}

type dealFeedItem struct {
	Title       string   `json:"title"`
	Store       string   `json:"store"`
	Price       string   `json:"price"`
	Discount    float64  `json:"discount_percent"`
	Rating      string   `json:"rating"`
	URL         string   `json:"url"`
	EndsAt      string   `json:"ends_at"`
	LimitedTime bool     `json:"limited_time"`
	Tags        []string `json:"tags"`
}

// NewDealFeedClient creates a deal feed adapter for the given API URL.
func NewDealFeedClient(baseURL string, limit int, timeout time.Duration) *DealFeedClient {
	return &DealFeedClient{
		baseURL: baseURL,
		limit:   limit,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *DealFeedClient) Name() string {
	return "dealfeed"
}

func (c *DealFeedClient) Fetch(ctx context.Context, keywords []string, since time.Time) ([]models.RawListing, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	if len(keywords) > 0 {
		q.Set("q", strings.Join(keywords, ","))
	}
	q.Set("since", since.UTC().Format(time.RFC3339))
	q.Set("limit", fmt.Sprintf("%d", c.limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deal feed returned status %d", resp.StatusCode)
	}

	var feed dealFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, err
	}
	if feed.Status != "" && feed.Status != "ok" {
		return nil, fmt.Errorf("deal feed error: %s", feed.Status)
	}

	raw := make([]models.RawListing, 0, len(feed.Deals))
	for _, d := range feed.Deals {
		raw = append(raw, models.RawListing{
			Source:      c.Name(),
			Title:       d.Title,
			Company:     d.Store,
			RawPrice:    d.Price,
			Discount:    d.Discount,
			RawRating:   d.Rating,
			Link:        d.URL,
			RawDeadline: d.EndsAt,
			Tags:        d.Tags,
			LimitedTime: d.LimitedTime,
		})
	}
	return raw, nil
}
