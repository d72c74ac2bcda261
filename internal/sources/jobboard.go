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

// JobBoardClient fetches job and internship postings from a JSON board
// API. Postings carry bare title/company/link plus loose date strings;
// no pricing fields are guaranteed.
type JobBoardClient struct {
	baseURL string
	limit   int
	client  *http.Client
}

type jobBoardResponse struct {
	Listings []jobBoardItem `json:"listings"`
}

type jobBoardItem struct {
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Location   string   `json:"location"`
	PostedTime string   `json:"posted_time"`
	Deadline   string   `json:"deadline"`
	Link       string   `json:"link"`
	Tags       []string `json:"tags"`
}

// NewJobBoardClient creates a job board adapter for the given API URL.
func NewJobBoardClient(baseURL string, limit int, timeout time.Duration) *JobBoardClient {
	return &JobBoardClient{
		baseURL: baseURL,
		limit:   limit,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *JobBoardClient) Name() string {
	return "jobboard"
}

func (c *JobBoardClient) Fetch(ctx context.Context, keywords []string, since time.Time) ([]models.RawListing, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	if len(keywords) > 0 {
		q.Set("keywords", strings.Join(keywords, ","))
	}
	q.Set("posted_after", since.UTC().Format(time.RFC3339))
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
		return nil, fmt.Errorf("job board returned status %d", resp.StatusCode)
	}

	var board jobBoardResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, err
	}

	raw := make([]models.RawListing, 0, len(board.Listings))
	for _, j := range board.Listings {
		raw = append(raw, models.RawListing{
			Source:      c.Name(),
			Title:       j.Title,
			Company:     j.Company,
			Location:    j.Location,
			Link:        j.Link,
			RawPostedAt: j.PostedTime,
			RawDeadline: j.Deadline,
			Tags:        j.Tags,
		})
	}
	return raw, nil
}
