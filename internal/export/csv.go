package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"dealhawk/internal/models"
)

// CSVWriter appends admitted listings to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"admission_id", "source", "title", "company", "category", "price",
		"discount_percent", "rating", "decision", "confidence", "reason",
		"link", "discovered_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per listing.
func (c *CSVWriter) Write(listings []models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		price := ""
		if l.Price != nil {
			price = strconv.FormatFloat(*l.Price, 'f', 2, 64)
		}
		decision, confidence, reason := "", "", ""
		if l.Verdict != nil {
			decision = string(l.Verdict.Decision)
			confidence = strconv.Itoa(l.Verdict.Confidence)
			reason = l.Verdict.Reason
		}

		row := []string{
			l.AdmissionID,
			l.Source,
			l.Title,
			l.Company,
			string(l.Category),
			price,
			strconv.FormatFloat(l.Discount, 'f', 1, 64),
			strconv.FormatFloat(l.Rating, 'f', 1, 64),
			decision,
			confidence,
			reason,
			l.Link,
			l.DiscoveredAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
