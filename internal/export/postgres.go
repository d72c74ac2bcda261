package export

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"dealhawk/internal/models"
)

// PostgresWriter persists admitted listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS decided_listings (
			id               SERIAL PRIMARY KEY,
			admission_id     UUID         UNIQUE NOT NULL,
			identity_key     VARCHAR(64)  NOT NULL,
			source           VARCHAR(50)  NOT NULL,
			title            TEXT         NOT NULL,
			company          TEXT         NOT NULL DEFAULT '',
			category         VARCHAR(30)  NOT NULL,
			price            NUMERIC(12,2),
			discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
			rating           NUMERIC(4,2) NOT NULL DEFAULT 0,
			decision         VARCHAR(10)  NOT NULL,
			confidence       INT          NOT NULL,
			reason           TEXT         NOT NULL DEFAULT '',
			link             TEXT         NOT NULL,
			discovered_at    TIMESTAMPTZ  NOT NULL,
			created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_decided_identity ON decided_listings(identity_key);
		CREATE INDEX IF NOT EXISTS idx_decided_category ON decided_listings(category);
		CREATE INDEX IF NOT EXISTS idx_decided_decision ON decided_listings(decision);
	`)
	return err
}

// Write batch-inserts admitted listings. Re-sent admission IDs are
// skipped, so retried cycles do not duplicate rows.
func (pw *PostgresWriter) Write(listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []models.Listing) error {
	const cols = 14
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var price interface{}
		if l.Price != nil {
			price = *l.Price
		}
		decision, confidence, reason := "", 0, ""
		if l.Verdict != nil {
			decision = string(l.Verdict.Decision)
			confidence = l.Verdict.Confidence
			reason = l.Verdict.Reason
		}

		valueArgs = append(valueArgs,
			l.AdmissionID, l.IdentityKey, l.Source, l.Title, l.Company,
			string(l.Category), price, l.Discount, l.Rating,
			decision, confidence, reason, l.Link, l.DiscoveredAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO decided_listings (
			admission_id, identity_key, source, title, company, category,
			price, discount_percent, rating, decision, confidence, reason,
			link, discovered_at
		)
		VALUES %s
		ON CONFLICT (admission_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// Close closes the database connection.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
