// Package storage provides SQLite-backed persistence for the listing
// lifecycle sets and the trend series.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dealhawk/internal/models"
	_ "modernc.org/sqlite"
)

// Storage wraps a SQLite database for all persistence operations.
// Each logical store (active listings, expired listings, trend series)
// is fully rewritten per flush inside one transaction.
type Storage struct {
	db *sql.DB
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/dealhawk/data.db.
func New(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "dealhawk", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			identity_key  TEXT PRIMARY KEY,
			state         TEXT NOT NULL CHECK (state IN ('active', 'expired')),
			admission_id  TEXT,
			title         TEXT NOT NULL,
			company       TEXT,
			location      TEXT,
			source        TEXT NOT NULL,
			category      TEXT NOT NULL,
			price         REAL,
			discount      REAL NOT NULL DEFAULT 0,
			rating        REAL NOT NULL DEFAULT 0,
			link          TEXT NOT NULL,
			posted_at     INTEGER,
			deadline      INTEGER,
			tags          TEXT NOT NULL DEFAULT '[]',
			limited_time  INTEGER NOT NULL DEFAULT 0,
			discovered_at INTEGER NOT NULL,
			expires_at    INTEGER NOT NULL,
			verdict       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_state ON listings(state)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_expires_at ON listings(expires_at)`,
		`CREATE TABLE IF NOT EXISTS trend_series (
			identity_key TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			samples      TEXT NOT NULL DEFAULT '[]',
			first_seen   INTEGER NOT NULL,
			last_updated INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceListings rewrites one lifecycle partition. All rows of the
// given state are deleted and re-inserted inside a single transaction
// so a crash mid-flush never leaves a truncated store.
func (s *Storage) ReplaceListings(state models.State, listings []models.Listing) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM listings WHERE state = ?`, string(state)); err != nil {
		return fmt.Errorf("failed to clear %s listings: %w", state, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO listings
			(identity_key, state, admission_id, title, company, location, source, category,
			 price, discount, rating, link, posted_at, deadline, tags, limited_time,
			 discovered_at, expires_at, verdict)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range listings {
		l := &listings[i]
		if err := l.Validate(); err != nil {
			return fmt.Errorf("invalid listing %s: %w", l.IdentityKey, err)
		}
		tagsJSON, err := json.Marshal(l.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}
		var verdictJSON any
		if l.Verdict != nil {
			b, err := json.Marshal(l.Verdict)
			if err != nil {
				return fmt.Errorf("failed to marshal verdict: %w", err)
			}
			verdictJSON = string(b)
		}
		if _, err := stmt.Exec(
			l.IdentityKey, string(state), l.AdmissionID, l.Title, l.Company, l.Location,
			l.Source, string(l.Category),
			nullableFloat(l.Price), l.Discount, l.Rating, l.Link,
			nullableTime(l.PostedAt), nullableTime(l.Deadline),
			string(tagsJSON), boolToInt(l.LimitedTime),
			l.DiscoveredAt.UnixNano(), l.ExpiresAt.UnixNano(), verdictJSON,
		); err != nil {
			return fmt.Errorf("failed to insert listing %s: %w", l.IdentityKey, err)
		}
	}

	return tx.Commit()
}

// LoadListings returns all listings in the given lifecycle partition.
func (s *Storage) LoadListings(state models.State) ([]models.Listing, error) {
	rows, err := s.db.Query(`
		SELECT identity_key, admission_id, title, company, location, source, category,
		       price, discount, rating, link, posted_at, deadline, tags, limited_time,
		       discovered_at, expires_at, verdict
		FROM listings WHERE state = ?`, string(state))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s listings: %w", state, err)
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		var l models.Listing
		var category string
		var price sql.NullFloat64
		var postedAt, deadline sql.NullInt64
		var tagsJSON string
		var limitedTime int
		var discoveredAtNano, expiresAtNano int64
		var verdictJSON sql.NullString

		if err := rows.Scan(
			&l.IdentityKey, &l.AdmissionID, &l.Title, &l.Company, &l.Location,
			&l.Source, &category,
			&price, &l.Discount, &l.Rating, &l.Link,
			&postedAt, &deadline, &tagsJSON, &limitedTime,
			&discoveredAtNano, &expiresAtNano, &verdictJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}

		l.Category = models.Category(category)
		if price.Valid {
			v := price.Float64
			l.Price = &v
		}
		if postedAt.Valid {
			t := time.Unix(0, postedAt.Int64)
			l.PostedAt = &t
		}
		if deadline.Valid {
			t := time.Unix(0, deadline.Int64)
			l.Deadline = &t
		}
		if err := json.Unmarshal([]byte(tagsJSON), &l.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
		l.LimitedTime = limitedTime != 0
		l.DiscoveredAt = time.Unix(0, discoveredAtNano)
		l.ExpiresAt = time.Unix(0, expiresAtNano)
		if verdictJSON.Valid {
			var v models.Verdict
			if err := json.Unmarshal([]byte(verdictJSON.String), &v); err != nil {
				return nil, fmt.Errorf("failed to unmarshal verdict: %w", err)
			}
			l.Verdict = &v
		}

		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ReplaceTrendRecords rewrites the whole trend store in one transaction.
func (s *Storage) ReplaceTrendRecords(records map[string]*models.TrendRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM trend_series`); err != nil {
		return fmt.Errorf("failed to clear trend series: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO trend_series (identity_key, title, samples, first_seen, last_updated)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for identity, rec := range records {
		samplesJSON, err := json.Marshal(rec.Samples)
		if err != nil {
			return fmt.Errorf("failed to marshal samples: %w", err)
		}
		if _, err := stmt.Exec(
			identity, rec.Title, string(samplesJSON),
			rec.FirstSeen.UnixNano(), rec.LastUpdated.UnixNano(),
		); err != nil {
			return fmt.Errorf("failed to insert trend record %s: %w", identity, err)
		}
	}

	return tx.Commit()
}

// LoadTrendRecords returns the full trend store keyed by identity.
func (s *Storage) LoadTrendRecords() (map[string]*models.TrendRecord, error) {
	rows, err := s.db.Query(`
		SELECT identity_key, title, samples, first_seen, last_updated FROM trend_series`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend series: %w", err)
	}
	defer rows.Close()

	records := make(map[string]*models.TrendRecord)
	for rows.Next() {
		var rec models.TrendRecord
		var samplesJSON string
		var firstSeenNano, lastUpdatedNano int64

		if err := rows.Scan(&rec.IdentityKey, &rec.Title, &samplesJSON, &firstSeenNano, &lastUpdatedNano); err != nil {
			return nil, fmt.Errorf("failed to scan trend record: %w", err)
		}
		if err := json.Unmarshal([]byte(samplesJSON), &rec.Samples); err != nil {
			return nil, fmt.Errorf("failed to unmarshal samples: %w", err)
		}
		rec.FirstSeen = time.Unix(0, firstSeenNano)
		rec.LastUpdated = time.Unix(0, lastUpdatedNano)
		records[rec.IdentityKey] = &rec
	}
	return records, rows.Err()
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
