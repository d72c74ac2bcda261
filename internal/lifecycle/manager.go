// Package lifecycle tracks the active and expired listing partitions
// and decides whether a discovered listing is new, a refresh of a
// known active one, or a suppressed re-sighting of an expired one.
package lifecycle

import (
	"time"

	"github.com/google/uuid"

	"dealhawk/internal/logger"
	"dealhawk/internal/models"
	"dealhawk/internal/storage"
)

// Outcome classifies what Admit did with a listing.
type Outcome int

const (
	// Admitted means the listing was new and entered the active store.
	Admitted Outcome = iota
	// Refreshed means the listing was already active and its fields
	// were updated in place.
	Refreshed
	// Suppressed means the listing previously expired and was dropped.
	Suppressed
)

// Manager owns the active and expired partitions, loaded from storage
// at startup and flushed after every cycle.
type Manager struct {
	store   *storage.Storage
	ttl     time.Duration
	active  map[string]models.Listing
	expired map[string]models.Listing
}

// New creates a Manager with the given time-to-live for admitted
// listings, loading both partitions from storage.
func New(store *storage.Storage, ttl time.Duration) *Manager {
	m := &Manager{
		store:   store,
		ttl:     ttl,
		active:  make(map[string]models.Listing),
		expired: make(map[string]models.Listing),
	}

	active, err := store.LoadListings(models.StateActive)
	if err != nil {
		logger.Warn("Failed to load active listings: %v", err)
	}
	for _, l := range active {
		m.active[l.IdentityKey] = l
	}

	expired, err := store.LoadListings(models.StateExpired)
	if err != nil {
		logger.Warn("Failed to load expired listings: %v", err)
	}
	for _, l := range expired {
		m.expired[l.IdentityKey] = l
	}

	logger.Info("Loaded %d active and %d expired listings", len(m.active), len(m.expired))

	return m
}

// Sweep moves every active listing whose deadline has passed into the
// expired partition and returns the moved listings.
func (m *Manager) Sweep(now time.Time) []models.Listing {
	var moved []models.Listing
	for key, l := range m.active {
		if !now.After(l.ExpiresAt) {
			continue
		}
		delete(m.active, key)
		m.expired[key] = l
		moved = append(moved, l)
	}
	return moved
}

// Admit routes one decided listing. Expired identities are never
// re-admitted. A still-active identity keeps its original admission ID
// and expiry while its mutable fields are updated. A new identity gets
// an admission ID and a TTL-derived expiry.
func (m *Manager) Admit(l *models.Listing, now time.Time) Outcome {
	if _, ok := m.expired[l.IdentityKey]; ok {
		return Suppressed
	}

	if prev, ok := m.active[l.IdentityKey]; ok {
		l.AdmissionID = prev.AdmissionID
		l.DiscoveredAt = prev.DiscoveredAt
		l.ExpiresAt = prev.ExpiresAt
		m.active[l.IdentityKey] = *l
		return Refreshed
	}

	l.AdmissionID = uuid.New().String()
	l.DiscoveredAt = now
	l.ExpiresAt = now.Add(m.ttl)
	m.active[l.IdentityKey] = *l
	return Admitted
}

// Get returns the active listing for an identity, if present.
func (m *Manager) Get(identity string) (models.Listing, bool) {
	l, ok := m.active[identity]
	return l, ok
}

// ActiveCount returns the size of the active partition.
func (m *Manager) ActiveCount() int {
	return len(m.active)
}

// ExpiredCount returns the size of the expired partition.
func (m *Manager) ExpiredCount() int {
	return len(m.expired)
}

// Flush persists both partitions.
func (m *Manager) Flush() error {
	actives := make([]models.Listing, 0, len(m.active))
	for _, l := range m.active {
		actives = append(actives, l)
	}
	expireds := make([]models.Listing, 0, len(m.expired))
	for _, l := range m.expired {
		expireds = append(expireds, l)
	}

	if err := m.store.ReplaceListings(models.StateActive, actives); err != nil {
		return err
	}
	return m.store.ReplaceListings(models.StateExpired, expireds)
}
