// Package export ships admitted listings to external sinks.
package export

import "dealhawk/internal/models"

// Writer is the interface any export sink must satisfy.
type Writer interface {
	Write(listings []models.Listing) error
	Close() error
}
