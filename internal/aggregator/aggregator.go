// Package aggregator fans a fetch out across all configured source
// adapters and merges the results.
package aggregator

import (
	"context"
	"sync"
	"time"

	"dealhawk/internal/logger"
	"dealhawk/internal/models"
	"dealhawk/internal/sources"
)

// Aggregator runs the configured adapters concurrently. A failing or
// timed-out adapter contributes zero listings; the cycle never aborts
// because one source was down.
type Aggregator struct {
	adapters []sources.Adapter
	timeout  time.Duration
}

// New creates an Aggregator over the given adapters with a per-adapter
// fetch timeout.
func New(adapters []sources.Adapter, timeout time.Duration) *Aggregator {
	return &Aggregator{adapters: adapters, timeout: timeout}
}

// FetchAll invokes every adapter in parallel and returns the merged raw
// listings once the last adapter completes or times out. Result order
// across sources is unspecified.
func (a *Aggregator) FetchAll(ctx context.Context, keywords []string, since time.Time) []models.RawListing {
	var (
		all []models.RawListing
		wg  sync.WaitGroup
		mu  sync.Mutex
	)

	for _, adapter := range a.adapters {
		wg.Add(1)
		go func(src sources.Adapter) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			listings, err := src.Fetch(fetchCtx, keywords, since)
			if err != nil {
				logger.Warn("Source %s failed, contributing zero listings this cycle: %v", src.Name(), err)
				return
			}
			logger.Debug("Source %s returned %d listings", src.Name(), len(listings))

			mu.Lock()
			all = append(all, listings...)
			mu.Unlock()
		}(adapter)
	}

	wg.Wait()
	return all
}
