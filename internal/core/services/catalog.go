package services

import (
	"context"
	"sync"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
)

// Catalog keeps the most recently loaded collection for the process.
type Catalog struct {
	loader *Loader

	mu      sync.RWMutex
	current *domain.Collection
}

// NewCatalog constructs a Catalog backed by loader. Nothing is fetched
// until the first Snapshot or Refresh.
func NewCatalog(loader *Loader) *Catalog {
	return &Catalog{loader: loader}
}

// Snapshot returns the current collection, loading it on first use.
func (c *Catalog) Snapshot(ctx context.Context) (domain.Collection, error) {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()
	if current != nil {
		return *current, nil
	}
	return c.Refresh(ctx)
}

// Refresh reloads the collection and replaces it wholesale. On failure the
// previous collection stays in place and the error is returned.
func (c *Catalog) Refresh(ctx context.Context) (domain.Collection, error) {
	coll, err := c.loader.Load(ctx)
	if err != nil {
		return domain.Collection{}, err
	}

	c.mu.Lock()
	c.current = &coll
	c.mu.Unlock()
	return coll, nil
}
