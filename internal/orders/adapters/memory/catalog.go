package memory

import (
	"context"
	"sync"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// Catalog is an in-memory product catalog for tests and local dev.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]ports.Product
}

// NewCatalog creates an empty in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]ports.Product)}
}

// Put stores or overwrites a product.
func (c *Catalog) Put(product ports.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = product
}

// GetProduct returns the product for the given id.
func (c *Catalog) GetProduct(_ context.Context, id string) (*ports.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	product, ok := c.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := product
	return &copy, nil
}
