// Package cart holds the client-local, unsynced list of selected products.
package cart

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blackstar01-dark/mueblix/internal/domain"
)

// Cart is an ordered sequence of product snapshots. Adding the same product twice
// yields two entries; count and total follow entries, not distinct products.
type Cart struct {
	mu    sync.RWMutex
	items []domain.CartItem
	now   func() time.Time
}

func New() *Cart {
	return &Cart{now: time.Now}
}

func (c *Cart) Add(product domain.Product) domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := domain.CartItem{Product: product, AddedAt: c.now()}
	c.items = append(c.items, item)
	return item
}

// Remove drops every entry with the given product id and reports how many were
// removed. An unknown id leaves the cart untouched.
func (c *Cart) Remove(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, item := range c.items {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}
	removed := len(c.items) - len(kept)
	// zero the tail so dropped snapshots can be collected
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = domain.CartItem{}
	}
	c.items = kept
	return removed
}

// Count is derived from the entries, so it can never drift from them.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sum(c.items)
}

func (c *Cart) Items() []domain.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]domain.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) Empty() bool {
	return c.Count() == 0
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Snapshot returns the entries and their total under one lock, so the pair is
// consistent for order submission.
func (c *Cart) Snapshot() ([]domain.CartItem, decimal.Decimal) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]domain.CartItem, len(c.items))
	copy(items, c.items)
	return items, sum(items)
}

func sum(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}
