// Package cart implements the client-resident shopping cart: an ordered
// collection of line items keyed by book ID, with totals recomputed on every
// read. A Cart is an explicitly constructed value owned by the request that
// decoded it; durable storage is the serialized cookie, never server state.
package cart

import (
	"github.com/shopspring/decimal"
)

// Item is a single cart line: one book and the accumulated quantity.
type Item struct {
	ID        string
	Title     string
	Price     decimal.Decimal
	Quantity  int
	Thumbnail string
}

// Totals holds the derived cart aggregates. They are computed from the
// current entries on demand and never stored.
type Totals struct {
	Items int
	Price decimal.Decimal
}

// Cart owns an insertion-ordered list of items with at most one entry per
// book ID.
type Cart struct {
	items []Item
}

// New returns an empty cart.
func New(items ...Item) *Cart {
	c := &Cart{}
	for _, it := range items {
		c.insert(it)
	}
	return c
}

// insert places an item preserving the at-most-one-entry-per-ID invariant.
// Unlike Add it keeps the item's quantity, for codec and snapshot use.
func (c *Cart) insert(it Item) {
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	if i := c.index(it.ID); i >= 0 {
		c.items[i].Quantity += it.Quantity
		return
	}
	c.items = append(c.items, it)
}

func (c *Cart) index(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add inserts the item with quantity 1, or increments the quantity by 1 when
// an entry with the same ID already exists. It always succeeds.
func (c *Cart) Add(it Item) {
	if i := c.index(it.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	it.Quantity = 1
	c.items = append(c.items, it)
}

// Remove deletes the entry with the given ID. Removing an absent ID is a
// no-op, not an error.
func (c *Cart) Remove(id string) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// SetQuantity sets the quantity of an existing entry. A quantity of zero or
// less removes the entry; an absent ID is a no-op.
func (c *Cart) SetQuantity(id string, qty int) {
	if qty <= 0 {
		c.Remove(id)
		return
	}
	if i := c.index(id); i >= 0 {
		c.items[i].Quantity = qty
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct entries.
func (c *Cart) Len() int {
	return len(c.items)
}

// Totals recomputes the aggregates from the current entries.
func (c *Cart) Totals() Totals {
	t := Totals{Price: decimal.Zero}
	for _, it := range c.items {
		t.Items += it.Quantity
		t.Price = t.Price.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return t
}
