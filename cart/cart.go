// Package cart holds the order being composed for a table before it is
// committed. Carts live in memory only.
package cart

import (
	"strings"
	"sync"

	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/variant"
)

// Catalog resolves product ids at the moment the cart is listed.
type Catalog interface {
	Product(id uint) (models.Product, bool)
}

// Snapshot is a Catalog backed by a map.
type Snapshot map[uint]models.Product

func (s Snapshot) Product(id uint) (models.Product, bool) {
	p, ok := s[id]
	return p, ok
}

type Line struct {
	Key        variant.Key    `json:"-"`
	EncodedKey string         `json:"key"`
	Product    models.Product `json:"product"`
	Label      string         `json:"label,omitempty"`
	Quantity   int            `json:"quantity"`
	Note       string         `json:"note,omitempty"`
}

func (l Line) Description() string {
	return l.Key.Description(l.Product.Name)
}

type Cart struct {
	mu         sync.Mutex
	quantities map[variant.Key]int
	order      []variant.Key
	notes      map[uint]string
}

func New() *Cart {
	return &Cart{
		quantities: make(map[variant.Key]int),
		notes:      make(map[uint]string),
	}
}

// Increment adds delta to the key and returns the new quantity. A result of
// zero or less removes the key.
func (c *Cart) Increment(k variant.Key, delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, exists := c.quantities[k]
	next := current + delta
	if next <= 0 {
		if exists {
			delete(c.quantities, k)
			c.forget(k)
		}
		return 0
	}
	if !exists {
		c.order = append(c.order, k)
	}
	c.quantities[k] = next
	return next
}

// ProductQuantity sums every variant of a product.
func (c *Cart) ProductQuantity(productID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for k, qty := range c.quantities {
		if k.ProductID == productID {
			total += qty
		}
	}
	return total
}

func (c *Cart) TotalItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, qty := range c.quantities {
		total += qty
	}
	return total
}

// RemoveProduct drops every variant of a product and returns how many keys
// were removed.
func (c *Cart) RemoveProduct(productID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.quantities {
		if k.ProductID == productID {
			delete(c.quantities, k)
			c.forget(k)
			removed++
		}
	}
	return removed
}

func (c *Cart) SetNote(productID uint, note string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	note = strings.TrimSpace(note)
	if note == "" {
		delete(c.notes, productID)
		return
	}
	c.notes[productID] = note
}

// AppendTag adds a suggestion tag such as "#Gelo" to the product note.
func (c *Cart) AppendTag(productID uint, tag string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	tag = strings.TrimSpace(tag)
	current := c.notes[productID]
	if tag == "" {
		return current
	}
	if current == "" {
		c.notes[productID] = tag
	} else {
		c.notes[productID] = current + " " + tag
	}
	return c.notes[productID]
}

// Lines lists the cart in the order entries were first added. Entries whose
// product is missing from the catalog are skipped.
func (c *Cart) Lines(catalog Catalog) []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, 0, len(c.order))
	for _, k := range c.order {
		product, ok := catalog.Product(k.ProductID)
		if !ok {
			continue
		}
		lines = append(lines, Line{
			Key:        k,
			EncodedKey: variant.Encode(k),
			Product:    product,
			Label:      k.Label(),
			Quantity:   c.quantities[k],
			Note:       c.notes[k.ProductID],
		})
	}
	return lines
}

// Settle takes committed lines out of the cart. Quantities added after the
// lines were listed stay, and a product's note stays while any of its
// variants does.
func (c *Cart) Settle(lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range lines {
		current, ok := c.quantities[l.Key]
		if !ok {
			continue
		}
		if next := current - l.Quantity; next > 0 {
			c.quantities[l.Key] = next
			continue
		}
		delete(c.quantities, l.Key)
		c.forget(l.Key)
	}
	for _, l := range lines {
		if !c.holds(l.Key.ProductID) {
			delete(c.notes, l.Key.ProductID)
		}
	}
}

func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.quantities) == 0
}

func (c *Cart) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quantities = make(map[variant.Key]int)
	c.order = nil
	c.notes = make(map[uint]string)
}

// holds reports whether any variant of the product is left. Callers hold c.mu.
func (c *Cart) holds(productID uint) bool {
	for k := range c.quantities {
		if k.ProductID == productID {
			return true
		}
	}
	return false
}

// forget removes k from the insertion order. Callers hold c.mu.
func (c *Cart) forget(k variant.Key) {
	for i, existing := range c.order {
		if existing == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
