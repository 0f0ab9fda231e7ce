package cart

import "sync"

// Store keeps one cart per table for as long as an order is being composed.
// Changes go through the store so that a commit settling a cart never races
// an edit of the same table.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// Update runs fn on the table's cart, creating an empty one if needed.
func (s *Store) Update(tableID string, fn func(c *Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[tableID]
	if !ok {
		c = New()
		s.carts[tableID] = c
	}
	fn(c)
}

// Peek returns the table's cart without creating one.
func (s *Store) Peek(tableID string) (*Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[tableID]
	return c, ok
}

// Settle removes committed lines from the table's cart and drops the cart
// once nothing is left in it.
func (s *Store) Settle(tableID string, lines []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[tableID]
	if !ok {
		return
	}
	c.Settle(lines)
	if c.Empty() {
		delete(s.carts, tableID)
	}
}

// Discard empties and forgets the table's cart.
func (s *Store) Discard(tableID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[tableID]; ok {
		c.Reset()
		delete(s.carts, tableID)
	}
}
