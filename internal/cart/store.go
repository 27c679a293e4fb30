package cart

import (
	"errors"
	"sync"

	"kiosk/internal/domain"
)

var (
	// ErrNotFound means no cart entry matched the (catalogID, options) key.
	ErrNotFound = errors.New("cart entry not found")

	// ErrNonPositiveQuantity means a quantity change asked for <= 0. The store
	// never deletes implicitly; callers confirm removal intent and call Remove.
	ErrNonPositiveQuantity = errors.New("quantity must be at least 1")
)

// Store is the session cart: an ordered sequence of line items, unique per
// (catalogID, options) merge key. Mutations from the speech gateway and the
// HTTP API arrive on different goroutines, so the store carries its own lock.
type Store struct {
	mu    sync.Mutex
	items []domain.LineItem
}

func NewStore() *Store {
	return &Store{}
}

// Add merges the incoming item into an existing entry with the same merge key
// or appends it, and returns the resulting entry.
func (s *Store) Add(item domain.LineItem) domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(item)
}

func (s *Store) addLocked(item domain.LineItem) domain.LineItem {
	item.Recalc()
	for i := range s.items {
		if s.items[i].Key() == item.Key() {
			s.items[i].Quantity += item.Quantity
			s.items[i].Recalc()
			return s.items[i]
		}
	}
	s.items = append(s.items, item)
	return item
}

// UpdateQuantity sets the quantity of the matching entry and recomputes its
// line total.
func (s *Store) UpdateQuantity(catalogID string, options domain.OptionSet, quantity int) (domain.LineItem, error) {
	if quantity <= 0 {
		return domain.LineItem{}, ErrNonPositiveQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].CatalogID == catalogID && s.items[i].Options.Equal(options) {
			s.items[i].Quantity = quantity
			s.items[i].Recalc()
			return s.items[i], nil
		}
	}
	return domain.LineItem{}, ErrNotFound
}

// ChangeOptions atomically re-keys the entry matching (catalogID, oldOptions)
// to newOptions with the given quantity and unit price. If the new key
// collides with another entry the quantities merge like Add; no quantity is
// ever lost.
func (s *Store) ChangeOptions(catalogID string, oldOptions, newOptions domain.OptionSet, quantity, unitPrice int) (domain.LineItem, error) {
	if quantity <= 0 {
		return domain.LineItem{}, ErrNonPositiveQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.items {
		if s.items[i].CatalogID == catalogID && s.items[i].Options.Equal(oldOptions) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.LineItem{}, ErrNotFound
	}

	updated := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	updated.Options = newOptions
	updated.Quantity = quantity
	updated.UnitPrice = unitPrice
	return s.addLocked(updated), nil
}

// Remove deletes the matching entry. Absence is not an error.
func (s *Store) Remove(catalogID string, options domain.OptionSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].CatalogID == catalogID && s.items[i].Options.Equal(options) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Get returns the entry matching the merge key.
func (s *Store) Get(catalogID string, options domain.OptionSet) (domain.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.CatalogID == catalogID && item.Options.Equal(options) {
			return item, true
		}
	}
	return domain.LineItem{}, false
}

// Items returns a snapshot in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total sums all line totals.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.LineTotal
	}
	return total
}
