// Package cart owns the shopping cart state: an ordered item list keyed by
// product code plus the open/closed UI flag. Every item mutation is written
// through to durable storage; hydration happens at construction.
package cart

import (
	"encoding/json"
	"sync"

	"foodexplorer/internal/catalog"
	"foodexplorer/internal/logging"
)

// StorageKey is the fixed durable key holding the serialized cart.
const StorageKey = "food-explorer-cart"

// Item is the cart projection of a product. JSON field names round-trip
// exactly for compatibility with previously stored carts.
type Item struct {
	Code           string `json:"code"`
	Name           string `json:"product_name"`
	Brand          string `json:"brands"`
	ImageURL       string `json:"image_url,omitempty"`
	NutritionGrade string `json:"nutrition_grades,omitempty"`
	Quantity       int    `json:"quantity"`
}

// Storage is the durable key-value backend the store persists to.
type Storage interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
}

// Snapshot is an immutable view of the cart handed to subscribers.
type Snapshot struct {
	Items  []Item
	IsOpen bool
}

// Store owns cart state. It is the single writer of its storage key.
type Store struct {
	mu      sync.Mutex
	items   []Item // insertion order = display order
	isOpen  bool
	storage Storage
	subs    []func(Snapshot)
}

// NewStore creates a cart store hydrated from storage. A missing or
// malformed stored value degrades silently to an empty cart.
func NewStore(storage Storage) *Store {
	s := &Store{storage: storage}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	if s.storage == nil {
		return
	}
	data, err := s.storage.Get(StorageKey)
	if err != nil {
		logging.Cart("No stored cart, starting empty: %v", err)
		return
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		logging.CartError("Failed to parse stored cart, starting empty: %v", err)
		return
	}
	// Drop entries that violate the quantity invariant rather than
	// carrying them into memory.
	for _, it := range items {
		if it.Quantity >= 1 && it.Code != "" {
			s.items = append(s.items, it)
		}
	}
	logging.Cart("Hydrated cart with %d items", len(s.items))
}

// persist writes the full item list to storage. Failures are logged and
// swallowed; persistence is best effort.
func (s *Store) persist() {
	if s.storage == nil {
		return
	}
	data, err := json.Marshal(s.items)
	if err != nil {
		logging.CartError("Failed to serialize cart: %v", err)
		return
	}
	if err := s.storage.Put(StorageKey, data); err != nil {
		logging.CartError("Failed to save cart: %v", err)
	}
}

// Subscribe registers a callback invoked with a snapshot after every change.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// notify must be called without the lock held.
func (s *Store) notify() {
	snap := s.State()
	s.mu.Lock()
	subs := append(make([]func(Snapshot), 0, len(s.subs)), s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// State returns a snapshot of the current cart.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:  append([]Item(nil), s.items...),
		IsOpen: s.isOpen,
	}
}

// AddItem projects a product into the cart. An existing entry has its
// quantity incremented; a new entry is appended with quantity 1.
func (s *Store) AddItem(p catalog.Product) {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].Code == p.Code {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, Item{
			Code:           p.Code,
			Name:           p.Name,
			Brand:          p.PrimaryBrand(),
			ImageURL:       p.ImageURL(),
			NutritionGrade: p.NutritionGrade,
			Quantity:       1,
		})
	}
	s.persist()
	s.mu.Unlock()

	logging.Cart("AddItem %s", p.Code)
	s.notify()
}

// RemoveItem deletes the entry for code. No-op if absent.
func (s *Store) RemoveItem(code string) {
	s.mu.Lock()
	changed := s.removeLocked(code)
	if changed {
		s.persist()
	}
	s.mu.Unlock()

	if changed {
		logging.Cart("RemoveItem %s", code)
		s.notify()
	}
}

func (s *Store) removeLocked(code string) bool {
	for i := range s.items {
		if s.items[i].Code == code {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets the quantity for an existing entry. A quantity <= 0
// removes the entry; an absent code is a no-op.
func (s *Store) UpdateQuantity(code string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(code)
		return
	}

	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].Code == code {
			s.items[i].Quantity = quantity
			changed = true
			break
		}
	}
	if changed {
		s.persist()
	}
	s.mu.Unlock()

	if changed {
		logging.Cart("UpdateQuantity %s -> %d", code, quantity)
		s.notify()
	}
}

// ClearCart empties the item list.
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.items = nil
	s.persist()
	s.mu.Unlock()

	logging.Cart("ClearCart")
	s.notify()
}

// ToggleCart flips the open/closed UI flag.
func (s *Store) ToggleCart() {
	s.mu.Lock()
	s.isOpen = !s.isOpen
	s.mu.Unlock()
	s.notify()
}

// OpenCart sets the UI flag to open.
func (s *Store) OpenCart() {
	s.mu.Lock()
	s.isOpen = true
	s.mu.Unlock()
	s.notify()
}

// CloseCart sets the UI flag to closed.
func (s *Store) CloseCart() {
	s.mu.Lock()
	s.isOpen = false
	s.mu.Unlock()
	s.notify()
}

// TotalItems returns the sum of all quantities, not the entry count.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}
