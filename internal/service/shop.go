package service

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/model"
)

// BuyCooldown is the anti-spam gap between purchases.
const BuyCooldown = 3 * time.Second

// Shop-related errors.
var (
	ErrItemNotFound    = errors.New("shop item not found")
	ErrItemExists      = errors.New("shop item already exists")
	ErrInvalidItem     = errors.New("item needs a name and a positive price")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// ShopService holds the admin-editable item list and handles purchases.
// Items are keyed by lowercased name.
type ShopService struct {
	mu    sync.RWMutex
	items map[string]model.ShopItem

	ledger    *economy.Ledger
	cooldowns *economy.CooldownStore
	now       func() time.Time
}

// NewShopService creates an empty ShopService. now defaults to time.Now
// when nil.
func NewShopService(ledger *economy.Ledger, cooldowns *economy.CooldownStore, now func() time.Time) *ShopService {
	if now == nil {
		now = time.Now
	}
	return &ShopService{
		items:     make(map[string]model.ShopItem),
		ledger:    ledger,
		cooldowns: cooldowns,
		now:       now,
	}
}

func itemKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddItem adds a new item. Admin-gated by the handler.
func (s *ShopService) AddItem(item model.ShopItem) error {
	if itemKey(item.Name) == "" || item.Price <= 0 {
		return ErrInvalidItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := itemKey(item.Name)
	if _, exists := s.items[key]; exists {
		return ErrItemExists
	}
	s.items[key] = item
	return nil
}

// UpdateItem replaces an existing item. Admin-gated by the handler.
func (s *ShopService) UpdateItem(item model.ShopItem) error {
	if itemKey(item.Name) == "" || item.Price <= 0 {
		return ErrInvalidItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := itemKey(item.Name)
	if _, exists := s.items[key]; !exists {
		return ErrItemNotFound
	}
	s.items[key] = item
	return nil
}

// DeleteItem removes an item. Admin-gated by the handler.
func (s *ShopService) DeleteItem(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := itemKey(name)
	if _, exists := s.items[key]; !exists {
		return ErrItemNotFound
	}
	delete(s.items, key)
	return nil
}

// Item looks up an item by name.
func (s *ShopService) Item(name string) (model.ShopItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemKey(name)]
	return item, ok
}

// Items returns the catalog sorted by name.
func (s *ShopService) Items() []model.ShopItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ShopItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Buy purchases quantity of an item, deducting price times quantity.
func (s *ShopService) Buy(userID int64, name string, quantity int64) (model.ShopItem, int64, error) {
	if quantity <= 0 {
		return model.ShopItem{}, 0, ErrInvalidQuantity
	}

	item, ok := s.Item(name)
	if !ok {
		return model.ShopItem{}, 0, ErrItemNotFound
	}

	now := s.now()
	if ok, remaining := s.cooldowns.CheckShort(userID, model.ActionBuy, BuyCooldown, now); !ok {
		return model.ShopItem{}, 0, &CooldownError{Action: "buy", Remaining: remaining}
	}

	cost := item.Price * quantity
	if _, err := s.ledger.Adjust(userID, -cost); err != nil {
		return model.ShopItem{}, 0, err
	}

	s.cooldowns.RecordShort(userID, model.ActionBuy, now)
	return item, cost, nil
}

// Snapshot returns the catalog keyed by item key, for persistence.
func (s *ShopService) Snapshot() map[string]model.ShopItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.ShopItem, len(s.items))
	for key, item := range s.items {
		out[key] = item
	}
	return out
}

// Restore replaces the catalog with a loaded snapshot.
func (s *ShopService) Restore(items map[string]model.ShopItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]model.ShopItem, len(items))
	for key, item := range items {
		s.items[key] = item
	}
}
