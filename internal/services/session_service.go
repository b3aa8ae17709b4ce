package services

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// Session is the per-browser state: one cart ledger and its order history.
type Session struct {
	ID     string
	Cart   *Cart
	Orders *OrderRecorder
}

// SessionService hydrates sessions from storage and keeps the most recently
// used ones in memory. An evicted session is rebuilt from storage on next use.
type SessionService struct {
	Store Storage
	IDs   *OrderIDs

	mu    sync.Mutex
	cache *lru.Cache
}

func NewSessionService(store Storage, size int) (*SessionService, error) {
	if size <= 0 {
		return nil, errors.New("session cache size must be positive")
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return &SessionService{Store: store, IDs: &OrderIDs{}, cache: cache}, nil
}

// Get returns the session for sid, loading its cart from storage on first use.
func (s *SessionService) Get(sid string) (*Session, error) {
	if sid == "" {
		return nil, errors.New("empty session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(sid); ok {
		return v.(*Session), nil
	}
	cart, err := NewCart(s.Store, CartKey(sid))
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:     sid,
		Cart:   cart,
		Orders: NewOrderRecorder(s.Store, OrdersKey(sid), cart, s.IDs),
	}
	s.cache.Add(sid, sess)
	return sess, nil
}
