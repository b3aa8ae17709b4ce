package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"marketflow/internal/domain"
	applog "marketflow/internal/log"
)

// OrderIDs hands out strictly increasing millisecond order ids. One generator is
// shared by every session so two orders placed in the same millisecond still
// differ.
type OrderIDs struct {
	mu   sync.Mutex
	last int64
}

// Next returns max(nowMillis, last+1, floor).
func (g *OrderIDs) Next(nowMillis, floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := max(nowMillis, g.last+1, floor)
	g.last = id
	return id
}

// OrderNumber is "MF" followed by the last six digits of id.
func OrderNumber(id int64) string {
	s := fmt.Sprintf("%06d", id)
	return "MF" + s[len(s)-6:]
}

// OrderRecorder captures the cart of one session into its persisted order list.
type OrderRecorder struct {
	store Storage
	key   string
	cart  *Cart
	ids   *OrderIDs

	// Now stamps new orders; tests pin it.
	Now func() time.Time

	mu sync.Mutex
}

func NewOrderRecorder(store Storage, key string, cart *Cart, ids *OrderIDs) *OrderRecorder {
	if ids == nil {
		ids = &OrderIDs{}
	}
	return &OrderRecorder{store: store, key: key, cart: cart, ids: ids, Now: time.Now}
}

// load returns the persisted list, newest first. Missing or corrupt data is an
// empty list; only storage read failures are errors.
func (r *OrderRecorder) load() ([]domain.Order, error) {
	data, err := r.store.Load(r.key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return []domain.Order{}, nil
	case err != nil:
		return nil, fmt.Errorf("load %q: %w", r.key, err)
	}
	orders, err := decodeOrders(data)
	if err != nil {
		applog.L().Warn("orders.load.corrupt", zap.String("key", r.key), zap.Error(err))
		return []domain.Order{}, nil
	}
	return orders, nil
}

func decodeOrders(data []byte) ([]domain.Order, error) {
	var raw []*domain.Order
	if err := decodeStored(data, &raw); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	for i, o := range raw {
		switch {
		case o == nil:
			return nil, fmt.Errorf("%w: order %d is null", domain.ErrStorageReadCorrupt, i)
		case o.ID <= 0:
			return nil, fmt.Errorf("%w: order id %d", domain.ErrStorageReadCorrupt, o.ID)
		case !o.Status.Valid():
			return nil, fmt.Errorf("%w: order %d has status %q", domain.ErrStorageReadCorrupt, o.ID, o.Status)
		case seen[o.ID]:
			return nil, fmt.Errorf("%w: duplicate order %d", domain.ErrStorageReadCorrupt, o.ID)
		}
		if err := checkLines(o.CartItems); err != nil {
			return nil, fmt.Errorf("order %d: %w", o.ID, err)
		}
		seen[o.ID] = true
		orders = append(orders, *o)
	}
	return orders, nil
}

// SaveOrder snapshots the cart into a processing order and prepends it to the
// order list. The cart itself is left untouched.
func (r *OrderRecorder) SaveOrder(meta domain.OrderMetadata) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return domain.Order{}, err
	}
	var floor int64
	if len(orders) > 0 {
		floor = orders[0].ID + 1
	}

	now := r.Now()
	lines := r.cart.Lines()
	id := r.ids.Next(now.UnixMilli(), floor)
	order := domain.Order{
		ID:            id,
		OrderNumber:   OrderNumber(id),
		Date:          now,
		Status:        domain.OrderProcessing,
		Items:         len(lines),
		Total:         linesTotal(lines),
		CartItems:     lines,
		OrderMetadata: meta,
	}

	next := append([]domain.Order{order}, orders...)
	data, err := json.Marshal(next)
	if err != nil {
		return domain.Order{}, &domain.StorageWriteError{Key: r.key, Err: err}
	}
	if err := r.store.Save(r.key, data); err != nil {
		return domain.Order{}, &domain.StorageWriteError{Key: r.key, Err: err}
	}
	return order, nil
}

// GetOrders returns the order list, newest first.
func (r *OrderRecorder) GetOrders() ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *OrderRecorder) GetOrder(id int64) (domain.Order, error) {
	orders, err := r.GetOrders()
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
}

// FindOrders matches query case-insensitively against order numbers.
// A blank query finds nothing.
func (r *OrderRecorder) FindOrders(query string) ([]domain.Order, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	orders, err := r.GetOrders()
	if err != nil {
		return nil, err
	}
	out := []domain.Order{}
	if q == "" {
		return out, nil
	}
	for _, o := range orders {
		if strings.Contains(strings.ToUpper(o.OrderNumber), q) {
			out = append(out, o)
		}
	}
	return out, nil
}
