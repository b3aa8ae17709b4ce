package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketflow/internal/domain"
	applog "marketflow/internal/log"
)

// Cart is one session's ledger of cart lines, in first-add order, with at most
// one line per product. Every mutation writes the whole ledger to storage; when
// that write fails the ledger keeps its previous contents and the caller gets a
// *domain.StorageWriteError.
type Cart struct {
	store Storage
	key   string

	mu    sync.Mutex
	lines []domain.CartLine
}

// NewCart hydrates the ledger stored under key. Missing or corrupt data yields an
// empty cart (corruption is logged); a storage read failure is returned.
func NewCart(store Storage, key string) (*Cart, error) {
	c := &Cart{store: store, key: key}
	data, err := store.Load(key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	lines, err := decodeLines(data)
	if err != nil {
		applog.L().Warn("cart.load.corrupt", zap.String("key", key), zap.Error(err))
		return c, nil
	}
	c.lines = lines
	return c, nil
}

// decodeStored decodes exactly one JSON document into v, rejecting unknown
// fields and trailing data.
func decodeStored(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageReadCorrupt, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after document", domain.ErrStorageReadCorrupt)
	}
	return nil
}

func decodeLines(data []byte) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := decodeStored(data, &lines); err != nil {
		return nil, err
	}
	if err := checkLines(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func checkLines(lines []domain.CartLine) error {
	seen := make(map[int]bool, len(lines))
	for _, l := range lines {
		switch {
		case l.ProductID <= 0:
			return fmt.Errorf("%w: product id %d", domain.ErrStorageReadCorrupt, l.ProductID)
		case l.Quantity <= 0:
			return fmt.Errorf("%w: product %d has quantity %d", domain.ErrStorageReadCorrupt, l.ProductID, l.Quantity)
		case l.Price.IsNegative():
			return fmt.Errorf("%w: product %d has negative price", domain.ErrStorageReadCorrupt, l.ProductID)
		case seen[l.ProductID]:
			return fmt.Errorf("%w: duplicate line for product %d", domain.ErrStorageReadCorrupt, l.ProductID)
		}
		seen[l.ProductID] = true
	}
	return nil
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}

// commit persists next and, on success, makes it the ledger. Callers hold c.mu.
func (c *Cart) commit(next []domain.CartLine) error {
	if next == nil {
		next = []domain.CartLine{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return &domain.StorageWriteError{Key: c.key, Err: err}
	}
	if err := c.store.Save(c.key, data); err != nil {
		return &domain.StorageWriteError{Key: c.key, Err: err}
	}
	c.lines = next
	return nil
}

func indexOf(lines []domain.CartLine, productID int) int {
	for i, l := range lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddToCart adds one unit of p. A new line snapshots p's current price.
func (c *Cart) AddToCart(p domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := cloneLines(c.lines)
	if i := indexOf(next, p.ID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Images:    append([]string(nil), p.Images...),
			Quantity:  1,
		})
	}
	return c.commit(next)
}

// UpdateQuantity sets the line's quantity exactly. A quantity of zero or less
// removes the line, and an unknown productID leaves the ledger unchanged.
func (c *Cart) UpdateQuantity(productID, quantity int) error {
	if quantity <= 0 {
		return c.RemoveFromCart(productID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	next := cloneLines(c.lines)
	if i := indexOf(next, productID); i >= 0 {
		next[i].Quantity = quantity
	}
	return c.commit(next)
}

func (c *Cart) RemoveFromCart(productID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]domain.CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		if l.ProductID != productID {
			next = append(next, l.Clone())
		}
	}
	return c.commit(next)
}

func (c *Cart) ClearCart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit([]domain.CartLine{})
}

// Lines returns a deep copy of the ledger.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLines(c.lines)
}

// Quantity reports how many units of productID the ledger holds.
func (c *Cart) Quantity(productID int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.lines, productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Total is Σ price × quantity.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return linesTotal(c.lines)
}

// ItemCount is Σ quantity, not the number of lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) PointsEarned() int64 { return PointsEarned(c.Total()) }

func linesTotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

type CartView struct {
	Items        []domain.CartLine    `json:"items"`
	ItemCount    int                  `json:"itemCount"`
	Subtotal     decimal.Decimal      `json:"subtotal"`
	PointsEarned int64                `json:"pointsEarned"`
	Estimate     domain.QuickEstimate `json:"estimate"`
}

// View is a consistent snapshot of the ledger with its quick estimate.
func (c *Cart) View() CartView {
	lines := c.Lines()
	total := linesTotal(lines)
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return CartView{
		Items:        lines,
		ItemCount:    n,
		Subtotal:     total,
		PointsEarned: PointsEarned(total),
		Estimate:     QuickEstimate(total),
	}
}
