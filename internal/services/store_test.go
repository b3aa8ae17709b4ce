package services_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketflow/internal/domain"
)

// fakeStore is an in-memory Storage whose reads and writes can be made to fail.
type fakeStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	saves    int
	failSave error
	failLoad error
}

func newFakeStore() *fakeStore { return &fakeStore{data: map[string][]byte{}} }

func (s *fakeStore) Load(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad != nil {
		return nil, s.failLoad
	}
	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *fakeStore) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	s.saves++
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *fakeStore) put(key, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = []byte(raw)
}

var errDisk = errors.New("disk unavailable")

// assertSameLines compares ledgers by value; decimals that are equal can
// differ in scale after a JSON round trip.
func assertSameLines(t *testing.T, want, got []domain.CartLine) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ProductID, got[i].ProductID, "line %d", i)
		assert.Equal(t, want[i].Quantity, got[i].Quantity, "line %d", i)
		assert.Equal(t, want[i].Name, got[i].Name, "line %d", i)
		assert.Equal(t, want[i].Images, got[i].Images, "line %d", i)
		assert.True(t, want[i].Price.Equal(got[i].Price), "line %d price %s != %s", i, want[i].Price, got[i].Price)
	}
}
