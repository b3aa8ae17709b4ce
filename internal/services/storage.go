package services

// Storage is the durable key-value collaborator behind carts and order lists.
// Load returns domain.ErrNotFound for a key that has never been saved.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

const (
	cartKeyPrefix   = "marketflow-cart:"
	ordersKeyPrefix = "marketflow-orders:"
)

func CartKey(sessionID string) string   { return cartKeyPrefix + sessionID }
func OrdersKey(sessionID string) string { return ordersKeyPrefix + sessionID }
