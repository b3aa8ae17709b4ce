package repos

import (
	"github.com/hashicorp/go-memdb"

	"marketflow/internal/domain"
)

type memEntry struct {
	Key   string
	Value []byte
}

var memSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		"kv": {
			Name: "kv",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Key"},
				},
			},
		},
	},
}

// MemRepo is a process-local store; contents are lost on restart.
type MemRepo struct{ db *memdb.MemDB }

func NewMemRepo() (*MemRepo, error) {
	db, err := memdb.NewMemDB(memSchema)
	if err != nil {
		return nil, err
	}
	return &MemRepo{db: db}, nil
}

func (r *MemRepo) Load(key string) ([]byte, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First("kv", "id", key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	v := raw.(*memEntry).Value
	return append([]byte(nil), v...), nil
}

func (r *MemRepo) Save(key string, data []byte) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert("kv", &memEntry{Key: key, Value: append([]byte(nil), data...)}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
