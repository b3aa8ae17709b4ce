package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"marketflow/internal/domain"
)

// KVRepo stores session documents in the kv_store table of the catalog database.
type KVRepo struct{ db *sqlx.DB }

func NewKVRepo(db *sqlx.DB) *KVRepo { return &KVRepo{db: db} }

// Load returns domain.ErrNotFound when key has never been written.
func (r *KVRepo) Load(key string) ([]byte, error) {
	var v string
	err := r.db.Get(&v, `SELECT v FROM kv_store WHERE k = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// Save upserts key. REPLACE INTO is understood by both sqlite and mysql.
func (r *KVRepo) Save(key string, data []byte) error {
	_, err := r.db.Exec(`REPLACE INTO kv_store(k, v) VALUES(?, ?)`, key, string(data))
	return err
}
