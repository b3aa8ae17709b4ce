package repos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modernc.org/sqlite"

	"marketflow/internal/domain"
)

func memDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenDBSeedsCatalog(t *testing.T) {
	db := memDB(t)

	prods, err := NewProductRepo(db).All()
	require.NoError(t, err)
	require.Len(t, prods, 12)

	bananas := prods[0]
	assert.Equal(t, 1, bananas.ID)
	assert.Equal(t, "Organic Bananas", bananas.Name)
	assert.True(t, decimal.RequireFromString("2.49").Equal(bananas.Price))
	assert.True(t, bananas.OriginalPrice.Valid)
	assert.True(t, bananas.OnSale())
	assert.True(t, bananas.Featured)
	assert.True(t, bananas.Organic)
	assert.Equal(t, []string{"/media/products/bananas.jpg"}, bananas.Images)

	assert.False(t, prods[1].OriginalPrice.Valid)
	assert.False(t, prods[9].InStock(), "aged cheddar is out of stock")

	cats, err := NewCategoryRepo(db).All()
	require.NoError(t, err)
	require.Len(t, cats, 6)
	assert.Equal(t, "dairy-&-eggs", cats[2].Slug)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := memDB(t)
	require.NoError(t, ensureSchema(db))
	require.NoError(t, seedIfEmpty(db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM products`))
	assert.Equal(t, 12, n)
}

func TestProductImagesMustBeJSON(t *testing.T) {
	db := memDB(t)
	_, err := db.Exec(`UPDATE products SET images_json = 'not json' WHERE id = 3`)
	require.NoError(t, err)

	_, err = NewProductRepo(db).All()
	assert.ErrorContains(t, err, "product 3 images")
}

// countingDriver wraps the sqlite driver and tracks connections left open.
type countingDriver struct{ open atomic.Int32 }

func (d *countingDriver) Open(name string) (driver.Conn, error) {
	c, err := (&sqlite.Driver{}).Open(name)
	if err != nil {
		return nil, err
	}
	d.open.Add(1)
	return &countedConn{Conn: c, d: d}, nil
}

type countedConn struct {
	driver.Conn
	d *countingDriver
}

func (c *countedConn) Close() error {
	c.d.open.Add(-1)
	return c.Conn.Close()
}

var counting = &countingDriver{}

func init() { sql.Register("sqlite-counting", counting) }

func TestOpenDBClosesOnSetupFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.db")
	pre, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	// a products table without the catalog columns makes seeding fail
	_, err = pre.Exec(`CREATE TABLE products(id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	require.NoError(t, pre.Close())

	db, err := OpenDB("sqlite-counting", path)
	assert.Nil(t, db)
	assert.ErrorContains(t, err, "seed")
	assert.Zero(t, counting.open.Load(), "connections left open")
}

func TestOpenDBPingFailure(t *testing.T) {
	db, err := OpenDB("sqlite-counting", filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	assert.Nil(t, db)
	assert.Error(t, err)
	assert.Zero(t, counting.open.Load(), "connections left open")
}

// kvContract runs the storage port behaviour every backend must share.
func kvContract(t *testing.T, kv KV) {
	t.Helper()

	_, err := kv.Load("marketflow-cart:absent")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, kv.Save("marketflow-cart:a", []byte(`[]`)))
	require.NoError(t, kv.Save("marketflow-cart:a", []byte(`[{"productId":1}]`)))
	got, err := kv.Load("marketflow-cart:a")
	require.NoError(t, err)
	assert.Equal(t, `[{"productId":1}]`, string(got))

	// returned bytes are the caller's to keep
	got[0] = 'X'
	again, err := kv.Load("marketflow-cart:a")
	require.NoError(t, err)
	assert.Equal(t, byte('['), again[0])

	_, err = kv.Load("marketflow-cart:b")
	assert.ErrorIs(t, err, domain.ErrNotFound, "keys are independent")
}

func TestKVRepo(t *testing.T) {
	kvContract(t, NewKVRepo(memDB(t)))
}

func TestMemRepo(t *testing.T) {
	r, err := NewMemRepo()
	require.NoError(t, err)
	kvContract(t, r)
}

func TestRedisRepo(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	t.Cleanup(func() { _ = client.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	prefix := "marketflow-test:" + time.Now().Format("150405.000000") + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
	})
	kvContract(t, NewRedisRepo(client, prefix))
}

func TestOpenStorage(t *testing.T) {
	db := memDB(t)

	kv, closeFn, err := OpenStorage(StorageSQL, db, "")
	require.NoError(t, err)
	assert.IsType(t, &KVRepo{}, kv)
	assert.NoError(t, closeFn())

	kv, _, err = OpenStorage(StorageMemory, db, "")
	require.NoError(t, err)
	assert.IsType(t, &MemRepo{}, kv)

	_, _, err = OpenStorage("floppy", db, "")
	assert.Error(t, err)

	_, _, err = OpenStorage(StorageRedis, db, "127.0.0.1:1")
	assert.Error(t, err, "unreachable redis fails at startup")
}
