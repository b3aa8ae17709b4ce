package repos

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	applog "marketflow/internal/log"
)

// OpenDB connects to the catalog database, ensures the schema exists and seeds
// the demo catalog when the products table is empty. driver is "sqlite" or "mysql".
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// every sqlite connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	if err := seedIfEmpty(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return db, nil
}

// Statements run one at a time; the mysql driver rejects multi-statement Exec by default.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY,
  name VARCHAR(100) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY,
  name VARCHAR(200) NOT NULL,
  description TEXT,
  price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
  original_price DECIMAL(10,2) NULL,
  category VARCHAR(100) NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  images_json TEXT NOT NULL,
  featured INTEGER NOT NULL DEFAULT 0,
  organic INTEGER NOT NULL DEFAULT 0,
  fresh INTEGER NOT NULL DEFAULT 0
)`,
	// cart and order documents, keyed per browsing session
	`CREATE TABLE IF NOT EXISTS kv_store(
  k VARCHAR(191) PRIMARY KEY,
  v MEDIUMTEXT NOT NULL
)`,
}

func ensureSchema(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed.catalog", zap.String("driver", db.DriverName()))

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO categories(id,name) VALUES
	  (1,'Fresh Fruits'),
	  (2,'Vegetables'),
	  (3,'Dairy & Eggs'),
	  (4,'Bakery'),
	  (5,'Pantry'),
	  (6,'Beverages')`); err != nil {
		return err
	}

	if _, err := tx.Exec(`INSERT INTO products
	  (id,name,description,price,original_price,category,stock,images_json,featured,organic,fresh) VALUES
	  (1,'Organic Bananas','Sweet ripe bananas, sold per bunch',2.49,2.99,'Fresh Fruits',120,'["/media/products/bananas.jpg"]',1,1,1),
	  (2,'Honeycrisp Apples','Crisp and juicy, 1 kg bag',4.99,NULL,'Fresh Fruits',80,'["/media/products/apples.jpg"]',1,0,1),
	  (3,'Organic Spinach','Tender baby spinach leaves, washed and ready',3.49,NULL,'Vegetables',45,'["/media/products/spinach.jpg"]',0,1,1),
	  (4,'Vine Tomatoes','Ripened on the vine, 500 g',3.29,3.79,'Vegetables',60,'["/media/products/tomatoes.jpg"]',1,0,1),
	  (5,'Free-Range Eggs','Dozen large brown eggs',5.49,NULL,'Dairy & Eggs',40,'["/media/products/eggs.jpg"]',0,0,1),
	  (6,'Whole Milk','Fresh pasteurised whole milk, 2 L',3.99,NULL,'Dairy & Eggs',50,'["/media/products/milk.jpg"]',0,0,1),
	  (7,'Sourdough Loaf','Slow-fermented country sourdough',6.50,NULL,'Bakery',25,'["/media/products/sourdough.jpg"]',1,0,1),
	  (8,'Extra Virgin Olive Oil','Cold-pressed, 750 ml',12.99,15.99,'Pantry',30,'["/media/products/olive-oil.jpg"]',0,1,0),
	  (9,'Basmati Rice','Aged long-grain rice, 2 kg',8.99,NULL,'Pantry',35,'["/media/products/rice.jpg"]',0,0,0),
	  (10,'Aged Cheddar','Sharp cheddar aged 12 months, 250 g',7.25,NULL,'Dairy & Eggs',0,'["/media/products/cheddar.jpg"]',0,0,0),
	  (11,'Cold Brew Coffee','Smooth cold brew concentrate, 1 L',9.99,11.49,'Beverages',20,'["/media/products/cold-brew.jpg"]',1,0,0),
	  (12,'Sparkling Water','Natural mineral water, 6 x 500 ml',4.49,NULL,'Beverages',70,'["/media/products/sparkling.jpg"]',0,0,0)`); err != nil {
		return err
	}

	return tx.Commit()
}
