package repos

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"marketflow/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID            int                 `db:"id"`
	Name          string              `db:"name"`
	Description   string              `db:"description"`
	Price         decimal.Decimal     `db:"price"`
	OriginalPrice decimal.NullDecimal `db:"original_price"`
	Category      string              `db:"category"`
	Stock         int                 `db:"stock"`
	ImagesJSON    string              `db:"images_json"`
	Featured      bool                `db:"featured"`
	Organic       bool                `db:"organic"`
	Fresh         bool                `db:"fresh"`
}

// All returns every product in id order.
func (r *ProductRepo) All() ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.Select(&rows, `
	  SELECT
	    id, name, COALESCE(description,'') AS description, price, original_price,
	    category, stock, images_json, featured, organic, fresh
	  FROM products
	  ORDER BY id
	`); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		var images []string
		if err := json.Unmarshal([]byte(row.ImagesJSON), &images); err != nil {
			return nil, fmt.Errorf("product %d images: %w", row.ID, err)
		}
		out = append(out, domain.Product{
			ID:            row.ID,
			Name:          row.Name,
			Description:   row.Description,
			Price:         row.Price,
			OriginalPrice: row.OriginalPrice,
			Category:      row.Category,
			Stock:         row.Stock,
			Images:        images,
			Featured:      row.Featured,
			Organic:       row.Organic,
			Fresh:         row.Fresh,
		})
	}
	return out, nil
}
