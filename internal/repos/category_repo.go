package repos

import (
	"github.com/jmoiron/sqlx"

	"marketflow/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) All() ([]domain.Category, error) {
	var rows []struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
	}
	if err := r.db.Select(&rows, `SELECT id, name FROM categories ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Category{ID: row.ID, Name: row.Name, Slug: domain.Slugify(row.Name)})
	}
	return out, nil
}
