// repository/catalog/catalogRepository.go
package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SenyaGur/ukrlibrary/model"
)

// Repo covers the name-keyed lookup tables: categories, series, publishers.
type Repo interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	UpdateCategory(ctx context.Context, id, name string) error
	DeleteCategory(ctx context.Context, id string) error

	ListSeries(ctx context.Context) ([]model.Series, error)
	GetSeries(ctx context.Context, id string) (*model.Series, error)
	CreateSeries(ctx context.Context, s *model.Series) error
	UpdateSeries(ctx context.Context, id, name string) error
	DeleteSeries(ctx context.Context, id string) error

	ListPublishers(ctx context.Context) ([]model.Publisher, error)
	GetPublisher(ctx context.Context, id string) (*model.Publisher, error)
	CreatePublisher(ctx context.Context, p *model.Publisher) error
	UpdatePublisher(ctx context.Context, id, name, city string) error
	DeletePublisher(ctx context.Context, id string) error

	// Get-or-create by name, used by the bulk book import.
	EnsureCategory(ctx context.Context, name string) (string, error)
	EnsureSeries(ctx context.Context, name string) (string, error)
	EnsurePublisher(ctx context.Context, name, city string) (string, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) ListCategories(ctx context.Context) ([]model.Category, error) {
	out := []model.Category{}
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM categories ORDER BY name`)
	return out, err
}

func (r *repo) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := r.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) CreateCategory(ctx context.Context, c *model.Category) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES ($1,$2)`, c.ID, c.Name)
	return err
}

func (r *repo) UpdateCategory(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, id, name)
	return err
}

func (r *repo) DeleteCategory(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

func (r *repo) ListSeries(ctx context.Context) ([]model.Series, error) {
	out := []model.Series{}
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM series ORDER BY name`)
	return out, err
}

func (r *repo) GetSeries(ctx context.Context, id string) (*model.Series, error) {
	var s model.Series
	if err := r.db.GetContext(ctx, &s, `SELECT * FROM series WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) CreateSeries(ctx context.Context, s *model.Series) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO series (id, name) VALUES ($1,$2)`, s.ID, s.Name)
	return err
}

func (r *repo) UpdateSeries(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE series SET name = $2 WHERE id = $1`, id, name)
	return err
}

func (r *repo) DeleteSeries(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM series WHERE id = $1`, id)
	return err
}

func (r *repo) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	out := []model.Publisher{}
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM publishers ORDER BY name`)
	return out, err
}

func (r *repo) GetPublisher(ctx context.Context, id string) (*model.Publisher, error) {
	var p model.Publisher
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM publishers WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) CreatePublisher(ctx context.Context, p *model.Publisher) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO publishers (id, name, city) VALUES ($1,$2,$3)`, p.ID, p.Name, p.City)
	return err
}

func (r *repo) UpdatePublisher(ctx context.Context, id, name, city string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE publishers SET name = $2, city = $3 WHERE id = $1`, id, name, city)
	return err
}

func (r *repo) DeletePublisher(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	return err
}

func (r *repo) EnsureCategory(ctx context.Context, name string) (string, error) {
	return r.ensure(ctx, `SELECT id FROM categories WHERE name = $1`,
		`INSERT INTO categories (id, name) VALUES ($1,$2)`, name)
}

func (r *repo) EnsureSeries(ctx context.Context, name string) (string, error) {
	return r.ensure(ctx, `SELECT id FROM series WHERE name = $1`,
		`INSERT INTO series (id, name) VALUES ($1,$2)`, name)
}

func (r *repo) EnsurePublisher(ctx context.Context, name, city string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM publishers WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	id = uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO publishers (id, name, city) VALUES ($1,$2,$3)`, id, name, city)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *repo) ensure(ctx context.Context, selectQ, insertQ, name string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, selectQ, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	id = uuid.NewString()
	if _, err := r.db.ExecContext(ctx, insertQ, id, name); err != nil {
		return "", err
	}
	return id, nil
}
