package auth

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/SenyaGur/ukrlibrary/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id, role string) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (id, email, password_hash, full_name, role)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Role,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	const q = `
		SELECT * FROM users
		WHERE lower(email) = lower($1)`
	if err := r.db.GetContext(ctx, u, q, email); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	if err := r.db.GetContext(ctx, u, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	out := []model.User{}
	const q = `SELECT * FROM users ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, passwordHash)
	return err
}

func (r *repo) UpdateRole(ctx context.Context, id, role string) error {
	const q = `
		UPDATE users
		SET role = $2, updated_at = now()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, role)
	return err
}
