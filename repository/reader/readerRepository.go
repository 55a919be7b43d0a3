// repository/reader/readerRepository.go
package reader

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SenyaGur/ukrlibrary/model"
)

var dialect = goqu.Dialect("postgres")

type Repo interface {
	ExecuteTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error

	// Resolver lookups, run inside the rental admission transaction.
	FindIDByPhone(ctx context.Context, tx *sqlx.Tx, phone string) (string, error)
	CreateFromRenter(ctx context.Context, tx *sqlx.Tx, name, surname, phone string) (string, error)

	List(ctx context.Context) ([]model.Reader, error)
	GetByID(ctx context.Context, id string) (*model.Reader, error)
	Create(ctx context.Context, rd *model.Reader) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, tx *sqlx.Tx, id string) error

	ListChildren(ctx context.Context, readerID string) ([]model.Child, error)
	GetChild(ctx context.Context, childID string) (*model.Child, error)
	GetChildOfReader(ctx context.Context, readerID, childID string) (*model.Child, error)
	CreateChild(ctx context.Context, c *model.Child) error
	CreateChildTx(ctx context.Context, tx *sqlx.Tx, c *model.Child) error
	UpdateChild(ctx context.Context, childID string, fields map[string]any) error
	DeleteChild(ctx context.Context, tx *sqlx.Tx, childID string) error
	ChildIDs(ctx context.Context, tx *sqlx.Tx, readerID string) ([]string, error)
	MoveChildren(ctx context.Context, tx *sqlx.Tx, fromReader, toReader string) error
	SetChildReader(ctx context.Context, childID, readerID string) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) ExecuteTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *repo) FindIDByPhone(ctx context.Context, tx *sqlx.Tx, phone string) (string, error) {
	// Exact string match only; no phone normalization.
	const q = `
		SELECT id FROM readers
		WHERE phone1 = $1 OR phone2 = $1
		LIMIT 1`
	var id string
	err := tx.QueryRowContext(ctx, q, phone).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *repo) CreateFromRenter(ctx context.Context, tx *sqlx.Tx, name, surname, phone string) (string, error) {
	const q = `
		INSERT INTO readers (id, parent_name, parent_surname, phone1, address)
		VALUES ($1,$2,$3,$4,$5)`
	id := uuid.NewString()
	_, err := tx.ExecContext(ctx, q, id, name, surname, phone, model.DefaultAddress)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *repo) List(ctx context.Context) ([]model.Reader, error) {
	const q = `
		SELECT * FROM readers
		ORDER BY parent_surname, parent_name`
	out := []model.Reader{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) GetByID(ctx context.Context, id string) (*model.Reader, error) {
	var rd model.Reader
	if err := r.db.GetContext(ctx, &rd, `SELECT * FROM readers WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *repo) Create(ctx context.Context, rd *model.Reader) error {
	const q = `
		INSERT INTO readers (id, parent_name, parent_surname, phone1, phone2, email, address, comment)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`
	return r.db.QueryRowContext(ctx, q,
		rd.ID, rd.ParentName, rd.ParentSurname, rd.Phone1, rd.Phone2, rd.Email, rd.Address, rd.Comment,
	).Scan(&rd.CreatedAt)
}

func (r *repo) Update(ctx context.Context, id string, fields map[string]any) error {
	q, args, err := dialect.Update("readers").
		Set(goqu.Record(fields)).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM children WHERE reader_id = $1`, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM readers WHERE id = $1`, id)
	return err
}

func (r *repo) ListChildren(ctx context.Context, readerID string) ([]model.Child, error) {
	const q = `
		SELECT * FROM children
		WHERE reader_id = $1
		ORDER BY surname, name`
	out := []model.Child{}
	if err := r.db.SelectContext(ctx, &out, q, readerID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) GetChild(ctx context.Context, childID string) (*model.Child, error) {
	var c model.Child
	if err := r.db.GetContext(ctx, &c, `SELECT * FROM children WHERE id = $1`, childID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) GetChildOfReader(ctx context.Context, readerID, childID string) (*model.Child, error) {
	var c model.Child
	const q = `SELECT * FROM children WHERE id = $1 AND reader_id = $2`
	if err := r.db.GetContext(ctx, &c, q, childID, readerID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) CreateChild(ctx context.Context, c *model.Child) error {
	const q = `
		INSERT INTO children (id, reader_id, name, surname, birth_date, gender)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.ReaderID, c.Name, c.Surname, c.BirthDate, c.Gender)
	return err
}

func (r *repo) CreateChildTx(ctx context.Context, tx *sqlx.Tx, c *model.Child) error {
	const q = `
		INSERT INTO children (id, reader_id, name, surname, birth_date, gender)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := tx.ExecContext(ctx, q, c.ID, c.ReaderID, c.Name, c.Surname, c.BirthDate, c.Gender)
	return err
}

func (r *repo) UpdateChild(ctx context.Context, childID string, fields map[string]any) error {
	q, args, err := dialect.Update("children").
		Set(goqu.Record(fields)).
		Where(goqu.C("id").Eq(childID)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *repo) DeleteChild(ctx context.Context, tx *sqlx.Tx, childID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM children WHERE id = $1`, childID)
	return err
}

func (r *repo) ChildIDs(ctx context.Context, tx *sqlx.Tx, readerID string) ([]string, error) {
	out := []string{}
	const q = `SELECT id FROM children WHERE reader_id = $1`
	if err := tx.SelectContext(ctx, &out, q, readerID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) MoveChildren(ctx context.Context, tx *sqlx.Tx, fromReader, toReader string) error {
	const q = `UPDATE children SET reader_id = $2 WHERE reader_id = $1`
	_, err := tx.ExecContext(ctx, q, fromReader, toReader)
	return err
}

func (r *repo) SetChildReader(ctx context.Context, childID, readerID string) error {
	const q = `UPDATE children SET reader_id = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, childID, readerID)
	return err
}
