// repository/rental/rentalRepository.go
package rental

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/SenyaGur/ukrlibrary/model"
)

var dialect = goqu.Dialect("postgres")

type Repo interface {
	// ExecuteTransaction runs fn in a transaction, committing on nil and
	// rolling back on error.
	ExecuteTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error

	// Book row lock: serializes every read-modify-write touching one book's
	// availability or queue positions.
	GetBookForUpdate(ctx context.Context, tx *sqlx.Tx, bookID string) (available bool, err error)
	SetBookAvailable(ctx context.Context, tx *sqlx.Tx, bookID string, available bool) error

	Insert(ctx context.Context, tx *sqlx.Tx, r *model.RentalRequest) error
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.RentalRequest, error)
	MarkApproved(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error
	MarkReturned(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error
	MarkDeclined(ctx context.Context, tx *sqlx.Tx, id string) error

	// Queue operations, scoped per book.
	MaxQueuePosition(ctx context.Context, tx *sqlx.Tx, bookID string) (int, error)
	NextInQueue(ctx context.Context, tx *sqlx.Tx, bookID string) (*model.RentalRequest, error)
	PromoteToPending(ctx context.Context, tx *sqlx.Tx, id string) error
	ShiftQueueAfter(ctx context.Context, tx *sqlx.Tx, bookID string, position int) error

	// Collaborator-facing policy.
	ActiveForBookExists(ctx context.Context, tx *sqlx.Tx, bookID string) (bool, error)
	ForceReturnApproved(ctx context.Context, tx *sqlx.Tx, bookID string, at time.Time) error
	DetachReader(ctx context.Context, tx *sqlx.Tx, readerID string) error
	DetachChild(ctx context.Context, tx *sqlx.Tx, childID string) error
	ReassignReader(ctx context.Context, tx *sqlx.Tx, fromReader, toReader string) error

	List(ctx context.Context, readerID string, status string) ([]model.RentalRequest, error)
	ListQueue(ctx context.Context, bookID string) ([]model.QueueEntry, error)
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

func (r *repo) GetBookForUpdate(ctx context.Context, tx *sqlx.Tx, bookID string) (bool, error) {
	const q = `
		SELECT available
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var available bool
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&available)
	return available, err
}

func (r *repo) SetBookAvailable(ctx context.Context, tx *sqlx.Tx, bookID string, available bool) error {
	const q = `
		UPDATE books
		SET available = $2,
			updated_at = now()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookID, available)
	return err
}

func (r *repo) Insert(ctx context.Context, tx *sqlx.Tx, req *model.RentalRequest) error {
	const q = `
		INSERT INTO rental_requests
			(id, book_id, book_title, renter_name, renter_phone, renter_email,
			 rental_duration, status, queue_position, approved_at, reader_id, child_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING requested_at`
	return tx.QueryRowContext(ctx, q,
		req.ID, req.BookID, req.BookTitle, req.RenterName, req.RenterPhone, req.RenterEmail,
		req.RentalDuration, req.Status, req.QueuePosition, req.ApprovedAt, req.ReaderID, req.ChildID,
	).Scan(&req.RequestedAt)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.RentalRequest, error) {
	const q = `
		SELECT *
		FROM rental_requests
		WHERE id = $1
		FOR UPDATE`
	var req model.RentalRequest
	if err := tx.GetContext(ctx, &req, q, id); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repo) MarkApproved(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error {
	const q = `
		UPDATE rental_requests
		SET status = 'approved',
			approved_at = $2,
			queue_position = NULL
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, at)
	return err
}

func (r *repo) MarkReturned(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error {
	const q = `
		UPDATE rental_requests
		SET status = 'returned',
			return_date = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, at)
	return err
}

func (r *repo) MarkDeclined(ctx context.Context, tx *sqlx.Tx, id string) error {
	const q = `
		UPDATE rental_requests
		SET status = 'declined',
			queue_position = NULL
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

func (r *repo) MaxQueuePosition(ctx context.Context, tx *sqlx.Tx, bookID string) (int, error) {
	const q = `
		SELECT COALESCE(MAX(queue_position), 0)
		FROM rental_requests
		WHERE book_id = $1 AND status = 'queued'`
	var max int
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&max)
	return max, err
}

func (r *repo) NextInQueue(ctx context.Context, tx *sqlx.Tx, bookID string) (*model.RentalRequest, error) {
	const q = `
		SELECT *
		FROM rental_requests
		WHERE book_id = $1 AND status = 'queued'
		ORDER BY queue_position ASC
		LIMIT 1`
	var req model.RentalRequest
	if err := tx.GetContext(ctx, &req, q, bookID); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repo) PromoteToPending(ctx context.Context, tx *sqlx.Tx, id string) error {
	const q = `
		UPDATE rental_requests
		SET status = 'pending',
			queue_position = NULL
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

func (r *repo) ShiftQueueAfter(ctx context.Context, tx *sqlx.Tx, bookID string, position int) error {
	const q = `
		UPDATE rental_requests
		SET queue_position = queue_position - 1
		WHERE book_id = $1 AND status = 'queued' AND queue_position > $2`
	_, err := tx.ExecContext(ctx, q, bookID, position)
	return err
}

func (r *repo) ActiveForBookExists(ctx context.Context, tx *sqlx.Tx, bookID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM rental_requests
			WHERE book_id = $1 AND status IN ('approved', 'pending', 'queued')
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) ForceReturnApproved(ctx context.Context, tx *sqlx.Tx, bookID string, at time.Time) error {
	const q = `
		UPDATE rental_requests
		SET status = 'returned',
			return_date = $2
		WHERE book_id = $1 AND status = 'approved'`
	_, err := tx.ExecContext(ctx, q, bookID, at)
	return err
}

func (r *repo) DetachReader(ctx context.Context, tx *sqlx.Tx, readerID string) error {
	const q = `UPDATE rental_requests SET reader_id = NULL WHERE reader_id = $1`
	_, err := tx.ExecContext(ctx, q, readerID)
	return err
}

func (r *repo) DetachChild(ctx context.Context, tx *sqlx.Tx, childID string) error {
	const q = `UPDATE rental_requests SET child_id = NULL WHERE child_id = $1`
	_, err := tx.ExecContext(ctx, q, childID)
	return err
}

func (r *repo) ReassignReader(ctx context.Context, tx *sqlx.Tx, fromReader, toReader string) error {
	const q = `UPDATE rental_requests SET reader_id = $2 WHERE reader_id = $1`
	_, err := tx.ExecContext(ctx, q, fromReader, toReader)
	return err
}

func (r *repo) List(ctx context.Context, readerID, status string) ([]model.RentalRequest, error) {
	ds := dialect.From("rental_requests").Select(goqu.Star())
	if readerID != "" {
		ds = ds.Where(goqu.C("reader_id").Eq(readerID))
	}
	if status != "" {
		ds = ds.Where(goqu.C("status").Eq(status))
	}
	ds = ds.Order(goqu.C("requested_at").Desc())

	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	out := []model.RentalRequest{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ListQueue(ctx context.Context, bookID string) ([]model.QueueEntry, error) {
	const q = `
		SELECT id, renter_name, queue_position, requested_at
		FROM rental_requests
		WHERE book_id = $1 AND status = 'queued'
		ORDER BY queue_position ASC`
	out := []model.QueueEntry{}
	if err := r.db.SelectContext(ctx, &out, q, bookID); err != nil {
		return nil, err
	}
	return out, nil
}
