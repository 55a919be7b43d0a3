// repository/book/bookRepository.go
package book

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/SenyaGur/ukrlibrary/model"
)

var dialect = goqu.Dialect("postgres")

type Repo interface {
	ExecuteTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error

	Create(ctx context.Context, b *model.Book) error
	GetByID(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	FilterValues(ctx context.Context) (*model.BookFilterValues, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, tx *sqlx.Tx, id string) error

	ListMedia(ctx context.Context, bookID string) ([]model.BookMedia, error)
	GetMedia(ctx context.Context, mediaID string) (*model.BookMedia, error)
	AddMedia(ctx context.Context, m *model.BookMedia) error
	NextDisplayOrder(ctx context.Context, bookID string) (int, error)
	DeleteMedia(ctx context.Context, mediaID string) error
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

// bookRow carries the joined publisher/series columns alongside the book.
type bookRow struct {
	model.Book
	PublisherName *string `db:"publisher_name"`
	PublisherCity *string `db:"publisher_city"`
	SeriesName    *string `db:"series_name"`
}

func (row *bookRow) toBook() model.Book {
	b := row.Book
	if row.PublisherName != nil {
		city := ""
		if row.PublisherCity != nil {
			city = *row.PublisherCity
		}
		b.Publisher = &model.BookPublisher{Name: *row.PublisherName, City: city}
	}
	if row.SeriesName != nil {
		b.Series = &model.BookSeries{Name: *row.SeriesName}
	}
	return b
}

func joined() *goqu.SelectDataset {
	return dialect.From(goqu.T("books").As("b")).
		LeftJoin(goqu.T("publishers").As("p"), goqu.On(goqu.Ex{"p.id": goqu.I("b.publisher_id")})).
		LeftJoin(goqu.T("series").As("s"), goqu.On(goqu.Ex{"s.id": goqu.I("b.series_id")})).
		Select(
			goqu.I("b.*"),
			goqu.I("p.name").As("publisher_name"),
			goqu.I("p.city").As("publisher_city"),
			goqu.I("s.name").As("series_name"),
		)
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books
			(id, title, author, category, category_id, series_id, publisher_id,
			 cover_color, cover_image_url, available, description, age,
			 publication_year, isbn, inventory_number, supplier, new_book)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		b.ID, b.Title, b.Author, b.Category, b.CategoryID, b.SeriesID, b.PublisherID,
		b.CoverColor, b.CoverImageURL, b.Available, b.Description, b.Age,
		b.PublicationYear, b.ISBN, b.InventoryNumber, b.Supplier, b.NewBook,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	q, args, err := joined().Where(goqu.I("b.id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var row bookRow
	if err := r.db.GetContext(ctx, &row, q, args...); err != nil {
		return nil, err
	}
	b := row.toBook()
	return &b, nil
}

func (r *repo) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	ds := joined()
	if f.Category != "" {
		ds = ds.Where(goqu.I("b.category").Eq(f.Category))
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("b.title").ILike(term),
			goqu.I("b.author").ILike(term),
		))
	}
	if f.Available != nil {
		ds = ds.Where(goqu.I("b.available").Eq(*f.Available))
	}
	ds = ds.Order(goqu.I("b.title").Asc())

	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows := []bookRow{}
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]model.Book, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toBook())
	}
	return out, nil
}

func (r *repo) FilterValues(ctx context.Context) (*model.BookFilterValues, error) {
	fv := &model.BookFilterValues{
		Categories: []string{},
		Authors:    []string{},
		Ages:       []string{},
		Publishers: []string{},
		Series:     []string{},
	}
	queries := []struct {
		dst *[]string
		q   string
	}{
		{&fv.Categories, `SELECT DISTINCT category FROM books WHERE category <> '' ORDER BY category`},
		{&fv.Authors, `SELECT DISTINCT author FROM books WHERE author <> '' ORDER BY author`},
		{&fv.Ages, `SELECT DISTINCT age FROM books WHERE age IS NOT NULL AND age <> '' ORDER BY age`},
		{&fv.Publishers, `SELECT DISTINCT name FROM publishers ORDER BY name`},
		{&fv.Series, `SELECT DISTINCT name FROM series ORDER BY name`},
	}
	for _, item := range queries {
		if err := r.db.SelectContext(ctx, item.dst, item.q); err != nil {
			return nil, err
		}
	}
	return fv, nil
}

func (r *repo) Update(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = goqu.L("now()")
	q, args, err := dialect.Update("books").
		Set(goqu.Record(fields)).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

// Delete cascades media and rental requests before removing the book row.
// The caller checks the active-rental guard first, in the same transaction.
func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_media WHERE book_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rental_requests WHERE book_id = $1`, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	return err
}

func (r *repo) ListMedia(ctx context.Context, bookID string) ([]model.BookMedia, error) {
	const q = `
		SELECT * FROM book_media
		WHERE book_id = $1
		ORDER BY display_order`
	out := []model.BookMedia{}
	if err := r.db.SelectContext(ctx, &out, q, bookID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) GetMedia(ctx context.Context, mediaID string) (*model.BookMedia, error) {
	var m model.BookMedia
	if err := r.db.GetContext(ctx, &m, `SELECT * FROM book_media WHERE id = $1`, mediaID); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) AddMedia(ctx context.Context, m *model.BookMedia) error {
	const q = `
		INSERT INTO book_media (id, book_id, file_url, file_type, display_order)
		VALUES ($1,$2,$3,$4,$5)`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.BookID, m.FileURL, m.FileType, m.DisplayOrder)
	return err
}

func (r *repo) NextDisplayOrder(ctx context.Context, bookID string) (int, error) {
	const q = `
		SELECT COALESCE(MAX(display_order) + 1, 0)
		FROM book_media
		WHERE book_id = $1`
	var next int
	err := r.db.QueryRowContext(ctx, q, bookID).Scan(&next)
	return next, err
}

func (r *repo) DeleteMedia(ctx context.Context, mediaID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM book_media WHERE id = $1`, mediaID)
	return err
}
