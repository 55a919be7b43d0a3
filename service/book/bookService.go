// Package book manages the catalog: book CRUD, filtering, duplication,
// forced availability, media attachments and bulk import.
package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
)

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

// RentalRepo is the slice of the rental store the catalog needs: the delete
// guard and the force-available sweep.
type RentalRepo interface {
	ActiveForBookExists(ctx context.Context, tx *sqlx.Tx, bookID string) (bool, error)
	ForceReturnApproved(ctx context.Context, tx *sqlx.Tx, bookID string, at time.Time) error
	SetBookAvailable(ctx context.Context, tx *sqlx.Tx, bookID string, available bool) error
}

// CatalogRepo supplies the get-or-create lookups used by bulk import.
type CatalogRepo interface {
	EnsureCategory(ctx context.Context, name string) (string, error)
	EnsureSeries(ctx context.Context, name string) (string, error)
	EnsurePublisher(ctx context.Context, name, city string) (string, error)
}

type CreateInput struct {
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	Category        string  `json:"category" validate:"required"`
	CategoryID      *string `json:"category_id"`
	SeriesID        *string `json:"series_id"`
	PublisherID     *string `json:"publisher_id"`
	CoverColor      string  `json:"cover_color"`
	CoverImageURL   *string `json:"cover_image_url"`
	Description     *string `json:"description"`
	Age             *string `json:"age"`
	PublicationYear *int    `json:"publication_year"`
	ISBN            *string `json:"isbn"`
	InventoryNumber *string `json:"inventory_number"`
	Supplier        *string `json:"supplier"`
	NewBook         bool    `json:"new_book"`
}

// UpdateInput carries a partial update: nil fields are left untouched.
type UpdateInput struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	Category        *string `json:"category"`
	CategoryID      *string `json:"category_id"`
	SeriesID        *string `json:"series_id"`
	PublisherID     *string `json:"publisher_id"`
	CoverColor      *string `json:"cover_color"`
	CoverImageURL   *string `json:"cover_image_url"`
	Description     *string `json:"description"`
	Age             *string `json:"age"`
	PublicationYear *int    `json:"publication_year"`
	ISBN            *string `json:"isbn"`
	InventoryNumber *string `json:"inventory_number"`
	Supplier        *string `json:"supplier"`
	NewBook         *bool   `json:"new_book"`
}

type ImportRow struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Category        string  `json:"category"`
	Series          string  `json:"series"`
	Publisher       string  `json:"publisher"`
	PublisherCity   string  `json:"publisher_city"`
	CoverColor      string  `json:"cover_color"`
	Description     *string `json:"description"`
	Age             *string `json:"age"`
	PublicationYear *int    `json:"publication_year"`
	ISBN            *string `json:"isbn"`
	InventoryNumber *string `json:"inventory_number"`
	Supplier        *string `json:"supplier"`
}

type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

type Service interface {
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	Get(ctx context.Context, id string) (*model.Book, error)
	FilterValues(ctx context.Context) (*model.BookFilterValues, error)
	Create(ctx context.Context, in CreateInput) (*model.Book, error)
	Update(ctx context.Context, id string, in UpdateInput) (*model.Book, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string) (*model.Book, error)
	ForceAvailable(ctx context.Context, id string) (*model.Book, error)
	Import(ctx context.Context, rows []ImportRow) (*ImportResult, error)

	ListMedia(ctx context.Context, bookID string) ([]model.BookMedia, error)
	AddMedia(ctx context.Context, bookID, fileURL, fileType string) (*model.BookMedia, error)
	DeleteMedia(ctx context.Context, mediaID string) error
}

type service struct {
	r   Repo
	rr  RentalRepo
	cat CatalogRepo
	log *slog.Logger
}

func New(r Repo, rr RentalRepo, cat CatalogRepo, log *slog.Logger) Service {
	return &service{r: r, rr: rr, cat: cat, log: log}
}

func (s *service) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	return s.r.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id string) (*model.Book, error) {
	b, err := s.r.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("book")
	}
	return b, err
}

func (s *service) FilterValues(ctx context.Context) (*model.BookFilterValues, error) {
	return s.r.FilterValues(ctx)
}

func (s *service) Create(ctx context.Context, in CreateInput) (*model.Book, error) {
	b := &model.Book{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Author:          in.Author,
		Category:        in.Category,
		CategoryID:      in.CategoryID,
		SeriesID:        in.SeriesID,
		PublisherID:     in.PublisherID,
		CoverColor:      in.CoverColor,
		CoverImageURL:   in.CoverImageURL,
		Available:       true,
		Description:     in.Description,
		Age:             in.Age,
		PublicationYear: in.PublicationYear,
		ISBN:            in.ISBN,
		InventoryNumber: in.InventoryNumber,
		Supplier:        in.Supplier,
		NewBook:         in.NewBook,
	}
	if b.CoverColor == "" {
		b.CoverColor = model.DefaultCoverColor
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("book created", "id", b.ID, "title", b.Title)
	return b, nil
}

func (s *service) Update(ctx context.Context, id string, in UpdateInput) (*model.Book, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	set := func(col string, v any) { fields[col] = v }
	if in.Title != nil {
		set("title", *in.Title)
	}
	if in.Author != nil {
		set("author", *in.Author)
	}
	if in.Category != nil {
		set("category", *in.Category)
	}
	if in.CategoryID != nil {
		set("category_id", *in.CategoryID)
	}
	if in.SeriesID != nil {
		set("series_id", *in.SeriesID)
	}
	if in.PublisherID != nil {
		set("publisher_id", *in.PublisherID)
	}
	if in.CoverColor != nil {
		set("cover_color", *in.CoverColor)
	}
	if in.CoverImageURL != nil {
		set("cover_image_url", *in.CoverImageURL)
	}
	if in.Description != nil {
		set("description", *in.Description)
	}
	if in.Age != nil {
		set("age", *in.Age)
	}
	if in.PublicationYear != nil {
		set("publication_year", *in.PublicationYear)
	}
	if in.ISBN != nil {
		set("isbn", *in.ISBN)
	}
	if in.InventoryNumber != nil {
		set("inventory_number", *in.InventoryNumber)
	}
	if in.Supplier != nil {
		set("supplier", *in.Supplier)
	}
	if in.NewBook != nil {
		set("new_book", *in.NewBook)
	}
	if len(fields) == 0 {
		return nil, apperrors.Validation("no fields to update")
	}
	if err := s.r.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete refuses while any approved, pending or queued request references the
// book; otherwise media and rental history cascade with the row.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	err := s.r.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		active, err := s.rr.ActiveForBookExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if active {
			return apperrors.Conflict("book has active rental requests")
		}
		return s.r.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("book deleted", "id", id)
	return nil
}

// Duplicate creates a fresh copy of the book. The copy is always available,
// regardless of the original's loan state.
func (s *service) Duplicate(ctx context.Context, id string) (*model.Book, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *src
	cp.ID = uuid.NewString()
	cp.Available = true
	cp.Publisher, cp.Series = nil, nil
	if err := s.r.Create(ctx, &cp); err != nil {
		return nil, err
	}
	s.log.Info("book duplicated", "source_id", id, "id", cp.ID)
	return s.Get(ctx, cp.ID)
}

// ForceAvailable returns the book to circulation by hand: any approved
// request is closed as returned and availability is restored, atomically.
// Queued requests keep their positions.
func (s *service) ForceAvailable(ctx context.Context, id string) (*model.Book, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	err := s.r.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.rr.ForceReturnApproved(ctx, tx, id, time.Now().UTC()); err != nil {
			return err
		}
		return s.rr.SetBookAvailable(ctx, tx, id, true)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("book forced available", "id", id)
	return s.Get(ctx, id)
}

func (s *service) Import(ctx context.Context, rows []ImportRow) (*ImportResult, error) {
	res := &ImportResult{Errors: []string{}}
	for i, row := range rows {
		if err := s.importRow(ctx, row); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d (%s): %v", i+1, row.Title, err))
			continue
		}
		res.Success++
	}
	s.log.Info("book import finished", "success", res.Success, "failed", res.Failed)
	return res, nil
}

func (s *service) importRow(ctx context.Context, row ImportRow) error {
	if row.Title == "" || row.Author == "" || row.Category == "" {
		return apperrors.Validation("title, author and category are required")
	}
	in := CreateInput{
		Title:           row.Title,
		Author:          row.Author,
		Category:        row.Category,
		CoverColor:      row.CoverColor,
		Description:     row.Description,
		Age:             row.Age,
		PublicationYear: row.PublicationYear,
		ISBN:            row.ISBN,
		InventoryNumber: row.InventoryNumber,
		Supplier:        row.Supplier,
	}
	catID, err := s.cat.EnsureCategory(ctx, row.Category)
	if err != nil {
		return err
	}
	in.CategoryID = &catID
	if row.Series != "" {
		id, err := s.cat.EnsureSeries(ctx, row.Series)
		if err != nil {
			return err
		}
		in.SeriesID = &id
	}
	if row.Publisher != "" {
		id, err := s.cat.EnsurePublisher(ctx, row.Publisher, row.PublisherCity)
		if err != nil {
			return err
		}
		in.PublisherID = &id
	}
	_, err = s.Create(ctx, in)
	return err
}

func (s *service) ListMedia(ctx context.Context, bookID string) ([]model.BookMedia, error) {
	if _, err := s.Get(ctx, bookID); err != nil {
		return nil, err
	}
	return s.r.ListMedia(ctx, bookID)
}

func (s *service) AddMedia(ctx context.Context, bookID, fileURL, fileType string) (*model.BookMedia, error) {
	if _, err := s.Get(ctx, bookID); err != nil {
		return nil, err
	}
	order, err := s.r.NextDisplayOrder(ctx, bookID)
	if err != nil {
		return nil, err
	}
	m := &model.BookMedia{
		ID:           uuid.NewString(),
		BookID:       bookID,
		FileURL:      fileURL,
		FileType:     fileType,
		DisplayOrder: order,
	}
	if err := s.r.AddMedia(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) DeleteMedia(ctx context.Context, mediaID string) error {
	if _, err := s.r.GetMedia(ctx, mediaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("media")
		}
		return err
	}
	return s.r.DeleteMedia(ctx, mediaID)
}
