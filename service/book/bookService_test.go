package book

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
)

type fakeRepo struct {
	books        map[string]*model.Book
	media        map[string]*model.BookMedia
	lastUpdate   map[string]any
	deleted      []string
	activeBooks  map[string]bool // book id -> has active rentals
	forcedReturn []string
	available    map[string]bool
	categories   map[string]string
	series       map[string]string
	publishers   map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:       map[string]*model.Book{},
		media:       map[string]*model.BookMedia{},
		activeBooks: map[string]bool{},
		available:   map[string]bool{},
		categories:  map[string]string{},
		series:      map[string]string{},
		publishers:  map[string]string{},
	}
}

var _ Repo = (*fakeRepo)(nil)
var _ RentalRepo = (*fakeRepo)(nil)
var _ CatalogRepo = (*fakeRepo)(nil)

func (f *fakeRepo) ExecuteTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (f *fakeRepo) Create(ctx context.Context, b *model.Book) error {
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	f.books[b.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) List(ctx context.Context, flt model.BookFilter) ([]model.Book, error) {
	out := []model.Book{}
	for _, b := range f.books {
		if flt.Category != "" && b.Category != flt.Category {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeRepo) FilterValues(ctx context.Context) (*model.BookFilterValues, error) {
	return &model.BookFilterValues{}, nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	f.lastUpdate = fields
	b := f.books[id]
	if v, ok := fields["title"].(string); ok {
		b.Title = v
	}
	if v, ok := fields["author"].(string); ok {
		b.Author = v
	}
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	delete(f.books, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) ListMedia(ctx context.Context, bookID string) ([]model.BookMedia, error) {
	out := []model.BookMedia{}
	for _, m := range f.media {
		if m.BookID == bookID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetMedia(ctx context.Context, mediaID string) (*model.BookMedia, error) {
	m, ok := f.media[mediaID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepo) AddMedia(ctx context.Context, m *model.BookMedia) error {
	cp := *m
	f.media[m.ID] = &cp
	return nil
}

func (f *fakeRepo) NextDisplayOrder(ctx context.Context, bookID string) (int, error) {
	max := -1
	for _, m := range f.media {
		if m.BookID == bookID && m.DisplayOrder > max {
			max = m.DisplayOrder
		}
	}
	return max + 1, nil
}

func (f *fakeRepo) DeleteMedia(ctx context.Context, mediaID string) error {
	delete(f.media, mediaID)
	return nil
}

func (f *fakeRepo) ActiveForBookExists(ctx context.Context, tx *sqlx.Tx, bookID string) (bool, error) {
	return f.activeBooks[bookID], nil
}

func (f *fakeRepo) ForceReturnApproved(ctx context.Context, tx *sqlx.Tx, bookID string, at time.Time) error {
	f.forcedReturn = append(f.forcedReturn, bookID)
	return nil
}

func (f *fakeRepo) SetBookAvailable(ctx context.Context, tx *sqlx.Tx, bookID string, available bool) error {
	f.available[bookID] = available
	if b, ok := f.books[bookID]; ok {
		b.Available = available
	}
	return nil
}

func (f *fakeRepo) EnsureCategory(ctx context.Context, name string) (string, error) {
	if id, ok := f.categories[name]; ok {
		return id, nil
	}
	id := "cat-" + name
	f.categories[name] = id
	return id, nil
}

func (f *fakeRepo) EnsureSeries(ctx context.Context, name string) (string, error) {
	if id, ok := f.series[name]; ok {
		return id, nil
	}
	id := "ser-" + name
	f.series[name] = id
	return id, nil
}

func (f *fakeRepo) EnsurePublisher(ctx context.Context, name, city string) (string, error) {
	if id, ok := f.publishers[name]; ok {
		return id, nil
	}
	id := "pub-" + name
	f.publishers[name] = id
	return id, nil
}

func newTestService(f *fakeRepo) Service {
	return New(f, f, f, slog.New(slog.DiscardHandler))
}

func seedBook(f *fakeRepo, id string) *model.Book {
	b := &model.Book{
		ID:        id,
		Title:     "Кобзар",
		Author:    "Тарас Шевченко",
		Category:  "Поезія",
		Available: true,
	}
	f.books[id] = b
	return b
}

func TestCreate_DefaultCoverColor(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)

	b, err := svc.Create(context.Background(), CreateInput{
		Title: "Кобзар", Author: "Тарас Шевченко", Category: "Поезія",
	})
	require.NoError(t, err)
	require.Equal(t, model.DefaultCoverColor, b.CoverColor)
	require.True(t, b.Available)
}

func TestUpdate_PartialFields(t *testing.T) {
	f := newFakeRepo()
	seedBook(f, "b1")
	svc := newTestService(f)

	title := "Кобзар (2-ге видання)"
	b, err := svc.Update(context.Background(), "b1", UpdateInput{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, b.Title)
	require.Equal(t, "Тарас Шевченко", b.Author)

	// Only the provided column reaches the store.
	require.Contains(t, f.lastUpdate, "title")
	require.NotContains(t, f.lastUpdate, "author")
}

func TestUpdate_NoFields(t *testing.T) {
	f := newFakeRepo()
	seedBook(f, "b1")
	svc := newTestService(f)

	_, err := svc.Update(context.Background(), "b1", UpdateInput{})
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestDelete_GuardedByActiveRentals(t *testing.T) {
	f := newFakeRepo()
	seedBook(f, "b1")
	f.activeBooks["b1"] = true
	svc := newTestService(f)

	err := svc.Delete(context.Background(), "b1")
	require.True(t, apperrors.Is(err, apperrors.CodeConflict))
	require.Contains(t, f.books, "b1")
}

func TestDelete_OK(t *testing.T) {
	f := newFakeRepo()
	seedBook(f, "b1")
	svc := newTestService(f)

	require.NoError(t, svc.Delete(context.Background(), "b1"))
	require.Equal(t, []string{"b1"}, f.deleted)
}

func TestDelete_UnknownBook(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)

	err := svc.Delete(context.Background(), "missing")
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestDuplicate_CopyIsAvailable(t *testing.T) {
	f := newFakeRepo()
	src := seedBook(f, "b1")
	src.Available = false
	svc := newTestService(f)

	cp, err := svc.Duplicate(context.Background(), "b1")
	require.NoError(t, err)
	require.NotEqual(t, src.ID, cp.ID)
	require.Equal(t, src.Title, cp.Title)
	require.True(t, cp.Available)
}

func TestForceAvailable(t *testing.T) {
	f := newFakeRepo()
	b := seedBook(f, "b1")
	b.Available = false
	svc := newTestService(f)

	out, err := svc.ForceAvailable(context.Background(), "b1")
	require.NoError(t, err)
	require.True(t, out.Available)
	require.Equal(t, []string{"b1"}, f.forcedReturn)
}

func TestImport(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)

	rows := []ImportRow{
		{Title: "Кобзар", Author: "Тарас Шевченко", Category: "Поезія", Series: "Класика", Publisher: "Основи", PublisherCity: "Київ"},
		{Title: "Лісова пісня", Author: "Леся Українка", Category: "Поезія"},
		{Title: "", Author: "Невідомий", Category: "Проза"},
	}
	res, err := svc.Import(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 2, res.Success)
	require.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)

	// Both rows share the get-or-created category.
	require.Len(t, f.categories, 1)
	require.Contains(t, f.categories, "Поезія")
	require.Contains(t, f.series, "Класика")
	require.Contains(t, f.publishers, "Основи")
	require.Len(t, f.books, 2)
}

func TestAddMedia_AppendsDisplayOrder(t *testing.T) {
	f := newFakeRepo()
	seedBook(f, "b1")
	svc := newTestService(f)

	first, err := svc.AddMedia(context.Background(), "b1", "/uploads/book-media/a.jpg", "image")
	require.NoError(t, err)
	second, err := svc.AddMedia(context.Background(), "b1", "/uploads/book-media/b.mp4", "video")
	require.NoError(t, err)
	require.Equal(t, 0, first.DisplayOrder)
	require.Equal(t, 1, second.DisplayOrder)
}

func TestDeleteMedia_Unknown(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)

	err := svc.DeleteMedia(context.Background(), "missing")
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
