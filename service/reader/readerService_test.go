package reader

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
)

type fakeStore struct {
	readers  map[string]*model.Reader
	children map[string]*model.Child

	detachedReaders []string
	detachedChildren []string
	reassigned      [][2]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		readers:  map[string]*model.Reader{},
		children: map[string]*model.Child{},
	}
}

var _ Repo = (*fakeStore)(nil)
var _ RentalRepo = (*fakeStore)(nil)

func (f *fakeStore) ExecuteTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (f *fakeStore) List(ctx context.Context) ([]model.Reader, error) {
	out := []model.Reader{}
	for _, r := range f.readers {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*model.Reader, error) {
	r, ok := f.readers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) Create(ctx context.Context, rd *model.Reader) error {
	cp := *rd
	f.readers[rd.ID] = &cp
	return nil
}

func (f *fakeStore) Update(ctx context.Context, id string, fields map[string]any) error {
	r := f.readers[id]
	if v, ok := fields["parent_name"].(string); ok {
		r.ParentName = v
	}
	if v, ok := fields["phone1"].(string); ok {
		r.Phone1 = v
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	delete(f.readers, id)
	for cid, c := range f.children {
		if c.ReaderID == id {
			delete(f.children, cid)
		}
	}
	return nil
}

func (f *fakeStore) ListChildren(ctx context.Context, readerID string) ([]model.Child, error) {
	out := []model.Child{}
	for _, c := range f.children {
		if c.ReaderID == readerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetChild(ctx context.Context, childID string) (*model.Child, error) {
	c, ok := f.children[childID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) GetChildOfReader(ctx context.Context, readerID, childID string) (*model.Child, error) {
	c, ok := f.children[childID]
	if !ok || c.ReaderID != readerID {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) CreateChild(ctx context.Context, c *model.Child) error {
	cp := *c
	f.children[c.ID] = &cp
	return nil
}

func (f *fakeStore) CreateChildTx(ctx context.Context, tx *sqlx.Tx, c *model.Child) error {
	return f.CreateChild(ctx, c)
}

func (f *fakeStore) UpdateChild(ctx context.Context, childID string, fields map[string]any) error {
	c := f.children[childID]
	if v, ok := fields["name"].(string); ok {
		c.Name = v
	}
	if v, ok := fields["birth_date"].(string); ok {
		c.BirthDate = v
	}
	return nil
}

func (f *fakeStore) DeleteChild(ctx context.Context, tx *sqlx.Tx, childID string) error {
	delete(f.children, childID)
	return nil
}

func (f *fakeStore) ChildIDs(ctx context.Context, tx *sqlx.Tx, readerID string) ([]string, error) {
	out := []string{}
	for id, c := range f.children {
		if c.ReaderID == readerID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeStore) MoveChildren(ctx context.Context, tx *sqlx.Tx, fromReader, toReader string) error {
	for _, c := range f.children {
		if c.ReaderID == fromReader {
			c.ReaderID = toReader
		}
	}
	return nil
}

func (f *fakeStore) SetChildReader(ctx context.Context, childID, readerID string) error {
	f.children[childID].ReaderID = readerID
	return nil
}

func (f *fakeStore) DetachReader(ctx context.Context, tx *sqlx.Tx, readerID string) error {
	f.detachedReaders = append(f.detachedReaders, readerID)
	return nil
}

func (f *fakeStore) DetachChild(ctx context.Context, tx *sqlx.Tx, childID string) error {
	f.detachedChildren = append(f.detachedChildren, childID)
	return nil
}

func (f *fakeStore) ReassignReader(ctx context.Context, tx *sqlx.Tx, fromReader, toReader string) error {
	f.reassigned = append(f.reassigned, [2]string{fromReader, toReader})
	return nil
}

func newTestService(f *fakeStore) Service {
	return New(f, f, slog.New(slog.DiscardHandler))
}

func seedReader(f *fakeStore, id, name string) {
	f.readers[id] = &model.Reader{ID: id, ParentName: name, ParentSurname: "Петренко", Phone1: "+380501112233"}
}

func seedChild(f *fakeStore, id, readerID, name string) {
	f.children[id] = &model.Child{ID: id, ReaderID: readerID, Name: name}
}

func TestCreate_WithChildrenAndDefaultAddress(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	rd, err := svc.Create(context.Background(), CreateInput{
		ParentName: "Оксана",
		Phone1:     "+380501112233",
		Children:   []ChildInput{{Name: "Марія"}, {Name: "Іван"}},
	})
	require.NoError(t, err)
	require.Equal(t, model.DefaultAddress, rd.Address)
	require.Len(t, rd.Children, 2)
}

func TestGet_Unknown(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	_, err := svc.Get(context.Background(), "missing")
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestDelete_DetachesRentals(t *testing.T) {
	f := newFakeStore()
	seedReader(f, "r1", "Оксана")
	seedChild(f, "c1", "r1", "Марія")
	seedChild(f, "c2", "r1", "Іван")
	svc := newTestService(f)

	require.NoError(t, svc.Delete(context.Background(), "r1"))
	require.NotContains(t, f.readers, "r1")
	require.Empty(t, f.children)
	require.Equal(t, []string{"r1"}, f.detachedReaders)
	require.ElementsMatch(t, []string{"c1", "c2"}, f.detachedChildren)
}

func TestMerge(t *testing.T) {
	f := newFakeStore()
	seedReader(f, "src", "Оксана")
	seedReader(f, "dst", "Ольга")
	seedChild(f, "c1", "src", "Марія")
	svc := newTestService(f)

	merged, err := svc.Merge(context.Background(), "src", "dst")
	require.NoError(t, err)
	require.Equal(t, "dst", merged.ID)
	require.Len(t, merged.Children, 1)
	require.NotContains(t, f.readers, "src")
	require.Equal(t, [][2]string{{"src", "dst"}}, f.reassigned)
}

func TestMerge_SelfRejected(t *testing.T) {
	f := newFakeStore()
	seedReader(f, "r1", "Оксана")
	svc := newTestService(f)

	_, err := svc.Merge(context.Background(), "r1", "r1")
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestMerge_UnknownTarget(t *testing.T) {
	f := newFakeStore()
	seedReader(f, "src", "Оксана")
	svc := newTestService(f)

	_, err := svc.Merge(context.Background(), "src", "missing")
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	require.Contains(t, f.readers, "src")
}

func TestConvertToChild(t *testing.T) {
	f := newFakeStore()
	seedReader(f, "r1", "Оксана")
	seedReader(f, "parent", "Ольга")
	seedChild(f, "c1", "r1", "Марія")
	svc := newTestService(f)

	parent, err := svc.ConvertToChild(context.Background(), "r1", "parent")
	require.NoError(t, err)
	require.NotContains(t, f.readers, "r1")

	// The converted reader and their former child both belong to the parent.
	require.Len(t, parent.Children, 2)
	names := []string{parent.Children[0].Name, parent.Children[1].Name}
	require.ElementsMatch(t, []string{"Оксана", "Марія"}, names)
	require.Equal(t, [][2]string{{"r1", "parent"}}, f.reassigned)
}

func TestUpdateChild_WrongReader(t *testing.T) {
	f := newFakeStore()
	seedReader(f, "r1", "Оксана")
	seedReader(f, "r2", "Ольга")
	seedChild(f, "c1", "r1", "Марія")
	svc := newTestService(f)

	name := "Марійка"
	_, err := svc.UpdateChild(context.Background(), "r2", "c1", ChildUpdateInput{Name: &name})
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestDeleteChild_DetachesRentals(t *testing.T) {
	f := newFakeStore()
	seedReader(f, "r1", "Оксана")
	seedChild(f, "c1", "r1", "Марія")
	svc := newTestService(f)

	require.NoError(t, svc.DeleteChild(context.Background(), "r1", "c1"))
	require.Empty(t, f.children)
	require.Equal(t, []string{"c1"}, f.detachedChildren)
}

func TestReassignChild(t *testing.T) {
	f := newFakeStore()
	seedReader(f, "r1", "Оксана")
	seedReader(f, "r2", "Ольга")
	seedChild(f, "c1", "r1", "Марія")
	svc := newTestService(f)

	c, err := svc.ReassignChild(context.Background(), "c1", "r2")
	require.NoError(t, err)
	require.Equal(t, "r2", c.ReaderID)
}
