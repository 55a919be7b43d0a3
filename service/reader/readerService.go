// Package reader administers reader households: parent records with nested
// children, merging duplicate households, and converting a standalone reader
// into somebody's child. Rental history is always reassigned, never dropped.
package reader

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
)

type Repo interface {
	ExecuteTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error

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

// RentalRepo is the slice of the rental store reader administration needs:
// detaching and reassigning the soft references on rental requests.
type RentalRepo interface {
	DetachReader(ctx context.Context, tx *sqlx.Tx, readerID string) error
	DetachChild(ctx context.Context, tx *sqlx.Tx, childID string) error
	ReassignReader(ctx context.Context, tx *sqlx.Tx, fromReader, toReader string) error
}

type ChildInput struct {
	Name      string `json:"name" validate:"required"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birth_date"`
	Gender    string `json:"gender"`
}

type CreateInput struct {
	ParentName    string       `json:"parent_name" validate:"required"`
	ParentSurname string       `json:"parent_surname"`
	Phone1        string       `json:"phone1" validate:"required"`
	Phone2        *string      `json:"phone2"`
	Email         string       `json:"email"`
	Address       string       `json:"address"`
	Comment       string       `json:"comment"`
	Children      []ChildInput `json:"children"`
}

// UpdateInput carries a partial update: nil fields are left untouched.
type UpdateInput struct {
	ParentName    *string `json:"parent_name"`
	ParentSurname *string `json:"parent_surname"`
	Phone1        *string `json:"phone1"`
	Phone2        *string `json:"phone2"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	Comment       *string `json:"comment"`
}

type ChildUpdateInput struct {
	Name      *string `json:"name"`
	Surname   *string `json:"surname"`
	BirthDate *string `json:"birth_date"`
	Gender    *string `json:"gender"`
}

type Service interface {
	List(ctx context.Context) ([]model.Reader, error)
	Get(ctx context.Context, id string) (*model.Reader, error)
	Create(ctx context.Context, in CreateInput) (*model.Reader, error)
	Update(ctx context.Context, id string, in UpdateInput) (*model.Reader, error)
	Delete(ctx context.Context, id string) error

	// Merge folds the source reader into the target: children and rental
	// history move over, then the source row is deleted.
	Merge(ctx context.Context, sourceID, targetID string) (*model.Reader, error)

	// ConvertToChild turns a standalone reader into a child of the target
	// parent. The reader's own children and rentals move to the parent too.
	ConvertToChild(ctx context.Context, readerID, parentID string) (*model.Reader, error)

	AddChild(ctx context.Context, readerID string, in ChildInput) (*model.Child, error)
	UpdateChild(ctx context.Context, readerID, childID string, in ChildUpdateInput) (*model.Child, error)
	DeleteChild(ctx context.Context, readerID, childID string) error
	ReassignChild(ctx context.Context, childID, newReaderID string) (*model.Child, error)
}

type service struct {
	r   Repo
	rr  RentalRepo
	log *slog.Logger
}

func New(r Repo, rr RentalRepo, log *slog.Logger) Service {
	return &service{r: r, rr: rr, log: log}
}

func (s *service) List(ctx context.Context) ([]model.Reader, error) {
	readers, err := s.r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range readers {
		children, err := s.r.ListChildren(ctx, readers[i].ID)
		if err != nil {
			return nil, err
		}
		readers[i].Children = children
	}
	return readers, nil
}

func (s *service) Get(ctx context.Context, id string) (*model.Reader, error) {
	rd, err := s.r.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("reader")
	}
	if err != nil {
		return nil, err
	}
	rd.Children, err = s.r.ListChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	return rd, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*model.Reader, error) {
	rd := &model.Reader{
		ID:            uuid.NewString(),
		ParentName:    in.ParentName,
		ParentSurname: in.ParentSurname,
		Phone1:        in.Phone1,
		Phone2:        in.Phone2,
		Email:         in.Email,
		Address:       in.Address,
		Comment:       in.Comment,
	}
	if rd.Address == "" {
		rd.Address = model.DefaultAddress
	}
	if err := s.r.Create(ctx, rd); err != nil {
		return nil, err
	}
	for _, c := range in.Children {
		child := &model.Child{
			ID:        uuid.NewString(),
			ReaderID:  rd.ID,
			Name:      c.Name,
			Surname:   c.Surname,
			BirthDate: c.BirthDate,
			Gender:    c.Gender,
		}
		if err := s.r.CreateChild(ctx, child); err != nil {
			return nil, err
		}
	}
	s.log.Info("reader created", "id", rd.ID)
	return s.Get(ctx, rd.ID)
}

func (s *service) Update(ctx context.Context, id string, in UpdateInput) (*model.Reader, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.ParentName != nil {
		fields["parent_name"] = *in.ParentName
	}
	if in.ParentSurname != nil {
		fields["parent_surname"] = *in.ParentSurname
	}
	if in.Phone1 != nil {
		fields["phone1"] = *in.Phone1
	}
	if in.Phone2 != nil {
		fields["phone2"] = *in.Phone2
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	if in.Comment != nil {
		fields["comment"] = *in.Comment
	}
	if len(fields) == 0 {
		return nil, apperrors.Validation("no fields to update")
	}
	if err := s.r.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the reader and their children. Rental requests survive with
// their reader_id/child_id cleared.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	err := s.r.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		childIDs, err := s.r.ChildIDs(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, cid := range childIDs {
			if err := s.rr.DetachChild(ctx, tx, cid); err != nil {
				return err
			}
		}
		if err := s.rr.DetachReader(ctx, tx, id); err != nil {
			return err
		}
		return s.r.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("reader deleted", "id", id)
	return nil
}

func (s *service) Merge(ctx context.Context, sourceID, targetID string) (*model.Reader, error) {
	if sourceID == targetID {
		return nil, apperrors.Validation("cannot merge a reader into itself")
	}
	if _, err := s.Get(ctx, sourceID); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, targetID); err != nil {
		return nil, err
	}
	err := s.r.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.r.MoveChildren(ctx, tx, sourceID, targetID); err != nil {
			return err
		}
		if err := s.rr.ReassignReader(ctx, tx, sourceID, targetID); err != nil {
			return err
		}
		return s.r.Delete(ctx, tx, sourceID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("readers merged", "source_id", sourceID, "target_id", targetID)
	return s.Get(ctx, targetID)
}

func (s *service) ConvertToChild(ctx context.Context, readerID, parentID string) (*model.Reader, error) {
	if readerID == parentID {
		return nil, apperrors.Validation("cannot convert a reader into their own child")
	}
	rd, err := s.Get(ctx, readerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, parentID); err != nil {
		return nil, err
	}
	err = s.r.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		child := &model.Child{
			ID:       uuid.NewString(),
			ReaderID: parentID,
			Name:     rd.ParentName,
			Surname:  rd.ParentSurname,
		}
		if err := s.r.CreateChildTx(ctx, tx, child); err != nil {
			return err
		}
		if err := s.r.MoveChildren(ctx, tx, readerID, parentID); err != nil {
			return err
		}
		if err := s.rr.ReassignReader(ctx, tx, readerID, parentID); err != nil {
			return err
		}
		return s.r.Delete(ctx, tx, readerID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("reader converted to child", "reader_id", readerID, "parent_id", parentID)
	return s.Get(ctx, parentID)
}

func (s *service) AddChild(ctx context.Context, readerID string, in ChildInput) (*model.Child, error) {
	if _, err := s.Get(ctx, readerID); err != nil {
		return nil, err
	}
	child := &model.Child{
		ID:        uuid.NewString(),
		ReaderID:  readerID,
		Name:      in.Name,
		Surname:   in.Surname,
		BirthDate: in.BirthDate,
		Gender:    in.Gender,
	}
	if err := s.r.CreateChild(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *service) UpdateChild(ctx context.Context, readerID, childID string, in ChildUpdateInput) (*model.Child, error) {
	if _, err := s.childOf(ctx, readerID, childID); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Surname != nil {
		fields["surname"] = *in.Surname
	}
	if in.BirthDate != nil {
		fields["birth_date"] = *in.BirthDate
	}
	if in.Gender != nil {
		fields["gender"] = *in.Gender
	}
	if len(fields) == 0 {
		return nil, apperrors.Validation("no fields to update")
	}
	if err := s.r.UpdateChild(ctx, childID, fields); err != nil {
		return nil, err
	}
	c, err := s.r.GetChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteChild removes the child; their rental requests survive detached.
func (s *service) DeleteChild(ctx context.Context, readerID, childID string) error {
	if _, err := s.childOf(ctx, readerID, childID); err != nil {
		return err
	}
	return s.r.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.rr.DetachChild(ctx, tx, childID); err != nil {
			return err
		}
		return s.r.DeleteChild(ctx, tx, childID)
	})
}

func (s *service) ReassignChild(ctx context.Context, childID, newReaderID string) (*model.Child, error) {
	if _, err := s.r.GetChild(ctx, childID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("child")
		}
		return nil, err
	}
	if _, err := s.Get(ctx, newReaderID); err != nil {
		return nil, err
	}
	if err := s.r.SetChildReader(ctx, childID, newReaderID); err != nil {
		return nil, err
	}
	return s.r.GetChild(ctx, childID)
}

func (s *service) childOf(ctx context.Context, readerID, childID string) (*model.Child, error) {
	c, err := s.r.GetChildOfReader(ctx, readerID, childID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("child")
	}
	return c, err
}
