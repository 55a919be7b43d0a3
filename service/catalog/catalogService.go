// Package catalog manages the name-keyed lookup tables behind the book
// catalog: categories, series and publishers.
package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
)

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
}

type Service interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	UpdateCategory(ctx context.Context, id, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListSeries(ctx context.Context) ([]model.Series, error)
	CreateSeries(ctx context.Context, name string) (*model.Series, error)
	UpdateSeries(ctx context.Context, id, name string) (*model.Series, error)
	DeleteSeries(ctx context.Context, id string) error

	ListPublishers(ctx context.Context) ([]model.Publisher, error)
	CreatePublisher(ctx context.Context, name, city string) (*model.Publisher, error)
	UpdatePublisher(ctx context.Context, id, name, city string) (*model.Publisher, error)
	DeletePublisher(ctx context.Context, id string) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.r.ListCategories(ctx)
}

func (s *service) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	c := &model.Category{ID: uuid.NewString(), Name: name}
	if err := s.r.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, id, name string) (*model.Category, error) {
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if _, err := s.r.GetCategory(ctx, id); err != nil {
		return nil, notFound(err, "category")
	}
	if err := s.r.UpdateCategory(ctx, id, name); err != nil {
		return nil, err
	}
	return s.r.GetCategory(ctx, id)
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.r.GetCategory(ctx, id); err != nil {
		return notFound(err, "category")
	}
	return s.r.DeleteCategory(ctx, id)
}

func (s *service) ListSeries(ctx context.Context) ([]model.Series, error) {
	return s.r.ListSeries(ctx)
}

func (s *service) CreateSeries(ctx context.Context, name string) (*model.Series, error) {
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	sr := &model.Series{ID: uuid.NewString(), Name: name}
	if err := s.r.CreateSeries(ctx, sr); err != nil {
		return nil, err
	}
	return sr, nil
}

func (s *service) UpdateSeries(ctx context.Context, id, name string) (*model.Series, error) {
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if _, err := s.r.GetSeries(ctx, id); err != nil {
		return nil, notFound(err, "series")
	}
	if err := s.r.UpdateSeries(ctx, id, name); err != nil {
		return nil, err
	}
	return s.r.GetSeries(ctx, id)
}

func (s *service) DeleteSeries(ctx context.Context, id string) error {
	if _, err := s.r.GetSeries(ctx, id); err != nil {
		return notFound(err, "series")
	}
	return s.r.DeleteSeries(ctx, id)
}

func (s *service) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	return s.r.ListPublishers(ctx)
}

func (s *service) CreatePublisher(ctx context.Context, name, city string) (*model.Publisher, error) {
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	p := &model.Publisher{ID: uuid.NewString(), Name: name, City: city}
	if err := s.r.CreatePublisher(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UpdatePublisher(ctx context.Context, id, name, city string) (*model.Publisher, error) {
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if _, err := s.r.GetPublisher(ctx, id); err != nil {
		return nil, notFound(err, "publisher")
	}
	if err := s.r.UpdatePublisher(ctx, id, name, city); err != nil {
		return nil, err
	}
	return s.r.GetPublisher(ctx, id)
}

func (s *service) DeletePublisher(ctx context.Context, id string) error {
	if _, err := s.r.GetPublisher(ctx, id); err != nil {
		return notFound(err, "publisher")
	}
	return s.r.DeletePublisher(ctx, id)
}

func notFound(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource)
	}
	return err
}
