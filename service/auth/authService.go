// Package auth covers user registration, login and account administration.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
	"github.com/SenyaGur/ukrlibrary/util/hash"
	"github.com/SenyaGur/ukrlibrary/util/jwt"
)

const tokenTTLHours = 24

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id, role string) error
}

// AuthResult is what signup and login hand back to the controller.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type Service interface {
	Signup(ctx context.Context, req model.SignupReq) (*AuthResult, error)
	Login(ctx context.Context, req model.LoginReq) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	ResetPassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, userID, role string) (*model.User, error)
}

type service struct {
	r      Repo
	secret string
	log    *slog.Logger
}

func New(r Repo, jwtSecret string, log *slog.Logger) Service {
	return &service{r: r, secret: jwtSecret, log: log}
}

func (s *service) Signup(ctx context.Context, req model.SignupReq) (*AuthResult, error) {
	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: pwHash,
		FullName:     req.FullName,
		Role:         model.RoleUser,
	}
	if err := s.r.Create(ctx, u); err != nil {
		return nil, mapDuplicateErr(err)
	}
	token, err := jwt.Issue(s.secret, u.ID, u.Role, tokenTTLHours)
	if err != nil {
		return nil, err
	}
	s.log.Info("user signed up", "id", u.ID, "email", u.Email)
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*AuthResult, error) {
	u, err := s.r.ByEmail(ctx, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	token, err := jwt.Issue(s.secret, u.ID, u.Role, tokenTTLHours)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.r.ByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user")
	}
	return u, err
}

func (s *service) ResetPassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperrors.Validation("password must be at least 6 characters")
	}
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !hash.Check(u.PasswordHash, oldPassword) {
		return apperrors.Unauthorized("current password is incorrect")
	}
	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.r.UpdatePassword(ctx, userID, pwHash); err != nil {
		return err
	}
	s.log.Info("password reset", "user_id", userID)
	return nil
}

func (s *service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.r.List(ctx)
}

func (s *service) UpdateRole(ctx context.Context, userID, role string) (*model.User, error) {
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, apperrors.Validation(`role must be "admin" or "user"`)
	}
	if _, err := s.Me(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.r.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	s.log.Info("role updated", "user_id", userID, "role", role)
	return s.Me(ctx, userID)
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperrors.Conflict("email is already registered")
	}
	return err
}
