package auth

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
	"github.com/SenyaGur/ukrlibrary/util/hash"
	"github.com/SenyaGur/ukrlibrary/util/jwt"
)

type fakeRepo struct {
	users map[string]*model.User // id -> user
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*model.User{}}
}

var _ Repo = (*fakeRepo)(nil)

func (f *fakeRepo) Create(ctx context.Context, u *model.User) error {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepo) ByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	f.users[id].PasswordHash = passwordHash
	return nil
}

func (f *fakeRepo) UpdateRole(ctx context.Context, id, role string) error {
	f.users[id].Role = role
	return nil
}

const testSecret = "test-secret"

func newTestService(f *fakeRepo) Service {
	return New(f, testSecret, slog.New(slog.DiscardHandler))
}

func TestSignupAndLogin(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)
	ctx := context.Background()

	res, err := svc.Signup(ctx, model.SignupReq{
		Email: "oksana@example.com", Password: "secret1", FullName: "Оксана Петренко",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, res.User.Role)
	require.NotEmpty(t, res.Token)

	claims, err := jwt.ParseAuth("Bearer "+res.Token, testSecret)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims["user_id"])
	require.Equal(t, model.RoleUser, claims["role"])

	login, err := svc.Login(ctx, model.LoginReq{Email: "oksana@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, res.User.ID, login.User.ID)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)
	ctx := context.Background()

	_, err := svc.Signup(ctx, model.SignupReq{Email: "oksana@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, model.SignupReq{Email: "OKSANA@example.com", Password: "secret2"})
	require.True(t, apperrors.Is(err, apperrors.CodeConflict))
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)
	ctx := context.Background()

	_, err := svc.Signup(ctx, model.SignupReq{Email: "oksana@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, model.LoginReq{Email: "oksana@example.com", Password: "wrong"})
	require.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(ctx, model.LoginReq{Email: "nobody@example.com", Password: "secret1"})
	require.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
}

func TestResetPassword(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)
	ctx := context.Background()

	res, err := svc.Signup(ctx, model.SignupReq{Email: "oksana@example.com", Password: "secret1"})
	require.NoError(t, err)
	id := res.User.ID

	require.Error(t, svc.ResetPassword(ctx, id, "wrong", "newsecret"))
	require.True(t, apperrors.Is(svc.ResetPassword(ctx, id, "secret1", "short"), apperrors.CodeValidation))
	require.NoError(t, svc.ResetPassword(ctx, id, "secret1", "newsecret"))

	require.True(t, hash.Check(f.users[id].PasswordHash, "newsecret"))
	_, err = svc.Login(ctx, model.LoginReq{Email: "oksana@example.com", Password: "newsecret"})
	require.NoError(t, err)
}

func TestUpdateRole(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)
	ctx := context.Background()

	res, err := svc.Signup(ctx, model.SignupReq{Email: "oksana@example.com", Password: "secret1"})
	require.NoError(t, err)

	u, err := svc.UpdateRole(ctx, res.User.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, u.Role)

	_, err = svc.UpdateRole(ctx, res.User.ID, "superuser")
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = svc.UpdateRole(ctx, "missing", model.RoleAdmin)
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
