package service

import (
	"context"
	"testing"
	"time"

	"campus-info-go/internal/model"
	"campus-info-go/internal/repository"
	"campus-info-go/internal/store"
	"campus-info-go/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	users  UserService
	admin  AdminService
	store  store.RecordStore
	tokens *token.JWTManager
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	s := newTestStore(t)
	repo := repository.NewUserRepository(s)
	jwt := token.NewJWTManager("test-secret", 1, 7)
	sessions := repository.NewMemoryChatSessionRepository(time.Hour)
	return &userFixture{
		users:  NewUserService(repo, repository.NewMemoryTokenBlacklist(), jwt),
		admin:  NewAdminService(repo, s, sessions),
		store:  s,
		tokens: jwt,
	}
}

var alice = RegisterInput{RegNo: "21BCE001", Name: "Alice", Email: "alice@campus.edu", Password: "s3cret!", Department: "CSE"}

func TestUserService_Register(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, model.RoleStudent, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, alice.Password, u.PasswordHash)

	_, err = f.users.Register(ctx, alice)
	assert.ErrorIs(t, err, ErrConflict)

	short := alice
	short.RegNo, short.Password = "21BCE002", "123"
	_, err = f.users.Register(ctx, short)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.users.CreateUser(ctx, RegisterInput{RegNo: "X1", Name: "X", Password: "longenough"}, "dean")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_LoginAndAuthenticate(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	_, err := f.users.Register(ctx, alice)
	require.NoError(t, err)

	_, _, err = f.users.Login(ctx, alice.RegNo, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.users.Login(ctx, "nobody", alice.Password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pair, user, err := f.users.Login(ctx, alice.RegNo, alice.Password)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	authed, claims, err := f.users.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
	assert.Equal(t, model.RoleStudent, claims.Role)

	_, _, err = f.users.Authenticate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh tokens are not access tokens")
	_, _, err = f.users.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_LogoutRevokesTokens(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	_, err := f.users.Register(ctx, alice)
	require.NoError(t, err)
	pair, _, err := f.users.Login(ctx, alice.RegNo, alice.Password)
	require.NoError(t, err)

	require.NoError(t, f.users.Logout(ctx, pair.AccessToken, pair.RefreshToken, "not-a-token"))

	_, _, err = f.users.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = f.users.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_RefreshRotates(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	_, err := f.users.Register(ctx, alice)
	require.NoError(t, err)
	pair, _, err := f.users.Login(ctx, alice.RegNo, alice.Password)
	require.NoError(t, err)

	_, err = f.users.RefreshToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	next, err := f.users.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = f.users.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "a used refresh token cannot be replayed")
	_, _, err = f.users.Authenticate(ctx, next.AccessToken)
	assert.NoError(t, err)
}

func TestUserService_DisabledAccount(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	u, err := f.users.Register(ctx, alice)
	require.NoError(t, err)
	pair, _, err := f.users.Login(ctx, alice.RegNo, alice.Password)
	require.NoError(t, err)

	_, err = f.admin.SetActive(ctx, u.ID, false)
	require.NoError(t, err)

	_, _, err = f.users.Login(ctx, alice.RegNo, alice.Password)
	assert.ErrorIs(t, err, ErrAccountDisabled)
	_, _, err = f.users.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAdminService_UsersAndStats(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	for i, regNo := range []string{"A1", "A2", "A3"} {
		in := alice
		in.RegNo = regNo
		role := model.RoleStudent
		if i == 0 {
			role = model.RoleAdmin
		}
		_, err := f.users.CreateUser(ctx, in, role)
		require.NoError(t, err)
	}

	page, err := f.admin.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "A3", page.Content[0].RegNo)

	u, err := f.admin.SetRole(ctx, 2, model.RoleFaculty)
	require.NoError(t, err)
	assert.Equal(t, model.RoleFaculty, u.Role)
	_, err = f.admin.SetRole(ctx, 2, "superuser")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.admin.SetRole(ctx, 99, model.RoleFaculty)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.store.Insert(ctx, model.TableFAQs, store.Record{"question": "q", "answer": "a", "is_active": false})
	require.NoError(t, err)
	stats, err := f.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, TableStats{Active: 3}, stats.Tables[model.TableUsers])
	assert.Equal(t, TableStats{Inactive: 1}, stats.Tables[model.TableFAQs])
	assert.Equal(t, map[string]int{"admin": 1, "student": 1, "faculty": 1}, stats.UsersByRole)
	assert.Equal(t, 0, stats.ActiveSessions)
}
