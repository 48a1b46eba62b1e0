package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/parkinglot/internal/cache"
	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	service *AuthService
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	f.service = NewAuthService(
		repository.NewMemoryStore().Store().Users,
		cache.NewMemoryCache(),
		"test-secret",
		time.Hour,
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { return f.now }),
	)
	require.NoError(t, f.service.EnsureAdmin(context.Background(), "admin", "admin123"))
	return f
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, f.now.Add(time.Hour), result.ExpiresAt)

	claims, err := f.service.ValidateToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, result.User.ID, claims.UserID())
	assert.NotEmpty(t, claims.ID)

	f.now = f.now.Add(15 * time.Minute)
	info, err := f.service.SessionInfo(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(45*60), info.RemainingSec)
	assert.Equal(t, "0h 45m", info.RemainingText)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.service.Login(ctx, "nobody", "admin123")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.service.ValidateToken(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(f.now.Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", forged} {
		_, err := f.service.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, result.Token))

	_, err = f.service.ValidateToken(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, f.service.Logout(ctx, result.Token), domain.ErrUnauthorized)
}

func TestAuthService_EnsureAdminOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.EnsureAdmin(ctx, "second", "secret1"))

	users, err := f.service.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_CreateUserValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input CreateUserInput
	}{
		{name: "missing username", input: CreateUserInput{Password: "abcd"}},
		{name: "short password", input: CreateUserInput{Username: "op", Password: "abc"}},
		{name: "unknown role", input: CreateUserInput{Username: "op", Password: "abcd", Role: "root"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.CreateUser(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	user, err := f.service.CreateUser(ctx, CreateUserInput{Username: "op", Password: "abcd"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperator, user.Role)

	_, err = f.service.CreateUser(ctx, CreateUserInput{Username: "op", Password: "abcd"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserService_LastAdminProtection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := &Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}
	op, err := f.service.CreateUser(ctx, CreateUserInput{Username: "op", Password: "abcd"})
	require.NoError(t, err)
	opClaims := &Claims{Role: domain.RoleOperator, RegisteredClaims: jwt.RegisteredClaims{Subject: "2"}}

	assert.ErrorIs(t, f.service.DeleteUser(ctx, admin, 1), domain.ErrConflict)

	_, err = f.service.ChangeRole(ctx, admin, 1, "operator")
	assert.ErrorIs(t, err, domain.ErrConflict)

	promoted, err := f.service.ChangeRole(ctx, admin, op.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	// with two admins the other one may now be demoted and deleted
	_, err = f.service.ChangeRole(ctx, admin, op.ID, "operator")
	require.NoError(t, err)
	_, err = f.service.ChangeRole(ctx, admin, op.ID, "admin")
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteUser(ctx, admin, op.ID))

	assert.ErrorIs(t, f.service.DeleteUser(ctx, admin, 99), domain.ErrNotFound)
	assert.ErrorIs(t, f.service.ChangePassword(ctx, opClaims, 1, "newpass"), domain.ErrForbidden)
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	op, err := f.service.CreateUser(ctx, CreateUserInput{Username: "op", Password: "abcd"})
	require.NoError(t, err)
	self := &Claims{Role: domain.RoleOperator, RegisteredClaims: jwt.RegisteredClaims{Subject: "2"}}
	require.Equal(t, int64(2), op.ID)

	assert.ErrorIs(t, f.service.ChangePassword(ctx, self, op.ID, "xy"), domain.ErrValidation)
	require.NoError(t, f.service.ChangePassword(ctx, self, op.ID, "newpass"))

	_, err = f.service.Login(ctx, "op", "newpass")
	assert.NoError(t, err)
}
