package service

import (
	"testing"
	"time"

	"storyhub/internal/microservices/web-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func register(t *testing.T, svc AuthService, f *fixture, name, role string) *models.User {
	t.Helper()
	u, err := svc.Register(f.ctx, RegisterInput{
		Username: name, Email: name + "@Example.com", Password: "s3cret-pass", PasswordConfirm: "s3cret-pass", Role: role,
	})
	require.NoError(t, err)
	return u
}

func TestAuth_RegisterRules(t *testing.T) {
	f := newFixture(t)
	svc := f.auth()

	u := register(t, svc, f, "alice", "")
	assert.Equal(t, models.RoleReader, u.Role)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "s3cret-pass", u.Password)

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"password mismatch", RegisterInput{Username: "bob", Email: "bob@example.com", Password: "a", PasswordConfirm: "b"}, ErrPasswordMismatch},
		{"admin self assigned", RegisterInput{Username: "bob", Email: "bob@example.com", Password: "a", PasswordConfirm: "a", Role: "admin"}, ErrInvalidRole},
		{"duplicate username", RegisterInput{Username: "alice", Email: "other@example.com", Password: "a", PasswordConfirm: "a"}, ErrNameInUse},
		{"duplicate email", RegisterInput{Username: "bob", Email: "ALICE@example.com", Password: "a", PasswordConfirm: "a"}, ErrEmailInUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuth_LoginIssuesTokensWithRole(t *testing.T) {
	f := newFixture(t)
	svc := f.auth()
	u := register(t, svc, f, "writer", models.RoleAuthor)

	_, err := svc.Login(f.ctx, "writer", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(f.ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pair, err := svc.Login(f.ctx, "writer", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.EqualValues(t, 900, pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleAuthor, claims.Role)

	stored, err := f.users.FindByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestAuth_RefreshRotatesAndLogoutRevokes(t *testing.T) {
	f := newFixture(t)
	svc := f.auth()
	register(t, svc, f, "carol", "")

	pair, err := svc.Login(f.ctx, "carol", "s3cret-pass")
	require.NoError(t, err)

	rotated, err := svc.Refresh(f.ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(f.ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "old refresh token is single use")

	require.NoError(t, svc.Logout(f.ctx, rotated.RefreshToken))
	_, err = svc.Refresh(f.ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, svc.Logout(f.ctx, "unknown"))
}

func TestAuth_ValidateTokenRejects(t *testing.T) {
	f := newFixture(t)
	register(t, f.auth(), f, "dave", "")

	expired := NewAuthService(f.users, f.tokens, "test-secret-0123456789", -time.Minute, time.Hour, zap.NewNop())
	pair, err := expired.Login(f.ctx, "dave", "s3cret-pass")
	require.NoError(t, err)
	_, err = expired.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)

	other := NewAuthService(f.users, f.tokens, "another-secret-987654", time.Minute, time.Hour, zap.NewNop())
	pair, err = other.Login(f.ctx, "dave", "s3cret-pass")
	require.NoError(t, err)
	_, err = f.auth().ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.auth().ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_ChangeRole(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root", models.RoleAdmin)
	reader := f.user(t, "reader", models.RoleReader)
	svc := NewUserService(f.users, f.tokens, zap.NewNop())

	_, err := svc.ChangeRole(f.ctx, admin, reader.UserID, "overlord")
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = svc.ChangeRole(f.ctx, admin, admin.UserID, models.RoleReader)
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)
	_, err = svc.ChangeRole(f.ctx, admin, "00000000-0000-0000-0000-000000000000", models.RoleAuthor)
	assert.ErrorIs(t, err, ErrUserNotFound)

	u, err := svc.ChangeRole(f.ctx, admin, reader.UserID, models.RoleAuthor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAuthor, u.Role)

	users, total, err := svc.List(f.ctx, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)
}
