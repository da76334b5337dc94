package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyemovie/skyemovie/config"
	"github.com/skyemovie/skyemovie/internal/data"
	domainauth "github.com/skyemovie/skyemovie/internal/domain/auth"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/mocks"
)

func newAuthFixture() (*AuthService, *mocks.MemorySessionStore, *mocks.MemoryUserRepo) {
	sessions := mocks.NewMemorySessionStore()
	users := mocks.NewMemoryUserRepo(data.ErrUserNotFound, data.ErrEmailExists)
	svc := NewAuthService(AuthServiceOptions{
		Sessions: sessions,
		Users:    users,
		Config: config.AuthConfig{
			SessionTTL:          time.Hour,
			AnonymousSessionTTL: time.Hour,
			BcryptCost:          4, // keep tests fast
			MinPasswordLength:   6,
		},
	})
	return svc, sessions, users
}

func TestBeginAnonymous(t *testing.T) {
	svc, sessions, _ := newAuthFixture()
	ctx := context.Background()

	sess, err := svc.BeginAnonymous(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Anonymous)
	assert.NotEmpty(t, sess.ID)
	assert.NotEmpty(t, sess.UserUID)
	assert.Empty(t, sess.Email)
	assert.Equal(t, 1, sessions.Len())

	stored, err := svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.UserUID, stored.UserUID)
}

func TestRegisterReplacesAnonymousSession(t *testing.T) {
	svc, sessions, _ := newAuthFixture()
	ctx := context.Background()

	anon, err := svc.BeginAnonymous(ctx)
	require.NoError(t, err)

	sess, err := svc.Register(ctx, anon, RegisterInput{
		Email:    "New@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.False(t, sess.Anonymous)
	assert.Equal(t, "new@example.com", sess.Email)
	assert.NotEqual(t, anon.ID, sess.ID)
	assert.NotEqual(t, anon.UserUID, sess.UserUID)

	// The anonymous session is gone.
	_, err = svc.GetSession(ctx, anon.ID)
	assert.Error(t, err)
	assert.Equal(t, 1, sessions.Len())
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domainauth.Session{}, RegisterInput{Email: "not-an-email", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "email", apperrors.GetField(err))

	_, err = svc.Register(ctx, domainauth.Session{}, RegisterInput{Email: "a@b.c", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, "password", apperrors.GetField(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domainauth.Session{}, RegisterInput{Email: "dupe@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domainauth.Session{}, RegisterInput{Email: "dupe@example.com", Password: "secret2"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "email", apperrors.GetField(err))
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, domainauth.Session{}, RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	anon, err := svc.BeginAnonymous(ctx)
	require.NoError(t, err)

	sess, err := svc.Login(ctx, anon, LoginInput{Email: "USER@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.UserUID, sess.UserUID)
	assert.False(t, sess.Anonymous)

	_, err = svc.GetSession(ctx, anon.ID)
	assert.Error(t, err, "anonymous session should be replaced")
}

func TestLoginWrongCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domainauth.Session{}, RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domainauth.Session{}, LoginInput{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))

	_, unknownErr := svc.Login(ctx, domainauth.Session{}, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	require.Error(t, unknownErr)
	assert.True(t, apperrors.IsAuth(unknownErr))
	assert.Equal(t, err.Error(), unknownErr.Error(), "unknown email and wrong password must be indistinguishable")
}

func TestLogoutIssuesFreshAnonymousSession(t *testing.T) {
	svc, sessions, _ := newAuthFixture()
	ctx := context.Background()

	sess, err := svc.Register(ctx, domainauth.Session{}, RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	anon, err := svc.Logout(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, anon.Anonymous)
	assert.NotEqual(t, sess.ID, anon.ID)

	_, err = svc.GetSession(ctx, sess.ID)
	assert.Error(t, err)
	assert.Equal(t, 1, sessions.Len())
}

func TestGetSessionEvictsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sessions := mocks.NewMemorySessionStore()
	users := mocks.NewMemoryUserRepo(data.ErrUserNotFound, data.ErrEmailExists)
	clock := now
	svc := NewAuthService(AuthServiceOptions{
		Sessions: sessions,
		Users:    users,
		Config: config.AuthConfig{
			SessionTTL:          time.Hour,
			AnonymousSessionTTL: time.Hour,
			BcryptCost:          4,
			MinPasswordLength:   6,
		},
		Time: func() time.Time { return clock },
	})
	ctx := context.Background()

	sess, err := svc.BeginAnonymous(ctx)
	require.NoError(t, err)

	clock = now.Add(2 * time.Hour)
	_, err = svc.GetSession(ctx, sess.ID)
	require.Error(t, err)
	assert.True(t, IsSessionExpired(err))
	assert.Equal(t, 0, sessions.Len(), "expired session should be evicted")
}

func TestExchangeBootstrapToken(t *testing.T) {
	sessions := mocks.NewMemorySessionStore()
	users := mocks.NewMemoryUserRepo(data.ErrUserNotFound, data.ErrEmailExists)
	cfg := config.AuthConfig{
		SessionTTL:          time.Hour,
		AnonymousSessionTTL: time.Hour,
		BcryptCost:          4,
		MinPasswordLength:   6,
		BootstrapTokenKey:   "test-signing-key",
	}
	svc := NewAuthService(AuthServiceOptions{Sessions: sessions, Users: users, Config: cfg})
	ctx := context.Background()

	registered, err := svc.Register(ctx, domainauth.Session{}, RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": registered.UserUID,
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	sess, err := svc.ExchangeBootstrapToken(ctx, domainauth.Session{}, token)
	require.NoError(t, err)
	assert.Equal(t, registered.UserUID, sess.UserUID)
	assert.False(t, sess.Anonymous)
}

func TestExchangeBootstrapTokenRejectsBadInput(t *testing.T) {
	svc, _, _ := newAuthFixture() // no signing key configured
	ctx := context.Background()

	_, err := svc.ExchangeBootstrapToken(ctx, domainauth.Session{}, "whatever")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))

	sessions := mocks.NewMemorySessionStore()
	users := mocks.NewMemoryUserRepo(data.ErrUserNotFound, data.ErrEmailExists)
	enabled := NewAuthService(AuthServiceOptions{
		Sessions: sessions,
		Users:    users,
		Config: config.AuthConfig{
			SessionTTL:          time.Hour,
			AnonymousSessionTTL: time.Hour,
			BcryptCost:          4,
			MinPasswordLength:   6,
			BootstrapTokenKey:   "test-signing-key",
		},
	})

	_, err = enabled.ExchangeBootstrapToken(ctx, domainauth.Session{}, "not-a-jwt")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))

	// Token signed with the wrong key.
	token, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": "uid-x",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("wrong-key"))
	require.NoError(t, signErr)

	_, err = enabled.ExchangeBootstrapToken(ctx, domainauth.Session{}, token)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
}
