package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motionhq/motion-go/internal/apperr"
	"github.com/motionhq/motion-go/internal/crypto"
	"github.com/motionhq/motion-go/internal/model"
)

type authFixture struct {
	svc    *AuthService
	users  *memUserStore
	tokens *memTokenStore
	sender *captureSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMemUserStore()
	tokens := newMemTokenStore(users)
	sender := &captureSender{}
	svc := NewAuthService(users, tokens, sender, TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      30 * time.Minute,
	})
	return &authFixture{svc: svc, users: users, tokens: tokens, sender: sender}
}

func (f *authFixture) register(t *testing.T, email, password string) model.AuthResponse {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), model.RegisterRequest{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return resp
}

func requireStatus(t *testing.T, err error, status int) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok, "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, status, appErr.Status)
	return appErr
}

func TestRegisterThenLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t, "alice@example.com", "hunter2hunter2")
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)

	login, err := f.svc.Login(ctx, model.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.Equal(t, "alice@example.com", login.User.Email)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "alice@example.com", "hunter2hunter2")

	_, err := f.svc.Register(ctx, model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "another-password",
	})
	requireStatus(t, err, http.StatusConflict)
}

func TestRegisterNeverReturnsPasswordHash(t *testing.T) {
	f := newAuthFixture(t)

	reg := f.register(t, "alice@example.com", "hunter2hunter2")
	// UserResponse has no hash field; also make sure the stored hash is not
	// the raw password.
	stored, err := f.users.GetActiveByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", stored.PasswordHash)
	assert.NotEmpty(t, reg.User.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "alice@example.com", "hunter2hunter2")

	_, errWrongPassword := f.svc.Login(ctx, model.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	_, errUnknownEmail := f.svc.Login(ctx, model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter2hunter2",
	})

	wrongPw := requireStatus(t, errWrongPassword, http.StatusUnauthorized)
	unknown := requireStatus(t, errUnknownEmail, http.StatusUnauthorized)
	assert.Equal(t, wrongPw.Message, unknown.Message)
}

func TestLoginKeepsPriorSessionsAlive(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first := f.register(t, "alice@example.com", "hunter2hunter2")
	_, err := f.svc.Login(ctx, model.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	// The registration session's refresh token still rotates fine.
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRotationIsSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t, "alice@example.com", "hunter2hunter2")

	refreshed, err := f.svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, reg.User.ID, refreshed.User.ID)

	// Replaying the consumed token must fail: it was revoked by rotation.
	_, err = f.svc.Refresh(ctx, reg.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)

	// The successor is live.
	_, err = f.svc.Refresh(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Refresh(context.Background(), "not-a-token")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t, "alice@example.com", "hunter2hunter2")

	// An access token is signed with the other secret and must not refresh.
	_, err := f.svc.Refresh(ctx, reg.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestRefreshRejectsExpiredRow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t, "alice@example.com", "hunter2hunter2")
	f.tokens.expireRefreshByHash(crypto.Fingerprint(reg.RefreshToken))

	_, err := f.svc.Refresh(ctx, reg.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t, "alice@example.com", "hunter2hunter2")
	f.users.softDelete(reg.User.ID)

	_, err := f.svc.Refresh(ctx, reg.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t, "alice@example.com", "hunter2hunter2")

	msg, err := f.svc.Logout(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	_, err = f.svc.Refresh(ctx, reg.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutIsIdempotentAndGeneric(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t, "alice@example.com", "hunter2hunter2")

	first, err := f.svc.Logout(ctx, reg.RefreshToken)
	require.NoError(t, err)
	second, err := f.svc.Logout(ctx, reg.RefreshToken)
	require.NoError(t, err)
	unknown, err := f.svc.Logout(ctx, "garbage-token")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, unknown)
}

func TestCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t, "alice@example.com", "hunter2hunter2")

	user, err := f.svc.CurrentUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = f.svc.CurrentUser(ctx, "missing-id")
	requireStatus(t, err, http.StatusNotFound)

	f.users.softDelete(reg.User.ID)
	_, err = f.svc.CurrentUser(ctx, reg.User.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "alice@example.com", "hunter2hunter2")

	known, err := f.svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	unknown, err := f.svc.ForgotPassword(ctx, "nobody@example.com")
	require.NoError(t, err)

	assert.Equal(t, known, unknown)
	// Only the real account got a token, and only its fingerprint is stored.
	require.Len(t, f.sender.tokens, 1)
	raw := f.sender.tokens[0]
	_, err = f.tokens.GetResetByHash(ctx, crypto.Fingerprint(raw))
	require.NoError(t, err)
	_, err = f.tokens.GetResetByHash(ctx, raw)
	require.Error(t, err)
}

func TestResetPasswordFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "alice@example.com", "old-password-1")
	_, err := f.svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, f.sender.tokens, 1)
	raw := f.sender.tokens[0]

	_, err = f.svc.ResetPassword(ctx, raw, "new-password-22")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "new-password-22"})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "old-password-1"})
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestResetPasswordSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "alice@example.com", "old-password-1")
	_, err := f.svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	raw := f.sender.tokens[0]

	_, err = f.svc.ResetPassword(ctx, raw, "new-password-22")
	require.NoError(t, err)

	// Second use fails and the first password change stays in effect.
	_, err = f.svc.ResetPassword(ctx, raw, "sneaky-password-3")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.svc.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "new-password-22"})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "sneaky-password-3"})
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "alice@example.com", "old-password-1")
	_, err := f.svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	raw := f.sender.tokens[0]

	// 31 minutes past a 30-minute window.
	f.tokens.expireResetByHash(crypto.Fingerprint(raw), time.Minute)

	_, err = f.svc.ResetPassword(ctx, raw, "new-password-22")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestResetPasswordUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.ResetPassword(context.Background(), "unknown-token", "new-password-22")
	requireStatus(t, err, http.StatusBadRequest)
}
