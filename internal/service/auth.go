package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/motionhq/motion-go/internal/apperr"
	"github.com/motionhq/motion-go/internal/crypto"
	"github.com/motionhq/motion-go/internal/model"
	"github.com/motionhq/motion-go/internal/repository"
)

// Messages are deliberately generic: login and refresh failures never reveal
// which check failed, and forgot-password never reveals whether the email
// exists.
const (
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidRefreshToken = "Invalid refresh token"
	msgLoggedOut           = "Logged out successfully"
	msgResetRequested      = "If that email is registered, a password reset link has been sent"
	msgPasswordReset       = "Password has been reset successfully"
)

// UserStore is the persistence contract the auth service needs for users.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetActiveByEmail(ctx context.Context, email string) (*model.User, error)
	GetActiveByID(ctx context.Context, id string) (*model.User, error)
}

// TokenStore is the persistence contract for refresh and reset tokens.
type TokenStore interface {
	CreateRefresh(ctx context.Context, token *model.RefreshToken) error
	GetRefreshByHash(ctx context.Context, hash string) (*model.RefreshToken, error)
	Rotate(ctx context.Context, oldID string, next *model.RefreshToken) error
	RevokeByHash(ctx context.Context, hash string) error
	CreateReset(ctx context.Context, token *model.PasswordResetToken) error
	GetResetByHash(ctx context.Context, hash string) (*model.PasswordResetToken, error)
	ConsumeReset(ctx context.Context, tokenID, userID, passwordHash string) error
}

// ResetSender delivers raw reset tokens out of band.
type ResetSender interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// TokenConfig carries the signing secrets and lifetimes for issued tokens.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

// AuthService orchestrates the session lifecycle: registration, login,
// refresh-token rotation, logout and the password-reset flow.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	mailer ResetSender
	cfg    TokenConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenStore, mailer ResetSender, cfg TokenConfig) *AuthService {
	return &AuthService{users: users, tokens: tokens, mailer: mailer, cfg: cfg}
}

// Register creates a new user account and opens its first session.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	if _, err := s.users.GetActiveByEmail(ctx, req.Email); err == nil {
		return model.AuthResponse{}, apperr.Conflict("User with this email already exists")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.AuthResponse{}, s.internal("register: email lookup", err)
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, s.internal("register: hash password", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, apperr.Conflict("User with this email already exists")
		}
		return model.AuthResponse{}, s.internal("register: create user", err)
	}

	return s.openSession(ctx, user)
}

// Login authenticates email/password credentials and opens a new session.
// Prior sessions stay valid: concurrent sessions are allowed by design.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.users.GetActiveByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return model.AuthResponse{}, s.internal("login: email lookup", err)
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, s.internal("login: verify password", err)
	}
	if !match {
		return model.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	return s.openSession(ctx, user)
}

// Refresh rotates a refresh token: the presented token is verified, its
// stored row revoked, and a successor issued, all single-use. Presenting an
// already-rotated token fails here, which is a strong signal of token theft.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (model.AuthResponse, error) {
	claims, err := crypto.VerifyToken(rawToken, s.cfg.RefreshSecret)
	if err != nil {
		return model.AuthResponse{}, apperr.Unauthorized(msgInvalidRefreshToken)
	}

	stored, err := s.tokens.GetRefreshByHash(ctx, crypto.Fingerprint(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return model.AuthResponse{}, apperr.Unauthorized(msgInvalidRefreshToken)
		}
		return model.AuthResponse{}, s.internal("refresh: token lookup", err)
	}

	if stored.Revoked {
		return model.AuthResponse{}, apperr.Unauthorized(msgInvalidRefreshToken)
	}
	if stored.ExpiresAt.Before(time.Now()) {
		return model.AuthResponse{}, apperr.Unauthorized(msgInvalidRefreshToken)
	}

	user, err := s.users.GetActiveByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, apperr.Unauthorized(msgInvalidRefreshToken)
		}
		return model.AuthResponse{}, s.internal("refresh: user lookup", err)
	}

	accessToken, refreshToken, next, err := s.issuePair(user.ID)
	if err != nil {
		return model.AuthResponse{}, s.internal("refresh: issue tokens", err)
	}

	if err := s.tokens.Rotate(ctx, stored.ID, next); err != nil {
		// A lost rotation race means the token was just used elsewhere;
		// that is a reuse attempt from this caller's perspective.
		if errors.Is(err, repository.ErrAlreadyRevoked) {
			return model.AuthResponse{}, apperr.Unauthorized(msgInvalidRefreshToken)
		}
		return model.AuthResponse{}, s.internal("refresh: rotate", err)
	}

	return model.AuthResponse{
		User:         model.PublicUser(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the session behind the presented refresh token. It is
// idempotent and always succeeds with the same message, whether or not the
// token matched anything. Already-issued access tokens stay valid until
// their natural expiry.
func (s *AuthService) Logout(ctx context.Context, rawToken string) (string, error) {
	if err := s.tokens.RevokeByHash(ctx, crypto.Fingerprint(rawToken)); err != nil {
		return "", s.internal("logout: revoke", err)
	}
	return msgLoggedOut, nil
}

// CurrentUser returns the active user for an authenticated subject ID.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.users.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, apperr.NotFound("User")
		}
		return model.UserResponse{}, s.internal("current user: lookup", err)
	}
	return model.PublicUser(user), nil
}

// ForgotPassword starts the reset flow. The response is identical whether or
// not the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return msgResetRequested, nil
		}
		return "", s.internal("forgot password: email lookup", err)
	}

	rawToken, err := crypto.NewOpaqueToken()
	if err != nil {
		return "", s.internal("forgot password: generate token", err)
	}

	reset := &model.PasswordResetToken{
		TokenHash: crypto.Fingerprint(rawToken),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.cfg.ResetTTL),
	}
	if err := s.tokens.CreateReset(ctx, reset); err != nil {
		return "", s.internal("forgot password: store token", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, rawToken); err != nil {
		// Delivery failure must not reveal the email exists.
		slog.Error("failed to send password reset", "error", err)
	}

	return msgResetRequested, nil
}

// ResetPassword consumes a reset token and sets the new password. The token
// row is marked used in the same transaction that updates the password.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error) {
	stored, err := s.tokens.GetResetByHash(ctx, crypto.Fingerprint(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return "", apperr.BadRequest("Invalid or expired reset token")
		}
		return "", s.internal("reset password: token lookup", err)
	}

	if stored.Used {
		return "", apperr.BadRequest("Reset token has already been used")
	}
	if stored.ExpiresAt.Before(time.Now()) {
		return "", apperr.BadRequest("Reset token has expired")
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return "", s.internal("reset password: hash password", err)
	}

	if err := s.tokens.ConsumeReset(ctx, stored.ID, stored.UserID, hash); err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return "", apperr.BadRequest("Reset token has already been used")
		}
		return "", s.internal("reset password: consume", err)
	}

	return msgPasswordReset, nil
}

// openSession issues an access/refresh pair, persists the refresh
// fingerprint and builds the auth response.
func (s *AuthService) openSession(ctx context.Context, user *model.User) (model.AuthResponse, error) {
	accessToken, refreshToken, row, err := s.issuePair(user.ID)
	if err != nil {
		return model.AuthResponse{}, s.internal("open session: issue tokens", err)
	}

	if err := s.tokens.CreateRefresh(ctx, row); err != nil {
		return model.AuthResponse{}, s.internal("open session: store refresh", err)
	}

	return model.AuthResponse{
		User:         model.PublicUser(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// issuePair signs a new access/refresh token pair and builds the refresh row
// to persist. Only the fingerprint of the refresh token is stored.
func (s *AuthService) issuePair(userID string) (accessToken, refreshToken string, row *model.RefreshToken, err error) {
	accessToken, err = crypto.SignToken(userID, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return "", "", nil, err
	}
	refreshToken, err = crypto.SignToken(userID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return "", "", nil, err
	}

	row = &model.RefreshToken{
		TokenHash: crypto.Fingerprint(refreshToken),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.cfg.RefreshTTL),
	}
	return accessToken, refreshToken, row, nil
}

// internal logs the underlying failure and returns the generic internal
// error. Storage details never reach the caller.
func (s *AuthService) internal(op string, err error) error {
	slog.Error("auth service failure", "op", op, "error", err)
	return apperr.Internal()
}
