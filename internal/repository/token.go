package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/motionhq/motion-go/internal/model"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrResetTokenNotFound   = errors.New("reset token not found")
	// ErrAlreadyRevoked signals that the rotation lost a race: the presented
	// row was revoked by a concurrent refresh or a logout before this
	// transaction committed.
	ErrAlreadyRevoked = errors.New("refresh token already revoked")
)

// TokenRepository persists refresh-token lineages and password-reset tokens.
// Rows are keyed by token fingerprint; raw tokens never reach this layer.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// CreateRefresh inserts a new refresh-token row, assigning ID and timestamp.
func (r *TokenRepository) CreateRefresh(ctx context.Context, token *model.RefreshToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	query := `INSERT INTO refresh_tokens (id, token_hash, user_id, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.TokenHash, token.UserID, token.ExpiresAt, token.Revoked, token.CreatedAt,
	)
	return err
}

// GetRefreshByHash retrieves a refresh-token row by fingerprint, revoked or not.
func (r *TokenRepository) GetRefreshByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	query := `SELECT id, token_hash, user_id, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token_hash = ?`

	token := &model.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&token.ID, &token.TokenHash, &token.UserID, &token.ExpiresAt, &token.Revoked, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}

	return token, nil
}

// Rotate revokes the presented refresh-token row and inserts its successor in
// a single transaction. The revoke is guarded by revoked = 0, so of two
// concurrent rotations of the same token at most one commits; the loser gets
// ErrAlreadyRevoked.
func (r *TokenRepository) Rotate(ctx context.Context, oldID string, next *model.RefreshToken) error {
	next.ID = uuid.NewString()
	next.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE id = ? AND revoked = 0`, oldID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyRevoked
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, token_hash, user_id, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		next.ID, next.TokenHash, next.UserID, next.ExpiresAt, next.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// RevokeByHash marks the refresh-token row with the given fingerprint as
// revoked. Missing rows and already-revoked rows are not errors: logout is
// idempotent and must not leak token validity.
func (r *TokenRepository) RevokeByHash(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ?`, hash)
	return err
}

// CreateReset inserts a new password-reset-token row.
func (r *TokenRepository) CreateReset(ctx context.Context, token *model.PasswordResetToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	query := `INSERT INTO password_reset_tokens (id, token_hash, user_id, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.TokenHash, token.UserID, token.ExpiresAt, token.Used, token.CreatedAt,
	)
	return err
}

// GetResetByHash retrieves a password-reset-token row by fingerprint.
func (r *TokenRepository) GetResetByHash(ctx context.Context, hash string) (*model.PasswordResetToken, error) {
	query := `SELECT id, token_hash, user_id, expires_at, used, created_at
		FROM password_reset_tokens WHERE token_hash = ?`

	token := &model.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&token.ID, &token.TokenHash, &token.UserID, &token.ExpiresAt, &token.Used, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}

	return token, nil
}

// ConsumeReset sets the user's new password hash and marks the reset token
// used, atomically. Partial application would let the same reset link change
// the password twice.
func (r *TokenRepository) ConsumeReset(ctx context.Context, tokenID, userID, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Millisecond)

	res, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = 1 WHERE id = ? AND used = 0`, tokenID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrResetTokenNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, now, userID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
