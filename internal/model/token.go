package model

import "time"

// RefreshToken is one issuance in a refresh-token lineage. The raw token is
// never stored; TokenHash holds its SHA-256 fingerprint. A row is revoked
// exactly once: by rotation at the next refresh, or by logout.
type RefreshToken struct {
	ID        string
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// PasswordResetToken authorizes a single password change before its expiry.
// Used and expired rows never authorize anything again.
type PasswordResetToken struct {
	ID        string
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
