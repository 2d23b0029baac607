package user

import (
	"context"
	"time"
)

// Repository defines the interface for user repository operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	// Lock holds the user's row until the caller's transaction ends.
	Lock(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string, at time.Time) error
	MarkVerified(ctx context.Context, userID int64, at time.Time) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	// Delete removes the user together with its tokens, wishlists and items.
	Delete(ctx context.Context, userID int64) error
}

// VerificationTokenRepository defines the interface for email verification tokens
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *VerificationToken) error
	GetByDigest(ctx context.Context, digest string) (*VerificationToken, error)
	// ExpireActive sets expires_at to now on every unused, unexpired token of
	// the user and returns how many were touched.
	ExpireActive(ctx context.Context, userID int64, now time.Time) (int64, error)
	// MarkUsed consumes the token only if it is still valid at now, otherwise
	// it returns ErrTokenInvalid.
	MarkUsed(ctx context.Context, tokenID int64, now time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// PasswordResetRepository defines the interface for password reset requests
type PasswordResetRepository interface {
	Create(ctx context.Context, req *PasswordResetRequest) error
	GetBySelector(ctx context.Context, selector string) (*PasswordResetRequest, error)
	GetLatestForUser(ctx context.Context, userID int64) (*PasswordResetRequest, error)
	// Delete returns ErrTokenInvalid if the request no longer exists.
	Delete(ctx context.Context, requestID int64) error
	DeleteForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
