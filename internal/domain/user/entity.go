package user

import (
	"slices"
	"time"
)

const (
	RoleUser  = "user"
	RoleStaff = "staff"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Roles        []string
	JoinedAt     time.Time
	VerifiedAt   *time.Time
	LastLoginAt  *time.Time
	UpdatedAt    time.Time
}

// GetRoles returns the stored roles with the base user role always present.
func (u *User) GetRoles() []string {
	roles := []string{RoleUser}
	for _, r := range u.Roles {
		if !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}
	return roles
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.GetRoles(), role)
}

func (u *User) IsVerified() bool {
	return u.VerifiedAt != nil
}

// VerificationToken is a single-use email confirmation token. Only the digest
// of the secret is kept.
type VerificationToken struct {
	ID           int64
	UserID       int64
	SecretDigest string
	ExpiresAt    time.Time
	UsedAt       *time.Time
	CreatedAt    time.Time
}

func (t *VerificationToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *VerificationToken) IsValid(now time.Time) bool {
	return t.UsedAt == nil && !t.IsExpired(now)
}

// PasswordResetRequest is looked up by Selector; HashedToken authenticates the
// verifier half of the public token.
type PasswordResetRequest struct {
	ID          int64
	UserID      int64
	Selector    string
	HashedToken string
	RequestedAt time.Time
	ExpiresAt   time.Time
}

func (r *PasswordResetRequest) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
