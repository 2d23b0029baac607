package account

import (
	"time"

	domainUser "aspire-wishlist/internal/domain/user"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=255,notcompromised"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required,notblank,max=255"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=255,notcompromised"`
	ConfirmPassword string `json:"confirm_password"`
}

type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Roles       []string   `json:"roles"`
	IsVerified  bool       `json:"is_verified"`
	JoinedAt    time.Time  `json:"joined_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

type AuthResponse struct {
	User        *UserResponse `json:"user"`
	AccessToken string        `json:"access_token"`
	ExpiresAt   int64         `json:"expires_at"`
}

func ToUserResponse(u *domainUser.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Roles:       u.GetRoles(),
		IsVerified:  u.IsVerified(),
		JoinedAt:    u.JoinedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
