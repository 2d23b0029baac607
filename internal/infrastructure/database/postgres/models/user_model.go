package models

import (
	"time"
)

// UserModel represents the database model for User
type UserModel struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Roles        []string   `gorm:"type:jsonb;serializer:json;not null"`
	JoinedAt     time.Time  `gorm:"not null"`
	VerifiedAt   *time.Time `gorm:"type:timestamptz"`
	LastLoginAt  *time.Time `gorm:"type:timestamptz"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// VerificationTokenModel represents the database model for VerificationToken
type VerificationTokenModel struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	UserID       int64      `gorm:"not null;index"`
	User         UserModel  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SecretDigest string     `gorm:"type:char(64);not null;uniqueIndex"`
	ExpiresAt    time.Time  `gorm:"not null;index"`
	UsedAt       *time.Time `gorm:"type:timestamptz"`
	CreatedAt    time.Time  `gorm:"not null"`
}

func (VerificationTokenModel) TableName() string {
	return "verification_tokens"
}

// PasswordResetRequestModel represents the database model for PasswordResetRequest
type PasswordResetRequestModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserID      int64     `gorm:"not null;index"`
	User        UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Selector    string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	HashedToken string    `gorm:"type:varchar(100);not null"`
	RequestedAt time.Time `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

func (PasswordResetRequestModel) TableName() string {
	return "reset_password_requests"
}
