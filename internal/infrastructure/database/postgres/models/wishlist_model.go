package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistModel represents the database model for Wishlist. DeletedAt makes
// gorm exclude soft-deleted rows from every query.
type WishlistModel struct {
	ID             int64          `gorm:"primaryKey;autoIncrement"`
	UUID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	OwnerID        int64          `gorm:"not null;index"`
	Owner          UserModel      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Name           string         `gorm:"type:varchar(255);not null"`
	AccessCodeHash *string        `gorm:"type:varchar(255)"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (WishlistModel) TableName() string {
	return "wishlists"
}

// WishlistItemModel represents the database model for Item
type WishlistItemModel struct {
	ID          int64         `gorm:"primaryKey;autoIncrement"`
	WishlistID  int64         `gorm:"not null;index"`
	Wishlist    WishlistModel `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
	AuthorID    int64         `gorm:"not null;index"`
	Author      UserModel     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string        `gorm:"type:varchar(255);not null"`
	Description string        `gorm:"type:text;not null"`
	Priority    int           `gorm:"type:smallint;not null"`
	Hidden      bool          `gorm:"not null"`
	CreatedAt   time.Time     `gorm:"not null"`
	UpdatedAt   time.Time     `gorm:"not null"`
}

func (WishlistItemModel) TableName() string {
	return "wishlist_items"
}

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&UserModel{},
		&VerificationTokenModel{},
		&PasswordResetRequestModel{},
		&WishlistModel{},
		&WishlistItemModel{},
	}
}
