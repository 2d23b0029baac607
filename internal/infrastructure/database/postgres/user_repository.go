package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainUser "aspire-wishlist/internal/domain/user"
	"aspire-wishlist/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository implements domainUser.Repository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) domainUser.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domainUser.User) error {
	dbModel := toUserModel(u)
	if err := r.db.conn(ctx).Omit(clause.Associations).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return domainUser.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.ID = dbModel.ID
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	var dbModel models.UserModel
	err := r.db.conn(ctx).Where("email = ?", email).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*domainUser.User, error) {
	var dbModel models.UserModel
	err := r.db.conn(ctx).First(&dbModel, "id = ?", userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) Lock(ctx context.Context, userID int64) error {
	var dbModel models.UserModel
	err := r.db.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&dbModel, "id = ?", userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainUser.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*domainUser.User, error) {
	var dbModels []models.UserModel
	if err := r.db.conn(ctx).Order("id ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	users := make([]*domainUser.User, len(dbModels))
	for i := range dbModels {
		users[i] = toUserEntity(&dbModels[i])
	}

	return users, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string, at time.Time) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    at,
	})
}

func (r *UserRepository) MarkVerified(ctx context.Context, userID int64, at time.Time) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"verified_at": at,
		"updated_at":  at,
	})
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"last_login_at": at,
	})
}

func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	result := r.db.conn(ctx).Delete(&models.UserModel{}, "id = ?", userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainUser.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) updateColumns(ctx context.Context, userID int64, columns map[string]interface{}) error {
	result := r.db.conn(ctx).Model(&models.UserModel{}).
		Where("id = ?", userID).
		Updates(columns)

	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrUserNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "sqlstate 23505")
}

// Helper functions to convert between domain entities and database models

func toUserModel(u *domainUser.User) *models.UserModel {
	return &models.UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        u.Roles,
		JoinedAt:     u.JoinedAt,
		VerifiedAt:   u.VerifiedAt,
		LastLoginAt:  u.LastLoginAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toUserEntity(m *models.UserModel) *domainUser.User {
	return &domainUser.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Roles:        m.Roles,
		JoinedAt:     m.JoinedAt,
		VerifiedAt:   m.VerifiedAt,
		LastLoginAt:  m.LastLoginAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
