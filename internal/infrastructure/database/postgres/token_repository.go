package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainUser "aspire-wishlist/internal/domain/user"
	"aspire-wishlist/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VerificationTokenRepository implements domainUser.VerificationTokenRepository
type VerificationTokenRepository struct {
	db *DB
}

func NewVerificationTokenRepository(db *DB) domainUser.VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

func (r *VerificationTokenRepository) Create(ctx context.Context, token *domainUser.VerificationToken) error {
	dbModel := &models.VerificationTokenModel{
		UserID:       token.UserID,
		SecretDigest: token.SecretDigest,
		ExpiresAt:    token.ExpiresAt,
		UsedAt:       token.UsedAt,
		CreatedAt:    token.CreatedAt,
	}
	if err := r.db.conn(ctx).Omit(clause.Associations).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	token.ID = dbModel.ID
	return nil
}

func (r *VerificationTokenRepository) GetByDigest(ctx context.Context, digest string) (*domainUser.VerificationToken, error) {
	var dbModel models.VerificationTokenModel
	err := r.db.conn(ctx).Where("secret_digest = ?", digest).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}

	return &domainUser.VerificationToken{
		ID:           dbModel.ID,
		UserID:       dbModel.UserID,
		SecretDigest: dbModel.SecretDigest,
		ExpiresAt:    dbModel.ExpiresAt,
		UsedAt:       dbModel.UsedAt,
		CreatedAt:    dbModel.CreatedAt,
	}, nil
}

// ExpireActive locks the owning user row first so concurrent issuance for the
// same user is serialized inside the caller's transaction.
func (r *VerificationTokenRepository) ExpireActive(ctx context.Context, userID int64, now time.Time) (int64, error) {
	db := r.db.conn(ctx)

	var owner models.UserModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&owner, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, domainUser.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock user: %w", err)
	}

	result := db.Model(&models.VerificationTokenModel{}).
		Where("user_id = ? AND used_at IS NULL AND expires_at > ?", userID, now).
		Update("expires_at", now)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire verification tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *VerificationTokenRepository) MarkUsed(ctx context.Context, tokenID int64, now time.Time) error {
	result := r.db.conn(ctx).Model(&models.VerificationTokenModel{}).
		Where("id = ? AND used_at IS NULL AND expires_at > ?", tokenID, now).
		Update("used_at", now)

	if result.Error != nil {
		return fmt.Errorf("failed to mark verification token as used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrTokenInvalid
	}

	return nil
}

func (r *VerificationTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.conn(ctx).Where("expires_at < ?", before).Delete(&models.VerificationTokenModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired verification tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PasswordResetRepository implements domainUser.PasswordResetRepository
type PasswordResetRepository struct {
	db *DB
}

func NewPasswordResetRepository(db *DB) domainUser.PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, req *domainUser.PasswordResetRequest) error {
	dbModel := &models.PasswordResetRequestModel{
		UserID:      req.UserID,
		Selector:    req.Selector,
		HashedToken: req.HashedToken,
		RequestedAt: req.RequestedAt,
		ExpiresAt:   req.ExpiresAt,
	}
	if err := r.db.conn(ctx).Omit(clause.Associations).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create reset request: %w", err)
	}

	req.ID = dbModel.ID
	return nil
}

func (r *PasswordResetRepository) GetBySelector(ctx context.Context, selector string) (*domainUser.PasswordResetRequest, error) {
	return r.first(r.db.conn(ctx).Where("selector = ?", selector))
}

func (r *PasswordResetRepository) GetLatestForUser(ctx context.Context, userID int64) (*domainUser.PasswordResetRequest, error) {
	return r.first(r.db.conn(ctx).Where("user_id = ?", userID).Order("requested_at DESC, id DESC"))
}

func (r *PasswordResetRepository) Delete(ctx context.Context, requestID int64) error {
	result := r.db.conn(ctx).Delete(&models.PasswordResetRequestModel{}, "id = ?", requestID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete reset request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrTokenInvalid
	}
	return nil
}

func (r *PasswordResetRepository) DeleteForUser(ctx context.Context, userID int64) (int64, error) {
	result := r.db.conn(ctx).Delete(&models.PasswordResetRequestModel{}, "user_id = ?", userID)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete reset requests: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.conn(ctx).Where("expires_at < ?", before).Delete(&models.PasswordResetRequestModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired reset requests: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *PasswordResetRepository) first(query *gorm.DB) (*domainUser.PasswordResetRequest, error) {
	var dbModel models.PasswordResetRequestModel
	err := query.First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset request: %w", err)
	}

	return &domainUser.PasswordResetRequest{
		ID:          dbModel.ID,
		UserID:      dbModel.UserID,
		Selector:    dbModel.Selector,
		HashedToken: dbModel.HashedToken,
		RequestedAt: dbModel.RequestedAt,
		ExpiresAt:   dbModel.ExpiresAt,
	}, nil
}
