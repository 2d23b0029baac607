package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainWishlist "aspire-wishlist/internal/domain/wishlist"
	"aspire-wishlist/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistRepository implements domainWishlist.Repository
type WishlistRepository struct {
	db *DB
}

func NewWishlistRepository(db *DB) domainWishlist.Repository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) Create(ctx context.Context, w *domainWishlist.Wishlist) error {
	dbModel := toWishlistModel(w)
	if err := r.db.conn(ctx).Omit(clause.Associations).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create wishlist: %w", err)
	}

	w.ID = dbModel.ID
	return nil
}

func (r *WishlistRepository) GetByID(ctx context.Context, id int64) (*domainWishlist.Wishlist, error) {
	var dbModel models.WishlistModel
	err := r.db.conn(ctx).First(&dbModel, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainWishlist.ErrWishlistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	return toWishlistEntity(&dbModel), nil
}

func (r *WishlistRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domainWishlist.Wishlist, error) {
	var dbModel models.WishlistModel
	err := r.db.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&dbModel, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainWishlist.ErrWishlistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock wishlist: %w", err)
	}

	return toWishlistEntity(&dbModel), nil
}

func (r *WishlistRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*domainWishlist.Wishlist, error) {
	var dbModel models.WishlistModel
	err := r.db.conn(ctx).Where("uuid = ?", id).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainWishlist.ErrWishlistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	return toWishlistEntity(&dbModel), nil
}

func (r *WishlistRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domainWishlist.Wishlist, error) {
	var dbModels []models.WishlistModel
	err := r.db.conn(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlists: %w", err)
	}

	wishlists := make([]*domainWishlist.Wishlist, len(dbModels))
	for i := range dbModels {
		wishlists[i] = toWishlistEntity(&dbModels[i])
	}
	return wishlists, nil
}

func (r *WishlistRepository) Update(ctx context.Context, w *domainWishlist.Wishlist) error {
	result := r.db.conn(ctx).Model(&models.WishlistModel{}).
		Where("id = ?", w.ID).
		Updates(map[string]interface{}{
			"name":             w.Name,
			"access_code_hash": w.AccessCodeHash,
			"updated_at":       w.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainWishlist.ErrWishlistNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at with the caller's clock instead of gorm's.
func (r *WishlistRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result := r.db.conn(ctx).Model(&models.WishlistModel{}).
		Where("id = ?", id).
		Update("deleted_at", at)

	if result.Error != nil {
		return fmt.Errorf("failed to delete wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainWishlist.ErrWishlistNotFound
	}
	return nil
}

// ItemRepository implements domainWishlist.ItemRepository
type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) domainWishlist.ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *domainWishlist.Item) error {
	dbModel := toItemModel(item)
	if err := r.db.conn(ctx).Omit(clause.Associations).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	item.ID = dbModel.ID
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*domainWishlist.Item, error) {
	var dbModel models.WishlistItemModel
	err := r.db.conn(ctx).First(&dbModel, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainWishlist.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return toItemEntity(&dbModel), nil
}

func (r *ItemRepository) ListByWishlist(ctx context.Context, wishlistID int64, visibility domainWishlist.Visibility) ([]*domainWishlist.Item, error) {
	query := r.db.conn(ctx).Where("wishlist_id = ?", wishlistID)
	switch visibility {
	case domainWishlist.VisibleItems:
		query = query.Where("hidden = ?", false)
	case domainWishlist.HiddenItems:
		query = query.Where("hidden = ?", true)
	}

	var dbModels []models.WishlistItemModel
	if err := query.Order("id ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]*domainWishlist.Item, len(dbModels))
	for i := range dbModels {
		items[i] = toItemEntity(&dbModels[i])
	}
	return items, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *domainWishlist.Item) error {
	result := r.db.conn(ctx).Model(&models.WishlistItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"priority":    item.Priority,
			"hidden":      item.Hidden,
			"updated_at":  item.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainWishlist.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.conn(ctx).Delete(&models.WishlistItemModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainWishlist.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) UnhideAll(ctx context.Context, wishlistID int64, at time.Time) (int64, error) {
	result := r.db.conn(ctx).Model(&models.WishlistItemModel{}).
		Where("wishlist_id = ? AND hidden = ?", wishlistID, true).
		Updates(map[string]interface{}{
			"hidden":     false,
			"updated_at": at,
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to unhide items: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toWishlistModel(w *domainWishlist.Wishlist) *models.WishlistModel {
	return &models.WishlistModel{
		ID:             w.ID,
		UUID:           w.UUID,
		OwnerID:        w.OwnerID,
		Name:           w.Name,
		AccessCodeHash: w.AccessCodeHash,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

func toWishlistEntity(m *models.WishlistModel) *domainWishlist.Wishlist {
	w := &domainWishlist.Wishlist{
		ID:             m.ID,
		UUID:           m.UUID,
		OwnerID:        m.OwnerID,
		Name:           m.Name,
		AccessCodeHash: m.AccessCodeHash,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		deletedAt := m.DeletedAt.Time
		w.DeletedAt = &deletedAt
	}
	return w
}

func toItemModel(item *domainWishlist.Item) *models.WishlistItemModel {
	return &models.WishlistItemModel{
		ID:          item.ID,
		WishlistID:  item.WishlistID,
		AuthorID:    item.AuthorID,
		Name:        item.Name,
		Description: item.Description,
		Priority:    item.Priority,
		Hidden:      item.Hidden,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toItemEntity(m *models.WishlistItemModel) *domainWishlist.Item {
	return &domainWishlist.Item{
		ID:          m.ID,
		WishlistID:  m.WishlistID,
		AuthorID:    m.AuthorID,
		Name:        m.Name,
		Description: m.Description,
		Priority:    m.Priority,
		Hidden:      m.Hidden,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
