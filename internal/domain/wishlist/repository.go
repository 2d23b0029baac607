package wishlist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository stores wishlists. Soft-deleted wishlists are never returned.
type Repository interface {
	Create(ctx context.Context, w *Wishlist) error
	GetByID(ctx context.Context, id int64) (*Wishlist, error)
	// GetByIDForUpdate locks the row until the caller's transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*Wishlist, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*Wishlist, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Wishlist, error)
	Update(ctx context.Context, w *Wishlist) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

// ItemRepository stores wishlist items. Listings are ordered by ascending id.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	ListByWishlist(ctx context.Context, wishlistID int64, visibility Visibility) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	// UnhideAll clears the hidden flag on every item of the wishlist.
	UnhideAll(ctx context.Context, wishlistID int64, at time.Time) (int64, error)
}
