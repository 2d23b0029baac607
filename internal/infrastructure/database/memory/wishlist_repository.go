package memory

import (
	"context"
	"time"

	domainUser "aspire-wishlist/internal/domain/user"
	domainWishlist "aspire-wishlist/internal/domain/wishlist"

	"github.com/google/uuid"
)

type wishlistRepository struct {
	store *Store
}

func (r *wishlistRepository) Create(ctx context.Context, w *domainWishlist.Wishlist) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.t.users[w.OwnerID]; !ok {
		return domainUser.ErrUserNotFound
	}
	w.ID = r.store.nextID("wishlists")
	r.store.t.wishlists[w.ID] = *w
	return nil
}

func (r *wishlistRepository) GetByID(ctx context.Context, id int64) (*domainWishlist.Wishlist, error) {
	defer r.store.lock(ctx)()

	w, ok := r.store.t.wishlists[id]
	if !ok || w.IsDeleted() {
		return nil, domainWishlist.ErrWishlistNotFound
	}
	return &w, nil
}

// GetByIDForUpdate needs no row lock here, the transaction already holds the
// store mutex.
func (r *wishlistRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domainWishlist.Wishlist, error) {
	return r.GetByID(ctx, id)
}

func (r *wishlistRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*domainWishlist.Wishlist, error) {
	defer r.store.lock(ctx)()

	for _, w := range r.store.t.wishlists {
		if w.UUID == id && !w.IsDeleted() {
			return &w, nil
		}
	}
	return nil, domainWishlist.ErrWishlistNotFound
}

func (r *wishlistRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domainWishlist.Wishlist, error) {
	defer r.store.lock(ctx)()

	wishlists := make([]*domainWishlist.Wishlist, 0)
	for _, id := range sortedKeys(r.store.t.wishlists) {
		w := r.store.t.wishlists[id]
		if w.OwnerID == ownerID && !w.IsDeleted() {
			wishlists = append(wishlists, &w)
		}
	}
	return wishlists, nil
}

func (r *wishlistRepository) Update(ctx context.Context, w *domainWishlist.Wishlist) error {
	defer r.store.lock(ctx)()

	existing, ok := r.store.t.wishlists[w.ID]
	if !ok || existing.IsDeleted() {
		return domainWishlist.ErrWishlistNotFound
	}
	existing.Name = w.Name
	existing.AccessCodeHash = w.AccessCodeHash
	existing.UpdatedAt = w.UpdatedAt
	r.store.t.wishlists[w.ID] = existing
	return nil
}

func (r *wishlistRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	defer r.store.lock(ctx)()

	w, ok := r.store.t.wishlists[id]
	if !ok || w.IsDeleted() {
		return domainWishlist.ErrWishlistNotFound
	}
	w.DeletedAt = &at
	r.store.t.wishlists[id] = w
	return nil
}

type itemRepository struct {
	store *Store
}

func (r *itemRepository) Create(ctx context.Context, item *domainWishlist.Item) error {
	defer r.store.lock(ctx)()

	if w, ok := r.store.t.wishlists[item.WishlistID]; !ok || w.IsDeleted() {
		return domainWishlist.ErrWishlistNotFound
	}
	item.ID = r.store.nextID("wishlist_items")
	r.store.t.items[item.ID] = *item
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domainWishlist.Item, error) {
	defer r.store.lock(ctx)()

	item, ok := r.store.t.items[id]
	if !ok {
		return nil, domainWishlist.ErrItemNotFound
	}
	return &item, nil
}

func (r *itemRepository) ListByWishlist(ctx context.Context, wishlistID int64, visibility domainWishlist.Visibility) ([]*domainWishlist.Item, error) {
	defer r.store.lock(ctx)()

	items := make([]*domainWishlist.Item, 0)
	for _, id := range sortedKeys(r.store.t.items) {
		item := r.store.t.items[id]
		if item.WishlistID != wishlistID {
			continue
		}
		if visibility == domainWishlist.VisibleItems && item.Hidden {
			continue
		}
		if visibility == domainWishlist.HiddenItems && !item.Hidden {
			continue
		}
		items = append(items, &item)
	}
	return items, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domainWishlist.Item) error {
	defer r.store.lock(ctx)()

	existing, ok := r.store.t.items[item.ID]
	if !ok {
		return domainWishlist.ErrItemNotFound
	}
	existing.Name = item.Name
	existing.Description = item.Description
	existing.Priority = item.Priority
	existing.Hidden = item.Hidden
	existing.UpdatedAt = item.UpdatedAt
	r.store.t.items[item.ID] = existing
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.t.items[id]; !ok {
		return domainWishlist.ErrItemNotFound
	}
	delete(r.store.t.items, id)
	return nil
}

func (r *itemRepository) UnhideAll(ctx context.Context, wishlistID int64, at time.Time) (int64, error) {
	defer r.store.lock(ctx)()

	var n int64
	for id, item := range r.store.t.items {
		if item.WishlistID == wishlistID && item.Hidden {
			item.Hidden = false
			item.UpdatedAt = at
			r.store.t.items[id] = item
			n++
		}
	}
	return n, nil
}
