// Package wishlist manages wishlists, their items and the access code that
// gates hidden items.
package wishlist

import (
	"context"
	"errors"
	"fmt"

	"aspire-wishlist/internal/domain"
	"aspire-wishlist/internal/domain/event"
	domainWishlist "aspire-wishlist/internal/domain/wishlist"
	"aspire-wishlist/internal/logger"
	"aspire-wishlist/pkg/clock"
	appErrors "aspire-wishlist/pkg/errors"
	"aspire-wishlist/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	accessCodeMaxLength = 255

	msgHiddenWithoutCode = "Wishlist must have an access code to allow hidden items."
)

type Service struct {
	tx           domain.Transactor
	wishlistRepo domainWishlist.Repository
	itemRepo     domainWishlist.ItemRepository
	hasher       domain.Hasher
	clock        clock.Clock
	events       event.Publisher
}

func NewService(
	tx domain.Transactor,
	wishlistRepo domainWishlist.Repository,
	itemRepo domainWishlist.ItemRepository,
	hasher domain.Hasher,
	clk clock.Clock,
	events event.Publisher,
) *Service {
	return &Service{
		tx:           tx,
		wishlistRepo: wishlistRepo,
		itemRepo:     itemRepo,
		hasher:       hasher,
		clock:        clk,
		events:       events,
	}
}

func (s *Service) Create(ctx context.Context, ownerID int64, req *CreateWishlistRequest) (*WishlistResponse, error) {
	req.Name = utils.SanitizeName(req.Name)
	if err := utils.ValidateInput(req); err != nil {
		return nil, err
	}

	w, err := domainWishlist.New(ownerID, req.Name, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to mint wishlist uuid: %w", err)
	}
	if req.AccessCode != nil && *req.AccessCode != "" {
		hash, err := s.hasher.Hash(*req.AccessCode)
		if err != nil {
			return nil, fmt.Errorf("failed to hash access code: %w", err)
		}
		w.AccessCodeHash = &hash
	}

	if err := s.wishlistRepo.Create(ctx, w); err != nil {
		return nil, err
	}

	logger.Info("Wishlist created",
		zap.Int64("wishlist_id", w.ID),
		zap.Int64("owner_id", ownerID),
		zap.String("event", "wishlist_created"),
	)
	s.publish(ctx, event.WishlistCreated, w)

	return ToWishlistResponse(w), nil
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]*WishlistResponse, error) {
	wishlists, err := s.wishlistRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]*WishlistResponse, len(wishlists))
	for i, w := range wishlists {
		out[i] = ToWishlistResponse(w)
	}
	return out, nil
}

func (s *Service) GetOwned(ctx context.Context, ownerID, wishlistID int64) (*WishlistResponse, error) {
	w, err := s.getOwned(ctx, ownerID, wishlistID)
	if err != nil {
		return nil, err
	}
	return ToWishlistResponse(w), nil
}

// Update applies only the keys present in req. An explicit empty or null
// access code clears it and unhides every item.
func (s *Service) Update(ctx context.Context, ownerID, wishlistID int64, req *UpdateWishlistRequest) (*WishlistResponse, error) {
	if req.Name != nil {
		name := utils.SanitizeName(*req.Name)
		req.Name = &name
	}
	if err := utils.ValidateInput(req); err != nil {
		return nil, err
	}
	if req.AccessCode.Present() && len(*req.AccessCode.Value) > accessCodeMaxLength {
		return nil, appErrors.Validation(appErrors.FieldError{Field: "access_code", Code: "too_long"})
	}

	var updated *domainWishlist.Wishlist
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := s.getOwnedForUpdate(ctx, ownerID, wishlistID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			w.Name = *req.Name
		}
		if req.AccessCode.Set {
			raw := ""
			if req.AccessCode.Value != nil {
				raw = *req.AccessCode.Value
			}
			if err := s.applyAccessCode(ctx, w, raw); err != nil {
				return err
			}
		}

		w.UpdatedAt = s.clock.Now()
		if err := s.wishlistRepo.Update(ctx, w); err != nil {
			return s.translate(err)
		}
		updated = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ToWishlistResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, ownerID, wishlistID int64) error {
	w, err := s.getOwned(ctx, ownerID, wishlistID)
	if err != nil {
		return err
	}

	if err := s.wishlistRepo.SoftDelete(ctx, w.ID, s.clock.Now()); err != nil {
		return s.translate(err)
	}

	logger.Info("Wishlist deleted",
		zap.Int64("wishlist_id", w.ID),
		zap.Int64("owner_id", ownerID),
		zap.String("event", "wishlist_deleted"),
	)
	s.publish(ctx, event.WishlistDeleted, w)
	return nil
}

// SetAccessCode replaces the wishlist's access code. An empty raw clears it
// and unhides all items in the same transaction.
func (s *Service) SetAccessCode(ctx context.Context, ownerID, wishlistID int64, raw string) (*WishlistResponse, error) {
	if err := utils.ValidateInput(&SetAccessCodeRequest{AccessCode: raw}); err != nil {
		return nil, err
	}

	var updated *domainWishlist.Wishlist
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := s.getOwnedForUpdate(ctx, ownerID, wishlistID)
		if err != nil {
			return err
		}
		if err := s.applyAccessCode(ctx, w, raw); err != nil {
			return err
		}

		w.UpdatedAt = s.clock.Now()
		if err := s.wishlistRepo.Update(ctx, w); err != nil {
			return s.translate(err)
		}
		updated = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Wishlist access code changed",
		zap.Int64("wishlist_id", updated.ID),
		zap.Bool("has_password", updated.HasAccessCode()),
		zap.String("event", "wishlist_access_code_changed"),
	)
	return ToWishlistResponse(updated), nil
}

// CheckAccessCode reports whether raw matches the wishlist's access code. A
// wishlist without a code matches nothing.
func (s *Service) CheckAccessCode(w *domainWishlist.Wishlist, raw string) bool {
	if !w.HasAccessCode() {
		return false
	}
	return s.hasher.Verify(raw, *w.AccessCodeHash)
}

func (s *Service) CreateItem(ctx context.Context, ownerID, wishlistID int64, req *CreateItemRequest) (*ItemResponse, error) {
	req.Name = utils.SanitizeName(req.Name)
	req.Description = utils.SanitizeText(req.Description)
	if err := utils.ValidateInput(req); err != nil {
		return nil, err
	}

	priority := domainWishlist.DefaultPriority
	if req.Priority != nil {
		priority = *req.Priority
	}

	var item *domainWishlist.Item
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := s.getOwnedForUpdate(ctx, ownerID, wishlistID)
		if err != nil {
			return err
		}
		if req.Hidden && !w.HasAccessCode() {
			return appErrors.Policy(msgHiddenWithoutCode)
		}

		now := s.clock.Now()
		item = &domainWishlist.Item{
			WishlistID:  w.ID,
			AuthorID:    ownerID,
			Name:        req.Name,
			Description: req.Description,
			Priority:    priority,
			Hidden:      req.Hidden,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.translate(s.itemRepo.Create(ctx, item))
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Wishlist item created",
		zap.Int64("wishlist_id", item.WishlistID),
		zap.Int64("item_id", item.ID),
		zap.Bool("hidden", item.Hidden),
		zap.String("event", "wishlist_item_created"),
	)
	return ToItemResponse(item), nil
}

func (s *Service) UpdateItem(ctx context.Context, ownerID, wishlistID, itemID int64, req *UpdateItemRequest) (*ItemResponse, error) {
	if req.Name != nil {
		name := utils.SanitizeName(*req.Name)
		req.Name = &name
	}
	if req.Description != nil {
		description := utils.SanitizeText(*req.Description)
		req.Description = &description
	}
	if err := utils.ValidateInput(req); err != nil {
		return nil, err
	}

	var item *domainWishlist.Item
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := s.getOwnedForUpdate(ctx, ownerID, wishlistID)
		if err != nil {
			return err
		}
		if item, err = s.getItem(ctx, w, itemID); err != nil {
			return err
		}
		if req.Hidden != nil && *req.Hidden && !w.HasAccessCode() {
			return appErrors.Policy(msgHiddenWithoutCode)
		}

		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Priority != nil {
			item.Priority = *req.Priority
		}
		if req.Hidden != nil {
			item.Hidden = *req.Hidden
		}
		item.UpdatedAt = s.clock.Now()

		return s.translate(s.itemRepo.Update(ctx, item))
	})
	if err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

func (s *Service) ListItems(ctx context.Context, ownerID, wishlistID int64) ([]*ItemResponse, error) {
	w, err := s.getOwned(ctx, ownerID, wishlistID)
	if err != nil {
		return nil, err
	}

	items, err := s.itemRepo.ListByWishlist(ctx, w.ID, domainWishlist.AllItems)
	if err != nil {
		return nil, err
	}
	return toItemResponses(items), nil
}

func (s *Service) GetItem(ctx context.Context, ownerID, wishlistID, itemID int64) (*ItemResponse, error) {
	_, item, err := s.getOwnedItem(ctx, ownerID, wishlistID, itemID)
	if err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

func (s *Service) DeleteItem(ctx context.Context, ownerID, wishlistID, itemID int64) error {
	_, item, err := s.getOwnedItem(ctx, ownerID, wishlistID, itemID)
	if err != nil {
		return err
	}

	if err := s.itemRepo.Delete(ctx, item.ID); err != nil {
		return s.translate(err)
	}
	return nil
}

// PublicView returns the shared read-only view with hidden items left out.
func (s *Service) PublicView(ctx context.Context, publicID uuid.UUID) (*PublicWishlistResponse, error) {
	w, err := s.getPublic(ctx, publicID)
	if err != nil {
		return nil, err
	}

	items, err := s.itemRepo.ListByWishlist(ctx, w.ID, domainWishlist.VisibleItems)
	if err != nil {
		return nil, err
	}

	return &PublicWishlistResponse{
		UUID:        w.UUID,
		Name:        w.Name,
		HasPassword: w.HasAccessCode(),
		Items:       toPublicItems(items),
	}, nil
}

// ListHiddenForPublicUUID returns the hidden items once code matches.
func (s *Service) ListHiddenForPublicUUID(ctx context.Context, publicID uuid.UUID, code string) ([]*PublicItemResponse, error) {
	w, err := s.getPublic(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if code == "" || !s.CheckAccessCode(w, code) {
		logger.Warn("Hidden items requested with wrong access code",
			zap.String("wishlist_uuid", w.UUID.String()),
			zap.String("event", "wishlist_access_denied"),
		)
		return nil, appErrors.Unauthorized("Invalid access code.")
	}

	items, err := s.itemRepo.ListByWishlist(ctx, w.ID, domainWishlist.HiddenItems)
	if err != nil {
		return nil, err
	}
	return toPublicItems(items), nil
}

// applyAccessCode hashes raw onto w, or clears the code and unhides every
// item when raw is empty. ctx must carry the caller's transaction.
func (s *Service) applyAccessCode(ctx context.Context, w *domainWishlist.Wishlist, raw string) error {
	if raw == "" {
		w.AccessCodeHash = nil
		unhidden, err := s.itemRepo.UnhideAll(ctx, w.ID, s.clock.Now())
		if err != nil {
			return err
		}
		logger.Debug("Access code cleared",
			zap.Int64("wishlist_id", w.ID),
			zap.Int64("unhidden_items", unhidden),
		)
		return nil
	}

	hash, err := s.hasher.Hash(raw)
	if err != nil {
		return fmt.Errorf("failed to hash access code: %w", err)
	}
	w.AccessCodeHash = &hash
	return nil
}

func (s *Service) getOwned(ctx context.Context, ownerID, wishlistID int64) (*domainWishlist.Wishlist, error) {
	w, err := s.wishlistRepo.GetByID(ctx, wishlistID)
	if err != nil {
		return nil, s.translate(err)
	}
	if w.IsDeleted() || !w.IsOwnedBy(ownerID) {
		return nil, appErrors.NotFound("Wishlist not found.")
	}
	return w, nil
}

// getOwnedForUpdate is getOwned with the wishlist row locked, so the access
// code cannot change until ctx's transaction ends.
func (s *Service) getOwnedForUpdate(ctx context.Context, ownerID, wishlistID int64) (*domainWishlist.Wishlist, error) {
	w, err := s.wishlistRepo.GetByIDForUpdate(ctx, wishlistID)
	if err != nil {
		return nil, s.translate(err)
	}
	if w.IsDeleted() || !w.IsOwnedBy(ownerID) {
		return nil, appErrors.NotFound("Wishlist not found.")
	}
	return w, nil
}

func (s *Service) getOwnedItem(ctx context.Context, ownerID, wishlistID, itemID int64) (*domainWishlist.Wishlist, *domainWishlist.Item, error) {
	w, err := s.getOwned(ctx, ownerID, wishlistID)
	if err != nil {
		return nil, nil, err
	}

	item, err := s.getItem(ctx, w, itemID)
	if err != nil {
		return nil, nil, err
	}
	return w, item, nil
}

func (s *Service) getItem(ctx context.Context, w *domainWishlist.Wishlist, itemID int64) (*domainWishlist.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, s.translate(err)
	}
	if item.WishlistID != w.ID {
		return nil, appErrors.NotFound("Item not found.")
	}
	return item, nil
}

func (s *Service) getPublic(ctx context.Context, publicID uuid.UUID) (*domainWishlist.Wishlist, error) {
	w, err := s.wishlistRepo.GetByUUID(ctx, publicID)
	if err != nil {
		return nil, s.translate(err)
	}
	if w.IsDeleted() {
		return nil, appErrors.NotFound("Wishlist not found.")
	}
	return w, nil
}

func (s *Service) translate(err error) error {
	switch {
	case errors.Is(err, domainWishlist.ErrWishlistNotFound):
		return appErrors.NotFound("Wishlist not found.")
	case errors.Is(err, domainWishlist.ErrItemNotFound):
		return appErrors.NotFound("Item not found.")
	}
	return err
}

func (s *Service) publish(ctx context.Context, t event.Type, w *domainWishlist.Wishlist) {
	e := event.Event{
		Type:       t,
		UserID:     w.OwnerID,
		Subject:    w.UUID.String(),
		OccurredAt: s.clock.Now(),
	}
	if err := s.events.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("type", string(t)),
			zap.Int64("wishlist_id", w.ID),
			zap.Error(err),
		)
	}
}
