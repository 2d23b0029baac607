package wishlist

import (
	"bytes"
	"time"

	domainWishlist "aspire-wishlist/internal/domain/wishlist"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// OptionalString tells an absent JSON key apart from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Present reports whether the key was sent with a non-empty value.
func (o OptionalString) Present() bool {
	return o.Set && o.Value != nil && *o.Value != ""
}

type CreateWishlistRequest struct {
	Name       string  `json:"name" validate:"required,notblank,max=255"`
	AccessCode *string `json:"access_code" validate:"omitempty,max=255"`
}

type UpdateWishlistRequest struct {
	Name       *string        `json:"name" validate:"omitnil,notblank,max=255"`
	AccessCode OptionalString `json:"access_code"`
}

type SetAccessCodeRequest struct {
	AccessCode string `json:"access_code" validate:"max=255"`
}

type HiddenItemsRequest struct {
	AccessCode string `json:"access_code"`
}

type CreateItemRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Priority    *int   `json:"priority" validate:"omitempty,gte=0,lte=3"`
	Hidden      bool   `json:"hidden"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Priority    *int    `json:"priority" validate:"omitempty,gte=0,lte=3"`
	Hidden      *bool   `json:"hidden"`
}

type WishlistResponse struct {
	ID          int64     `json:"id"`
	UUID        uuid.UUID `json:"uuid"`
	Name        string    `json:"name"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ItemResponse struct {
	ID          int64     `json:"id"`
	WishlistID  int64     `json:"wishlist_id"`
	AuthorID    int64     `json:"author_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	Hidden      bool      `json:"hidden"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PublicItemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

type PublicWishlistResponse struct {
	UUID        uuid.UUID             `json:"uuid"`
	Name        string                `json:"name"`
	HasPassword bool                  `json:"has_password"`
	Items       []*PublicItemResponse `json:"items"`
}

func ToWishlistResponse(w *domainWishlist.Wishlist) *WishlistResponse {
	return &WishlistResponse{
		ID:          w.ID,
		UUID:        w.UUID,
		Name:        w.Name,
		HasPassword: w.HasAccessCode(),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func ToItemResponse(item *domainWishlist.Item) *ItemResponse {
	return &ItemResponse{
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

func toItemResponses(items []*domainWishlist.Item) []*ItemResponse {
	out := make([]*ItemResponse, len(items))
	for i, item := range items {
		out[i] = ToItemResponse(item)
	}
	return out
}

func toPublicItems(items []*domainWishlist.Item) []*PublicItemResponse {
	out := make([]*PublicItemResponse, len(items))
	for i, item := range items {
		out[i] = &PublicItemResponse{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Priority:    item.Priority,
		}
	}
	return out
}
