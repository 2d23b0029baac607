package wishlist

import (
	"time"

	"github.com/google/uuid"
)

const (
	NameMaxLength = 255

	MinPriority     = 0
	MaxPriority     = 3
	DefaultPriority = 1
)

type Wishlist struct {
	ID             int64
	UUID           uuid.UUID
	OwnerID        int64
	Name           string
	AccessCodeHash *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// New builds a wishlist with a freshly minted time-ordered public UUID.
func New(ownerID int64, name string, now time.Time) (*Wishlist, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Wishlist{
		UUID:      id,
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (w *Wishlist) HasAccessCode() bool {
	return w.AccessCodeHash != nil
}

func (w *Wishlist) IsDeleted() bool {
	return w.DeletedAt != nil
}

func (w *Wishlist) IsOwnedBy(userID int64) bool {
	return w.OwnerID == userID
}

type Item struct {
	ID          int64
	WishlistID  int64
	AuthorID    int64
	Name        string
	Description string
	Priority    int
	Hidden      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Visibility filters item listings.
type Visibility int

const (
	AllItems Visibility = iota
	VisibleItems
	HiddenItems
)
