package wishlist

import "errors"

var (
	ErrWishlistNotFound = errors.New("wishlist not found")
	ErrItemNotFound     = errors.New("item not found")
)
