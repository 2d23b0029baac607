// Package memory is an in-process implementation of every repository, used
// by the "memory" database driver and by tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	domainUser "aspire-wishlist/internal/domain/user"
	domainWishlist "aspire-wishlist/internal/domain/wishlist"
)

type txKey struct{}

type tables struct {
	users              map[int64]domainUser.User
	verificationTokens map[int64]domainUser.VerificationToken
	resetRequests      map[int64]domainUser.PasswordResetRequest
	wishlists          map[int64]domainWishlist.Wishlist
	items              map[int64]domainWishlist.Item
	sequences          map[string]int64
}

func (t *tables) clone() tables {
	return tables{
		users:              maps.Clone(t.users),
		verificationTokens: maps.Clone(t.verificationTokens),
		resetRequests:      maps.Clone(t.resetRequests),
		wishlists:          maps.Clone(t.wishlists),
		items:              maps.Clone(t.items),
		sequences:          maps.Clone(t.sequences),
	}
}

// Store serializes all access behind one mutex. A transaction holds the
// mutex for its whole duration and restores a snapshot on error.
type Store struct {
	mu sync.Mutex
	t  tables
}

func NewStore() *Store {
	return &Store{
		t: tables{
			users:              make(map[int64]domainUser.User),
			verificationTokens: make(map[int64]domainUser.VerificationToken),
			resetRequests:      make(map[int64]domainUser.PasswordResetRequest),
			wishlists:          make(map[int64]domainWishlist.Wishlist),
			items:              make(map[int64]domainWishlist.Item),
			sequences:          make(map[string]int64),
		},
	}
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.t = snapshot
		return err
	}
	return nil
}

func (s *Store) Health(context.Context) error {
	return nil
}

func (s *Store) Users() domainUser.Repository {
	return &userRepository{store: s}
}

func (s *Store) VerificationTokens() domainUser.VerificationTokenRepository {
	return &verificationTokenRepository{store: s}
}

func (s *Store) PasswordResets() domainUser.PasswordResetRepository {
	return &passwordResetRepository{store: s}
}

func (s *Store) Wishlists() domainWishlist.Repository {
	return &wishlistRepository{store: s}
}

func (s *Store) Items() domainWishlist.ItemRepository {
	return &itemRepository{store: s}
}

func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) == s
}

// lock acquires the store mutex unless ctx already belongs to a transaction
// holding it.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextID(table string) int64 {
	s.t.sequences[table]++
	return s.t.sequences[table]
}

// sortedKeys returns ids in ascending order, matching the SQL ORDER BY id.
func sortedKeys[V any](m map[int64]V) []int64 {
	return slices.Sorted(maps.Keys(m))
}
