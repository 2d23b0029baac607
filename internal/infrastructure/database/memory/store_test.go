package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainUser "aspire-wishlist/internal/domain/user"
	domainWishlist "aspire-wishlist/internal/domain/wishlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func seedUser(t *testing.T, s *Store, email string) *domainUser.User {
	t.Helper()
	u := &domainUser.User{Email: email, PasswordHash: "hash", Roles: []string{domainUser.RoleUser}, JoinedAt: now}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestUserRepositoryUniqueEmail(t *testing.T) {
	s := NewStore()
	first := seedUser(t, s, "a@example.com")
	assert.Equal(t, int64(1), first.ID)

	err := s.Users().Create(context.Background(), &domainUser.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, domainUser.ErrUserAlreadyExists)
}

func TestUserRepositoryReturnsCopies(t *testing.T) {
	s := NewStore()
	u := seedUser(t, s, "a@example.com")

	got, err := s.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	got.Email = "changed@example.com"
	got.Roles[0] = "staff"

	again, err := s.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", again.Email)
	assert.Equal(t, []string{domainUser.RoleUser}, again.Roles)
}

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	s := NewStore()
	u := seedUser(t, s, "a@example.com")
	boom := errors.New("boom")

	err := s.WithinTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.Users().MarkVerified(ctx, u.ID, now))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.VerifiedAt)
}

func TestWithinTransactionCommits(t *testing.T) {
	s := NewStore()
	u := seedUser(t, s, "a@example.com")

	err := s.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return s.Users().MarkVerified(ctx, u.ID, now)
	})
	require.NoError(t, err)

	got, err := s.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VerifiedAt)
	assert.Equal(t, now, *got.VerifiedAt)
}

func TestVerificationTokenMarkUsedIsConditional(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")
	repo := s.VerificationTokens()

	tok := &domainUser.VerificationToken{UserID: u.ID, SecretDigest: "d1", ExpiresAt: now.Add(15 * time.Minute), CreatedAt: now}
	require.NoError(t, repo.Create(ctx, tok))

	require.NoError(t, repo.MarkUsed(ctx, tok.ID, now))
	assert.ErrorIs(t, repo.MarkUsed(ctx, tok.ID, now), domainUser.ErrTokenInvalid)

	expired := &domainUser.VerificationToken{UserID: u.ID, SecretDigest: "d2", ExpiresAt: now, CreatedAt: now}
	require.NoError(t, repo.Create(ctx, expired))
	assert.ErrorIs(t, repo.MarkUsed(ctx, expired.ID, now), domainUser.ErrTokenInvalid)
}

func TestVerificationTokenExpireActive(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")
	other := seedUser(t, s, "b@example.com")
	repo := s.VerificationTokens()

	mine := &domainUser.VerificationToken{UserID: u.ID, SecretDigest: "d1", ExpiresAt: now.Add(time.Minute)}
	theirs := &domainUser.VerificationToken{UserID: other.ID, SecretDigest: "d2", ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, mine))
	require.NoError(t, repo.Create(ctx, theirs))

	n, err := repo.ExpireActive(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByDigest(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, got.IsValid(now))

	got, err = repo.GetByDigest(ctx, "d2")
	require.NoError(t, err)
	assert.True(t, got.IsValid(now))
}

func TestDeleteUserCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")

	require.NoError(t, s.VerificationTokens().Create(ctx, &domainUser.VerificationToken{UserID: u.ID, SecretDigest: "d", ExpiresAt: now}))
	require.NoError(t, s.PasswordResets().Create(ctx, &domainUser.PasswordResetRequest{UserID: u.ID, Selector: "sel", ExpiresAt: now}))
	w := &domainWishlist.Wishlist{OwnerID: u.ID, Name: "Gifts"}
	require.NoError(t, s.Wishlists().Create(ctx, w))
	item := &domainWishlist.Item{WishlistID: w.ID, AuthorID: u.ID, Name: "Book"}
	require.NoError(t, s.Items().Create(ctx, item))

	require.NoError(t, s.Users().Delete(ctx, u.ID))

	_, err := s.VerificationTokens().GetByDigest(ctx, "d")
	assert.ErrorIs(t, err, domainUser.ErrTokenNotFound)
	_, err = s.PasswordResets().GetBySelector(ctx, "sel")
	assert.ErrorIs(t, err, domainUser.ErrTokenNotFound)
	_, err = s.Wishlists().GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, domainWishlist.ErrWishlistNotFound)
	_, err = s.Items().GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, domainWishlist.ErrItemNotFound)
}

func TestSoftDeletedWishlistIsInvisible(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")

	w := &domainWishlist.Wishlist{OwnerID: u.ID, Name: "Gifts"}
	require.NoError(t, s.Wishlists().Create(ctx, w))
	require.NoError(t, s.Wishlists().SoftDelete(ctx, w.ID, now))

	_, err := s.Wishlists().GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, domainWishlist.ErrWishlistNotFound)
	_, err = s.Wishlists().GetByUUID(ctx, w.UUID)
	assert.ErrorIs(t, err, domainWishlist.ErrWishlistNotFound)

	list, err := s.Wishlists().ListByOwner(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestItemListingOrderAndVisibility(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")
	w := &domainWishlist.Wishlist{OwnerID: u.ID, Name: "Gifts"}
	require.NoError(t, s.Wishlists().Create(ctx, w))

	for i, hidden := range []bool{true, false, true, false} {
		item := &domainWishlist.Item{WishlistID: w.ID, Name: string(rune('a' + i)), Hidden: hidden}
		require.NoError(t, s.Items().Create(ctx, item))
	}

	all, err := s.Items().ListByWishlist(ctx, w.ID, domainWishlist.AllItems)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	hidden, err := s.Items().ListByWishlist(ctx, w.ID, domainWishlist.HiddenItems)
	require.NoError(t, err)
	require.Len(t, hidden, 2)
	assert.Equal(t, "a", hidden[0].Name)
	assert.Equal(t, "c", hidden[1].Name)

	n, err := s.Items().UnhideAll(ctx, w.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	hidden, err = s.Items().ListByWishlist(ctx, w.ID, domainWishlist.HiddenItems)
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestItemCreateRejectsSoftDeletedWishlist(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	owner := seedUser(t, s, "a@example.com")

	w := &domainWishlist.Wishlist{OwnerID: owner.ID, Name: "Gifts"}
	require.NoError(t, s.Wishlists().Create(ctx, w))
	require.NoError(t, s.Wishlists().SoftDelete(ctx, w.ID, now))

	err := s.Items().Create(ctx, &domainWishlist.Item{WishlistID: w.ID, AuthorID: owner.ID, Name: "Book"})
	assert.ErrorIs(t, err, domainWishlist.ErrWishlistNotFound)
}
