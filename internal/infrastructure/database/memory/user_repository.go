package memory

import (
	"context"
	"slices"
	"time"

	domainUser "aspire-wishlist/internal/domain/user"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, u *domainUser.User) error {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.t.users {
		if existing.Email == u.Email {
			return domainUser.ErrUserAlreadyExists
		}
	}

	u.ID = r.store.nextID("users")
	r.store.t.users[u.ID] = copyUser(u)
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	defer r.store.lock(ctx)()

	for _, u := range r.store.t.users {
		if u.Email == email {
			out := copyUser(&u)
			return &out, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (r *userRepository) GetByID(ctx context.Context, userID int64) (*domainUser.User, error) {
	defer r.store.lock(ctx)()

	u, ok := r.store.t.users[userID]
	if !ok {
		return nil, domainUser.ErrUserNotFound
	}
	out := copyUser(&u)
	return &out, nil
}

// Lock only checks the user exists, a transaction already holds the store mutex.
func (r *userRepository) Lock(ctx context.Context, userID int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.t.users[userID]; !ok {
		return domainUser.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]*domainUser.User, error) {
	defer r.store.lock(ctx)()

	users := make([]*domainUser.User, 0, len(r.store.t.users))
	for _, id := range sortedKeys(r.store.t.users) {
		u := r.store.t.users[id]
		out := copyUser(&u)
		users = append(users, &out)
	}
	return users, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string, at time.Time) error {
	return r.update(ctx, userID, func(u *domainUser.User) {
		u.PasswordHash = passwordHash
		u.UpdatedAt = at
	})
}

func (r *userRepository) MarkVerified(ctx context.Context, userID int64, at time.Time) error {
	return r.update(ctx, userID, func(u *domainUser.User) {
		u.VerifiedAt = &at
		u.UpdatedAt = at
	})
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.update(ctx, userID, func(u *domainUser.User) {
		u.LastLoginAt = &at
	})
}

func (r *userRepository) Delete(ctx context.Context, userID int64) error {
	defer r.store.lock(ctx)()

	t := &r.store.t
	if _, ok := t.users[userID]; !ok {
		return domainUser.ErrUserNotFound
	}
	delete(t.users, userID)

	for id, tok := range t.verificationTokens {
		if tok.UserID == userID {
			delete(t.verificationTokens, id)
		}
	}
	for id, req := range t.resetRequests {
		if req.UserID == userID {
			delete(t.resetRequests, id)
		}
	}
	for id, w := range t.wishlists {
		if w.OwnerID != userID {
			continue
		}
		delete(t.wishlists, id)
		for itemID, item := range t.items {
			if item.WishlistID == id {
				delete(t.items, itemID)
			}
		}
	}
	return nil
}

func (r *userRepository) update(ctx context.Context, userID int64, mutate func(u *domainUser.User)) error {
	defer r.store.lock(ctx)()

	u, ok := r.store.t.users[userID]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	mutate(&u)
	r.store.t.users[userID] = u
	return nil
}

func copyUser(u *domainUser.User) domainUser.User {
	out := *u
	out.Roles = slices.Clone(u.Roles)
	return out
}
