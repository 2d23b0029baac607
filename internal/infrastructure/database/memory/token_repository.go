package memory

import (
	"context"
	"time"

	domainUser "aspire-wishlist/internal/domain/user"
)

type verificationTokenRepository struct {
	store *Store
}

func (r *verificationTokenRepository) Create(ctx context.Context, token *domainUser.VerificationToken) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.t.users[token.UserID]; !ok {
		return domainUser.ErrUserNotFound
	}
	token.ID = r.store.nextID("verification_tokens")
	r.store.t.verificationTokens[token.ID] = *token
	return nil
}

func (r *verificationTokenRepository) GetByDigest(ctx context.Context, digest string) (*domainUser.VerificationToken, error) {
	defer r.store.lock(ctx)()

	for _, tok := range r.store.t.verificationTokens {
		if tok.SecretDigest == digest {
			return &tok, nil
		}
	}
	return nil, domainUser.ErrTokenNotFound
}

func (r *verificationTokenRepository) ExpireActive(ctx context.Context, userID int64, now time.Time) (int64, error) {
	defer r.store.lock(ctx)()

	var n int64
	for id, tok := range r.store.t.verificationTokens {
		if tok.UserID == userID && tok.IsValid(now) {
			tok.ExpiresAt = now
			r.store.t.verificationTokens[id] = tok
			n++
		}
	}
	return n, nil
}

func (r *verificationTokenRepository) MarkUsed(ctx context.Context, tokenID int64, now time.Time) error {
	defer r.store.lock(ctx)()

	tok, ok := r.store.t.verificationTokens[tokenID]
	if !ok || !tok.IsValid(now) {
		return domainUser.ErrTokenInvalid
	}
	tok.UsedAt = &now
	r.store.t.verificationTokens[tokenID] = tok
	return nil
}

func (r *verificationTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	defer r.store.lock(ctx)()

	var n int64
	for id, tok := range r.store.t.verificationTokens {
		if tok.ExpiresAt.Before(before) {
			delete(r.store.t.verificationTokens, id)
			n++
		}
	}
	return n, nil
}

type passwordResetRepository struct {
	store *Store
}

func (r *passwordResetRepository) Create(ctx context.Context, req *domainUser.PasswordResetRequest) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.t.users[req.UserID]; !ok {
		return domainUser.ErrUserNotFound
	}
	for _, existing := range r.store.t.resetRequests {
		if existing.Selector == req.Selector {
			return domainUser.ErrTokenInvalid
		}
	}
	req.ID = r.store.nextID("reset_password_requests")
	r.store.t.resetRequests[req.ID] = *req
	return nil
}

func (r *passwordResetRepository) GetBySelector(ctx context.Context, selector string) (*domainUser.PasswordResetRequest, error) {
	defer r.store.lock(ctx)()

	for _, req := range r.store.t.resetRequests {
		if req.Selector == selector {
			return &req, nil
		}
	}
	return nil, domainUser.ErrTokenNotFound
}

func (r *passwordResetRepository) GetLatestForUser(ctx context.Context, userID int64) (*domainUser.PasswordResetRequest, error) {
	defer r.store.lock(ctx)()

	var latest *domainUser.PasswordResetRequest
	for _, id := range sortedKeys(r.store.t.resetRequests) {
		req := r.store.t.resetRequests[id]
		if req.UserID == userID {
			latest = &req
		}
	}
	if latest == nil {
		return nil, domainUser.ErrTokenNotFound
	}
	return latest, nil
}

func (r *passwordResetRepository) Delete(ctx context.Context, requestID int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.t.resetRequests[requestID]; !ok {
		return domainUser.ErrTokenInvalid
	}
	delete(r.store.t.resetRequests, requestID)
	return nil
}

func (r *passwordResetRepository) DeleteForUser(ctx context.Context, userID int64) (int64, error) {
	defer r.store.lock(ctx)()

	var n int64
	for id, req := range r.store.t.resetRequests {
		if req.UserID == userID {
			delete(r.store.t.resetRequests, id)
			n++
		}
	}
	return n, nil
}

func (r *passwordResetRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	defer r.store.lock(ctx)()

	var n int64
	for id, req := range r.store.t.resetRequests {
		if req.ExpiresAt.Before(before) {
			delete(r.store.t.resetRequests, id)
			n++
		}
	}
	return n, nil
}
