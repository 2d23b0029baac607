package account

import (
	"context"
	"time"

	domainUser "aspire-wishlist/internal/domain/user"
	"aspire-wishlist/internal/logger"
	"aspire-wishlist/pkg/clock"

	"go.uber.org/zap"
)

// TokenCleaner purges verification tokens and reset requests that can no
// longer be redeemed.
type TokenCleaner struct {
	verificationRepo domainUser.VerificationTokenRepository
	resetRepo        domainUser.PasswordResetRepository
	clock            clock.Clock
}

func NewTokenCleaner(
	verificationRepo domainUser.VerificationTokenRepository,
	resetRepo domainUser.PasswordResetRepository,
	clk clock.Clock,
) *TokenCleaner {
	return &TokenCleaner{
		verificationRepo: verificationRepo,
		resetRepo:        resetRepo,
		clock:            clk,
	}
}

// Start runs a cleanup immediately and then on every tick until ctx is done.
func (c *TokenCleaner) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Token cleanup job started",
		zap.Duration("interval", interval),
	)

	c.Cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Token cleanup job stopped")
			return
		case <-ticker.C:
			c.Cleanup(ctx)
		}
	}
}

func (c *TokenCleaner) Cleanup(ctx context.Context) {
	now := c.clock.Now()

	tokens, err := c.verificationRepo.DeleteExpired(ctx, now)
	if err != nil {
		logger.Error("Failed to delete expired verification tokens", zap.Error(err))
	}

	resets, err := c.resetRepo.DeleteExpired(ctx, now)
	if err != nil {
		logger.Error("Failed to delete expired reset requests", zap.Error(err))
	}

	logger.Debug("Expired tokens cleaned up",
		zap.Int64("verification_tokens", tokens),
		zap.Int64("reset_requests", resets),
	)
}
