// Package verification issues and redeems single-use email confirmation
// tokens.
package verification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"aspire-wishlist/internal/config"
	"aspire-wishlist/internal/domain"
	"aspire-wishlist/internal/domain/event"
	"aspire-wishlist/internal/domain/mail"
	domainUser "aspire-wishlist/internal/domain/user"
	"aspire-wishlist/internal/logger"
	"aspire-wishlist/pkg/clock"
	appErrors "aspire-wishlist/pkg/errors"
	"aspire-wishlist/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	tx        domain.Transactor
	userRepo  domainUser.Repository
	tokenRepo domainUser.VerificationTokenRepository
	clock     clock.Clock
	random    io.Reader
	mailer    mail.Sender
	events    event.Publisher
	config    *config.Config
}

// NewService creates a verification service. A nil random reader uses
// crypto/rand.
func NewService(
	tx domain.Transactor,
	userRepo domainUser.Repository,
	tokenRepo domainUser.VerificationTokenRepository,
	clk clock.Clock,
	random io.Reader,
	mailer mail.Sender,
	events event.Publisher,
	cfg *config.Config,
) *Service {
	return &Service{
		tx:        tx,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		clock:     clk,
		random:    random,
		mailer:    mailer,
		events:    events,
		config:    cfg,
	}
}

// Issue expires every active token of the user and returns the plaintext of a
// new one. Only its digest is stored.
func (s *Service) Issue(ctx context.Context, userID int64) (string, error) {
	secret, err := utils.GenerateSecret(s.random, utils.SecretBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := s.clock.Now()

		expired, err := s.tokenRepo.ExpireActive(ctx, userID, now)
		if err != nil {
			return err
		}

		token := &domainUser.VerificationToken{
			UserID:       userID,
			SecretDigest: utils.DigestToken(secret),
			ExpiresAt:    now.Add(s.config.Tokens.VerificationTTL),
			CreatedAt:    now,
		}
		if err := s.tokenRepo.Create(ctx, token); err != nil {
			return err
		}

		logger.Debug("Verification token issued",
			zap.Int64("user_id", userID),
			zap.Int64("token_id", token.ID),
			zap.Int64("expired_previous", expired),
			zap.String("event", "verification_token_issued"),
		)
		return nil
	})
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return "", appErrors.NotFound("User not found.")
		}
		return "", err
	}

	return secret, nil
}

// Redeem consumes the token and marks its owner verified.
func (s *Service) Redeem(ctx context.Context, secret string) (*domainUser.User, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, appErrors.Validation(appErrors.FieldError{Field: "token", Code: "required"})
	}

	token, err := s.tokenRepo.GetByDigest(ctx, utils.DigestToken(secret))
	if err != nil {
		if errors.Is(err, domainUser.ErrTokenNotFound) {
			return nil, appErrors.NotFound("Verification token not found.")
		}
		return nil, err
	}

	if !token.IsValid(s.clock.Now()) {
		logger.Warn("Redeem attempt with spent verification token",
			zap.Int64("token_id", token.ID),
			zap.Bool("used", token.UsedAt != nil),
			zap.String("event", "verification_failed_invalid_token"),
		)
		return nil, appErrors.Invalid("Verification token is no longer valid.")
	}

	var user *domainUser.User
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		if err := s.tokenRepo.MarkUsed(ctx, token.ID, now); err != nil {
			return err
		}
		if err := s.userRepo.MarkVerified(ctx, token.UserID, now); err != nil {
			return err
		}

		user, err = s.userRepo.GetByID(ctx, token.UserID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, domainUser.ErrTokenInvalid):
			return nil, appErrors.Invalid("Verification token is no longer valid.")
		case errors.Is(err, domainUser.ErrUserNotFound):
			return nil, appErrors.NotFound("User not found.")
		}
		return nil, err
	}

	logger.Info("Email verified successfully",
		zap.Int64("user_id", user.ID),
		zap.String("event", "email_verified"),
	)
	s.publish(ctx, user)

	return user, nil
}

// SendVerificationEmail issues a token and mails the confirmation link.
func (s *Service) SendVerificationEmail(ctx context.Context, user *domainUser.User) error {
	secret, err := s.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	link := s.config.App.FrontendURL + "/confirm/" + secret
	if err := s.mailer.Send(ctx, mail.Message{
		From:     s.config.SMTP.From,
		To:       user.Email,
		Subject:  "Please confirm your email",
		Template: mail.TemplateVerifyEmail,
		Data: map[string]any{
			"Email": user.Email,
			"Link":  link,
		},
	}); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	logger.Info("Verification email sent",
		zap.Int64("user_id", user.ID),
		zap.String("event", "verification_email_sent"),
	)
	return nil
}

func (s *Service) Resend(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return appErrors.NotFound("User not found.")
		}
		return err
	}

	if user.IsVerified() {
		return appErrors.Policy("Email already verified.")
	}

	return s.SendVerificationEmail(ctx, user)
}

func (s *Service) publish(ctx context.Context, user *domainUser.User) {
	e := event.Event{
		Type:       event.UserEmailVerified,
		UserID:     user.ID,
		Subject:    user.Email,
		OccurredAt: s.clock.Now(),
	}
	if err := s.events.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("type", string(e.Type)),
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}
}
