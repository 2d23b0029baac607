// Package passwordreset implements the forgot-password flow with
// selector/verifier tokens.
package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
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

// TokenLength is the length of the public token: selector then verifier.
const TokenLength = utils.SelectorLength + 2*utils.SecretBytes

type Service struct {
	tx        domain.Transactor
	userRepo  domainUser.Repository
	resetRepo domainUser.PasswordResetRepository
	hasher    domain.Hasher
	clock     clock.Clock
	random    io.Reader
	mailer    mail.Sender
	events    event.Publisher
	config    *config.Config

	signingKey []byte
	allowed    []*url.URL
}

func NewService(
	tx domain.Transactor,
	userRepo domainUser.Repository,
	resetRepo domainUser.PasswordResetRepository,
	hasher domain.Hasher,
	clk clock.Clock,
	random io.Reader,
	mailer mail.Sender,
	events event.Publisher,
	cfg *config.Config,
) *Service {
	var allowed []*url.URL
	for _, raw := range cfg.App.AllowedReturnURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			logger.Warn("Ignoring malformed allowed return URL", zap.String("url", raw))
			continue
		}
		allowed = append(allowed, u)
	}

	return &Service{
		tx:         tx,
		userRepo:   userRepo,
		resetRepo:  resetRepo,
		hasher:     hasher,
		clock:      clk,
		random:     random,
		mailer:     mailer,
		events:     events,
		config:     cfg,
		signingKey: []byte(cfg.Tokens.ResetSigningKey),
		allowed:    allowed,
	}
}

// Start mails a reset link when the email belongs to a user who has not asked
// recently. It reports success for every well-formed outcome so callers cannot
// tell which emails are registered. The throttle check and the insert run under
// a lock on the user's row.
func (s *Service) Start(ctx context.Context, req *ForgotPasswordRequest) error {
	req.Email = utils.SanitizeEmail(req.Email)
	if fields := utils.ValidateStruct(req); fields != nil {
		logger.Info("Password reset requested with invalid email",
			zap.String("event", "password_reset_invalid_email"),
		)
		return nil
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Info("Password reset requested for unknown email",
				zap.String("email", req.Email),
				zap.String("event", "password_reset_unknown_email"),
			)
			return nil
		}
		return err
	}

	now := s.clock.Now()
	var resetReq *domainUser.PasswordResetRequest
	var verifier string
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Lock(ctx, user.ID); err != nil {
			return err
		}

		latest, err := s.resetRepo.GetLatestForUser(ctx, user.ID)
		switch {
		case err == nil:
			if now.Sub(latest.RequestedAt) < s.config.Tokens.PasswordResetThrottle {
				return nil
			}
		case !errors.Is(err, domainUser.ErrTokenNotFound):
			return err
		}

		selector, err := utils.GenerateSelector(s.random)
		if err != nil {
			return fmt.Errorf("failed to generate reset selector: %w", err)
		}
		verifier, err = utils.GenerateSecret(s.random, utils.SecretBytes)
		if err != nil {
			return fmt.Errorf("failed to generate reset verifier: %w", err)
		}

		pending := &domainUser.PasswordResetRequest{
			UserID:      user.ID,
			Selector:    selector,
			RequestedAt: now,
			ExpiresAt:   now.Add(s.config.Tokens.PasswordResetTTL),
		}
		pending.HashedToken = s.sign(verifier, pending)
		if err := s.resetRepo.Create(ctx, pending); err != nil {
			return err
		}
		resetReq = pending
		return nil
	})
	if errors.Is(err, domainUser.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if resetReq == nil {
		logger.Info("Password reset throttled",
			zap.Int64("user_id", user.ID),
			zap.String("event", "password_reset_throttled"),
		)
		return nil
	}

	link := strings.TrimRight(s.returnURL(req.ReturnURL), "/") + "/" + resetReq.Selector + verifier
	if err := s.mailer.Send(ctx, mail.Message{
		From:     s.config.SMTP.From,
		To:       user.Email,
		Subject:  "Your password reset request",
		Template: mail.TemplatePasswordReset,
		Data: map[string]any{
			"Email":     user.Email,
			"Link":      link,
			"ExpiresAt": resetReq.ExpiresAt,
		},
	}); err != nil {
		logger.Error("Failed to send password reset email",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	logger.Info("Password reset requested",
		zap.Int64("user_id", user.ID),
		zap.Int64("request_id", resetReq.ID),
		zap.String("event", "password_reset_requested"),
	)
	return nil
}

// Confirm redeems a reset token and replaces the user's password.
func (s *Service) Confirm(ctx context.Context, req *ResetPasswordRequest) error {
	if err := utils.ValidateInput(req); err != nil {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return appErrors.Mismatch("Passwords do not match.")
	}

	token := strings.TrimSpace(req.Token)
	if len(token) != TokenLength {
		return appErrors.Invalid("Reset token is invalid.")
	}
	selector, verifier := token[:utils.SelectorLength], token[utils.SelectorLength:]

	resetReq, err := s.resetRepo.GetBySelector(ctx, selector)
	if err != nil {
		if errors.Is(err, domainUser.ErrTokenNotFound) {
			return appErrors.Invalid("Reset token is invalid.")
		}
		return err
	}

	if !utils.EqualTokens(s.sign(verifier, resetReq), resetReq.HashedToken) {
		logger.Warn("Password reset attempt with forged verifier",
			zap.Int64("request_id", resetReq.ID),
			zap.String("event", "password_reset_failed_invalid_token"),
		)
		return appErrors.Invalid("Reset token is invalid.")
	}
	if resetReq.IsExpired(s.clock.Now()) {
		return appErrors.Expired("Reset token has expired.")
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var user *domainUser.User
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.resetRepo.Delete(ctx, resetReq.ID); err != nil {
			return err
		}
		if _, err := s.resetRepo.DeleteForUser(ctx, resetReq.UserID); err != nil {
			return err
		}
		if err := s.userRepo.UpdatePassword(ctx, resetReq.UserID, hashedPassword, s.clock.Now()); err != nil {
			return err
		}

		user, err = s.userRepo.GetByID(ctx, resetReq.UserID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, domainUser.ErrTokenInvalid):
			return appErrors.Invalid("Reset token is invalid.")
		case errors.Is(err, domainUser.ErrUserNotFound):
			return appErrors.NotFound("User not found.")
		}
		return err
	}

	logger.Info("Password reset successfully",
		zap.Int64("user_id", user.ID),
		zap.Int64("request_id", resetReq.ID),
		zap.String("event", "password_reset_success"),
	)

	if err := s.mailer.Send(ctx, mail.Message{
		From:     s.config.SMTP.From,
		To:       user.Email,
		Subject:  "Password reset successfully",
		Template: mail.TemplatePasswordResetSuccess,
		Data:     map[string]any{"Email": user.Email},
	}); err != nil {
		logger.Error("Failed to send password reset confirmation",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	e := event.Event{
		Type:       event.UserPasswordReset,
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

	return nil
}

// sign binds the verifier to the request's owner and expiry.
func (s *Service) sign(verifier string, req *domainUser.PasswordResetRequest) string {
	return utils.SignToken(s.signingKey,
		verifier,
		strconv.FormatInt(req.UserID, 10),
		strconv.FormatInt(req.ExpiresAt.Unix(), 10),
	)
}

// returnURL keeps raw only when it points at an allowed origin.
func (s *Service) returnURL(raw string) string {
	fallback := s.config.App.FrontendURL + "/reset-password"
	if raw == "" {
		return fallback
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	for _, a := range s.allowed {
		if strings.EqualFold(u.Scheme, a.Scheme) && strings.EqualFold(u.Host, a.Host) {
			return raw
		}
	}

	logger.Warn("Rejected password reset return URL",
		zap.String("return_url", raw),
		zap.String("event", "password_reset_foreign_return_url"),
	)
	return fallback
}
