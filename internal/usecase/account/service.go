package account

import (
	"context"
	"errors"
	"fmt"

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

// VerificationSender mails a fresh confirmation link to a newly registered user.
type VerificationSender interface {
	SendVerificationEmail(ctx context.Context, user *domainUser.User) error
}

// Service implements account use cases
type Service struct {
	userRepo domainUser.Repository
	hasher   domain.Hasher
	clock    clock.Clock
	mailer   mail.Sender
	events   event.Publisher
	verifier VerificationSender
	config   *config.Config

	// dummyHash is verified against when the email is unknown so a failed
	// login costs the same whether or not the account exists.
	dummyHash string
}

// NewService creates a new account service. verifier may be nil.
func NewService(
	userRepo domainUser.Repository,
	hasher domain.Hasher,
	clk clock.Clock,
	mailer mail.Sender,
	events event.Publisher,
	verifier VerificationSender,
	cfg *config.Config,
) *Service {
	dummyHash, err := hasher.Hash("not-a-real-password")
	if err != nil {
		logger.Warn("Failed to prepare dummy password hash", zap.Error(err))
	}

	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		clock:     clk,
		mailer:    mailer,
		events:    events,
		verifier:  verifier,
		config:    cfg,
		dummyHash: dummyHash,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*domainUser.User, error) {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateInput(req); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	user := &domainUser.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Roles:        []string{domainUser.RoleUser},
		JoinedAt:     now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			logger.Warn("Registration attempt with existing email",
				zap.String("email", req.Email),
				zap.String("event", "registration_failed_duplicate_email"),
			)
			return nil, appErrors.Conflict("A user with this email already exists.")
		}
		return nil, err
	}

	logger.Info("User registered successfully",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("event", "user_registered"),
	)
	s.publish(ctx, event.UserRegistered, user)

	if s.verifier != nil {
		if err := s.verifier.SendVerificationEmail(ctx, user); err != nil {
			logger.Error("Failed to send verification email",
				zap.Int64("user_id", user.ID),
				zap.String("event", "verification_email_failed"),
				zap.Error(err),
			)
		}
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateInput(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			s.hasher.Verify(req.Password, s.dummyHash)
			logger.Warn("Login attempt with non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "user_not_found"),
			)
			return nil, appErrors.Auth("Invalid credentials.")
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		logger.Warn("Login attempt with invalid password",
			zap.Int64("user_id", user.ID),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.Auth("Invalid credentials.")
	}

	if err := s.RecordLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	user.LastLoginAt = &now

	accessToken, expiresAt, err := utils.GenerateAccessToken(
		user.ID,
		user.Email,
		user.GetRoles(),
		s.config.JWT.Secret,
		s.config.JWT.Expiry(),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	logger.Info("User logged in successfully",
		zap.Int64("user_id", user.ID),
		zap.String("event", "user_logged_in"),
	)

	return &AuthResponse{
		User:        ToUserResponse(user),
		AccessToken: accessToken,
		ExpiresAt:   expiresAt.Unix(),
	}, nil
}

// ChangePassword checks input, confirmation, the old password and reuse, in
// that order, before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	if err := utils.ValidateInput(req); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return appErrors.Mismatch("Passwords do not match.")
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.OldPassword, user.PasswordHash) {
		logger.Warn("Password change attempt with invalid old password",
			zap.Int64("user_id", user.ID),
			zap.String("event", "password_change_failed_invalid_old_password"),
		)
		return appErrors.Auth("Incorrect old password!")
	}
	if s.hasher.Verify(req.NewPassword, user.PasswordHash) {
		return appErrors.Policy("New password must differ from the old one.")
	}

	hashedPassword, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword, s.clock.Now()); err != nil {
		return s.translate(err)
	}

	logger.Info("Password changed successfully",
		zap.Int64("user_id", user.ID),
		zap.String("event", "password_change_success"),
	)

	if err := s.mailer.Send(ctx, mail.Message{
		From:     s.config.SMTP.From,
		To:       user.Email,
		Subject:  "Password changed",
		Template: mail.TemplatePasswordChanged,
		Data:     map[string]any{"Email": user.Email},
	}); err != nil {
		logger.Error("Failed to send password changed email",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}
	s.publish(ctx, event.UserPasswordChanged, user)

	return nil
}

// ConfirmEmail marks the user verified without a token.
func (s *Service) ConfirmEmail(ctx context.Context, userID int64) error {
	if err := s.userRepo.MarkVerified(ctx, userID, s.clock.Now()); err != nil {
		return s.translate(err)
	}

	logger.Info("Email confirmed by staff",
		zap.Int64("user_id", userID),
		zap.String("event", "email_confirmed_manually"),
	)
	return nil
}

func (s *Service) RecordLogin(ctx context.Context, userID int64) error {
	if err := s.userRepo.UpdateLastLogin(ctx, userID, s.clock.Now()); err != nil {
		return s.translate(err)
	}
	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToUserResponse(user), nil
}

func (s *Service) GetAllUsers(ctx context.Context) ([]*UserResponse, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, ToUserResponse(user))
	}

	return responses, nil
}

func (s *Service) DeleteUser(ctx context.Context, userID int64) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return s.translate(err)
	}

	logger.Info("User deleted successfully",
		zap.Int64("user_id", userID),
		zap.String("event", "user_deleted"),
	)
	s.publish(ctx, event.UserDeleted, user)

	return nil
}

func (s *Service) getUser(ctx context.Context, userID int64) (*domainUser.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.translate(err)
	}
	return user, nil
}

func (s *Service) translate(err error) error {
	if errors.Is(err, domainUser.ErrUserNotFound) {
		return appErrors.NotFound("User not found.")
	}
	return err
}

func (s *Service) publish(ctx context.Context, t event.Type, user *domainUser.User) {
	e := event.Event{
		Type:       t,
		UserID:     user.ID,
		Subject:    user.Email,
		OccurredAt: s.clock.Now(),
	}
	if err := s.events.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("type", string(t)),
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}
}
