package passwordreset

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"aspire-wishlist/internal/config"
	"aspire-wishlist/internal/domain/event"
	eventMocks "aspire-wishlist/internal/domain/event/mocks"
	"aspire-wishlist/internal/domain/mail"
	mailMocks "aspire-wishlist/internal/domain/mail/mocks"
	domainUser "aspire-wishlist/internal/domain/user"
	"aspire-wishlist/internal/infrastructure/database/memory"
	"aspire-wishlist/pkg/clock"
	appErrors "aspire-wishlist/pkg/errors"
	"aspire-wishlist/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const newPassword = "brand-new-pass-1"

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	store  *memory.Store
	clock  *clock.Mock
	mailer *mailMocks.MockSender
	events *eventMocks.MockPublisher
	hasher *utils.Argon2Hasher
	user   *domainUser.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		store:  memory.NewStore(),
		clock:  clock.NewMock(start),
		mailer: mailMocks.NewMockSender(ctrl),
		events: eventMocks.NewMockPublisher(ctrl),
		hasher: utils.NewArgon2Hasher(utils.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}),
	}
	cfg := &config.Config{
		Tokens: config.TokenConfig{
			PasswordResetTTL:      time.Hour,
			PasswordResetThrottle: time.Hour,
			ResetSigningKey:       "reset-key",
		},
		App: config.AppConfig{
			FrontendURL:       "https://aspireapp.online",
			AllowedReturnURLs: []string{"https://aspireapp.online", "https://admin.aspireapp.online"},
		},
		SMTP: config.SMTPConfig{From: "aspire@aspireapp.online"},
	}
	f.svc = NewService(f.store, f.store.Users(), f.store.PasswordResets(), f.hasher, f.clock, nil, f.mailer, f.events, cfg)

	hash, err := f.hasher.Hash("original-pass-1")
	require.NoError(t, err)
	f.user = &domainUser.User{Email: "alice@example.com", PasswordHash: hash, JoinedAt: start}
	require.NoError(t, f.store.Users().Create(context.Background(), f.user))
	return f
}

// expectResetMail captures the next reset email.
func (f *fixture) expectResetMail() *mail.Message {
	var sent mail.Message
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg mail.Message) error {
			sent = msg
			return nil
		},
	)
	return &sent
}

// startReset requests a reset and returns the token from the mailed link.
func (f *fixture) startReset(t *testing.T) string {
	t.Helper()
	sent := f.expectResetMail()
	require.NoError(t, f.svc.Start(context.Background(), &ForgotPasswordRequest{Email: f.user.Email}))

	link := sent.Data["Link"].(string)
	token := link[strings.LastIndex(link, "/")+1:]
	require.Len(t, token, TokenLength)
	return token
}

func TestStartMailsResetLink(t *testing.T) {
	f := newFixture(t)
	sent := f.expectResetMail()

	err := f.svc.Start(context.Background(), &ForgotPasswordRequest{
		Email:     " Alice@Example.com",
		ReturnURL: "https://admin.aspireapp.online/reset/",
	})
	require.NoError(t, err)

	assert.Equal(t, "Your password reset request", sent.Subject)
	assert.Equal(t, mail.TemplatePasswordReset, sent.Template)
	assert.Equal(t, "alice@example.com", sent.To)

	link := sent.Data["Link"].(string)
	require.True(t, strings.HasPrefix(link, "https://admin.aspireapp.online/reset/"))
	token := strings.TrimPrefix(link, "https://admin.aspireapp.online/reset/")
	require.Len(t, token, TokenLength)

	req, err := f.store.PasswordResets().GetBySelector(context.Background(), token[:utils.SelectorLength])
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, req.UserID)
	assert.Equal(t, start.Add(time.Hour), req.ExpiresAt)
	assert.NotContains(t, req.HashedToken, token[utils.SelectorLength:])
}

func TestStartRejectsForeignReturnURL(t *testing.T) {
	f := newFixture(t)
	sent := f.expectResetMail()

	err := f.svc.Start(context.Background(), &ForgotPasswordRequest{
		Email:     f.user.Email,
		ReturnURL: "https://evil.example.com/steal",
	})
	require.NoError(t, err)

	link := sent.Data["Link"].(string)
	assert.True(t, strings.HasPrefix(link, "https://aspireapp.online/reset-password/"))
}

func TestStartIsSilentForUnknownOrInvalidEmail(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.svc.Start(context.Background(), &ForgotPasswordRequest{Email: "bob@example.com"}))
	assert.NoError(t, f.svc.Start(context.Background(), &ForgotPasswordRequest{Email: "not-an-email"}))
}

func TestStartThrottlesRepeatRequests(t *testing.T) {
	f := newFixture(t)
	f.startReset(t)

	f.clock.Advance(59 * time.Minute)
	require.NoError(t, f.svc.Start(context.Background(), &ForgotPasswordRequest{Email: f.user.Email}))

	f.clock.Advance(time.Minute)
	f.startReset(t)
}

func TestConfirmResetsPassword(t *testing.T) {
	f := newFixture(t)
	token := f.startReset(t)
	f.clock.Advance(2 * time.Hour)
	second := f.startReset(t)

	sent := f.expectResetMail()
	var published event.Event
	f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e event.Event) error {
			published = e
			return nil
		},
	)

	err := f.svc.Confirm(context.Background(), &ResetPasswordRequest{Token: second, Password: newPassword, ConfirmPassword: newPassword})
	require.NoError(t, err)

	stored, err := f.store.Users().GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, f.hasher.Verify(newPassword, stored.PasswordHash))

	assert.Equal(t, "Password reset successfully", sent.Subject)
	assert.Equal(t, mail.TemplatePasswordResetSuccess, sent.Template)
	assert.Equal(t, event.UserPasswordReset, published.Type)

	_, err = f.store.PasswordResets().GetLatestForUser(context.Background(), f.user.ID)
	assert.ErrorIs(t, err, domainUser.ErrTokenNotFound)

	// Single use, and older requests were purged with it.
	err = f.svc.Confirm(context.Background(), &ResetPasswordRequest{Token: second, Password: newPassword, ConfirmPassword: newPassword})
	assert.ErrorIs(t, err, appErrors.ErrInvalid)
	err = f.svc.Confirm(context.Background(), &ResetPasswordRequest{Token: token, Password: newPassword, ConfirmPassword: newPassword})
	assert.ErrorIs(t, err, appErrors.ErrInvalid)
}

func TestConfirmRejections(t *testing.T) {
	f := newFixture(t)
	token := f.startReset(t)
	tampered := token[:TokenLength-1] + flip(token[TokenLength-1])

	tests := []struct {
		name    string
		req     ResetPasswordRequest
		wantErr *appErrors.AppError
	}{
		{
			name:    "blank token",
			req:     ResetPasswordRequest{Token: " ", Password: newPassword, ConfirmPassword: newPassword},
			wantErr: appErrors.ErrValidation,
		},
		{
			name:    "weak password",
			req:     ResetPasswordRequest{Token: token, Password: "12345678", ConfirmPassword: "12345678"},
			wantErr: appErrors.ErrValidation,
		},
		{
			name:    "confirmation differs",
			req:     ResetPasswordRequest{Token: token, Password: newPassword, ConfirmPassword: newPassword + "x"},
			wantErr: appErrors.ErrMismatch,
		},
		{
			name:    "wrong length",
			req:     ResetPasswordRequest{Token: token[:40], Password: newPassword, ConfirmPassword: newPassword},
			wantErr: appErrors.ErrInvalid,
		},
		{
			name:    "unknown selector",
			req:     ResetPasswordRequest{Token: strings.Repeat("A", utils.SelectorLength) + token[utils.SelectorLength:], Password: newPassword, ConfirmPassword: newPassword},
			wantErr: appErrors.ErrInvalid,
		},
		{
			name:    "tampered verifier",
			req:     ResetPasswordRequest{Token: tampered, Password: newPassword, ConfirmPassword: newPassword},
			wantErr: appErrors.ErrInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			assert.ErrorIs(t, f.svc.Confirm(context.Background(), &req), tt.wantErr)
		})
	}

	f.clock.Advance(time.Hour)
	err := f.svc.Confirm(context.Background(), &ResetPasswordRequest{Token: token, Password: newPassword, ConfirmPassword: newPassword})
	assert.ErrorIs(t, err, appErrors.ErrExpired)

	stored, err := f.store.Users().GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, f.hasher.Verify("original-pass-1", stored.PasswordHash))
}

func flip(c byte) string {
	if c == '0' {
		return "1"
	}
	return "0"
}

func TestConcurrentStartsCreateOneRequest(t *testing.T) {
	f := newFixture(t)
	f.expectResetMail()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.Start(context.Background(), &ForgotPasswordRequest{Email: f.user.Email}))
		}()
	}
	wg.Wait()

	removed, err := f.store.PasswordResets().DeleteForUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
