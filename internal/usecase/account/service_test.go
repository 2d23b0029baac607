package account

import (
	"context"
	"errors"
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

const testPassword = "correct-horse-42"

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubVerifier struct {
	calls []int64
	err   error
}

func (v *stubVerifier) SendVerificationEmail(_ context.Context, u *domainUser.User) error {
	v.calls = append(v.calls, u.ID)
	return v.err
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	clock    *clock.Mock
	mailer   *mailMocks.MockSender
	events   *eventMocks.MockPublisher
	verifier *stubVerifier
	hasher   *utils.Argon2Hasher
	cfg      *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		store:    memory.NewStore(),
		clock:    clock.NewMock(start),
		mailer:   mailMocks.NewMockSender(ctrl),
		events:   eventMocks.NewMockPublisher(ctrl),
		verifier: &stubVerifier{},
		hasher:   utils.NewArgon2Hasher(utils.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}),
		cfg: &config.Config{
			JWT:  config.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
			SMTP: config.SMTPConfig{From: "aspire@aspireapp.online"},
		},
	}
	f.svc = NewService(f.store.Users(), f.hasher, f.clock, f.mailer, f.events, f.verifier, f.cfg)
	return f
}

// captureEvents records every published event.
func (f *fixture) captureEvents() *[]event.Event {
	var got []event.Event
	f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e event.Event) error {
			got = append(got, e)
			return nil
		},
	).AnyTimes()
	return &got
}

func (f *fixture) register(t *testing.T, email string) *domainUser.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), &RegisterRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	return u
}

func TestRegisterStoresSanitizedEmailAndHash(t *testing.T) {
	f := newFixture(t)
	events := f.captureEvents()

	u := f.register(t, "  Alice@Example.COM ")

	stored, err := f.store.Users().GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
	assert.Nil(t, stored.VerifiedAt)
	assert.Equal(t, start, stored.JoinedAt)
	assert.Equal(t, []string{domainUser.RoleUser}, stored.Roles)
	assert.NotEqual(t, testPassword, stored.PasswordHash)
	assert.True(t, f.hasher.Verify(testPassword, stored.PasswordHash))

	assert.Equal(t, []int64{u.ID}, f.verifier.calls)
	require.Len(t, *events, 1)
	assert.Equal(t, event.UserRegistered, (*events)[0].Type)
}

func TestRegisterConflictOnSanitizedEmail(t *testing.T) {
	f := newFixture(t)
	f.captureEvents()
	f.register(t, "alice@example.com")

	_, err := f.svc.Register(context.Background(), &RegisterRequest{Email: " ALICE@example.com", Password: testPassword})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), &RegisterRequest{Email: "not-an-email", Password: "password"})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.ElementsMatch(t, []appErrors.FieldError{
		{Field: "email", Code: "invalid_email"},
		{Field: "password", Code: "compromised"},
	}, appErr.Fields)
}

func TestRegisterSurvivesVerificationMailFailure(t *testing.T) {
	f := newFixture(t)
	f.captureEvents()
	f.verifier.err = errors.New("smtp down")

	u := f.register(t, "alice@example.com")
	assert.NotZero(t, u.ID)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.captureEvents()
	u := f.register(t, "alice@example.com")
	f.clock.Advance(time.Minute)

	resp, err := f.svc.Login(context.Background(), &LoginRequest{Email: "Alice@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, start.Add(time.Minute+time.Hour).Unix(), resp.ExpiresAt)

	claims, err := utils.ValidateToken(resp.AccessToken, f.cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, []string{domainUser.RoleUser}, claims.Roles)

	stored, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, start.Add(time.Minute), *stored.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.captureEvents()
	f.register(t, "alice@example.com")

	tests := []struct {
		name  string
		email string
	}{
		{name: "unknown email", email: "bob@example.com"},
		{name: "wrong password", email: "alice@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			password := testPassword
			if tt.email == "alice@example.com" {
				password = "wrong-password-1"
			}
			_, err := f.svc.Login(context.Background(), &LoginRequest{Email: tt.email, Password: password})
			assert.ErrorIs(t, err, appErrors.ErrAuth)
		})
	}
}

func TestChangePasswordErrorOrder(t *testing.T) {
	f := newFixture(t)
	f.captureEvents()
	u := f.register(t, "alice@example.com")

	tests := []struct {
		name    string
		req     ChangePasswordRequest
		wantErr *appErrors.AppError
	}{
		{
			name:    "blank old password",
			req:     ChangePasswordRequest{OldPassword: "  ", NewPassword: "x", ConfirmPassword: "y"},
			wantErr: appErrors.ErrValidation,
		},
		{
			name:    "weak new password",
			req:     ChangePasswordRequest{OldPassword: "wrong", NewPassword: "short", ConfirmPassword: "short"},
			wantErr: appErrors.ErrValidation,
		},
		{
			name:    "confirmation differs",
			req:     ChangePasswordRequest{OldPassword: "wrong", NewPassword: "brand-new-pass-1", ConfirmPassword: "brand-new-pass-2"},
			wantErr: appErrors.ErrMismatch,
		},
		{
			name:    "incorrect old password",
			req:     ChangePasswordRequest{OldPassword: "wrong", NewPassword: "brand-new-pass-1", ConfirmPassword: "brand-new-pass-1"},
			wantErr: appErrors.ErrAuth,
		},
		{
			name:    "new equals old",
			req:     ChangePasswordRequest{OldPassword: testPassword, NewPassword: testPassword, ConfirmPassword: testPassword},
			wantErr: appErrors.ErrPolicy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := f.svc.ChangePassword(context.Background(), u.ID, &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestChangePasswordSuccess(t *testing.T) {
	f := newFixture(t)
	events := f.captureEvents()
	u := f.register(t, "alice@example.com")

	var sent mail.Message
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg mail.Message) error {
			sent = msg
			return nil
		},
	)

	err := f.svc.ChangePassword(context.Background(), u.ID, &ChangePasswordRequest{
		OldPassword:     testPassword,
		NewPassword:     "brand-new-pass-1",
		ConfirmPassword: "brand-new-pass-1",
	})
	require.NoError(t, err)

	stored, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, f.hasher.Verify("brand-new-pass-1", stored.PasswordHash))
	assert.False(t, f.hasher.Verify(testPassword, stored.PasswordHash))

	assert.Equal(t, "Password changed", sent.Subject)
	assert.Equal(t, "alice@example.com", sent.To)
	assert.Equal(t, mail.TemplatePasswordChanged, sent.Template)
	assert.Equal(t, event.UserPasswordChanged, (*events)[len(*events)-1].Type)
}

func TestConfirmEmail(t *testing.T) {
	f := newFixture(t)
	f.captureEvents()
	u := f.register(t, "alice@example.com")

	require.NoError(t, f.svc.ConfirmEmail(context.Background(), u.ID))
	profile, err := f.svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)

	assert.ErrorIs(t, f.svc.ConfirmEmail(context.Background(), 999), appErrors.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	events := f.captureEvents()
	u := f.register(t, "alice@example.com")
	f.register(t, "bob@example.com")

	require.NoError(t, f.svc.DeleteUser(context.Background(), u.ID))
	assert.Equal(t, event.UserDeleted, (*events)[len(*events)-1].Type)

	_, err := f.svc.GetProfile(context.Background(), u.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	users, err := f.svc.GetAllUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob@example.com", users[0].Email)

	assert.ErrorIs(t, f.svc.DeleteUser(context.Background(), u.ID), appErrors.ErrNotFound)
}

func TestTokenCleanerRemovesExpired(t *testing.T) {
	f := newFixture(t)
	f.captureEvents()
	u := f.register(t, "alice@example.com")
	ctx := context.Background()

	tokens := f.store.VerificationTokens()
	require.NoError(t, tokens.Create(ctx, &domainUser.VerificationToken{UserID: u.ID, SecretDigest: "old", ExpiresAt: start.Add(-time.Minute), CreatedAt: start}))
	require.NoError(t, tokens.Create(ctx, &domainUser.VerificationToken{UserID: u.ID, SecretDigest: "live", ExpiresAt: start.Add(time.Minute), CreatedAt: start}))

	resets := f.store.PasswordResets()
	require.NoError(t, resets.Create(ctx, &domainUser.PasswordResetRequest{UserID: u.ID, Selector: "old", ExpiresAt: start.Add(-time.Minute)}))

	NewTokenCleaner(tokens, resets, f.clock).Cleanup(ctx)

	_, err := tokens.GetByDigest(ctx, "old")
	assert.ErrorIs(t, err, domainUser.ErrTokenNotFound)
	_, err = tokens.GetByDigest(ctx, "live")
	assert.NoError(t, err)
	_, err = resets.GetBySelector(ctx, "old")
	assert.ErrorIs(t, err, domainUser.ErrTokenNotFound)
}
