package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"aspire-wishlist/internal/config"
	domainMail "aspire-wishlist/internal/domain/mail"
	"aspire-wishlist/internal/infrastructure/database/memory"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type outbox struct {
	mu       sync.Mutex
	messages []domainMail.Message
}

func (o *outbox) Send(_ context.Context, msg domainMail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

func (o *outbox) last(t *testing.T, tmpl domainMail.Template) domainMail.Message {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].Template == tmpl {
			return o.messages[i]
		}
	}
	t.Fatalf("no %s mail sent", tmpl)
	return domainMail.Message{}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (a *api) do(method, path string, body any) (int, envelope) {
	a.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(a.t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func newTestAPI(t *testing.T) (*api, *outbox) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		JWT:    config.JWTConfig{Secret: "router-test-secret", ExpiryHours: 1},
		Hasher: config.HasherConfig{MemoryKB: 1024, Iterations: 1, Parallelism: 1},
		Tokens: config.TokenConfig{
			VerificationTTL:       15 * time.Minute,
			PasswordResetTTL:      time.Hour,
			PasswordResetThrottle: time.Hour,
			ResetSigningKey:       "router-test-signing-key",
		},
		App: config.AppConfig{
			FrontendURL:       "https://aspireapp.online",
			AllowedReturnURLs: []string{"https://aspireapp.online"},
		},
		SMTP:      config.SMTPConfig{From: "aspire@aspireapp.online"},
		RateLimit: config.RateLimitConfig{GeneralRPS: 1000, GeneralBurst: 1000, AuthRPS: 1000, AuthBurst: 1000},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"https://aspireapp.online"}},
	}

	box := &outbox{}
	router := SetupRoutes(ctx, cfg, Deps{Store: memory.NewStore(), Mailer: box})
	return &api{t: t, router: router}, box
}

func TestHealth(t *testing.T) {
	a, _ := newTestAPI(t)
	code, _ := a.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAccountAndWishlistFlow(t *testing.T) {
	a, box := newTestAPI(t)

	code, _ := a.do(http.MethodPost, "/api/v1/account/register", map[string]string{
		"email": "alice@example.com", "password": "correct-horse-42",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := a.do(http.MethodPost, "/api/v1/account/register", map[string]string{
		"email": "ALICE@example.com", "password": "correct-horse-42",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	link := box.last(t, domainMail.TemplateVerifyEmail).Data["Link"].(string)
	secret := link[strings.LastIndex(link, "/")+1:]
	code, _ = a.do(http.MethodPost, "/api/v1/account/confirm-email", map[string]string{"token": secret})
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodPost, "/api/v1/account/confirm-email", map[string]string{"token": secret})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "TOKEN_INVALID", env.Error.Code)

	code, env = a.do(http.MethodPost, "/api/v1/account/login", map[string]string{
		"email": "alice@example.com", "password": "correct-horse-42",
	})
	require.Equal(t, http.StatusOK, code)
	var auth struct {
		AccessToken string `json:"access_token"`
		User        struct {
			IsVerified bool `json:"is_verified"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.True(t, auth.User.IsVerified)
	a.token = auth.AccessToken

	code, env = a.do(http.MethodPost, "/api/v1/wishlists", map[string]string{"name": "Gifts", "access_code": "sesame"})
	require.Equal(t, http.StatusCreated, code)
	var created struct {
		ID          int64  `json:"id"`
		UUID        string `json:"uuid"`
		HasPassword bool   `json:"has_password"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, created.HasPassword)

	itemsPath := "/api/v1/wishlists/" + itoa(created.ID) + "/items"
	code, _ = a.do(http.MethodPost, itemsPath, map[string]any{"name": "Book"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = a.do(http.MethodPost, itemsPath, map[string]any{"name": "Surprise", "hidden": true})
	require.Equal(t, http.StatusCreated, code)

	a.token = ""
	publicPath := "/api/v1/public/wishlists/" + created.UUID

	code, env = a.do(http.MethodGet, publicPath, nil)
	require.Equal(t, http.StatusOK, code)
	var view struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Book", view.Items[0].Name)

	code, env = a.do(http.MethodPost, publicPath+"/hidden-items", map[string]string{"access_code": "wrong"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, env = a.do(http.MethodPost, publicPath+"/hidden-items", map[string]string{"access_code": "sesame"})
	require.Equal(t, http.StatusOK, code)
	var hidden []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &hidden))
	require.Len(t, hidden, 1)
	assert.Equal(t, "Surprise", hidden[0].Name)

	code, _ = a.do(http.MethodGet, "/api/v1/public/wishlists/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPasswordResetFlow(t *testing.T) {
	a, box := newTestAPI(t)

	code, _ := a.do(http.MethodPost, "/api/v1/account/register", map[string]string{
		"email": "bob@example.com", "password": "correct-horse-42",
	})
	require.Equal(t, http.StatusCreated, code)

	for _, email := range []string{"bob@example.com", "nobody@example.com"} {
		code, env := a.do(http.MethodPost, "/api/v1/account/forgot-password", map[string]string{"email": email})
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, env.Success)
	}

	link := box.last(t, domainMail.TemplatePasswordReset).Data["Link"].(string)
	require.True(t, strings.HasPrefix(link, "https://aspireapp.online/"))
	token := link[strings.LastIndex(link, "/")+1:]

	code, env := a.do(http.MethodPost, "/api/v1/account/reset-password", map[string]string{
		"token": token, "password": "brand-new-pass-7", "confirm_password": "different-pass-7",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "MISMATCH", env.Error.Code)

	code, _ = a.do(http.MethodPost, "/api/v1/account/reset-password", map[string]string{
		"token": token, "password": "brand-new-pass-7", "confirm_password": "brand-new-pass-7",
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/api/v1/account/login", map[string]string{
		"email": "bob@example.com", "password": "correct-horse-42",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodPost, "/api/v1/account/login", map[string]string{
		"email": "bob@example.com", "password": "brand-new-pass-7",
	})
	assert.Equal(t, http.StatusOK, code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a, _ := newTestAPI(t)

	code, env := a.do(http.MethodGet, "/api/v1/wishlists", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTHENTICATION_FAILED", env.Error.Code)

	code, _ = a.do(http.MethodGet, "/api/v1/admin/users", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
