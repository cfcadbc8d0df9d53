package middlewares_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/server/httpserver"
)

type memoryStorage struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (s *memoryStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *memoryStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = val
	return nil
}

func (s *memoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memoryStorage) Reset() error { return nil }
func (s *memoryStorage) Close() error { return nil }

type localLocker struct {
	mu sync.Mutex
}

type localMutex struct {
	l *localLocker
}

func (m localMutex) Lock() error {
	m.l.mu.Lock()
	return nil
}

func (m localMutex) Unlock() (bool, error) {
	m.l.mu.Unlock()
	return true, nil
}

func (l *localLocker) NewMutex(string, ...redsync.Option) middlewares.Mutex {
	return localMutex{l: l}
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpserver.ErrorHandler})
	app.Use(middlewares.InjectI18n())
	return app
}

func errorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Code
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	app := newApp()
	calls := 0
	app.Post("/checkout", middlewares.Idempotency(&middlewares.IdempotencyConfig{
		Lifetime:  time.Hour,
		KeyHeader: constant.IdempotencyKeyHdr,
		Storage:   &memoryStorage{m: map[string][]byte{}},
		Locker:    &localLocker{},
	}), func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})

	send := func(key string) (int, string, string) {
		req := httptest.NewRequest(fiber.MethodPost, "/checkout", nil)
		if key != "" {
			req.Header.Set(constant.IdempotencyKeyHdr, key)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b), resp.Header.Get(constant.IdempotencyHeader)
	}

	status, body, marker := send("a1b2-c3")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Equal(t, "saved", marker)

	status, body, marker = send("a1b2-c3")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Equal(t, "hit", marker)

	_, body, _ = send("")
	assert.JSONEq(t, `{"call":2}`, body)
	assert.Equal(t, 2, calls)

	status, _, _ = send(strings.Repeat("x", 200))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestIdempotencyDoesNotStoreErrors(t *testing.T) {
	app := newApp()
	calls := 0
	app.Post("/", middlewares.Idempotency(&middlewares.IdempotencyConfig{
		Lifetime:  time.Hour,
		KeyHeader: constant.IdempotencyKeyHdr,
		Storage:   &memoryStorage{m: map[string][]byte{}},
		Locker:    &localLocker{},
	}), func(c *fiber.Ctx) error {
		calls++
		if calls == 1 {
			return fiber.NewError(fiber.StatusBadRequest, "first attempt fails")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, want := range []int{fiber.StatusBadRequest, fiber.StatusNoContent, fiber.StatusNoContent} {
		req := httptest.NewRequest(fiber.MethodPost, "/", nil)
		req.Header.Set(constant.IdempotencyKeyHdr, "retry-me")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode)
	}
	assert.Equal(t, 2, calls)
}

func authFixture(t *testing.T) (*fiber.App, *authn.Authenticator) {
	t.Helper()

	a := authn.NewWithSecret([]byte("secret"), time.Hour, time.Hour)
	conf := &appconfig.Config{ConfigSpec: appconfig.ConfigSpec{AdminKey: "letmein"}}
	auth := middlewares.NewAuth(a, conf)

	app := newApp()
	app.Get("/me", auth.Required(), func(c *fiber.Ctx) error {
		p, _ := authn.PrincipalFromCtx(c)
		return c.JSON(fiber.Map{"id": p.UserID})
	})
	app.Get("/agent", auth.Required(), middlewares.RequireRole(constant.RoleAgent), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/admin", auth.Admin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/public", auth.Optional(), func(c *fiber.Ctx) error {
		_, ok := authn.PrincipalFromCtx(c)
		return c.JSON(fiber.Map{"authenticated": ok})
	})
	return app, a
}

func TestAuthMiddlewares(t *testing.T) {
	app, a := authFixture(t)

	userToken, err := a.Issue(3, constant.RoleUser, false)
	require.NoError(t, err)
	adminToken, err := a.Issue(1, constant.RoleAdmin, false)
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		token    string
		adminKey string
		status   int
		code     string
	}{
		{"no token", "/me", "", "", fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad token", "/me", "nope", "", fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"valid token", "/me", userToken.Token, "", fiber.StatusOK, ""},
		{"wrong role", "/agent", userToken.Token, "", fiber.StatusForbidden, "FORBIDDEN"},
		{"admin by key", "/admin", "", "letmein", fiber.StatusNoContent, ""},
		{"admin by wrong key", "/admin", "", "guess", fiber.StatusForbidden, "FORBIDDEN"},
		{"admin by role", "/admin", adminToken.Token, "", fiber.StatusNoContent, ""},
		{"admin by user", "/admin", userToken.Token, "", fiber.StatusForbidden, "FORBIDDEN"},
		{"optional without token", "/public", "", "", fiber.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tt.token)
			}
			if tt.adminKey != "" {
				req.Header.Set(constant.AdminKeyHeader, tt.adminKey)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, resp.Body))
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	app := newApp()
	app.Post("/login", middlewares.RateLimit(2, time.Minute, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	var last int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
		require.NoError(t, err)
		last = resp.StatusCode
	}
	assert.Equal(t, fiber.StatusTooManyRequests, last)
}
