package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"speaksfer/internal/cache"
	"speaksfer/internal/config"
	"speaksfer/internal/database"
)

const testJWTSecret = "test-secret-key-12345678901234567890123456789012"

// captureMailer records the last link sent per address.
type captureMailer struct {
	mu     sync.Mutex
	verify map[string]string
	reset  map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{verify: map[string]string{}, reset: map[string]string{}}
}

func (m *captureMailer) IsEnabled() bool { return true }

func (m *captureMailer) SendVerification(_ context.Context, to, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verify[to] = link
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[to] = link
	return nil
}

// linkParts returns the uid and token segments of an emailed link.
func (m *captureMailer) linkParts(t *testing.T, links map[string]string, email string) (string, string) {
	t.Helper()
	m.mu.Lock()
	link, ok := links[email]
	m.mu.Unlock()
	require.True(t, ok, "no mail sent to %s", email)
	parts := strings.Split(link, "/")
	require.GreaterOrEqual(t, len(parts), 2)
	return parts[len(parts)-2], parts[len(parts)-1]
}

type testEnv struct {
	srv    *Server
	app    *fiber.App
	db     *gorm.DB
	redis  *redis.Client
	mailer *captureMailer
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWTSecret:             testJWTSecret,
		TokenSecret:           "token-secret",
		TokenTimeoutSeconds:   3600,
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLHours:  24,
		Port:                  "0",
		DBDriver:              "sqlite",
		Env:                   "test",
		FrontendURL:           "http://localhost:3000",
		MediaDir:              t.TempDir(),
		MediaMaxUploadSizeMB:  2,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		cache.SetClient(nil)
	})

	mailer := newCaptureMailer()
	srv, err := NewServerWithDeps(testConfig(t), db, rdb, WithMailer(mailer))
	require.NoError(t, err)

	return &testEnv{srv: srv, app: srv.NewApp(), db: db, redis: rdb, mailer: mailer}
}

// call sends a JSON request and decodes the JSON response into out when
// out is non-nil.
func (e *testEnv) call(t *testing.T, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return e.do(t, req, out)
}

func (e *testEnv) do(t *testing.T, req *http.Request, out interface{}) int {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return resp.StatusCode
}

type session struct {
	ID       uint
	Username string
	Email    string
	Access   string
	Refresh  string
}

type authBody struct {
	User struct {
		ID         uint   `json:"id"`
		Username   string `json:"username"`
		IsVerified bool   `json:"is_verified"`
	} `json:"user"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// register creates an account through the API and returns its tokens.
func (e *testEnv) register(t *testing.T, username string) session {
	t.Helper()
	email := username + "@example.com"
	var out authBody
	status := e.call(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	}, &out)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, out.Access)
	return session{ID: out.User.ID, Username: username, Email: email, Access: out.Access, Refresh: out.Refresh}
}

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}
