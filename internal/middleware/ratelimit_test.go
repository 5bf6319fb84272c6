package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimiter_DisabledOutsideProduction(t *testing.T) {
	for _, env := range []string{"", "test", "development"} {
		l := NewRateLimiter(nil, env)
		allowed, err := l.Allow(context.Background(), "login", "ip:1", 1, time.Minute)
		require.NoError(t, err, env)
		assert.True(t, allowed, env)
	}
}

func TestRateLimiter_NilRedis(t *testing.T) {
	l := NewRateLimiter(nil, "production")
	allowed, err := l.Allow(context.Background(), "login", "ip:1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestRateLimiter_Allow(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	l := NewRateLimiter(rdb, "production")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := l.Allow(ctx, "login", "ip:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := l.Allow(ctx, "login", "ip:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.True(t, mr.Exists("rl:login:ip:1"))
	mr.FastForward(2 * time.Minute)

	allowed, err = l.Allow(ctx, "login", "ip:1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_Middleware(t *testing.T) {
	_, rdb := newMiniRedis(t)
	l := NewRateLimiter(rdb, "production")

	app := fiber.New()
	app.Post("/login", l.Limit("login", 1, time.Minute, FailOpen), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiter_FailPolicies(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	l := NewRateLimiter(rdb, "production")
	mr.Close()

	app := fiber.New()
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Post("/open", l.Limit("open", 1, time.Minute, FailOpen), ok)
	app.Post("/closed", l.Limit("closed", 1, time.Minute, FailClosed), ok)

	resp, err := app.Test(httptest.NewRequest("POST", "/open", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/closed", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
