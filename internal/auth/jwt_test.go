package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewManager(testSecret, 30*time.Minute, 7*24*time.Hour, rdb), mr
}

func TestManager_RoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	access, refresh, err := m.GeneratePair(42, "neo")
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := m.Parse(ctx, access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "neo", claims.Username)
	assert.NotEmpty(t, claims.JTI)

	claims, err = m.Parse(ctx, refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, claims.Type)
}

func TestManager_RejectsWrongType(t *testing.T) {
	m, _ := newTestManager(t)
	refresh, err := m.GenerateRefresh(1, "neo")
	require.NoError(t, err)

	_, err = m.Parse(context.Background(), refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestManager_RejectsInvalidTokens(t *testing.T) {
	m, _ := newTestManager(t)
	now := time.Now()

	sign := func(claims jwt.MapClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "7", "typ": TypeAccess, "iss": TokenIssuer, "aud": TokenAudience,
			"exp": now.Add(time.Hour).Unix(), "jti": "abc",
		}
	}

	expired := base()
	expired["exp"] = now.Add(-time.Hour).Unix()
	foreignIssuer := base()
	foreignIssuer["iss"] = "someone-else"
	foreignAudience := base()
	foreignAudience["aud"] = "another-client"
	noExpiry := base()
	delete(noExpiry, "exp")
	badSubject := base()
	badSubject["sub"] = "not-a-number"

	tests := map[string]string{
		"garbage":          "not.a.token",
		"wrong secret":     sign(base(), "another-secret"),
		"expired":          sign(expired, testSecret),
		"foreign issuer":   sign(foreignIssuer, testSecret),
		"foreign audience": sign(foreignAudience, testSecret),
		"missing expiry":   sign(noExpiry, testSecret),
		"bad subject":      sign(badSubject, testSecret),
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(context.Background(), tok, TypeAccess)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := m.Parse(context.Background(), sign(base(), testSecret), TypeAccess)
	assert.NoError(t, err)
}

func TestManager_Revoke(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	access, err := m.GenerateAccess(9, "trinity")
	require.NoError(t, err)
	claims, err := m.Parse(ctx, access, TypeAccess)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, claims))
	assert.True(t, mr.Exists(blacklistPrefix+claims.JTI))
	ttl := mr.TTL(blacklistPrefix + claims.JTI)
	assert.True(t, ttl > 0 && ttl <= 30*time.Minute)

	_, err = m.Parse(ctx, access, TypeAccess)
	assert.ErrorIs(t, err, ErrRevoked)

	other, err := m.GenerateAccess(9, "trinity")
	require.NoError(t, err)
	_, err = m.Parse(ctx, other, TypeAccess)
	assert.NoError(t, err)
}

func TestManager_RedisDownFailsOpen(t *testing.T) {
	m, mr := newTestManager(t)
	access, err := m.GenerateAccess(3, "tank")
	require.NoError(t, err)

	mr.Close()
	_, err = m.Parse(context.Background(), access, TypeAccess)
	assert.NoError(t, err)
}

func TestManager_WithoutRedis(t *testing.T) {
	m := NewManager(testSecret, time.Minute, time.Hour, nil)
	access, err := m.GenerateAccess(5, "mouse")
	require.NoError(t, err)
	claims, err := m.Parse(context.Background(), access, TypeAccess)
	require.NoError(t, err)
	assert.NoError(t, m.Revoke(context.Background(), claims))

	_, err = NewManager("", time.Minute, time.Hour, nil).GenerateAccess(1, "x")
	assert.Error(t, err)
}
