// Package auth issues and validates the JWT access and refresh tokens used by
// the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"speaksfer/internal/middleware"
)

const (
	TokenIssuer   = "speaksfer-api"
	TokenAudience = "speaksfer-client"

	TypeAccess  = "access"
	TypeRefresh = "refresh"

	blacklistPrefix = "blacklist:"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongType    = errors.New("unexpected token type")
	ErrRevoked      = errors.New("token has been revoked")
)

// Claims is the validated subset of a token's claims.
type Claims struct {
	UserID    uint
	Username  string
	Type      string
	JTI       string
	ExpiresAt time.Time
}

// Manager signs and verifies HS256 tokens and tracks revoked token IDs in
// Redis. A nil Redis client disables revocation.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	rdb        *redis.Client
	now        func() time.Time
}

// NewManager returns a Manager signing with secret.
func NewManager(secret string, accessTTL, refreshTTL time.Duration, rdb *redis.Client) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		rdb:        rdb,
		now:        time.Now,
	}
}

// GenerateAccess returns a short-lived access token for the user.
func (m *Manager) GenerateAccess(userID uint, username string) (string, error) {
	return m.generate(userID, username, TypeAccess, m.accessTTL)
}

// GenerateRefresh returns a long-lived refresh token for the user.
func (m *Manager) GenerateRefresh(userID uint, username string) (string, error) {
	return m.generate(userID, username, TypeRefresh, m.refreshTTL)
}

// GeneratePair returns an access and a refresh token.
func (m *Manager) GeneratePair(userID uint, username string) (access, refresh string, err error) {
	if access, err = m.GenerateAccess(userID, username); err != nil {
		return "", "", err
	}
	if refresh, err = m.GenerateRefresh(userID, username); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *Manager) generate(userID uint, username, typ string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"typ":      typ,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates tokenString and requires its typ claim to equal wantType.
// Revoked tokens are rejected with ErrRevoked.
func (m *Manager) Parse(ctx context.Context, tokenString, wantType string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		UserID:    uint(userID),
		ExpiresAt: exp.Time,
	}
	claims.Username, _ = mc["username"].(string)
	claims.Type, _ = mc["typ"].(string)
	claims.JTI, _ = mc["jti"].(string)

	if claims.Type != wantType {
		return nil, ErrWrongType
	}
	if claims.JTI != "" && m.isRevoked(ctx, claims.JTI) {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.rdb == nil || claims.JTI == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, blacklistPrefix+claims.JTI, "1", ttl).Err()
}

// isRevoked fails open on Redis errors.
func (m *Manager) isRevoked(ctx context.Context, jti string) bool {
	if m.rdb == nil {
		return false
	}
	n, err := m.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token blacklist lookup failed", "error", err)
		return false
	}
	return n > 0
}
