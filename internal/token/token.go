// Package token issues stateless, time-limited tokens bound to a hashed view
// of a user's state. A token stops verifying as soon as any part of that state
// changes, so redeeming it (flipping is_verified, changing the password) makes
// it unusable without a revocation store.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"speaksfer/internal/models"
)

const (
	// EmailVerificationSalt namespaces email verification signatures.
	EmailVerificationSalt = "speaksfer.token.EmailVerification"
	// PasswordResetSalt namespaces password reset signatures.
	PasswordResetSalt = "speaksfer.token.PasswordReset"

	// DefaultTimeout is the validity window when none is configured.
	DefaultTimeout = 72 * time.Hour

	maxTimestampLen = 6
)

// epoch keeps the encoded timestamps short.
var epoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// StateFunc renders the user state a token is bound to at timestamp ts.
type StateFunc func(u *models.User, ts int64) string

// VerificationState binds a token to the user id and verification flag.
func VerificationState(u *models.User, ts int64) string {
	return strconv.FormatUint(uint64(u.ID), 10) + strconv.FormatInt(ts, 10) + strconv.FormatBool(u.IsVerified)
}

// PasswordResetState binds a token to the password hash, last login and email,
// so it dies once the password changes or the user logs in again.
func PasswordResetState(u *models.User, ts int64) string {
	login := ""
	if u.LastLogin != nil {
		login = strconv.FormatInt(u.LastLogin.UTC().Truncate(time.Second).Unix(), 10)
	}
	return strconv.FormatUint(uint64(u.ID), 10) + u.Password + login + strconv.FormatInt(ts, 10) + u.Email
}

// Generator creates and checks tokens for one purpose.
type Generator struct {
	key     []byte
	timeout time.Duration
	state   StateFunc
	now     func() time.Time
}

// Option customises a Generator.
type Option func(*Generator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator builds a generator signing with secret under keySalt.
func NewGenerator(secret, keySalt string, timeout time.Duration, state StateFunc, opts ...Option) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	key := sha256.Sum256([]byte(keySalt + secret))
	g := &Generator{
		key:     key[:],
		timeout: timeout,
		state:   state,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewEmailVerification returns the generator used for account activation.
func NewEmailVerification(secret string, timeout time.Duration, opts ...Option) *Generator {
	return NewGenerator(secret, EmailVerificationSalt, timeout, VerificationState, opts...)
}

// NewPasswordReset returns the generator used for password reset links.
func NewPasswordReset(secret string, timeout time.Duration, opts ...Option) *Generator {
	return NewGenerator(secret, PasswordResetSalt, timeout, PasswordResetState, opts...)
}

// Make returns a token for u at the current time.
func (g *Generator) Make(u *models.User) string {
	return g.makeWithTimestamp(u, g.timestamp(g.now()))
}

// Check reports whether tok was issued for u's current state and is still
// inside the validity window.
func (g *Generator) Check(u *models.User, tok string) bool {
	if u == nil || tok == "" {
		return false
	}
	tsPart, _, ok := strings.Cut(tok, "-")
	if !ok || tsPart == "" || len(tsPart) > maxTimestampLen {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}
	if !hmac.Equal([]byte(g.makeWithTimestamp(u, ts)), []byte(tok)) {
		return false
	}
	age := g.timestamp(g.now()) - ts
	return age >= 0 && time.Duration(age)*time.Second <= g.timeout
}

func (g *Generator) makeWithTimestamp(u *models.User, ts int64) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(g.state(u, ts)))
	full := hex.EncodeToString(mac.Sum(nil))

	var sig strings.Builder
	sig.Grow(len(full) / 2)
	for i := 0; i < len(full); i += 2 {
		sig.WriteByte(full[i])
	}
	return fmt.Sprintf("%s-%s", strconv.FormatInt(ts, 36), sig.String())
}

func (g *Generator) timestamp(t time.Time) int64 {
	return int64(t.Sub(epoch) / time.Second)
}
