package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"speaksfer/internal/auth"
	"speaksfer/internal/featureflags"
	"speaksfer/internal/mail"
	"speaksfer/internal/middleware"
	"speaksfer/internal/models"
	"speaksfer/internal/observability"
	"speaksfer/internal/repository"
	"speaksfer/internal/token"
	"speaksfer/internal/validation"
)

const (
	msgBadCredentials   = "No active account found with the given credentials"
	msgInvalidUserID    = "Invalid user id"
	msgInvalidToken     = "Invalid or expired token"
	msgInvalidResetUID  = "The encoded_pk is invalid"
	msgInvalidResetTok  = "The reset token is invalid"
	msgInvalidJWT       = "Token is invalid or expired"
	msgEmailNotVerified = "Email address is not verified"
	msgFieldRequired    = "This field is required."
)

// AuthService registers accounts, issues JWTs and redeems emailed tokens.
type AuthService struct {
	users       repository.UserRepository
	mailer      mail.Mailer
	jwt         *auth.Manager
	verify      *token.Generator
	reset       *token.Generator
	flags       *featureflags.Manager
	frontendURL string
	now         func() time.Time
}

// AuthDeps groups AuthService collaborators.
type AuthDeps struct {
	Users       repository.UserRepository
	Mailer      mail.Mailer
	JWT         *auth.Manager
	Verify      *token.Generator
	Reset       *token.Generator
	Flags       *featureflags.Manager
	FrontendURL string
}

func NewAuthService(d AuthDeps) *AuthService {
	return &AuthService{
		users:       d.Users,
		mailer:      d.Mailer,
		jwt:         d.JWT,
		verify:      d.Verify,
		reset:       d.Reset,
		flags:       d.Flags,
		frontendURL: strings.TrimRight(d.FrontendURL, "/"),
		now:         time.Now,
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User    *models.User `json:"user"`
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
}

// Register creates an unverified account and mails its verification link.
// A mail failure rolls the account back and is returned to the caller.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewFieldError("username", err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewFieldError("email", err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewFieldError("password", err.Error())
	}

	emailTaken, usernameTaken, err := s.users.Taken(ctx, in.Email, in.Username)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, models.NewConflictError("A user with that email already exists")
	}
	if usernameTaken {
		return nil, models.NewConflictError("A user with that username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		IsActive: true,
	}
	err = s.users.Register(ctx, user, func(created *models.User) error {
		link := s.link("email-verify", created.ID, s.verify.Make(created))
		if err := s.mailer.SendVerification(ctx, created.Email, created.Username, link); err != nil {
			return models.NewInternalError(fmt.Errorf("verification mail: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login checks the password and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, models.NewFieldError("email", msgFieldRequired)
	}
	if password == "" {
		return nil, models.NewFieldError("password", msgFieldRequired)
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewUnauthorizedError(msgBadCredentials)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil || !user.IsActive {
		return nil, models.NewUnauthorizedError(msgBadCredentials)
	}
	if !user.IsVerified && s.flags.Enabled(featureflags.RequireVerifiedLogin, user.ID) {
		return nil, models.NewForbiddenError(msgEmailNotVerified)
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return s.issue(user)
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	if refresh == "" {
		return "", models.NewFieldError("refresh", msgFieldRequired)
	}
	claims, err := s.jwt.Parse(ctx, refresh, auth.TypeRefresh)
	if err != nil {
		return "", models.NewUnauthorizedError(msgInvalidJWT)
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return "", models.NewUnauthorizedError(msgInvalidJWT)
	}
	access, err := s.jwt.GenerateAccess(user.ID, user.Username)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return access, nil
}

// Logout revokes the presented access token and, when given, the caller's
// refresh token.
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, refresh string) error {
	if err := s.jwt.Revoke(ctx, access); err != nil {
		return models.NewInternalError(err)
	}
	if refresh == "" {
		return nil
	}
	claims, err := s.jwt.Parse(ctx, refresh, auth.TypeRefresh)
	if err != nil {
		if errors.Is(err, auth.ErrRevoked) {
			return nil
		}
		return models.NewFieldError("refresh", msgInvalidJWT)
	}
	if claims.UserID != access.UserID {
		return models.NewForbiddenError(permissionDenied)
	}
	if err := s.jwt.Revoke(ctx, claims); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// VerifyEmail redeems an email verification token. The token embeds the
// verified flag, so a second use fails once the first one succeeded.
func (s *AuthService) VerifyEmail(ctx context.Context, uid, tok string) error {
	user, err := s.resolveUID(ctx, uid, msgInvalidUserID)
	if err != nil {
		s.countCheck("email_verification", err)
		return err
	}
	if !s.verify.Check(user, tok) {
		err := models.NewInvalidTokenError(msgInvalidToken)
		s.countCheck("email_verification", err)
		return err
	}
	err = s.users.MarkVerified(ctx, user.ID)
	s.countCheck("email_verification", err)
	return err
}

// RequestPasswordReset mails a reset link when the address belongs to an
// account. Unknown addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.NewFieldError("email", msgFieldRequired)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			middleware.Logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return err
	}

	link := s.link("verify-password-reset", user.ID, s.reset.Make(user))
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, link); err != nil {
		return models.NewInternalError(fmt.Errorf("password reset mail: %w", err))
	}
	return nil
}

// ResetPassword redeems a reset token and stores the new password. Changing
// the hash invalidates the token.
func (s *AuthService) ResetPassword(ctx context.Context, uid, tok, password string) error {
	if password == "" {
		return models.NewFieldError("password", msgFieldRequired)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewFieldError("password", err.Error())
	}

	user, err := s.resolveUID(ctx, uid, msgInvalidResetUID)
	if err != nil {
		s.countCheck("password_reset", err)
		return err
	}
	if !s.reset.Check(user, tok) {
		err := models.NewInvalidTokenError(msgInvalidResetTok)
		s.countCheck("password_reset", err)
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	err = s.users.UpdatePassword(ctx, user.ID, string(hash))
	s.countCheck("password_reset", err)
	return err
}

// resolveUID decodes uid and loads the full account. A malformed uid and an
// unknown user are the same InvalidIdentity error.
func (s *AuthService) resolveUID(ctx context.Context, uid, msg string) (*models.User, error) {
	id, err := token.DecodeUID(uid)
	if err != nil {
		return nil, models.NewInvalidIdentityError(msg)
	}
	user, err := s.users.GetAccount(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewInvalidIdentityError(msg)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	access, refresh, err := s.jwt.GeneratePair(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Access: access, Refresh: refresh}, nil
}

func (s *AuthService) link(route string, userID uint, tok string) string {
	return fmt.Sprintf("%s/%s/%s/%s", s.frontendURL, route, token.EncodeUID(userID), tok)
}

func (s *AuthService) countCheck(purpose string, err error) {
	observability.TokenChecks.WithLabelValues(purpose, observability.ResultOf(err)).Inc()
}
