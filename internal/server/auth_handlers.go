package server

import (
	"github.com/gofiber/fiber/v2"

	"speaksfer/internal/service"
)

// Register handles POST /api/register
// @Summary Register
// @Description Create an unverified account and send the verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Registration"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	res, err := s.authService.Register(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login handles POST /api/login
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	res, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(res)
}

// RefreshToken handles POST /api/token/refresh
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} object{access=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /token/refresh [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	access, err := s.authService.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"access": access})
}

// Logout handles POST /api/logout. The body may carry the refresh token to
// revoke alongside the access token.
func (s *Server) Logout(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	if err := s.authService.Logout(c.UserContext(), currentClaims(c), req.Refresh); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

// VerifyEmail handles PATCH /api/email-verify/:uid/:token
// @Summary Verify email
// @Tags auth
// @Produce json
// @Param uid path string true "Encoded user id"
// @Param token path string true "Verification token"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /email-verify/{uid}/{token} [patch]
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	if err := s.authService.VerifyEmail(c.UserContext(), c.Params("uid"), c.Params("token")); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Email verified successfully"})
}

// RequestPasswordReset handles POST /api/password-reset. The response does
// not reveal whether the address is registered.
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.authService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "If the account exists, a password reset link has been sent"})
}

// VerifyPasswordReset handles POST /api/verify-password-reset/:uid/:token
func (s *Server) VerifyPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.authService.ResetPassword(c.UserContext(), c.Params("uid"), c.Params("token"), req.Password); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password reset complete"})
}
