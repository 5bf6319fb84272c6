package server

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"speaksfer/internal/middleware"
	"speaksfer/internal/models"
	"speaksfer/internal/service"
)

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	users, err := s.userService.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.Get(c.UserContext(), currentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// DeleteMe handles DELETE /api/users/me
// @Summary Delete own account
// @Description Removes the account with its profile, follow edges, articles and engagement
// @Tags users
// @Success 204
// @Security BearerAuth
// @Router /users/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := s.userService.DeleteAccount(ctx, currentUserID(c)); err != nil {
		return respond(c, err)
	}
	if err := s.jwt.Revoke(ctx, currentClaims(c)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke token of deleted account", "error", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListProfiles handles GET /api/profiles
func (s *Server) ListProfiles(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	profiles, err := s.profileService.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(profiles)
}

// GetProfile handles GET /api/profile/:user
// @Summary Get profile
// @Tags profiles
// @Produce json
// @Param user path int true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profile/{user} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "user", "user ID")
	if err != nil {
		return nil
	}
	profile, err := s.profileService.Get(c.UserContext(), ownerID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles PATCH /api/profile/:user
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "user", "user ID")
	if err != nil {
		return nil
	}
	var req struct {
		Bio *string `json:"bio"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	profile, err := s.profileService.Update(c.UserContext(), currentUserID(c), ownerID, service.UpdateProfileInput{Bio: req.Bio})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(profile)
}

// UploadProfileImage handles POST /api/profile/:user/image
// @Summary Upload avatar
// @Description Multipart field "image"; stored as a 400x400 WebP
// @Tags profiles
// @Accept multipart/form-data
// @Produce json
// @Param user path int true "User ID"
// @Param image formData file true "Image file"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profile/{user}/image [post]
func (s *Server) UploadProfileImage(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "user", "user ID")
	if err != nil {
		return nil
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return respond(c, models.NewFieldError("image", "No file uploaded"))
	}
	if fh.Size > s.imageService.MaxUploadSize() {
		return respond(c, models.NewFieldError("image", "File too large"))
	}
	f, err := fh.Open()
	if err != nil {
		return respond(c, models.NewInternalError(err))
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(io.LimitReader(f, s.imageService.MaxUploadSize()+1))
	if err != nil {
		return respond(c, models.NewInternalError(err))
	}

	profile, err := s.profileService.SetImage(c.UserContext(), currentUserID(c), ownerID, service.UploadImageInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(profile)
}
