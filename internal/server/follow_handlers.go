package server

import (
	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/follow
// @Summary Follow a user
// @Tags follows
// @Accept json
// @Produce json
// @Param request body object{follow=int} true "Target user id"
// @Success 201 {object} models.UserFollowing
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /follow [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	var req struct {
		Follow uint `json:"follow"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	edge, err := s.followService.Follow(c.UserContext(), currentUserID(c), req.Follow)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(edge)
}

// Unfollow handles DELETE /api/unfollow/:id
// @Summary Unfollow a user
// @Tags follows
// @Param id path int true "Target user id"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /unfollow/{id} [delete]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}
	if err := s.followService.Unfollow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowing handles GET /api/following/:id
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	users, err := s.followService.Following(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// GetFollowers handles GET /api/followers/:id
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	users, err := s.followService.Followers(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}
