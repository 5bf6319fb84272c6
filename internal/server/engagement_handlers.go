package server

import (
	"github.com/gofiber/fiber/v2"

	"speaksfer/internal/service"
)

// ListComments handles GET /api/comments?article=<slug>
func (s *Server) ListComments(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	comments, err := s.commentService.List(c.UserContext(), c.Query("article"), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/comments
// @Summary Comment on an article
// @Tags comments
// @Accept json
// @Produce json
// @Param request body object{article=string,body=string} true "Comment"
// @Success 201 {object} models.ArticleComment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Article string `json:"article"`
		Body    string `json:"body"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	comment, err := s.commentService.Create(c.UserContext(), currentUserID(c), req.Article, req.Body)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := service.ParseCommentID(c.Params("id"))
	if err != nil {
		return respond(c, err)
	}
	comment, err := s.commentService.Get(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comment)
}

// UpdateComment handles PATCH /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := service.ParseCommentID(c.Params("id"))
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	comment, err := s.commentService.Update(c.UserContext(), currentUserID(c), id, req.Body)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := service.ParseCommentID(c.Params("id"))
	if err != nil {
		return respond(c, err)
	}
	if err := s.commentService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRatings handles GET /api/rate?article=<slug>
func (s *Server) ListRatings(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	ratings, err := s.ratingService.List(c.UserContext(), c.Query("article"), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(ratings)
}

// RateArticle handles POST /api/rate
// @Summary Rate an article
// @Description One rating per user and article; the score must be 1-5
// @Tags ratings
// @Accept json
// @Produce json
// @Param request body object{article=string,rating=int,review=string} true "Rating"
// @Success 201 {object} models.ArticleRating
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /rate [post]
func (s *Server) RateArticle(c *fiber.Ctx) error {
	var req struct {
		Article string `json:"article"`
		Rating  int    `json:"rating"`
		Review  string `json:"review"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	rating, err := s.ratingService.Rate(c.UserContext(), service.RateInput{
		UserID: currentUserID(c),
		Slug:   req.Article,
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rating)
}

// ListBookmarks handles GET /api/bookmarks
func (s *Server) ListBookmarks(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	bookmarks, err := s.bookmarkService.List(c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(bookmarks)
}

// CreateBookmark handles POST /api/bookmarks
func (s *Server) CreateBookmark(c *fiber.Ctx) error {
	var req struct {
		Article string `json:"article"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	bookmark, err := s.bookmarkService.Add(c.UserContext(), currentUserID(c), req.Article)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bookmark)
}

// DeleteBookmark handles DELETE /api/bookmarks/:slug
func (s *Server) DeleteBookmark(c *fiber.Ctx) error {
	if err := s.bookmarkService.Remove(c.UserContext(), currentUserID(c), c.Params("slug")); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListHighlights handles GET /api/articles/:slug/highlights
func (s *Server) ListHighlights(c *fiber.Ctx) error {
	highlights, err := s.highlightService.List(c.UserContext(), currentUserID(c), c.Params("slug"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(highlights)
}

// CreateHighlight handles POST /api/articles/:slug/highlights
// @Summary Highlight a span
// @Description Offsets count characters of the article body; start < end <= length
// @Tags highlights
// @Accept json
// @Produce json
// @Param slug path string true "Article slug"
// @Param request body object{highlight_start=int,highlight_end=int,comment=string} true "Highlight"
// @Success 201 {object} models.ArticleHighlight
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /articles/{slug}/highlights [post]
func (s *Server) CreateHighlight(c *fiber.Ctx) error {
	var req struct {
		Start   int    `json:"highlight_start"`
		End     int    `json:"highlight_end"`
		Comment string `json:"comment"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	highlight, err := s.highlightService.Create(c.UserContext(), service.HighlightInput{
		UserID:  currentUserID(c),
		Slug:    c.Params("slug"),
		Start:   req.Start,
		End:     req.End,
		Comment: req.Comment,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(highlight)
}

// UpdateHighlight handles PATCH /api/highlights/:id
func (s *Server) UpdateHighlight(c *fiber.Ctx) error {
	id, err := service.ParseHighlightID(c.Params("id"))
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	highlight, err := s.highlightService.UpdateComment(c.UserContext(), currentUserID(c), id, req.Comment)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(highlight)
}

// DeleteHighlight handles DELETE /api/highlights/:id
func (s *Server) DeleteHighlight(c *fiber.Ctx) error {
	id, err := service.ParseHighlightID(c.Params("id"))
	if err != nil {
		return respond(c, err)
	}
	if err := s.highlightService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
