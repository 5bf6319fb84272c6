package server

import (
	"github.com/gofiber/fiber/v2"

	"speaksfer/internal/models"
	"speaksfer/internal/repository"
	"speaksfer/internal/service"
)

// ListArticles handles GET /api/articles
// @Summary List articles
// @Tags articles
// @Produce json
// @Param author query int false "Author user id"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Article
// @Security BearerAuth
// @Router /articles [get]
func (s *Server) ListArticles(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	filter := repository.ArticleFilter{Limit: page.Limit, Offset: page.Offset}
	if author := c.QueryInt("author", 0); author > 0 {
		filter.AuthorID = uint(author)
	}
	articles, err := s.articleService.List(c.UserContext(), filter, currentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(articles)
}

// CreateArticle handles POST /api/articles
// @Summary Create article
// @Tags articles
// @Accept json
// @Produce json
// @Param request body object{title=string,description=string,body=string} true "Article"
// @Success 201 {object} models.Article
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /articles [post]
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Body        string `json:"body"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	article, err := s.articleService.Create(c.UserContext(), service.CreateArticleInput{
		AuthorID:    currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// GetArticle handles GET /api/article/:slug
func (s *Server) GetArticle(c *fiber.Ctx) error {
	article, err := s.articleService.Get(c.UserContext(), c.Params("slug"), currentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(article)
}

// UpdateArticle handles PATCH /api/article/:slug. Author only.
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Body        *string `json:"body"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	article, err := s.articleService.Update(c.UserContext(), service.UpdateArticleInput{
		UserID:      currentUserID(c),
		Slug:        c.Params("slug"),
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(article)
}

// DeleteArticle handles DELETE /api/article/:slug
// @Summary Delete article
// @Description Author only. Removes comments, ratings, bookmarks, highlights and reactions too.
// @Tags articles
// @Param slug path string true "Article slug"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /article/{slug} [delete]
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	if err := s.articleService.Delete(c.UserContext(), currentUserID(c), c.Params("slug")); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FavouriteArticle handles POST /api/articles/:slug/favourite
// @Summary Toggle favourite
// @Description Marks the article as favourited, clearing any unfavourite. Repeating the call removes the mark.
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} object{article=models.Article,reaction=string}
// @Security BearerAuth
// @Router /articles/{slug}/favourite [post]
func (s *Server) FavouriteArticle(c *fiber.Ctx) error {
	return s.react(c, models.ReactionFavourite)
}

// UnfavouriteArticle handles POST /api/articles/:slug/unfavourite
func (s *Server) UnfavouriteArticle(c *fiber.Ctx) error {
	return s.react(c, models.ReactionUnfavourite)
}

func (s *Server) react(c *fiber.Ctx, want models.Reaction) error {
	article, got, err := s.articleService.React(c.UserContext(), currentUserID(c), c.Params("slug"), want)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"article": article, "reaction": got})
}
