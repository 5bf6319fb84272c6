// Package server wires the HTTP API: middleware, routes and handlers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	_ "speaksfer/docs" // swagger docs
	"speaksfer/internal/auth"
	"speaksfer/internal/cache"
	"speaksfer/internal/config"
	"speaksfer/internal/database"
	"speaksfer/internal/featureflags"
	"speaksfer/internal/mail"
	"speaksfer/internal/middleware"
	"speaksfer/internal/models"
	"speaksfer/internal/notifications"
	"speaksfer/internal/repository"
	"speaksfer/internal/service"
	"speaksfer/internal/token"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	jwt          *auth.Manager
	limiter      *middleware.RateLimiter
	featureFlags *featureflags.Manager
	notifier     *notifications.Notifier
	hub          *notifications.Hub

	authService      *service.AuthService
	userService      *service.UserService
	profileService   *service.ProfileService
	imageService     *service.ImageService
	followService    *service.FollowService
	articleService   *service.ArticleService
	commentService   *service.CommentService
	ratingService    *service.RatingService
	bookmarkService  *service.BookmarkService
	highlightService *service.HighlightService
}

// Option customises a Server built by NewServerWithDeps.
type Option func(*serverOptions)

type serverOptions struct {
	mailer mail.Mailer
}

// WithMailer replaces the SMTP mailer derived from configuration.
func WithMailer(m mail.Mailer) Option {
	return func(o *serverOptions) { o.mailer = m }
}

// NewServer connects to the database and Redis and builds a Server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	redisClient := cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil Redis client disables caching, token revocation and notifications.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.mailer == nil {
		m, err := mail.NewClient(mail.Config{
			Host:       cfg.SMTPHost,
			User:       cfg.SMTPUser,
			Password:   cfg.SMTPPassword,
			From:       cfg.MailFrom,
			SkipVerify: cfg.SMTPSkipVerify,
		})
		if err != nil {
			return nil, fmt.Errorf("mail client: %w", err)
		}
		o.mailer = m
	}

	cache.SetClient(redisClient)

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	followRepo := repository.NewFollowRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	highlightRepo := repository.NewHighlightRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("speaksfer-api"),
		jwt:            auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL(), redisClient),
		limiter:        middleware.NewRateLimiter(redisClient, cfg.Env),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	var publisher service.Publisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		publisher = s.notifier
	}

	s.imageService = service.NewImageService(cfg)
	s.authService = service.NewAuthService(service.AuthDeps{
		Users:       userRepo,
		Mailer:      o.mailer,
		JWT:         s.jwt,
		Verify:      token.NewEmailVerification(cfg.TokenSecret, cfg.TokenTimeout()),
		Reset:       token.NewPasswordReset(cfg.TokenSecret, cfg.TokenTimeout()),
		Flags:       s.featureFlags,
		FrontendURL: cfg.FrontendURL,
	})
	s.userService = service.NewUserService(userRepo, profileRepo, s.imageService)
	s.profileService = service.NewProfileService(profileRepo, s.imageService)
	s.followService = service.NewFollowService(followRepo, userRepo, publisher)
	s.articleService = service.NewArticleService(articleRepo, publisher)
	s.commentService = service.NewCommentService(commentRepo, articleRepo, userRepo, publisher)
	s.ratingService = service.NewRatingService(ratingRepo, articleRepo)
	s.bookmarkService = service.NewBookmarkService(bookmarkRepo, articleRepo)
	s.highlightService = service.NewHighlightService(highlightRepo, articleRepo)

	return s, nil
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Speaksfer API",
		BodyLimit:    int(s.imageService.MaxUploadSize()) + 1024*1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return models.RespondWithError(c, fe.Code, &models.AppError{Code: httpCode(fe.Code), Message: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

func httpCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return models.CodeNotFound
	case fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case fiber.StatusForbidden:
		return models.CodeForbidden
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return models.CodeValidation
	default:
		if status >= fiber.StatusInternalServerError {
			return models.CodeInternal
		}
		return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}
	app.Use(middleware.ContextMiddleware())
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	if s.config.RateLimitPerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        s.config.RateLimitPerMinute,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions || strings.HasPrefix(c.Path(), "/health")
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return models.RespondWithError(c, fiber.StatusTooManyRequests,
					&models.AppError{Code: "RATE_LIMITED", Message: "Too many requests, please try again later."})
			},
		}))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if !s.config.IsProduction() {
		app.Get("/monitor", monitor.New(monitor.Config{Title: "Speaksfer API Monitor"}))
	}
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Static("/media", s.imageService.MediaDir(), fiber.Static{Browse: false})

	api := app.Group("/api")

	// Accounts
	api.Post("/register", s.limiter.Limit("register", 5, 10*time.Minute, middleware.FailOpen), s.Register)
	api.Post("/login", s.limiter.Limit("login", 10, 5*time.Minute, middleware.FailOpen), s.Login)
	api.Post("/token/refresh", s.RefreshToken)
	api.Patch("/email-verify/:uid/:token", s.VerifyEmail)
	api.Post("/password-reset", s.limiter.Limit("password_reset", 3, 15*time.Minute, middleware.FailOpen), s.RequestPasswordReset)
	api.Post("/verify-password-reset/:uid/:token", s.VerifyPasswordReset)

	protected := api.Group("", s.AuthRequired())
	protected.Post("/logout", s.Logout)

	// Users and profiles
	protected.Get("/users", s.ListUsers)
	protected.Get("/users/me", s.GetMe)
	protected.Delete("/users/me", s.DeleteMe)
	protected.Get("/profiles", s.ListProfiles)
	protected.Get("/profile/:user", s.GetProfile)
	protected.Patch("/profile/:user", s.UpdateProfile)
	protected.Post("/profile/:user/image", s.UploadProfileImage)

	// Follow graph
	protected.Post("/follow", s.Follow)
	protected.Delete("/unfollow/:id", s.Unfollow)
	protected.Get("/following/:id", s.GetFollowing)
	protected.Get("/followers/:id", s.GetFollowers)

	// Articles; specific /:slug/<resource> routes before the generic ones.
	protected.Get("/articles", s.ListArticles)
	protected.Post("/articles", s.CreateArticle)
	protected.Post("/articles/:slug/favourite", s.FavouriteArticle)
	protected.Post("/articles/:slug/unfavourite", s.UnfavouriteArticle)
	protected.Get("/articles/:slug/highlights", s.ListHighlights)
	protected.Post("/articles/:slug/highlights", s.CreateHighlight)
	protected.Get("/article/:slug", s.GetArticle)
	protected.Patch("/article/:slug", s.UpdateArticle)
	protected.Delete("/article/:slug", s.DeleteArticle)

	// Engagement
	protected.Get("/comments", s.ListComments)
	protected.Post("/comments", s.CreateComment)
	protected.Get("/comments/:id", s.GetComment)
	protected.Patch("/comments/:id", s.UpdateComment)
	protected.Delete("/comments/:id", s.DeleteComment)
	protected.Get("/rate", s.ListRatings)
	protected.Post("/rate", s.RateArticle)
	protected.Get("/bookmarks", s.ListBookmarks)
	protected.Post("/bookmarks", s.CreateBookmark)
	protected.Delete("/bookmarks/:slug", s.DeleteBookmark)
	protected.Patch("/highlights/:id", s.UpdateHighlight)
	protected.Delete("/highlights/:id", s.DeleteHighlight)

	// Realtime notifications
	protected.Get("/ws", s.WebsocketUpgrade, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start builds the app, wires the notification hub and listens on the
// configured port. It blocks until the listener stops.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring", "hub", s.hub.Name(), "error", err)
			}
		}()
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", "hub", s.hub.Name(), "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		cache.Close()
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
