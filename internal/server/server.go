// Package server contains the HTTP handlers for the application's API
// endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"huddle/internal/cache"
	"huddle/internal/config"
	"huddle/internal/database"
	"huddle/internal/middleware"
	"huddle/internal/models"
	"huddle/internal/repository"
	"huddle/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	likeRepo     repository.LikeRepository
	audienceRepo repository.AudienceRepository
	profileRepo  repository.ProfileRepository
	imageRepo    repository.ImageRepository

	postService     *service.PostService
	commentService  *service.CommentService
	audienceService *service.AudienceService
	profileService  *service.ProfileService
	imageService    *service.ImageService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and a fake Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("huddle-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		likeRepo:       repository.NewLikeRepository(db),
		audienceRepo:   repository.NewAudienceRepository(db),
		profileRepo:    repository.NewProfileRepository(db),
		imageRepo:      repository.NewImageRepository(db),
	}

	s.postService = service.NewPostService(
		s.postRepo, s.commentRepo, s.likeRepo, s.profileRepo, s.audienceRepo, s.userRepo)
	s.commentService = service.NewCommentService(
		s.commentRepo, s.postRepo, s.likeRepo, s.userRepo)
	s.audienceService = service.NewAudienceService(
		s.audienceRepo, s.profileRepo, s.userRepo)
	s.imageService = service.NewImageService(
		s.imageRepo, s.postRepo, s.userRepo, cfg)
	s.profileService = service.NewProfileService(
		s.profileRepo, s.userRepo, s.imageService)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Preflight requests are never rate-limited.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Post("/register", s.Register)
	api.Post("/login", s.Login)

	posts := api.Group("/posts")

	// Audience routes sit under /posts/audience and must be registered
	// before the /:id post routes capture them.
	audience := posts.Group("/audience", middleware.AuthRequired)
	audience.Post("/", s.CreateAudience)
	audience.Get("/list", s.ListAudiences)
	audience.Get("/:id/details", s.GetAudience)
	audience.Put("/:id/update", s.UpdateAudience)
	audience.Delete("/:id/delete", s.DeleteAudience)

	// Comment routes, same ordering constraint.
	posts.Post("/comments", middleware.AuthRequired, s.CreateComment)
	posts.Get("/comments/:post", middleware.OptionalAuth, s.ListComments)
	posts.Put("/comments/:id/update", middleware.AuthRequired, s.UpdateComment)
	posts.Delete("/comments/:id/delete", middleware.AuthRequired, s.DeleteComment)
	posts.Post("/comments/:id/likes", middleware.AuthRequired, s.ToggleCommentLike)
	posts.Post("/comments/:id/like_by_author", middleware.AuthRequired, s.ToggleCommentLikeByAuthor)
	posts.Get("/replies/:comment", middleware.OptionalAuth, s.ListReplies)

	posts.Get("/", middleware.OptionalAuth, s.ListPosts)
	posts.Post("/create", middleware.AuthRequired, s.CreatePost)
	posts.Get("/:id/details", middleware.OptionalAuth, s.GetPost)
	posts.Put("/:id/update", middleware.AuthRequired, s.UpdatePost)
	posts.Delete("/:id/delete", middleware.AuthRequired, s.DeletePost)
	posts.Post("/:id/likes", middleware.AuthRequired, s.TogglePostLike)
	posts.Post("/:id/pin-comment", middleware.AuthRequired, s.TogglePinComment)
	posts.Post("/:id/favorite", middleware.AuthRequired, s.ToggleFavorite)

	profiles := api.Group("/profiles")
	profiles.Put("/update", middleware.AuthRequired, s.UpdateProfile)
	profiles.Put("/audience", middleware.AuthRequired, s.SetDefaultAudience)
	profiles.Post("/friends/:id", middleware.AuthRequired, s.AddFriend)
	profiles.Delete("/friends/:id", middleware.AuthRequired, s.RemoveFriend)
	profiles.Get("/:id/friends", middleware.OptionalAuth, s.ListFriends)
	profiles.Get("/:id/audience", middleware.AuthRequired, s.GetDefaultAudience)
	profiles.Get("/:id", middleware.OptionalAuth, s.GetProfile)

	images := api.Group("/images")
	images.Get("/", middleware.OptionalAuth, s.ListImages)
	images.Post("/upload", middleware.AuthRequired, s.UploadImage)
	images.Put("/:id/update", middleware.AuthRequired, s.UpdateImage)
	images.Delete("/:id/delete", middleware.AuthRequired, s.DeleteImage)
	images.Get("/:id/tagged-friends", middleware.OptionalAuth, s.ListImageTags)
	images.Post("/:id/tagged-friends", middleware.AuthRequired, s.TagImageFriend)
}

// HealthCheck reports database and Redis health.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The cache is optional; readiness only requires the database.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the fiber application with middleware and routes attached.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "Huddle API",
		BodyLimit: 32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
