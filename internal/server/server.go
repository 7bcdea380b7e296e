package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"wander/internal/auth"
	"wander/internal/cache"
	"wander/internal/config"
	"wander/internal/database"
	"wander/internal/geocode"
	"wander/internal/mail"
	"wander/internal/middleware"
	"wander/internal/models"
	"wander/internal/repository"
	"wander/internal/service"
	"wander/internal/upload"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client
	app    *fiber.App

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository

	sessions *auth.SessionManager
	uploader upload.Uploader

	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this to substitute their own DB and Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	tokenStore, err := repository.NewOneTimeTokenStore(redisClient)
	if err != nil {
		return nil, fmt.Errorf("one-time token store: %w", err)
	}

	sessions := auth.NewSessionManager(cfg, userRepo, tokenStore)
	mailer := mail.NewMailer(cfg)
	geocoder := geocode.NewClient(cfg)
	uploader := upload.NewClient(cfg)

	server := &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		sessions:    sessions,
		uploader:    uploader,
	}
	server.userService = service.NewUserService(userRepo, postRepo, sessions, mailer)
	server.postService = service.NewPostService(postRepo, geocoder)
	server.commentService = service.NewCommentService(commentRepo, postRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	middleware.InitMiddleware(s.config.AccessTokenSecret)

	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	// Credentials must be allowed: the refresh token travels in a cookie.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", s.Signup)
	authGroup.Post("/login", s.Login)
	authGroup.Post("/logout", s.Logout)
	authGroup.Post("/refresh", s.Refresh)
	authGroup.Post("/verify-email/:userId/:token", s.VerifyEmail)
	authGroup.Post("/resend-verification", s.ResendVerification)
	authGroup.Post("/forgot-password", s.ForgotPassword)
	authGroup.Post("/reset-password/:userId/:token", s.ResetPassword)
	authGroup.Post("/revoke-sessions", middleware.AuthRequired, s.RevokeSessions)

	// User routes
	users := api.Group("/users")
	users.Get("/me", middleware.AuthRequired, s.GetMyProfile)
	users.Put("/me", middleware.AuthRequired, s.UpdateMyProfile)
	users.Delete("/me", middleware.AuthRequired, s.DeleteMyAccount)
	// Specific /:id/:resource routes BEFORE generic /:id route
	users.Post("/:id/follow", middleware.AuthRequired, s.FollowUser)
	users.Post("/:id/unfollow", middleware.AuthRequired, s.UnfollowUser)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", middleware.AuthOptional, s.GetUserProfile)

	// Post routes
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.AuthRequired, s.CreatePost)
	// Specific /:pid/:resource routes BEFORE generic /:pid route
	posts.Post("/:pid/like", middleware.AuthRequired, s.LikePost)
	posts.Post("/:pid/unlike", middleware.AuthRequired, s.UnlikePost)
	posts.Get("/:pid/comments", s.GetComments)
	posts.Post("/:pid/comments", middleware.AuthRequired, s.CreateComment)
	posts.Delete("/:pid/comments/:cid", middleware.AuthRequired, s.DeleteComment)
	posts.Get("/:pid", s.GetPost)
	posts.Patch("/:pid", middleware.AuthRequired, s.UpdatePost)
	posts.Delete("/:pid", middleware.AuthRequired, s.DeletePost)

	// Comment and reply routes
	comments := api.Group("/comments")
	comments.Post("/replies/:rid/like", middleware.AuthRequired, s.LikeReply)
	comments.Post("/replies/:rid/unlike", middleware.AuthRequired, s.UnlikeReply)
	comments.Post("/:cid/like", middleware.AuthRequired, s.LikeComment)
	comments.Post("/:cid/unlike", middleware.AuthRequired, s.UnlikeComment)
	comments.Get("/:cid/replies", s.GetReplies)
	comments.Post("/:cid/replies", middleware.AuthRequired, s.CreateReply)
	comments.Delete("/:cid/replies/:rid", middleware.AuthRequired, s.DeleteReply)

	// Upload route
	api.Post("/uploads", middleware.AuthRequired, s.UploadImage)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
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
		// Redis backs the one-time token store, so readiness requires it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// Start starts the server.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Wander API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
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
