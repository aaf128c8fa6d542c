package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	httpHandlers "github.com/toodoo/core/internal/adapters/http"
	"github.com/toodoo/core/internal/adapters/repository"
	"github.com/toodoo/core/internal/adapters/ws"
	"github.com/toodoo/core/internal/application/services"
	"github.com/toodoo/core/internal/infrastructure/config"
	"github.com/toodoo/core/internal/infrastructure/database"
	"github.com/toodoo/core/internal/infrastructure/logger"

	_ "github.com/toodoo/core/docs"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	db     *database.DB
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	taskRepo := repository.NewTaskRepository(db.DB)
	categoryRepo := repository.NewCategoryRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	conversationRepo := repository.NewConversationRepository(db.DB)
	chatRepo := repository.NewChatMessageRepository(db.DB)
	activityRepo := repository.NewActivityLogRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)
	authRepo := repository.NewAuthRepository(db.DB)

	// Initialize services
	emitter := services.NewActivityService(activityRepo, notificationRepo, appLogger)
	authService := services.NewAuthService(userRepo, authRepo, cfg.JWT, appLogger)
	userService := services.NewUserService(userRepo, appLogger)
	taskService := services.NewTaskService(taskRepo, categoryRepo, userRepo, emitter, appLogger)
	categoryService := services.NewCategoryService(categoryRepo, emitter, appLogger)
	commentService := services.NewCommentService(commentRepo, taskRepo, appLogger)
	dashboardService := services.NewDashboardService(taskRepo, appLogger)
	messagingService := services.NewMessagingService(conversationRepo, chatRepo, userRepo, appLogger)
	notificationService := services.NewNotificationService(notificationRepo, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	userHandler := httpHandlers.NewUserHandler(userService, appLogger)
	taskHandler := httpHandlers.NewTaskHandler(taskService, commentService, appLogger)
	categoryHandler := httpHandlers.NewCategoryHandler(categoryService, appLogger)
	dashboardHandler := httpHandlers.NewDashboardHandler(dashboardService, emitter, notificationService, appLogger)
	messagingHandler := httpHandlers.NewMessagingHandler(messagingService, cfg.Chat, appLogger)
	wsHandler := ws.NewHandler(ws.NewHub(), messagingService, cfg.Chat, appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(routeHandlers{
		auth:      authHandler,
		user:      userHandler,
		task:      taskHandler,
		category:  categoryHandler,
		dashboard: dashboardHandler,
		messaging: messagingHandler,
		ws:        wsHandler,
	}, authService)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

type routeHandlers struct {
	auth      *httpHandlers.AuthHandler
	user      *httpHandlers.UserHandler
	task      *httpHandlers.TaskHandler
	category  *httpHandlers.CategoryHandler
	dashboard *httpHandlers.DashboardHandler
	messaging *httpHandlers.MessagingHandler
	ws        *ws.Handler
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware. Websocket routes are exempt: their connections
	// outlive any sane request deadline.
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/ws/")
		},
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(h routeHandlers, authService *services.AuthService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	auth := s.authMiddleware(authService)

	// Websocket routes. The global room resolves senders by frame username;
	// the private room requires an authenticated participant.
	s.echo.GET("/ws/chat", h.ws.HandleGlobalChat)
	s.echo.GET("/ws/conversations/:id", h.ws.HandlePrivateChat, auth)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/refresh", h.auth.RefreshToken)
	authGroup.POST("/logout", h.auth.Logout, auth)

	// User routes (authenticated)
	userGroup := v1.Group("/users", auth)
	userGroup.GET("/me", h.user.GetCurrentUser)

	// Task routes (authenticated)
	taskGroup := v1.Group("/tasks", auth)
	taskGroup.GET("", h.task.ListTasks)
	taskGroup.POST("", h.task.CreateTask)
	taskGroup.POST("/mark_completed", h.task.MarkCompleted)
	taskGroup.POST("/clear_completed", h.task.ClearCompleted)
	taskGroup.GET("/:id", h.task.GetTask)
	taskGroup.PUT("/:id", h.task.UpdateTask)
	taskGroup.DELETE("/:id", h.task.DeleteTask)
	taskGroup.GET("/:id/comments", h.task.ListComments)
	taskGroup.POST("/:id/comments", h.task.AddComment)

	// Comment routes (authenticated)
	commentGroup := v1.Group("/comments", auth)
	commentGroup.PUT("/:id", h.task.EditComment)
	commentGroup.DELETE("/:id", h.task.DeleteComment)

	// Category routes (authenticated)
	categoryGroup := v1.Group("/categories", auth)
	categoryGroup.GET("", h.category.ListCategories)
	categoryGroup.POST("", h.category.CreateCategory)
	categoryGroup.PUT("/:id", h.category.UpdateCategory)
	categoryGroup.DELETE("/:id", h.category.DeleteCategory)
	categoryGroup.POST("/:id/pin", h.category.PinCategory)
	categoryGroup.DELETE("/:id/pin", h.category.UnpinCategory)
	categoryGroup.POST("/:id/global", h.category.MakeGlobal)
	categoryGroup.DELETE("/:id/global", h.category.RevokeGlobal)

	// Dashboard, activity and notification routes (authenticated)
	v1.GET("/dashboard", h.dashboard.GetDashboard, auth)
	v1.GET("/activity", h.dashboard.GetActivity, auth)
	v1.GET("/notifications", h.dashboard.ListNotifications, auth)
	v1.POST("/notifications/read", h.dashboard.MarkNotificationsRead, auth)

	// Messaging routes (authenticated)
	conversationGroup := v1.Group("/conversations", auth)
	conversationGroup.GET("", h.messaging.Inbox)
	conversationGroup.POST("", h.messaging.StartConversation)
	conversationGroup.DELETE("/:id", h.messaging.DeleteConversation)
	conversationGroup.GET("/:id/messages", h.messaging.ListMessages)
	conversationGroup.POST("/:id/messages", h.messaging.SendMessage)

	v1.GET("/chat/messages", h.messaging.ChatHistory, auth)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// authMiddleware validates JWT tokens
func (s *Server) authMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				s.logger.Warn("Invalid token", "error", err, "ip", c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token subject")
			}

			// Set user information in context
			c.Set("user_id", userID)
			c.Set("username", claims.Username)
			c.Set("user_email", claims.Email)

			return next(c)
		}
	}
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	// Database health check
	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if ve, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": ve.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}
