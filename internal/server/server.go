package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"planner/internal/auth"
	"planner/internal/calendar"
	"planner/internal/storage/sqlstore"
)

// Server provides HTTP handlers for the task and calendar planner.
type Server struct {
	engine       *gin.Engine
	store        *sqlstore.Store
	sessions     *auth.Sessions
	logger       *slog.Logger
	secureCookie bool
	now          func() time.Time
}

// Options tunes request handling.
type Options struct {
	RequestTimeout time.Duration
	SecureCookie   bool
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlstore.Store, sessions *auth.Sessions, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))
	router.Use(requestTimeout(opts.RequestTimeout))

	srv := &Server{
		engine:       router,
		store:        store,
		sessions:     sessions,
		logger:       logger,
		secureCookie: opts.SecureCookie,
		now:          time.Now,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires the public auth routes and the session-protected app.
func (s *Server) registerRoutes() {
	s.engine.GET("/api/healthz", s.handleHealth)

	s.engine.GET("/login-signup", s.handleAuthForm)
	s.engine.POST("/login", s.handleLogin)
	s.engine.POST("/signup", s.handleSignup)
	s.engine.GET("/logout", s.handleLogout)

	app := s.engine.Group("", s.requireUser)
	{
		app.GET("/", s.handleIndex)
		app.GET("/dashboard", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/")
		})

		app.POST("/tasks", s.handleCalendarTasksByDate)
		app.POST("/add-tasks", s.handleAddCalendarTask)
		app.POST("/delete-task", s.handleDeleteCalendarTask)

		app.POST("/newlist", s.handleCreateList)
		app.POST("/delete", s.handleDeleteList)

		app.GET("/:listType", s.handleListTasks)
		app.POST("/:listType/post", s.handleCreateTask)
		app.POST("/:listType/delete", s.handleDeleteTask)
		app.POST("/:listType/complete", s.handleCompleteTask)
	}
}

// handleHealth reports readiness including database reachability.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.respondError(c, err, "database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestTimeout bounds every request, including its database round-trips.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// parseID converts a numeric form or JSON value into int64.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid identifier")
	}
	return id, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sqlstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sqlstore.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, sqlstore.ErrInvalid),
		errors.Is(err, sqlstore.ErrReservedList),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// logFailure records the failed request server-side.
func (s *Server) logFailure(c *gin.Context, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(c.Request.Context(), level, "request failed",
		slog.String("path", c.FullPath()),
		slog.Int("status", status),
		slog.String("error", err.Error()))
}

// respondError logs the error and returns a JSON payload. Server errors
// never expose the underlying message.
func (s *Server) respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	s.logFailure(c, status, err)
	if status >= http.StatusInternalServerError {
		message = "Server error"
	}
	c.JSON(status, gin.H{"error": message})
}

// respondText is respondError for form endpoints answering in plain text.
func (s *Server) respondText(c *gin.Context, err error, message string) {
	status := statusFor(err)
	s.logFailure(c, status, err)
	if status >= http.StatusInternalServerError {
		message = "Server error"
	}
	c.String(status, message)
}

// redirect sends the browser back to a page after a form post.
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
