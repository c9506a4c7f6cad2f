package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"todo-calendar/internal/auth"
	"todo-calendar/internal/ratelimit"
	"todo-calendar/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	identityKey     = "identity"
)

// CookieOptions controls how the session cookie is written.
type CookieOptions struct {
	Name   string
	Secure bool
	// Persistent sets Max-Age to the token TTL; otherwise the cookie lives for the browser session.
	Persistent bool
}

// Options carries the dependencies of Handler.
type Options struct {
	Users      service.UserService
	Todos      service.TodoService
	Exports    service.ExportService
	Issuer     *auth.Issuer
	Limiter    ratelimit.Limiter
	Logger     *logrus.Logger
	Cookie     CookieOptions
	CORSOrigin string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	todos      service.TodoService
	exports    service.ExportService
	issuer     *auth.Issuer
	limiter    ratelimit.Limiter
	logger     *logrus.Logger
	cookie     CookieOptions
	corsOrigin string
}

func NewHandler(opts Options) *Handler {
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Cookie.Name == "" {
		opts.Cookie.Name = "todo_session"
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	return &Handler{
		users:      opts.Users,
		todos:      opts.Todos,
		exports:    opts.Exports,
		issuer:     opts.Issuer,
		limiter:    opts.Limiter,
		logger:     opts.Logger,
		cookie:     opts.Cookie,
		corsOrigin: opts.CORSOrigin,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware(h.corsOrigin))

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.POST("/logout", h.logout)
		api.GET("/me", h.authed(h.me))

		api.POST("/todos", h.authed(h.createTodo))
		api.GET("/todos", h.authed(h.listTodos))
		api.GET("/todos/:id", h.authed(h.getTodo))
		api.PATCH("/todos/:id", h.authed(h.updateTodo))
		api.DELETE("/todos/:id", h.authed(h.deleteTodo))

		api.GET("/events", h.authed(h.listEvents))
		api.GET("/calendar.ics", h.authed(h.calendarFeed))

		api.POST("/exports", h.authed(h.createExport))
		api.GET("/exports", h.authed(h.listExports))
		api.DELETE("/exports", h.authed(h.deleteExports))

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			// cookies are only sent cross-origin to an explicit origin
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Header(requestIDHeader, reqID)

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		}
		if v, ok := c.Get(identityKey); ok {
			if id, ok := v.(auth.Identity); ok {
				fields["user_id"] = id.UserID
			}
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request completed")
		case status >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}
