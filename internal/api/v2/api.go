// internal/api/v2/api.go
package api

import (
	"crypto/rand"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ankitsingh711/AI-analytics/internal/conf"
	"github.com/ankitsingh711/AI-analytics/internal/datastore"
	"github.com/ankitsingh711/AI-analytics/internal/errors"
	"github.com/ankitsingh711/AI-analytics/internal/ingest"
	"github.com/ankitsingh711/AI-analytics/internal/logging"
)

// Controller manages the API routes and handlers
type Controller struct {
	Echo           *echo.Echo
	Group          *echo.Group
	DS             datastore.Interface
	Settings       *conf.Settings
	Reconciler     *ingest.Reconciler
	logger         *log.Logger
	apiLogger      *slog.Logger   // Structured logger for API operations
	apiLoggerClose func() error   // Function to close the log file
	apiLevelVar    *slog.LevelVar // Dynamic level control
}

// New creates a new API controller, returning an error if initialization fails.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, logger *log.Logger) (*Controller, error) {
	return NewWithOptions(e, ds, settings, logger, true)
}

// NewWithOptions creates a new API controller with optional route initialization.
// Set initializeRoutes to false for testing to avoid registering middleware twice.
func NewWithOptions(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, logger *log.Logger, initializeRoutes bool) (*Controller, error) {
	if e == nil {
		return nil, fmt.Errorf("echo instance cannot be nil")
	}
	if ds == nil {
		return nil, fmt.Errorf("datastore cannot be nil")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}
	if logger == nil {
		logger = log.Default()
	}

	c := &Controller{
		Echo:        e,
		DS:          ds,
		Settings:    settings,
		Reconciler:  ingest.New(ds),
		logger:      logger,
		apiLevelVar: new(slog.LevelVar),
	}

	// Initialize structured logger for API operations
	c.apiLevelVar.Set(slog.LevelInfo)
	if settings.WebServer.Debug {
		c.apiLevelVar.Set(slog.LevelDebug)
	}
	apiLogger, closeFunc, err := logging.NewFileLogger("logs/api.log", "api", c.apiLevelVar)
	if err != nil {
		// Fall back to the service logger; a missing log file is not fatal
		logger.Printf("Failed to initialize API file logger: %v", err)
		c.apiLogger = logging.ForService("api")
		if c.apiLogger == nil {
			c.apiLogger = slog.Default()
		}
	} else {
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeFunc
	}

	if initializeRoutes {
		c.initRoutes()
	}

	return c, nil
}

// initRoutes registers middleware and all route groups.
func (c *Controller) initRoutes() {
	c.Echo.Use(middleware.Recover())
	// CORS is open for the dashboard frontend; the API carries no
	// credentials or auth surface.
	c.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))

	c.Group = c.Echo.Group("/api/v2")

	c.Group.GET("/health", c.GetHealth)

	c.initReportRoutes()
	c.initAnalyticsRoutes()
}

// GetHealth handles GET /api/v2/health
func (c *Controller) GetHealth(ctx echo.Context) error {
	if err := c.DS.Ping(); err != nil {
		return c.HandleError(ctx, err, "Database connection error", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Shutdown releases controller resources, closing the API log file.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Printf("Failed to close API log file: %v", err)
		}
	}
	c.Debug("API Controller shutting down")
}

// Error response structure
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	correlationID := generateCorrelationID()

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message // Use message as error if no error object is provided
	}

	// Server-side failures are reported generically; the detail stays in
	// the logs keyed by correlation ID.
	if code >= http.StatusInternalServerError {
		errorStr = "internal server error"
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// generateCorrelationID creates a unique identifier for error tracking using
// cryptographic randomness
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a default ID if crypto/rand fails
		return "ERR-RAND"
	}

	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError logs an error and sends a JSON error response with a
// correlation ID for tracking.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	ip := ctx.RealIP()

	c.logger.Printf("API Error [%s] from %s: %s: %v", errorResp.CorrelationID, ip, message, err)

	if c.apiLogger != nil {
		var errorStr string
		if err != nil {
			errorStr = err.Error()
		} else {
			errorStr = message
		}

		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", errorStr,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ip,
		)
	}

	return ctx.JSON(code, errorResp)
}

// errorStatus maps error categories to HTTP status codes per the API
// contract: validation failures are client errors, unknown identities are
// not found, everything else is a server error.
func errorStatus(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Debug logs debug messages when debug mode is enabled
func (c *Controller) Debug(format string, v ...any) {
	if c.Settings.WebServer.Debug {
		msg := fmt.Sprintf(format, v...)
		c.logger.Printf("[DEBUG] %s", msg)

		if c.apiLogger != nil {
			c.apiLogger.Debug(msg)
		}
	}
}
