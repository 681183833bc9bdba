// routes.go - Route registration helpers
package api

import (
	"fmt"
	"strings"

	"github.com/doc-organizer/backend/internal/llm"
	"github.com/doc-organizer/backend/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Batches BatchService
	Model   llm.Client
	Version string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Pages     PageHandler
	Assistant AssistantHandler
	Batch     BatchHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	modelName := ""
	if named, ok := deps.Model.(interface{ Model() string }); ok {
		modelName = named.Model()
	}

	return &Handlers{
		Health:    NewHealthHandler(deps.Version, modelName),
		Pages:     NewPageHandler(deps.Batches),
		Assistant: NewAssistantHandler(deps.Model),
		Batch:     NewBatchHandler(deps.Batches),
	}
}

// RegisterRoutes registers all routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Browser workflow
	e.GET("/", handlers.Pages.HandleIndex)
	e.POST("/upload", handlers.Pages.HandleUpload)
	e.POST("/reorder", handlers.Pages.HandleReorder)
	e.POST("/ask_ai", handlers.Assistant.HandleAskAI)

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	batchGroup := apiGroup.Group("/batches")
	batchGroup.GET("/:id", handlers.Batch.HandleGetBatch)
	batchGroup.GET("/:id/placements", handlers.Batch.HandleGetPlacements)
	batchGroup.GET("/:id/placements/msgpack", handlers.Batch.HandleGetPlacementsMsgpack)
	batchGroup.DELETE("/:id", handlers.Batch.HandleDeleteBatch)
}

// MiddlewareConfig tunes SetupMiddleware
type MiddlewareConfig struct {
	BodyLimit      string
	LogLevel       string
	RequestLogging bool
	EnableCORS     bool
	AllowOrigins   string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	e.HTTPErrorHandler = ErrorHandler
	e.Logger.SetLevel(logLevel(cfg.LogLevel))

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !cfg.RequestLogging || c.Request().URL.Path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.EnableCORS {
		origins := strings.Split(cfg.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 1 && origins[0] == "" {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}

// logLevel maps a configured level name onto echo's logger levels.
func logLevel(name string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// NewServer builds an Echo instance with renderer, middleware and routes.
func NewServer(deps *Dependencies, cfg MiddlewareConfig) (*echo.Echo, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	SetupMiddleware(e, cfg)
	RegisterRoutes(e, NewHandlers(deps))
	return e, nil
}
