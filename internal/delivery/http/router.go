package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"tradedesk/internal/realtime"

	custommiddleware "tradedesk/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler    *AuthHandler
	TradingHandler *TradingHandler
	WSHandler      *WSHandler
	Gate           echo.MiddlewareFunc
	Hub            *realtime.Hub
	DBPinger       interface{ Ping(context.Context) error }
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/ws"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// The gate evaluates bearer credentials once per request; routes on
	// its allow-list stay unauthenticated-permitted.
	e.Use(config.Gate)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		dbStatus := "healthy"
		if err := config.DBPinger.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
		}

		return SuccessResponse(c, map[string]interface{}{
			"status":   "healthy",
			"service":  "tradedesk-api",
			"database": dbStatus,
		})
	})

	// Realtime subscribe handshake
	e.GET("/ws", config.WSHandler.Subscribe)

	api := e.Group("/api")

	// Auth routes (public + refresh)
	auth := api.Group("/auth")
	{
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/register", config.AuthHandler.Register)
		auth.POST("/logout", config.AuthHandler.Logout)
		auth.POST("/refresh", config.AuthHandler.Refresh)
	}

	// User routes (protected)
	user := api.Group("/user", custommiddleware.RequireAuth)
	{
		user.GET("/me", config.AuthHandler.GetMe)
		user.POST("/orders", config.TradingHandler.PlaceOrder)
		user.GET("/orders", config.TradingHandler.GetOrders)
		user.POST("/orders/:id/cancel", config.TradingHandler.CancelOrder)
		user.GET("/trades", config.TradingHandler.GetTrades)
		user.POST("/trades/:id/close", config.TradingHandler.CloseTrade)
		user.GET("/wallets/:type", config.TradingHandler.GetWallet)
	}

	// Admin routes (protected with Auth + Admin middleware)
	admin := api.Group("/admin", custommiddleware.RequireAuth, custommiddleware.RequireAdmin)
	{
		admin.GET("/sessions", func(c echo.Context) error {
			return SuccessResponse(c, map[string]interface{}{
				"live_sessions": config.Hub.SessionCount(),
			})
		})
	}
}
