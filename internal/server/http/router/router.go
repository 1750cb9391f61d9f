package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/adbroker/internal/metrics"
	"github.com/polkiloo/adbroker/internal/server/http/handlers"
	"github.com/polkiloo/adbroker/internal/server/http/middleware"
)

const streamPath = "/api/notifications/stream"

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.MarketFacade, logger *slog.Logger, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.RequestMetrics(m))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{streamPath, "/metrics"})))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	walletHandler := handlers.NewWalletHandler(facade)
	reviewHandler := handlers.NewReviewHandler(facade)
	materialHandler := handlers.NewMaterialHandler(facade)
	messageHandler := handlers.NewMessageHandler(facade)
	streamHandler := handlers.NewStreamHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))

	authed.GET("/user/me", authHandler.Me)

	wallet := authed.Group("/user/wallet")
	wallet.GET("", walletHandler.Summary)
	wallet.POST("/deposit", walletHandler.Deposit)
	wallet.POST("/withdraw", walletHandler.Withdraw)
	wallet.GET("/transactions", walletHandler.Transactions)

	orders := authed.Group("/orders")
	orders.POST("", orderHandler.Place)
	orders.GET("", orderHandler.List)
	orders.GET("/open", orderHandler.Open)
	orders.GET("/stats", orderHandler.Stats)
	orders.GET("/:id", orderHandler.Get)
	orders.DELETE("/:id", orderHandler.Delete)
	orders.POST("/:id/apply", orderHandler.Apply)
	orders.GET("/:id/applications", orderHandler.Applications)
	orders.POST("/:id/accept/:applicationId", orderHandler.Accept)
	orders.POST("/:id/complete", orderHandler.Complete)
	orders.POST("/:id/confirm", orderHandler.Confirm)
	orders.POST("/:id/cancel", orderHandler.Cancel)
	orders.POST("/:id/materials", materialHandler.Attach)
	orders.GET("/:id/materials", materialHandler.List)

	reviews := authed.Group("/reviews")
	reviews.GET("/pending", reviewHandler.Pending)
	reviews.POST("/:id", reviewHandler.Submit)

	messages := authed.Group("/messages")
	messages.POST("", messageHandler.Send)
	messages.GET("", messageHandler.List)
	messages.GET("/conversations", messageHandler.Conversations)
	messages.GET("/conversations/:contactId", messageHandler.Thread)
	messages.GET("/unread-count", messageHandler.UnreadCount)
	messages.POST("/:id/read", messageHandler.MarkRead)
	messages.DELETE("/:id", messageHandler.Delete)

	authed.GET("/notifications/stream", streamHandler.Stream)
	authed.GET("/users/:id/online", streamHandler.Online)

	return engine
}
