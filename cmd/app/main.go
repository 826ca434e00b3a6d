package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tradedesk/configs"
	"tradedesk/internal/adapter"
	"tradedesk/internal/adapter/telegram"
	"tradedesk/internal/auth"
	"tradedesk/internal/database"
	delivery "tradedesk/internal/delivery/http"
	"tradedesk/internal/infra"
	custommiddleware "tradedesk/internal/middleware"
	"tradedesk/internal/realtime"
	"tradedesk/internal/repository"
	"tradedesk/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()

	logger, err := infra.NewLogger(cfg.Server.LogLevel, cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	ctx := context.Background()

	// Database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	walletRepo := repository.NewWalletRepository(db)

	// Token service
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	// Realtime fan-out
	hub := realtime.NewHub(logger, cfg.Realtime.SendBufferSize)
	prices := realtime.NewPriceCache()

	// Ledger
	ledger := usecase.NewLedgerService(logger, orderRepo, tradeRepo, walletRepo, hub)
	if cfg.Telegram.BotToken != "" {
		ledger.SetNotifier(telegram.NewNotificationService(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
		logger.Info("telegram trade notifications enabled")
	}

	// Ingest relay and upstream feed
	relayCtx, relayCancel := context.WithCancel(ctx)
	defer relayCancel()

	relay := realtime.NewRelay(logger, ledger, hub, prices, cfg.Realtime.IngestWorkers)
	go relay.Start(relayCtx)

	if cfg.Realtime.FeedURL != "" {
		feed := adapter.NewFeedClient(cfg.Realtime.FeedURL, relay, logger)
		go feed.Run(relayCtx)
	} else {
		logger.Warn("FEED_URL not set, ingest relay runs without an upstream feed")
	}

	// Mark-to-market scheduler
	scheduler := infra.NewScheduler(ledger, prices, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:    delivery.NewAuthHandler(userRepo, walletRepo, tokens, cfg.Trading.DefaultInitialCapital),
		TradingHandler: delivery.NewTradingHandler(ledger, orderRepo, tradeRepo, prices),
		WSHandler:      delivery.NewWSHandler(hub, tokens, logger),
		Gate:           custommiddleware.Gate(tokens, logger),
		Hub:            hub,
		DBPinger:       db,
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("tradedesk starting",
		zap.String("addr", addr),
		zap.String("env", cfg.Server.Env),
		zap.Int("ingest_workers", cfg.Realtime.IngestWorkers),
		zap.Int("ws_send_buffer", cfg.Realtime.SendBufferSize))

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	relayCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}
