package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"carvalue/internal/config"
	"carvalue/internal/handler"
	"carvalue/internal/logging"
	"carvalue/internal/repository"
	"carvalue/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitLogger(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Sync()
	logger := logging.AppLogger

	logger.Info("Car Value Estimator",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Valuation history is optional
	var (
		history service.ValuationLogger
		reader  handler.HistoryReader
	)
	if cfg.PostgreSQL.Enabled {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer repo.Close()

		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare database schema", zap.Error(err))
		}
		history, reader = repo, repo
		logger.Info("Connected to PostgreSQL, valuation history enabled")
	} else {
		logger.Info("PostgreSQL not configured, valuation history disabled")
	}

	// Initialize services
	estimator, err := service.NewEstimator(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize valuation backend", zap.Error(err))
	}
	logger.Info("Valuation backend ready", zap.String("provider", estimator.Name()))

	valuations := service.NewValuationService(estimator, history, logger)

	sessions := repository.NewSessionStore(cfg.Chat.SessionTTL)
	conversations := service.NewConversationService(sessions, valuations, service.ConversationConfig{
		ThinkingDelay:   cfg.Chat.ThinkingDelay,
		DefaultDarkMode: cfg.Theme.DarkMode,
	}, logger)

	if cfg.Chat.AIExtraction {
		if pe, ok := estimator.(*service.PromptEstimator); ok {
			conversations.WithFieldFiller(service.NewAIFieldExtractor(pe.Generator(), logger))
			logger.Info("AI-assisted attribute extraction enabled")
		} else {
			logger.Warn("CHAT_AI_EXTRACTION needs an AI valuation provider, ignoring")
		}
	}

	// Initialize handlers
	valuationHandler := handler.NewValuationHandler(valuations, reader)
	chatHandler := handler.NewChatHandler(conversations, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), logging.GinMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if origins := splitList(cfg.Server.AllowedOrigins); len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "car-value-estimator",
			"provider":   estimator.Name(),
			"history":    reader != nil,
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	handler.RegisterRoutes(router, valuationHandler, chatHandler)

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, logger)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Starting server",
		zap.String("addr", addr),
		zap.String("api", fmt.Sprintf("http://localhost:%d/api/v1", cfg.Server.Port)),
	)

	g, gctx := errgroup.WithContext(ctx)

	// Drop idle chat sessions in the background
	g.Go(func() error {
		evictSessions(gctx, sessions, cfg.Chat.SessionTTL, logger)
		return nil
	})

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})

	// Wait for interrupt signal or a failed listener
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}

func evictSessions(ctx context.Context, sessions *repository.SessionStore, ttl time.Duration, logger *zap.Logger) {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Evict(); n > 0 {
				logger.Debug("evicted idle chat sessions", zap.Int("count", n), zap.Int("remaining", sessions.Len()))
			}
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
