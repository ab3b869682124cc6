package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"deepmirror/internal/auth"
	"deepmirror/internal/config"
	"deepmirror/internal/domain/repositories"
	llmRepo "deepmirror/internal/domain/repositories/llm"
	"deepmirror/internal/handler"
	"deepmirror/internal/metrics"
	"deepmirror/internal/middleware"
	"deepmirror/internal/repository/postgres"
	postgresLLM "deepmirror/internal/repository/postgres/llm"
	serviceLLM "deepmirror/internal/service/llm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger, closeLog, err := config.NewLogger(config.LogOptions{
		Dir:     cfg.LogDir,
		Prefix:  "server",
		Keep:    10,
		Level:   logLevel,
		JSON:    true,
		Console: os.Stdout,
	})
	if err != nil {
		log.Fatalf("Failed to create log file: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// JWT verification is optional: without Supabase every request is anonymous
	var jwtVerifier auth.Verifier
	if cfg.SupabaseJWKSURL != "" {
		v, err := auth.NewVerifier(cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	} else {
		logger.Warn("SUPABASE_URL not set - authentication disabled")
	}

	// The database only backs hosted conversations
	var conversationRepo llmRepo.ConversationRepository
	var txManager repositories.TransactionManager
	if cfg.SupabaseDBURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()
		logger.Info("database connected")

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		conversationRepo = postgresLLM.NewConversationRepository(repoConfig)
		txManager = postgres.NewTransactionManager(pool, logger)
	}

	provider, err := serviceLLM.SetupProvider(cfg, m, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM provider: %v", err)
	}

	llmServices, err := serviceLLM.SetupServices(provider, conversationRepo, txManager, cfg, m, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM services: %v", err)
	}

	routes := &handler.Routes{
		Health: handler.NewHealthHandler(provider.Model()),
		Career: handler.NewCareerHandler(llmServices.Career, logger),
		Chat:   handler.NewChatHandler(llmServices.Chat, cfg.SSEKeepAlive, logger),
	}
	if llmServices.Conversation != nil {
		routes.Conversation = handler.NewConversationHandler(llmServices.Conversation, logger)
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	routes.Register(mux)

	// Build middleware chain
	// Order: CORS → Recovery → Auth → Metrics → Routes
	// Metrics reads the matched pattern, so it wraps the mux directly.
	var h http.Handler = m.Middleware(mux)
	h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// /metrics sits outside auth and instrumentation
	root := http.NewServeMux()
	root.Handle("GET /metrics", m.Handler())
	root.Handle("/", h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler.Handler(root),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
