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

	"arbor/internal/auth"
	"arbor/internal/config"
	"arbor/internal/domain/repositories"
	socialRepo "arbor/internal/domain/repositories/social"
	"arbor/internal/handler"
	"arbor/internal/middleware"
	"arbor/internal/repository/memory"
	"arbor/internal/repository/postgres"
	postgresSocial "arbor/internal/repository/postgres/social"
	"arbor/internal/service/sanitizer"
	serviceSocial "arbor/internal/service/social"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreDriver,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// Storage: postgres in every real deployment, memory for local demos
	var (
		repos     *socialRepo.Repositories
		txManager repositories.TransactionManager
		store     handler.Pinger
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		memStore := memory.NewStore()
		repos = memory.NewRepositories(memStore)
		txManager = memory.NewTransactionManager(memStore)
		logger.Warn("using in-memory store; data is lost on restart")

	default:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		logger.Info("database connected",
			"max_conns", cfg.DBMaxConns,
			"min_conns", cfg.DBMinConns,
		)

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.Migrate(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to migrate schema: %v", err)
		}

		repos = postgresSocial.NewRepositories(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		})
		txManager = postgres.NewTransactionManager(pool, logger)
		store = pool
	}

	services := serviceSocial.SetupServices(repos, txManager, logger)
	logger.Info("services initialized")

	// Identity: JWKS-verified bearer tokens, or the X-User-ID header in dev
	var resolve middleware.IdentityResolver
	if cfg.DevUserHeader {
		resolve = middleware.DevUser()
		logger.Warn("DEV AUTH: trusting " + middleware.DevUserHeader + " header (NEVER use in production!)")
	} else {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		resolve = middleware.BearerToken(jwtVerifier)
	}

	mux := handler.NewRouter(services, sanitizer.NewHTMLSanitizer(), store, logger)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLogger → Auth → Routes
	var h http.Handler = mux
	h = middleware.AuthMiddleware(resolve, logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.DevUserHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}

	logger.Info("server stopped")
}
