package main

import (
	"context"
	"fmt"
	"log"

	"arbor/internal/config"
	"arbor/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	if cfg.IsProd() {
		log.Fatal("refusing to drop tables in production")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = conn.Close(ctx) }() // Error ignored: script exiting

	// Table prefix follows ENVIRONMENT unless TABLE_PREFIX is set
	if err := postgres.DropAll(ctx, conn, postgres.NewTableNames(cfg.TablePrefix)); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Printf("All tables dropped successfully (prefix: %q)\n", cfg.TablePrefix)
}
