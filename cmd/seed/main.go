package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"log"

	"arbor/internal/auth"
	"arbor/internal/config"
	"arbor/internal/repository/postgres"
	postgresSocial "arbor/internal/repository/postgres/social"
	"arbor/internal/seed"
	serviceSocial "arbor/internal/service/social"

	"github.com/joho/godotenv"
)

//go:embed fixture.yaml
var defaultFixture []byte

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	clearData := flag.Bool("clear-data", false, "Delete all rows (keep schema)")
	fixturePath := flag.String("fixture", "", "YAML fixture to seed (defaults to the built-in demo fixture)")
	withAuth := flag.Bool("with-auth", false, "Create matching identities through the auth admin API")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProd() && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, closeLog, err := config.NewLogger(cfg, "seed")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Load the fixture before touching the database so a bad file changes nothing
	var fixture *seed.Fixture
	if !*schemaOnly && !*clearData {
		if *fixturePath != "" {
			fixture, err = seed.LoadFile(*fixturePath)
		} else {
			fixture, err = seed.Load(bytes.NewReader(defaultFixture))
		}
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropAll(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := postgres.ClearAll(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	repos := postgresSocial.NewRepositories(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	})
	txManager := postgres.NewTransactionManager(pool, logger)
	services := serviceSocial.SetupServices(repos, txManager, logger)

	// Optionally mirror fixture users into the identity provider so they can log in
	var identity seed.IdentityFunc
	if *withAuth {
		if cfg.AuthAdminURL == "" || cfg.AuthServiceKey == "" {
			log.Fatalf("--with-auth requires AUTH_ADMIN_URL and AUTH_SERVICE_KEY")
		}
		admin := auth.NewAdminClient(cfg.AuthAdminURL, cfg.AuthServiceKey)
		identity = func(ctx context.Context, u seed.UserFixture) (string, error) {
			return admin.EnsureUser(ctx, u.Email, u.Password, u.Name)
		}
	}

	res, err := seed.NewSeeder(services, identity, logger).Apply(ctx, fixture)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("🎉 Seeding complete! (%d users, %d projects, %d branches, %d posts)",
		len(res.Users), len(res.Projects), len(res.Branches), len(res.Posts))
}
