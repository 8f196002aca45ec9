package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	identityapp "github.com/tims/backend/internal/application/identity"
	inventoryapp "github.com/tims/backend/internal/application/inventory"
	partnerapp "github.com/tims/backend/internal/application/partner"
	"github.com/tims/backend/internal/infrastructure/auth"
	"github.com/tims/backend/internal/infrastructure/config"
	"github.com/tims/backend/internal/infrastructure/logger"
	"github.com/tims/backend/internal/infrastructure/persistence"
)

func main() {
	var (
		opts Options
		seed uint64
	)
	flag.StringVar(&opts.AdminUsername, "admin", "admin", "Admin username to create if missing")
	flag.StringVar(&opts.AdminPassword, "admin-password", "admin123", "Password for a newly created admin")
	flag.IntVar(&opts.Suppliers, "suppliers", 8, "Number of suppliers to generate")
	flag.IntVar(&opts.Items, "items", 60, "Number of inventory items to generate")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	db, err := persistence.NewDatabase(&cfg.Database, log, "warn")
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}

	repos := persistence.NewRepositories(db.DB)
	seeder := NewSeeder(
		seed,
		repos.Users,
		identityapp.NewAuthService(repos.Users, auth.NewJWTService(cfg.JWT), log),
		inventoryapp.NewInventoryService(repos.Items, repos.Transactions, repos.Scope, log),
		partnerapp.NewSupplierService(repos.Suppliers, repos.Orders, repos.Items, repos.Scope, log),
		log,
	)

	if _, err := seeder.Run(context.Background(), opts); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}
