package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
	balancedomain "github.com/smallbiznis/telcox/internal/balance/domain"
	invoicedomain "github.com/smallbiznis/telcox/internal/invoice/domain"
	plandomain "github.com/smallbiznis/telcox/internal/plan/domain"
	usagedomain "github.com/smallbiznis/telcox/internal/usage/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded postgres migrations. The shared *sql.DB
// stays open afterwards.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}

	return nil
}

// AutoMigrate creates the schema from the models for dialects without
// embedded SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&plandomain.Plan{},
		&accountdomain.Account{},
		&usagedomain.UsageRecord{},
		&invoicedomain.Invoice{},
		&balancedomain.Balance{},
	)
}
