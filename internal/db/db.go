package db

import (
	"errors"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"glpidesk/internal/config"
)

// Connect opens a GORM database connection using APP_DATABASE_URL (PostgreSQL URL).
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
	// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

// Migrate auto-migrates the core tables.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&Tenant{}, &TenantUser{}, &Plan{}, &SystemConfig{})
}

// EnsureSystemConfig makes sure the singleton system-config row exists so
// admins can enable the payment provider without seeding the database by
// hand.
func EnsureSystemConfig(gdb *gorm.DB) (*SystemConfig, error) {
	var cfg SystemConfig
	if err := gdb.Limit(1).Find(&cfg).Error; err != nil {
		return nil, err
	}
	if cfg.ID != 0 {
		return &cfg, nil
	}
	if err := gdb.Create(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}
