package postgres

import (
	"context"
	"fmt"
	"time"

	"aspire-wishlist/internal/config"
	domainUser "aspire-wishlist/internal/domain/user"
	domainWishlist "aspire-wishlist/internal/domain/wishlist"
	"aspire-wishlist/internal/infrastructure/database/postgres/models"
	"aspire-wishlist/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

func NewDB(cfg *config.Config) (*DB, error) {
	var gormLogLevel gormLogger.LogLevel
	if cfg.Server.Environment == "production" {
		gormLogLevel = gormLogger.Warn
	} else {
		gormLogLevel = gormLogger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "pgx",
		DSN:        cfg.Database.DSN(),
	}), &gorm.Config{
		Logger:  gormLogger.Default.LogMode(gormLogLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	logger.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
		zap.Int("max_open_connections", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_connections", cfg.Database.MaxIdleConns),
	)

	return &DB{DB: db}, nil
}

// Migrate creates or updates the schema, including the cascading foreign keys.
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.DB.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("Database schema migrated")
	return nil
}

func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) Health(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DB) Users() domainUser.Repository {
	return NewUserRepository(d)
}

func (d *DB) VerificationTokens() domainUser.VerificationTokenRepository {
	return NewVerificationTokenRepository(d)
}

func (d *DB) PasswordResets() domainUser.PasswordResetRepository {
	return NewPasswordResetRepository(d)
}

func (d *DB) Wishlists() domainWishlist.Repository {
	return NewWishlistRepository(d)
}

func (d *DB) Items() domainWishlist.ItemRepository {
	return NewItemRepository(d)
}
