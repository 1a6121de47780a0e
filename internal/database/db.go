package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// uniqueViolation is the postgres SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// Store implements store.Store on postgres through gorm.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to postgres and migrates every collection table.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cannot access postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	err = db.AutoMigrate(
		&models.User{},
		&models.Source{},
		&models.Vendor{},
		&models.Batch{},
		&models.SortedPack{},
		&models.FiberPack{},
		&models.VendorShipment{},
		&models.AuditLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	// Page order is (date_received desc, id desc); the composite index keeps
	// cursor pagination off a full scan.
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_batches_page ON batches (date_received DESC, id DESC)").Error; err != nil {
		logger.Warn("batch page index not created", zap.Error(err))
	}

	logger.Info("postgres connected, migration complete")
	return &Store{db: db, logger: logger}, nil
}

// New wraps an already opened gorm handle without migrating.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return err
}

func ensureID(id *string) {
	if *id == "" {
		*id = store.NewID()
	}
}

var _ store.Store = (*Store)(nil)
