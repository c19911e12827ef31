package database

import (
	"fmt"

	"github.com/lshigami/Kestrel/config"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabase opens the postgres connection used by the whole application.
// TranslateError is on so unique-constraint violations surface as
// gorm.ErrDuplicatedKey instead of driver-specific errors.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.Port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("host", cfg.Database.Host).Str("name", cfg.Database.Name).Msg("Database connected")
	return db, nil
}

// Migrate creates the schema, including the partial unique index that
// enforces at most one IN_PROGRESS attempt per (user, exam) at the storage
// layer. The application-level pre-check only covers the common case; this
// index closes the race between concurrent creates.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.TestSeries{},
		&model.Exam{},
		&model.Question{},
		&model.Purchase{},
		&model.Attempt{},
		&model.Answer{},
	)
	if err != nil {
		return err
	}

	// Partial unique index syntax is shared by postgres and sqlite.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_attempts_one_in_progress
		 ON attempts (user_id, exam_id)
		 WHERE status = 'IN_PROGRESS' AND deleted_at IS NULL`,
	).Error
}
