package database

import (
	"fmt"

	"github.com/yukikurage/project-progress-api/internal/config"
	"github.com/yukikurage/project-progress-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every table managed by AutoMigrate.
var Models = []any{
	&models.User{},
	&models.Customer{},
	&models.Project{},
	&models.ProjectMember{},
	&models.Milestone{},
	&models.Task{},
	&models.TaskUpdate{},
}

func dialector(cfg *config.Config) (gorm.Dialector, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return mysql.Open(dsn), nil
	}
}

func Connect(cfg *config.Config, log *zap.Logger) error {
	d, err := dialector(cfg)
	if err != nil {
		return fmt.Errorf("failed to build database dialector: %w", err)
	}

	DB, err = gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established", zap.String("driver", cfg.DBDriver))
	return nil
}

func Migrate(log *zap.Logger) error {
	log.Info("Running database migrations")
	if err := DB.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(DB, log); err != nil {
		return err
	}
	log.Info("Database migrations completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
