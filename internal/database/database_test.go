package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-progress-api/internal/config"
	"github.com/yukikurage/project-progress-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAddIndexes_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models...))

	require.NoError(t, AddIndexes(db, zap.NewNop()))
	require.NoError(t, AddIndexes(db, zap.NewNop()))

	assert.True(t, db.Migrator().HasIndex(&models.TaskUpdate{}, "idx_task_updates_task_uploaded"))
	assert.True(t, db.Migrator().HasIndex(&models.Task{}, "idx_tasks_project_due"))
}

func TestDialector(t *testing.T) {
	d, err := dialector(&config.Config{DBDriver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = dialector(&config.Config{DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBName: "progress"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
