package database

import (
	"fmt"

	"github.com/yukikurage/project-progress-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the analytics queries rely on
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		model any
		name  string
		ddl   string
	}{
		// Latest-update resolution scans a task's updates by upload time
		{&models.TaskUpdate{}, "idx_task_updates_task_uploaded", "CREATE INDEX idx_task_updates_task_uploaded ON task_updates (task_id, uploaded_at)"},
		// Project snapshot loads
		{&models.Task{}, "idx_tasks_project_milestone", "CREATE INDEX idx_tasks_project_milestone ON tasks (project_id, milestone_id)"},
		{&models.Task{}, "idx_tasks_project_due", "CREATE INDEX idx_tasks_project_due ON tasks (project_id, due_date)"},
		{&models.ProjectMember{}, "idx_project_members_user", "CREATE INDEX idx_project_members_user ON project_members (user_id)"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		if err := db.Exec(idx.ddl).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", zap.String("index", idx.name))
	}

	return nil
}
