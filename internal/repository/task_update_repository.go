package repository

import (
	"github.com/yukikurage/project-progress-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskUpdateRepository is a GORM implementation of TaskUpdateRepository
type GormTaskUpdateRepository struct {
	db *gorm.DB
}

// NewTaskUpdateRepository creates a new TaskUpdateRepository
func NewTaskUpdateRepository(db *gorm.DB) TaskUpdateRepository {
	return &GormTaskUpdateRepository{db: db}
}

// Create records a new status update
func (r *GormTaskUpdateRepository) Create(update *models.TaskUpdate) error {
	return r.db.Create(update).Error
}

// ListByTask lists a task's updates, newest upload first
func (r *GormTaskUpdateRepository) ListByTask(taskID uint64) ([]models.TaskUpdate, error) {
	updates := []models.TaskUpdate{}
	if err := r.db.Preload("Reporter").
		Where("task_id = ?", taskID).
		Order("uploaded_at DESC, id DESC").
		Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

// ListByProject lists every update of every live task in a project.
// No ordering is applied; the analytics engine resolves "latest" itself.
func (r *GormTaskUpdateRepository) ListByProject(projectID uint64) ([]models.TaskUpdate, error) {
	updates := []models.TaskUpdate{}
	if err := r.db.
		Joins("JOIN tasks ON tasks.id = task_updates.task_id").
		Where("tasks.project_id = ? AND tasks.deleted_at IS NULL", projectID).
		Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}
