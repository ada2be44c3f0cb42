package repository

import (
	"github.com/yukikurage/project-progress-api/internal/database"
	"github.com/yukikurage/project-progress-api/internal/models"
	"gorm.io/gorm"
)

// GormMilestoneRepository is a GORM implementation of MilestoneRepository
type GormMilestoneRepository struct {
	db *gorm.DB
}

// NewMilestoneRepository creates a new MilestoneRepository
func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &GormMilestoneRepository{db: db}
}

func (r *GormMilestoneRepository) Create(milestone *models.Milestone) error {
	return r.db.Create(milestone).Error
}

func (r *GormMilestoneRepository) FindByID(id uint64) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := r.db.First(&milestone, id).Error; err != nil {
		return nil, err
	}
	return &milestone, nil
}

// ListByProject lists milestones by planned start, undated ones last
func (r *GormMilestoneRepository) ListByProject(projectID uint64) ([]models.Milestone, error) {
	milestones := []models.Milestone{}
	if err := r.db.Scopes(database.InProject(projectID)).
		Order("CASE WHEN planned_start IS NULL THEN 1 ELSE 0 END, planned_start ASC, id ASC").
		Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *GormMilestoneRepository) Update(milestone *models.Milestone) error {
	return r.db.Save(milestone).Error
}

// Delete soft deletes a milestone; its tasks fall back to the unassigned bucket
func (r *GormMilestoneRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("milestone_id = ?", id).
			Update("milestone_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Milestone{}, id).Error
	})
}
