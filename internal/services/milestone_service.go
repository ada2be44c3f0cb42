package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMilestoneNotFound        = errors.New("milestone not found")
	ErrInvalidMilestoneName     = errors.New("milestone name cannot be empty")
	ErrInvalidMilestoneSchedule = errors.New("milestone planned end cannot precede its planned start")
	ErrInvalidPercentage        = errors.New("percentage must be between 0 and 100")
)

// MilestoneService manages the planned phases of a project.
type MilestoneService struct {
	milestoneRepo repository.MilestoneRepository
}

func NewMilestoneService(milestoneRepo repository.MilestoneRepository) *MilestoneService {
	return &MilestoneService{milestoneRepo: milestoneRepo}
}

type CreateMilestoneInput struct {
	ProjectID    uint64
	Name         string
	Status       string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	Percentage   float64
}

func (s *MilestoneService) CreateMilestone(input CreateMilestoneInput) (*models.Milestone, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidMilestoneName
	}
	if err := validateSchedule(input.PlannedStart, input.PlannedEnd, input.Percentage); err != nil {
		return nil, err
	}

	milestone := &models.Milestone{
		ProjectID:    input.ProjectID,
		Name:         name,
		Status:       strings.TrimSpace(input.Status),
		PlannedStart: input.PlannedStart,
		PlannedEnd:   input.PlannedEnd,
		Percentage:   input.Percentage,
	}
	if err := s.milestoneRepo.Create(milestone); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}
	return milestone, nil
}

func (s *MilestoneService) ListMilestones(projectID uint64) ([]models.Milestone, error) {
	milestones, err := s.milestoneRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return milestones, nil
}

// GetMilestone returns the milestone only if it belongs to projectID.
func (s *MilestoneService) GetMilestone(projectID, milestoneID uint64) (*models.Milestone, error) {
	milestone, err := s.milestoneRepo.FindByID(milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("failed to find milestone: %w", err)
	}
	if milestone.ProjectID != projectID {
		return nil, ErrMilestoneNotFound
	}
	return milestone, nil
}

type UpdateMilestoneInput struct {
	Name         *string
	Status       *string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	Percentage   *float64
}

func (s *MilestoneService) UpdateMilestone(projectID, milestoneID uint64, input UpdateMilestoneInput) (*models.Milestone, error) {
	milestone, err := s.GetMilestone(projectID, milestoneID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidMilestoneName
		}
		milestone.Name = name
	}
	if input.Status != nil {
		milestone.Status = strings.TrimSpace(*input.Status)
	}
	if input.PlannedStart != nil {
		milestone.PlannedStart = input.PlannedStart
	}
	if input.PlannedEnd != nil {
		milestone.PlannedEnd = input.PlannedEnd
	}
	if input.Percentage != nil {
		milestone.Percentage = *input.Percentage
	}
	if err := validateSchedule(milestone.PlannedStart, milestone.PlannedEnd, milestone.Percentage); err != nil {
		return nil, err
	}

	if err := s.milestoneRepo.Update(milestone); err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}
	return milestone, nil
}

// DeleteMilestone removes a milestone; its tasks become unassigned.
func (s *MilestoneService) DeleteMilestone(projectID, milestoneID uint64) error {
	if _, err := s.GetMilestone(projectID, milestoneID); err != nil {
		return err
	}
	if err := s.milestoneRepo.Delete(milestoneID); err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}
	return nil
}

func validateSchedule(start, end *time.Time, percentage float64) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidMilestoneSchedule
	}
	if percentage < 0 || percentage > 100 {
		return ErrInvalidPercentage
	}
	return nil
}
