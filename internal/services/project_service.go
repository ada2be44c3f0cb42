package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/repository"
	"github.com/yukikurage/project-progress-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound            = errors.New("project not found")
	ErrInvalidProjectName         = errors.New("project name cannot be empty")
	ErrInvalidProjectDates        = errors.New("project end date cannot precede its start date")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyProjectMember       = errors.New("user is already a member of this project")
	ErrNotProjectMember           = errors.New("user is not a member of the project")
	ErrCannotRemoveYourself       = errors.New("cannot remove yourself from the project")
	ErrProjectMemberNotFound      = errors.New("project member not found")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo  repository.ProjectRepository
	customerRepo repository.CustomerRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, customerRepo repository.CustomerRepository) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		customerRepo: customerRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	CustomerID  *uint64
	StartDate   *time.Time
	EndDate     *time.Time
	OwnerID     uint64
}

// CreateProject creates a new project and makes the creator its owner.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrInvalidProjectDates
	}
	if err := s.ensureCustomer(input.CustomerID); err != nil {
		return nil, err
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		CustomerID:  input.CustomerID,
		InviteCode:  inviteCode,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}

	owner := &models.ProjectMember{
		UserID:   input.OwnerID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.projectRepo.CreateWithOwner(project, owner); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjectsForUser returns the projects the user belongs to.
func (s *ProjectService) ListProjectsForUser(userID uint64) ([]models.ProjectMember, error) {
	memberships, err := s.projectRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return memberships, nil
}

// GetProjectWithMembers returns a project and all of its members.
func (s *ProjectService) GetProjectWithMembers(projectID uint64) (*models.Project, []models.ProjectMember, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list project members: %w", err)
	}

	return project, members, nil
}

// GetProject returns a project with its customer.
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Customer")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// UpdateProjectInput holds the fields of a project that may change.
type UpdateProjectInput struct {
	Name          *string
	Description   *string
	CustomerID    *uint64
	ClearCustomer bool
	StartDate     *time.Time
	EndDate       *time.Time
}

// UpdateProject updates a project's details.
func (s *ProjectService) UpdateProject(projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.ClearCustomer {
		project.CustomerID = nil
	} else if input.CustomerID != nil {
		if err := s.ensureCustomer(input.CustomerID); err != nil {
			return nil, err
		}
		project.CustomerID = input.CustomerID
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if project.StartDate != nil && project.EndDate != nil && project.EndDate.Before(*project.StartDate) {
		return nil, ErrInvalidProjectDates
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project with its milestones, tasks and updates.
func (s *ProjectService) DeleteProject(projectID uint64) error {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// JoinProjectByInvite adds a user to a project via invite code.
func (s *ProjectService) JoinProjectByInvite(userID uint64, inviteCode string) (*models.Project, error) {
	project, err := s.projectRepo.FindByInviteCode(strings.TrimSpace(inviteCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find project by invite code: %w", err)
	}

	if _, err := s.projectRepo.FindMember(project.ID, userID); err == nil {
		return nil, ErrAlreadyProjectMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      models.RoleMember,
		JoinedAt:  time.Now(),
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member to project: %w", err)
	}

	return project, nil
}

// RegenerateInviteCode generates a new invite code for the project.
func (s *ProjectService) RegenerateInviteCode(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	project.InviteCode = code
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	return project, nil
}

// RemoveMember removes a member from the project.
func (s *ProjectService) RemoveMember(projectID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	if _, err := s.projectRepo.FindMember(projectID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectMemberNotFound
		}
		return fmt.Errorf("failed to find project member: %w", err)
	}

	if err := s.projectRepo.RemoveMember(projectID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// EnsureMember verifies that a user belongs to a project.
func (s *ProjectService) EnsureMember(projectID, userID uint64) (*models.ProjectMember, error) {
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotProjectMember
		}
		return nil, fmt.Errorf("failed to verify project membership: %w", err)
	}
	return member, nil
}

func (s *ProjectService) ensureCustomer(customerID *uint64) error {
	if customerID == nil {
		return nil
	}
	if _, err := s.customerRepo.FindByID(*customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to find customer: %w", err)
	}
	return nil
}
