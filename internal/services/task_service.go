package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-progress-api/internal/analytics"
	"github.com/yukikurage/project-progress-api/internal/constants"
	"github.com/yukikurage/project-progress-api/internal/metrics"
	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrNameRequired           = errors.New("name is required")
	ErrNameEmpty              = errors.New("name cannot be empty")
	ErrInvalidEngineer        = errors.New("engineer does not exist or is not a member of the project")
	ErrMilestoneNotInProject  = errors.New("milestone does not belong to the project")
	ErrDueBeforeAssign        = errors.New("due date cannot precede the assign date")
	ErrTaskPermissionDenied   = errors.New("only the task creator or a project owner can perform this action")
	ErrStatusRequired         = errors.New("status is required")
	ErrUpdateDateRequired     = errors.New("update date is required")
	ErrDuplicateUpdate        = errors.New("this update has already been recorded")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

const taskPreload = "Engineer"

// TaskService handles task business logic
type TaskService struct {
	taskRepo      repository.TaskRepository
	updateRepo    repository.TaskUpdateRepository
	projectRepo   repository.ProjectRepository
	milestoneRepo repository.MilestoneRepository
	aiService     *AIService
	publisher     EventPublisher
	deduper       *UpdateDeduper
	logger        *zap.Logger
	now           func() time.Time
}

// NewTaskService creates a new TaskService. publisher and deduper may be nil.
func NewTaskService(
	taskRepo repository.TaskRepository,
	updateRepo repository.TaskUpdateRepository,
	projectRepo repository.ProjectRepository,
	milestoneRepo repository.MilestoneRepository,
	aiService *AIService,
	publisher EventPublisher,
	deduper *UpdateDeduper,
	logger *zap.Logger,
) *TaskService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		taskRepo:      taskRepo,
		updateRepo:    updateRepo,
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		aiService:     aiService,
		publisher:     publisher,
		deduper:       deduper,
		logger:        logger,
		now:           time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID   uint64
	MilestoneID *uint64
	Unassigned  bool
	EngineerID  *uint64
	Active      *bool
	SortByDue   bool
	Page        int
	PageSize    int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	Name        string
	Description string
	EngineerID  uint64
	MilestoneID *uint64
	AssignDate  *time.Time
	DueDate     *time.Time
	CreatorID   uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Name           *string
	Description    *string
	EngineerID     *uint64
	MilestoneID    *uint64
	ClearMilestone bool
	AssignDate     *time.Time
	DueDate        *time.Time
	ClearDueDate   bool
	Active         *bool
}

// RecordUpdateInput is a status report submitted against a task
type RecordUpdateInput struct {
	TaskID         uint64
	ReporterID     uint64
	Status         string
	Note           string
	UpdateDate     analytics.Date
	IdempotencyKey string
}

// ListTasks returns the tasks of a project matching the filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		ProjectID:   input.ProjectID,
		MilestoneID: input.MilestoneID,
		Unassigned:  input.Unassigned,
		EngineerID:  input.EngineerID,
		Active:      input.Active,
		SortByDue:   input.SortByDue,
		Page:        input.Page,
		PageSize:    input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreload, "Milestone")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a new active task
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if input.AssignDate != nil && input.DueDate != nil && input.DueDate.Before(*input.AssignDate) {
		return nil, ErrDueBeforeAssign
	}
	if err := s.ensureEngineer(input.ProjectID, input.EngineerID); err != nil {
		return nil, err
	}
	if err := s.ensureMilestone(input.ProjectID, input.MilestoneID); err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:   input.ProjectID,
		Name:        name,
		Description: input.Description,
		EngineerID:  input.EngineerID,
		MilestoneID: input.MilestoneID,
		CreatorID:   input.CreatorID,
		AssignDate:  input.AssignDate,
		DueDate:     input.DueDate,
		Active:      true,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(task.ID)
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameEmpty
		}
		task.Name = name
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.EngineerID != nil {
		if err := s.ensureEngineer(task.ProjectID, *input.EngineerID); err != nil {
			return nil, err
		}
		task.EngineerID = *input.EngineerID
	}
	if input.ClearMilestone {
		task.MilestoneID = nil
	} else if input.MilestoneID != nil {
		if err := s.ensureMilestone(task.ProjectID, input.MilestoneID); err != nil {
			return nil, err
		}
		task.MilestoneID = input.MilestoneID
	}
	if input.AssignDate != nil {
		task.AssignDate = input.AssignDate
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if task.AssignDate != nil && task.DueDate != nil && task.DueDate.Before(*task.AssignDate) {
		return nil, ErrDueBeforeAssign
	}
	if input.Active != nil {
		task.Active = *input.Active
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(task.ID)
}

// DeleteTask deletes a task if the actor created it or owns the project
func (s *TaskService) DeleteTask(taskID, actorID uint64, actorRole models.ProjectRole) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if task.CreatorID != actorID && actorRole != models.RoleOwner {
		return ErrTaskPermissionDenied
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// RecordUpdate stores a status report. UploadedAt is always stamped by the
// server so that the latest report is the most recently recorded one.
func (s *TaskService) RecordUpdate(ctx context.Context, input RecordUpdateInput) (*models.TaskUpdate, error) {
	status := strings.TrimSpace(input.Status)
	if status == "" {
		return nil, ErrStatusRequired
	}
	if input.UpdateDate.IsZero() {
		return nil, ErrUpdateDateRequired
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !s.deduper.AcquireOnce(ctx, task.ID, input.IdempotencyKey) {
		return nil, ErrDuplicateUpdate
	}

	update := &models.TaskUpdate{
		TaskID:     task.ID,
		ReporterID: input.ReporterID,
		Status:     status,
		Note:       input.Note,
		UpdateDate: input.UpdateDate.Time(),
		UploadedAt: s.now(),
	}

	if err := s.updateRepo.Create(update); err != nil {
		s.deduper.Release(ctx, task.ID, input.IdempotencyKey)
		return nil, fmt.Errorf("failed to record task update: %w", err)
	}

	kind := analytics.ParseStatus(status)
	metrics.IncrementTaskUpdates(kind.Key())
	s.logger.Info("Task update recorded",
		zap.Uint64("task_id", task.ID),
		zap.Uint64("update_id", update.ID),
		zap.String("status", kind.Key()),
	)

	s.publishUpdateEvents(ctx, task, update)

	return update, nil
}

// publishUpdateEvents announces the update and, when the task is now late,
// its delay. Broker failures are logged and never fail the request.
func (s *TaskService) publishUpdateEvents(ctx context.Context, task *models.Task, update *models.TaskUpdate) {
	recorded := TaskUpdateRecordedPayload{
		ProjectID:  task.ProjectID,
		TaskID:     task.ID,
		UpdateID:   update.ID,
		Status:     update.Status,
		UpdateDate: storedDate(update.UpdateDate).String(),
		UploadedAt: update.UploadedAt,
	}
	if err := s.publisher.Publish(ctx, EventTaskUpdateRecorded, recorded); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event", EventTaskUpdateRecorded),
			zap.Uint64("task_id", task.ID),
			zap.Error(err),
		)
	}

	updates, err := s.updateRepo.ListByTask(task.ID)
	if err != nil {
		s.logger.Warn("Failed to load updates for delay check", zap.Uint64("task_id", task.ID), zap.Error(err))
		return
	}

	info := analytics.DelayInfoFor(ToAnalyticsTask(*task), ToAnalyticsUpdates(updates), analytics.DateOf(s.now()))
	if !info.IsDelayed {
		return
	}

	delayed := TaskDelayedPayload{
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		DelayDays: info.DelayDays,
		Status:    info.LatestStatus,
	}
	if err := s.publisher.Publish(ctx, EventTaskDelayed, delayed); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event", EventTaskDelayed),
			zap.Uint64("task_id", task.ID),
			zap.Error(err),
		)
	}
}

// ListUpdates returns a task's status history, newest first
func (s *TaskService) ListUpdates(taskID uint64) ([]models.TaskUpdate, error) {
	updates, err := s.updateRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task updates: %w", err)
	}
	return updates, nil
}

// DraftTasksInput represents input for AI task drafting
type DraftTasksInput struct {
	ProjectID   uint64
	MilestoneID *uint64
	Text        string
}

// DraftTasks uses AI to suggest tasks from free text. Nothing is persisted.
func (s *TaskService) DraftTasks(ctx context.Context, input DraftTasksInput) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	milestoneName := ""
	if input.MilestoneID != nil {
		milestone, err := s.milestoneRepo.FindByID(*input.MilestoneID)
		if err != nil || milestone.ProjectID != input.ProjectID {
			return nil, ErrMilestoneNotInProject
		}
		milestoneName = milestone.Name
	}

	aiTasks, err := s.aiService.DraftTasks(ctx, input.Text, milestoneName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	today := analytics.DateOf(s.now())
	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Name) == "" {
			continue
		}
		if aiTask.DueDate.Before(today) {
			aiTask.DueDate = analytics.Date{}
		}
		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// ensureEngineer verifies that the engineer is a member of the project
func (s *TaskService) ensureEngineer(projectID, engineerID uint64) error {
	if engineerID == 0 {
		return ErrInvalidEngineer
	}
	count, err := s.projectRepo.CountMembers(projectID, []uint64{engineerID})
	if err != nil {
		return fmt.Errorf("failed to verify engineer: %w", err)
	}
	if count == 0 {
		return ErrInvalidEngineer
	}
	return nil
}

// ensureMilestone verifies that the milestone, if any, belongs to the project
func (s *TaskService) ensureMilestone(projectID uint64, milestoneID *uint64) error {
	if milestoneID == nil {
		return nil
	}
	milestone, err := s.milestoneRepo.FindByID(*milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMilestoneNotInProject
		}
		return fmt.Errorf("failed to find milestone: %w", err)
	}
	if milestone.ProjectID != projectID {
		return ErrMilestoneNotInProject
	}
	return nil
}
