package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-progress-api/internal/analytics"
	"github.com/yukikurage/project-progress-api/internal/metrics"
	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService loads project snapshots and runs the analytics engine over
// them. Results are never cached; every call reads fresh rows.
type ProgressService struct {
	taskRepo      repository.TaskRepository
	updateRepo    repository.TaskUpdateRepository
	milestoneRepo repository.MilestoneRepository
	logger        *zap.Logger
}

func NewProgressService(
	taskRepo repository.TaskRepository,
	updateRepo repository.TaskUpdateRepository,
	milestoneRepo repository.MilestoneRepository,
	logger *zap.Logger,
) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		taskRepo:      taskRepo,
		updateRepo:    updateRepo,
		milestoneRepo: milestoneRepo,
		logger:        logger,
	}
}

// Snapshot is the immutable input the engine works on.
type Snapshot struct {
	Tasks      []analytics.Task
	Updates    []analytics.TaskUpdate
	Milestones []analytics.Milestone
}

// LoadSnapshot reads every task and update of a project.
func (s *ProgressService) LoadSnapshot(projectID uint64, withMilestones bool) (*Snapshot, error) {
	tasks, err := s.taskRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	updates, err := s.updateRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task updates: %w", err)
	}

	snap := &Snapshot{
		Tasks:   ToAnalyticsTasks(tasks),
		Updates: ToAnalyticsUpdates(updates),
	}

	if withMilestones {
		milestones, err := s.milestoneRepo.ListByProject(projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load milestones: %w", err)
		}
		snap.Milestones = ToAnalyticsMilestones(milestones)
	}

	return snap, nil
}

// ProjectSummary computes the aggregate progress of a project as of today.
func (s *ProgressService) ProjectSummary(projectID uint64, today analytics.Date) (analytics.ProgressSummary, error) {
	start := time.Now()

	snap, err := s.LoadSnapshot(projectID, false)
	if err != nil {
		return analytics.ProgressSummary{}, err
	}

	summary := analytics.Summarize(snap.Tasks, snap.Updates, today)

	metrics.RecordProgressCompute("project", time.Since(start))
	metrics.SetDelayedTasks(projectID, summary.DelayedCount)
	s.logger.Debug("Computed project summary",
		zap.Uint64("project_id", projectID),
		zap.String("today", today.String()),
		zap.Int("total", summary.TotalCount),
		zap.Int("delayed", summary.DelayedCount),
	)

	return summary, nil
}

// TaskDelayInfos returns per-task delay information for every task of a project.
func (s *ProgressService) TaskDelayInfos(projectID uint64, today analytics.Date) ([]analytics.TaskDelayInfo, error) {
	start := time.Now()

	snap, err := s.LoadSnapshot(projectID, false)
	if err != nil {
		return nil, err
	}

	infos := analytics.DelayInfos(snap.Tasks, snap.Updates, today)

	metrics.RecordProgressCompute("delays", time.Since(start))
	return infos, nil
}

// TaskDelayInfo returns delay information for a single task.
func (s *ProgressService) TaskDelayInfo(taskID uint64, today analytics.Date) (analytics.TaskDelayInfo, error) {
	start := time.Now()

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return analytics.TaskDelayInfo{}, ErrTaskNotFound
		}
		return analytics.TaskDelayInfo{}, fmt.Errorf("failed to find task: %w", err)
	}

	updates, err := s.updateRepo.ListByTask(taskID)
	if err != nil {
		return analytics.TaskDelayInfo{}, fmt.Errorf("failed to load task updates: %w", err)
	}

	info := analytics.DelayInfoFor(ToAnalyticsTask(*task), ToAnalyticsUpdates(updates), today)

	metrics.RecordProgressCompute("task", time.Since(start))
	return info, nil
}

// MilestoneBreakdown groups a project's tasks by milestone and summarizes each bucket.
func (s *ProgressService) MilestoneBreakdown(projectID uint64, today analytics.Date) ([]analytics.GroupSummary, error) {
	start := time.Now()

	snap, err := s.LoadSnapshot(projectID, true)
	if err != nil {
		return nil, err
	}

	groups := analytics.GroupByMilestone(snap.Milestones, snap.Tasks)
	summaries := analytics.SummarizeGroups(groups, snap.Updates, today)

	metrics.RecordProgressCompute("milestones", time.Since(start))
	return summaries, nil
}

// Today is the reference date used when a caller does not pin one.
func Today() analytics.Date {
	return analytics.DateOf(time.Now())
}

// ToAnalyticsTask converts a stored task into the engine's view of it.
func ToAnalyticsTask(t models.Task) analytics.Task {
	return analytics.Task{
		ID:          t.ID,
		Name:        t.Name,
		EngineerID:  t.EngineerID,
		MilestoneID: t.MilestoneID,
		AssignDate:  storedDatePtr(t.AssignDate),
		DueDate:     storedDatePtr(t.DueDate),
		Active:      t.Active,
	}
}

func ToAnalyticsTasks(tasks []models.Task) []analytics.Task {
	out := make([]analytics.Task, len(tasks))
	for i, t := range tasks {
		out[i] = ToAnalyticsTask(t)
	}
	return out
}

func ToAnalyticsUpdates(updates []models.TaskUpdate) []analytics.TaskUpdate {
	out := make([]analytics.TaskUpdate, len(updates))
	for i, u := range updates {
		out[i] = analytics.TaskUpdate{
			ID:         u.ID,
			TaskID:     u.TaskID,
			Status:     u.Status,
			UpdateDate: storedDate(u.UpdateDate),
			UploadedAt: u.UploadedAt,
		}
	}
	return out
}

func ToAnalyticsMilestones(milestones []models.Milestone) []analytics.Milestone {
	out := make([]analytics.Milestone, len(milestones))
	for i, m := range milestones {
		out[i] = analytics.Milestone{
			ID:           m.ID,
			Name:         m.Name,
			Status:       m.Status,
			PlannedStart: storedDatePtr(m.PlannedStart),
			PlannedEnd:   storedDatePtr(m.PlannedEnd),
			Percentage:   m.Percentage,
		}
	}
	return out
}

// Date-only columns are written as UTC midnight; drivers may hand them back
// in the connection's location, so the calendar day is read in UTC.
func storedDate(t time.Time) analytics.Date {
	return analytics.DateOf(t.UTC())
}

func storedDatePtr(t *time.Time) analytics.Date {
	if t == nil {
		return analytics.Date{}
	}
	return storedDate(*t)
}

// DateColumn converts an engine date into the value stored in a date-only
// column. A missing date is stored as NULL.
func DateColumn(d analytics.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time()
	return &t
}
