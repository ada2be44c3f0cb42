package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/yukikurage/project-progress-api/internal/analytics"
	"github.com/yukikurage/project-progress-api/internal/metrics"
	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/repository"
	"gorm.io/gorm"
)

// ExportRow is one task line of a project export.
type ExportRow struct {
	TaskID       uint64 `json:"task_id"`
	TaskName     string `json:"task_name"`
	Milestone    string `json:"milestone"`
	Engineer     string `json:"engineer"`
	AssignDate   string `json:"assign_date"`
	DueDate      string `json:"due_date"`
	Active       bool   `json:"active"`
	LatestStatus string `json:"latest_status"`
	LastUpdated  string `json:"last_updated"`
	IsDelayed    bool   `json:"is_delayed"`
	DelayDays    int    `json:"delay_days"`
}

// Report is the input of the document export: project header, rows and
// summaries. Rendering it to a document happens outside this service.
type Report struct {
	ProjectID   uint64                    `json:"project_id"`
	ProjectName string                    `json:"project_name"`
	Customer    string                    `json:"customer,omitempty"`
	GeneratedOn analytics.Date            `json:"generated_on"`
	Summary     analytics.ProgressSummary `json:"summary"`
	Milestones  []MilestoneReport         `json:"milestones"`
	Rows        []ExportRow               `json:"rows"`
}

type MilestoneReport struct {
	Name    string                    `json:"name"`
	Summary analytics.ProgressSummary `json:"summary"`
}

var exportHeader = table.Row{
	"Task ID", "Task", "Milestone", "Engineer", "Assigned", "Due",
	"Active", "Latest Status", "Last Updated", "Delayed", "Delay Days",
}

// ExportService builds tabular and document exports of a project.
type ExportService struct {
	projectRepo   repository.ProjectRepository
	taskRepo      repository.TaskRepository
	updateRepo    repository.TaskUpdateRepository
	milestoneRepo repository.MilestoneRepository
}

func NewExportService(
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	updateRepo repository.TaskUpdateRepository,
	milestoneRepo repository.MilestoneRepository,
) *ExportService {
	return &ExportService{
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		updateRepo:    updateRepo,
		milestoneRepo: milestoneRepo,
	}
}

// Rows returns one export row per task of the project, in task order.
func (s *ExportService) Rows(projectID uint64, today analytics.Date) ([]ExportRow, error) {
	tasks, updates, err := s.load(projectID)
	if err != nil {
		return nil, err
	}
	return buildRows(tasks, ToAnalyticsUpdates(updates), today), nil
}

// CSV renders the project's export rows as CSV.
func (s *ExportService) CSV(projectID uint64, today analytics.Date) (string, error) {
	start := time.Now()

	rows, err := s.Rows(projectID, today)
	if err != nil {
		return "", err
	}

	metrics.RecordProgressCompute("export", time.Since(start))
	return RenderCSV(rows), nil
}

// Report assembles the document export payload.
func (s *ExportService) Report(projectID uint64, today analytics.Date) (*Report, error) {
	start := time.Now()

	project, err := s.projectRepo.FindByID(projectID, "Customer")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	tasks, updates, err := s.load(projectID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestoneRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}

	engineUpdates := ToAnalyticsUpdates(updates)
	engineTasks := ToAnalyticsTasks(tasks)

	report := &Report{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		GeneratedOn: today,
		Summary:     analytics.Summarize(engineTasks, engineUpdates, today),
		Milestones:  []MilestoneReport{},
		Rows:        buildRows(tasks, engineUpdates, today),
	}
	if project.Customer != nil {
		report.Customer = project.Customer.Name
	}

	groups := analytics.GroupByMilestone(ToAnalyticsMilestones(milestones), engineTasks)
	for _, g := range analytics.SummarizeGroups(groups, engineUpdates, today) {
		report.Milestones = append(report.Milestones, MilestoneReport{Name: g.Name(), Summary: g.Summary})
	}

	metrics.RecordProgressCompute("report", time.Since(start))
	return report, nil
}

func (s *ExportService) load(projectID uint64) ([]models.Task, []models.TaskUpdate, error) {
	tasks, err := s.taskRepo.ListByProject(projectID, "Engineer", "Milestone")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	updates, err := s.updateRepo.ListByProject(projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load task updates: %w", err)
	}
	return tasks, updates, nil
}

func buildRows(tasks []models.Task, updates []analytics.TaskUpdate, today analytics.Date) []ExportRow {
	infos := analytics.DelayInfos(ToAnalyticsTasks(tasks), updates, today)

	rows := make([]ExportRow, len(tasks))
	for i, t := range tasks {
		info := infos[i]
		row := ExportRow{
			TaskID:       t.ID,
			TaskName:     t.Name,
			Milestone:    analytics.UnassignedGroupName,
			Engineer:     t.Engineer.DisplayName,
			AssignDate:   storedDatePtr(t.AssignDate).String(),
			DueDate:      storedDatePtr(t.DueDate).String(),
			Active:       t.Active,
			LatestStatus: info.LatestStatus,
			LastUpdated:  info.LastUpdatedDisplay,
			IsDelayed:    info.IsDelayed,
			DelayDays:    info.DelayDays,
		}
		if t.Milestone != nil {
			row.Milestone = t.Milestone.Name
		}
		if row.Engineer == "" {
			row.Engineer = t.Engineer.Username
		}
		rows[i] = row
	}
	return rows
}

// RenderCSV writes rows as CSV with a header line.
func RenderCSV(rows []ExportRow) string {
	tw := table.NewWriter()
	tw.AppendHeader(exportHeader)
	for _, r := range rows {
		tw.AppendRow(table.Row{
			r.TaskID, r.TaskName, r.Milestone, r.Engineer, r.AssignDate, r.DueDate,
			yesNo(r.Active), r.LatestStatus, r.LastUpdated, yesNo(r.IsDelayed), strconv.Itoa(r.DelayDays),
		})
	}
	return tw.RenderCSV()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
