package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-progress-api/internal/analytics"
	apierrors "github.com/yukikurage/project-progress-api/internal/errors"
	"github.com/yukikurage/project-progress-api/internal/middleware"
	"github.com/yukikurage/project-progress-api/internal/services"
)

// ProgressHandler serves the analytics views of a project. Every endpoint
// accepts ?now=YYYY-MM-DD to evaluate delays as of a fixed day.
type ProgressHandler struct {
	progressService *services.ProgressService
	exportService   *services.ExportService
}

func NewProgressHandler(progressService *services.ProgressService, exportService *services.ExportService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		exportService:   exportService,
	}
}

type milestoneGroupResponse struct {
	Name      string                    `json:"name"`
	Milestone *analytics.Milestone      `json:"milestone"`
	TaskIDs   []uint64                  `json:"task_ids"`
	Summary   analytics.ProgressSummary `json:"summary"`
}

// ProjectSummary returns the aggregate progress of the project
func (h *ProgressHandler) ProjectSummary(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	today, ok := referenceDate(c)
	if !ok {
		apierrors.InvalidFormat(c, "now must be a YYYY-MM-DD date")
		return
	}

	summary, err := h.progressService.ProjectSummary(project.ID, today)
	if err != nil {
		respondProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project_id": project.ID,
		"as_of":      today,
		"summary":    summary,
	})
}

// ProjectDelays returns per-task delay information for the project
func (h *ProgressHandler) ProjectDelays(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	today, ok := referenceDate(c)
	if !ok {
		apierrors.InvalidFormat(c, "now must be a YYYY-MM-DD date")
		return
	}

	infos, err := h.progressService.TaskDelayInfos(project.ID, today)
	if err != nil {
		respondProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of": today,
		"tasks": infos,
	})
}

// MilestoneBreakdown returns the project's tasks grouped by milestone with a summary per group
func (h *ProgressHandler) MilestoneBreakdown(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	today, ok := referenceDate(c)
	if !ok {
		apierrors.InvalidFormat(c, "now must be a YYYY-MM-DD date")
		return
	}

	groups, err := h.progressService.MilestoneBreakdown(project.ID, today)
	if err != nil {
		respondProgressError(c, err)
		return
	}

	response := make([]milestoneGroupResponse, len(groups))
	for i, g := range groups {
		ids := make([]uint64, len(g.Tasks))
		for j, t := range g.Tasks {
			ids[j] = t.ID
		}
		response[i] = milestoneGroupResponse{
			Name:      g.Name(),
			Milestone: g.Milestone,
			TaskIDs:   ids,
			Summary:   g.Summary,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of":      today,
		"milestones": response,
	})
}

// TaskDelay returns delay information for a single task
func (h *ProgressHandler) TaskDelay(c *gin.Context) {
	task, _ := middleware.GetTask(c)
	today, ok := referenceDate(c)
	if !ok {
		apierrors.InvalidFormat(c, "now must be a YYYY-MM-DD date")
		return
	}

	info, err := h.progressService.TaskDelayInfo(task.ID, today)
	if err != nil {
		respondProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ExportCSV streams one CSV row per task
func (h *ProgressHandler) ExportCSV(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	today, ok := referenceDate(c)
	if !ok {
		apierrors.InvalidFormat(c, "now must be a YYYY-MM-DD date")
		return
	}

	csv, err := h.exportService.CSV(project.ID, today)
	if err != nil {
		respondProgressError(c, err)
		return
	}

	filename := fmt.Sprintf("project-%d-%s.csv", project.ID, today)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv+"\n"))
}

// Report returns the document export payload
func (h *ProgressHandler) Report(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	today, ok := referenceDate(c)
	if !ok {
		apierrors.InvalidFormat(c, "now must be a YYYY-MM-DD date")
		return
	}

	report, err := h.exportService.Report(project.ID, today)
	if err != nil {
		respondProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func respondProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to compute progress")
	}
}
