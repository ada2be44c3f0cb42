package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-progress-api/internal/analytics"
	"github.com/yukikurage/project-progress-api/internal/constants"
	"github.com/yukikurage/project-progress-api/internal/dto"
	apierrors "github.com/yukikurage/project-progress-api/internal/errors"
	"github.com/yukikurage/project-progress-api/internal/middleware"
	"github.com/yukikurage/project-progress-api/internal/services"
	"github.com/yukikurage/project-progress-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks of a project.
// Filters: milestone_id, unassigned, engineer_id, active; sort=due orders by due date.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	project, _ := middleware.GetProject(c)

	milestoneID, ok := optionalUintQuery(c, "milestone_id")
	if !ok {
		apierrors.InvalidFormat(c, "Invalid milestone_id")
		return
	}
	engineerID, ok := optionalUintQuery(c, "engineer_id")
	if !ok {
		apierrors.InvalidFormat(c, "Invalid engineer_id")
		return
	}
	active, ok := optionalBoolQuery(c, "active")
	if !ok {
		apierrors.InvalidFormat(c, "Invalid active")
		return
	}
	unassigned, ok := optionalBoolQuery(c, "unassigned")
	if !ok {
		apierrors.InvalidFormat(c, "Invalid unassigned")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(services.ListTasksInput{
		ProjectID:   project.ID,
		MilestoneID: milestoneID,
		Unassigned:  unassigned != nil && *unassigned,
		EngineerID:  engineerID,
		Active:      active,
		SortByDue:   c.Query("sort") == "due",
		Page:        params.Page,
		PageSize:    params.Limit,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a new task in the project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Name        string         `json:"name" binding:"required"`
		Description string         `json:"description"`
		EngineerID  uint64         `json:"engineer_id" binding:"required"`
		MilestoneID *uint64        `json:"milestone_id"`
		AssignDate  analytics.StrictDate `json:"assign_date"`
		DueDate     analytics.StrictDate `json:"due_date"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	assignDate := req.AssignDate.Date
	if assignDate.IsZero() {
		assignDate = services.Today()
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ProjectID:   project.ID,
		Name:        req.Name,
		Description: req.Description,
		EngineerID:  req.EngineerID,
		MilestoneID: req.MilestoneID,
		AssignDate:  services.DateColumn(assignDate),
		DueDate:     services.DateColumn(req.DueDate.Date),
		CreatorID:   userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Name           *string         `json:"name"`
		Description    *string         `json:"description"`
		EngineerID     *uint64         `json:"engineer_id"`
		MilestoneID    *uint64         `json:"milestone_id"`
		ClearMilestone bool            `json:"clear_milestone"`
		AssignDate     *analytics.StrictDate `json:"assign_date"`
		DueDate        *analytics.StrictDate `json:"due_date"`
		ClearDueDate   bool            `json:"clear_due_date"`
		Active         *bool           `json:"active"`
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateTaskInput{
		Name:           req.Name,
		Description:    req.Description,
		EngineerID:     req.EngineerID,
		MilestoneID:    req.MilestoneID,
		ClearMilestone: req.ClearMilestone,
		ClearDueDate:   req.ClearDueDate,
		Active:         req.Active,
	}
	if req.AssignDate != nil {
		input.AssignDate = services.DateColumn(req.AssignDate.Date)
	}
	if req.DueDate != nil {
		input.DueDate = services.DateColumn(req.DueDate.Date)
	}

	updated, err := h.taskService.UpdateTask(task.ID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task and its status history
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, _ := middleware.GetTask(c)
	member, _ := middleware.GetProjectMember(c)
	userID, _ := middleware.GetUserID(c)

	if err := h.taskService.DeleteTask(task.ID, userID, member.Role); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// RecordUpdate submits a status report for a task.
// Clients may send an Idempotency-Key header to make retries safe.
func (h *TaskHandler) RecordUpdate(c *gin.Context) {
	task, _ := middleware.GetTask(c)
	userID, _ := middleware.GetUserID(c)

	type RecordUpdateRequest struct {
		Status     string         `json:"status" binding:"required"`
		Note       string         `json:"note"`
		UpdateDate analytics.StrictDate `json:"update_date"`
	}

	var req RecordUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	update, err := h.taskService.RecordUpdate(c.Request.Context(), services.RecordUpdateInput{
		TaskID:         task.ID,
		ReporterID:     userID,
		Status:         req.Status,
		Note:           req.Note,
		UpdateDate:     req.UpdateDate.Date,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(constants.HeaderIdempotencyKey)),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskUpdateDTO(*update))
}

// ListUpdates returns the task's status history, newest first
func (h *TaskHandler) ListUpdates(c *gin.Context) {
	task, _ := middleware.GetTask(c)

	updates, err := h.taskService.ListUpdates(task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updates": dto.ToTaskUpdateDTOs(updates),
	})
}

// DraftTasks asks the AI service to suggest tasks from a free-text description
func (h *TaskHandler) DraftTasks(c *gin.Context) {
	project, _ := middleware.GetProject(c)

	type DraftTasksRequest struct {
		Text        string  `json:"text" binding:"required"`
		MilestoneID *uint64 `json:"milestone_id"`
	}

	var req DraftTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.taskService.DraftTasks(c.Request.Context(), services.DraftTasksInput{
		ProjectID:   project.ID,
		MilestoneID: req.MilestoneID,
		Text:        req.Text,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrNameEmpty),
		errors.Is(err, services.ErrInvalidEngineer),
		errors.Is(err, services.ErrMilestoneNotInProject),
		errors.Is(err, services.ErrDueBeforeAssign),
		errors.Is(err, services.ErrStatusRequired),
		errors.Is(err, services.ErrUpdateDateRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrDuplicateUpdate):
		apierrors.Duplicate(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
