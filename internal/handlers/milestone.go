package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-progress-api/internal/analytics"
	"github.com/yukikurage/project-progress-api/internal/dto"
	apierrors "github.com/yukikurage/project-progress-api/internal/errors"
	"github.com/yukikurage/project-progress-api/internal/middleware"
	"github.com/yukikurage/project-progress-api/internal/services"
)

type MilestoneHandler struct {
	milestoneService *services.MilestoneService
}

func NewMilestoneHandler(milestoneService *services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestoneService: milestoneService}
}

// CreateMilestone adds a planned phase to the project
func (h *MilestoneHandler) CreateMilestone(c *gin.Context) {
	project, _ := middleware.GetProject(c)

	type CreateMilestoneRequest struct {
		Name         string         `json:"name" binding:"required"`
		Status       string         `json:"status"`
		PlannedStart analytics.StrictDate `json:"planned_start"`
		PlannedEnd   analytics.StrictDate `json:"planned_end"`
		Percentage   float64        `json:"percentage"`
	}

	var req CreateMilestoneRequest
	if !bindJSON(c, &req) {
		return
	}

	milestone, err := h.milestoneService.CreateMilestone(services.CreateMilestoneInput{
		ProjectID:    project.ID,
		Name:         req.Name,
		Status:       req.Status,
		PlannedStart: services.DateColumn(req.PlannedStart.Date),
		PlannedEnd:   services.DateColumn(req.PlannedEnd.Date),
		Percentage:   req.Percentage,
	})
	if err != nil {
		respondMilestoneError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMilestoneDTO(*milestone))
}

// UpdateMilestone changes a milestone's plan
func (h *MilestoneHandler) UpdateMilestone(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	milestoneID, ok := parseUintParam(c, "milestone_id")
	if !ok {
		apierrors.InvalidFormat(c, "Invalid milestone ID")
		return
	}

	type UpdateMilestoneRequest struct {
		Name         *string         `json:"name"`
		Status       *string         `json:"status"`
		PlannedStart *analytics.StrictDate `json:"planned_start"`
		PlannedEnd   *analytics.StrictDate `json:"planned_end"`
		Percentage   *float64        `json:"percentage"`
	}

	var req UpdateMilestoneRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateMilestoneInput{
		Name:       req.Name,
		Status:     req.Status,
		Percentage: req.Percentage,
	}
	if req.PlannedStart != nil {
		input.PlannedStart = services.DateColumn(req.PlannedStart.Date)
	}
	if req.PlannedEnd != nil {
		input.PlannedEnd = services.DateColumn(req.PlannedEnd.Date)
	}

	milestone, err := h.milestoneService.UpdateMilestone(project.ID, milestoneID, input)
	if err != nil {
		respondMilestoneError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMilestoneDTO(*milestone))
}

// DeleteMilestone removes a milestone; its tasks become unassigned
func (h *MilestoneHandler) DeleteMilestone(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	milestoneID, ok := parseUintParam(c, "milestone_id")
	if !ok {
		apierrors.InvalidFormat(c, "Invalid milestone ID")
		return
	}

	if err := h.milestoneService.DeleteMilestone(project.ID, milestoneID); err != nil {
		respondMilestoneError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Milestone deleted successfully",
	})
}

func respondMilestoneError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidMilestoneName),
		errors.Is(err, services.ErrInvalidMilestoneSchedule),
		errors.Is(err, services.ErrInvalidPercentage):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrMilestoneNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
