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

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProject creates a new project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name        string         `json:"name" binding:"required"`
		Description string         `json:"description"`
		CustomerID  *uint64        `json:"customer_id"`
		StartDate   analytics.StrictDate `json:"start_date"`
		EndDate     analytics.StrictDate `json:"end_date"`
	}

	var req CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		CustomerID:  req.CustomerID,
		StartDate:   services.DateColumn(req.StartDate.Date),
		EndDate:     services.DateColumn(req.EndDate.Date),
		OwnerID:     userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project, true))
}

// ListProjects returns all projects the user is a member of
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.projectService.ListProjectsForUser(userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	projects := make([]dto.ProjectWithRoleDTO, len(memberships))
	for i, m := range memberships {
		projects[i] = dto.ToProjectWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
	})
}

// GetProject returns project details with members
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	member, _ := middleware.GetProjectMember(c)

	loaded, members, err := h.projectService.GetProjectWithMembers(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*loaded, members, member.Role))
}

// UpdateProject updates project details
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	type UpdateProjectRequest struct {
		Name          *string         `json:"name"`
		Description   *string         `json:"description"`
		CustomerID    *uint64         `json:"customer_id"`
		ClearCustomer bool            `json:"clear_customer"`
		StartDate     *analytics.StrictDate `json:"start_date"`
		EndDate       *analytics.StrictDate `json:"end_date"`
	}

	var req UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateProjectInput{
		Name:          req.Name,
		Description:   req.Description,
		CustomerID:    req.CustomerID,
		ClearCustomer: req.ClearCustomer,
	}
	if req.StartDate != nil {
		input.StartDate = services.DateColumn(req.StartDate.Date)
	}
	if req.EndDate != nil {
		input.EndDate = services.DateColumn(req.EndDate.Date)
	}

	updated, err := h.projectService.UpdateProject(project.ID, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated, true))
}

// DeleteProject deletes a project and everything in it
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, _ := middleware.GetProject(c)

	if err := h.projectService.DeleteProject(project.ID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// JoinProject allows a user to join via invite code
func (h *ProjectHandler) JoinProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.JoinProjectByInvite(userID, req.InviteCode)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully joined project",
		"project": dto.ToProjectDTO(*project, false),
	})
}

// RegenerateInviteCode generates a new invite code for the project
func (h *ProjectHandler) RegenerateInviteCode(c *gin.Context) {
	project, _ := middleware.GetProject(c)

	updated, err := h.projectService.RegenerateInviteCode(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated, true))
}

// RemoveMember removes a member from the project
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	actorID, _ := middleware.GetUserID(c)

	targetID, ok := parseUintParam(c, "user_id")
	if !ok {
		apierrors.InvalidFormat(c, "Invalid user ID")
		return
	}

	if err := h.projectService.RemoveMember(project.ID, actorID, targetID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidProjectName),
		errors.Is(err, services.ErrInvalidProjectDates),
		errors.Is(err, services.ErrCannotRemoveYourself):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrCustomerNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrProjectMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidInviteCode):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.Conflict(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
