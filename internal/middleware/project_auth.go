package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-progress-api/internal/constants"
	"github.com/yukikurage/project-progress-api/internal/database"
	apierrors "github.com/yukikurage/project-progress-api/internal/errors"
	"github.com/yukikurage/project-progress-api/internal/models"
)

// RequireProjectAccess checks if the user is a member of the project in the :id path parameter
func RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.InvalidFormat(c, "Invalid project ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		var project models.Project
		if err := database.GetDB().Preload("Customer").First(&project, projectID).Error; err != nil {
			apierrors.NotFound(c, "Project not found")
			return
		}

		var member models.ProjectMember
		err = database.GetDB().Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking project existence
			apierrors.NotFound(c, "Project not found")
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Set(constants.ContextKeyMember, member)
		c.Next()
	}
}

// RequireProjectOwner checks if the user owns the project. Must run after RequireProjectAccess.
func RequireProjectOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetProjectMember(c)
		if !ok {
			apierrors.Forbidden(c, "Project access required")
			return
		}

		if member.Role != models.RoleOwner {
			apierrors.InsufficientPermissions(c, "Only project owners can perform this action")
			return
		}

		c.Next()
	}
}

// GetProject returns the project loaded by RequireProjectAccess
func GetProject(c *gin.Context) (models.Project, bool) {
	v, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return models.Project{}, false
	}
	project, ok := v.(models.Project)
	return project, ok
}

// GetProjectMember returns the caller's membership loaded by RequireProjectAccess or RequireTaskAccess
func GetProjectMember(c *gin.Context) (models.ProjectMember, bool) {
	v, exists := c.Get(constants.ContextKeyMember)
	if !exists {
		return models.ProjectMember{}, false
	}
	member, ok := v.(models.ProjectMember)
	return member, ok
}
