package dto

import (
	"time"

	"github.com/yukikurage/project-progress-api/internal/analytics"
	"github.com/yukikurage/project-progress-api/internal/models"
)

// CustomerDTO represents a customer in API responses
type CustomerDTO struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InviteCode  string         `json:"invite_code,omitempty"`
	StartDate   analytics.Date `json:"start_date"`
	EndDate     analytics.Date `json:"end_date"`
	Customer    *CustomerDTO   `json:"customer,omitempty"`
}

// ProjectWithRoleDTO represents a project with the user's role
type ProjectWithRoleDTO struct {
	ProjectDTO
	Role models.ProjectRole `json:"role"`
}

// ProjectMemberDTO represents a member in a project
type ProjectMemberDTO struct {
	User     UserDTO            `json:"user"`
	Role     models.ProjectRole `json:"role"`
	JoinedAt time.Time          `json:"joined_at"`
}

// ProjectDetailDTO represents detailed project information
type ProjectDetailDTO struct {
	ProjectDTO
	Members  []ProjectMemberDTO `json:"members"`
	YourRole models.ProjectRole `json:"your_role"`
}

// MilestoneDTO represents a milestone in API responses
type MilestoneDTO struct {
	ID           uint64         `json:"id"`
	ProjectID    uint64         `json:"project_id"`
	Name         string         `json:"name"`
	Status       string         `json:"status"`
	PlannedStart analytics.Date `json:"planned_start"`
	PlannedEnd   analytics.Date `json:"planned_end"`
	Percentage   float64        `json:"percentage"`
}

// ToCustomerDTO converts a Customer model to CustomerDTO
func ToCustomerDTO(customer models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:           customer.ID,
		Name:         customer.Name,
		ContactEmail: customer.ContactEmail,
		Phone:        customer.Phone,
		Address:      customer.Address,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project, includeInviteCode bool) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		StartDate:   DateOf(project.StartDate),
		EndDate:     DateOf(project.EndDate),
	}
	if includeInviteCode {
		dto.InviteCode = project.InviteCode
	}
	if project.Customer != nil {
		customer := ToCustomerDTO(*project.Customer)
		dto.Customer = &customer
	}
	return dto
}

// ToProjectWithRoleDTO converts a project membership to DTO with role
func ToProjectWithRoleDTO(member models.ProjectMember) ProjectWithRoleDTO {
	return ProjectWithRoleDTO{
		ProjectDTO: ToProjectDTO(member.Project, false),
		Role:       member.Role,
	}
}

// ToProjectMemberDTO converts a member to DTO
func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	return ProjectMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToProjectDetailDTO converts a project with members to detailed DTO.
// The invite code is only shown to owners.
func ToProjectDetailDTO(project models.Project, members []models.ProjectMember, yourRole models.ProjectRole) ProjectDetailDTO {
	memberDTOs := make([]ProjectMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToProjectMemberDTO(member)
	}

	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project, yourRole == models.RoleOwner),
		Members:    memberDTOs,
		YourRole:   yourRole,
	}
}

// ToMilestoneDTO converts a Milestone model to MilestoneDTO
func ToMilestoneDTO(milestone models.Milestone) MilestoneDTO {
	return MilestoneDTO{
		ID:           milestone.ID,
		ProjectID:    milestone.ProjectID,
		Name:         milestone.Name,
		Status:       milestone.Status,
		PlannedStart: DateOf(milestone.PlannedStart),
		PlannedEnd:   DateOf(milestone.PlannedEnd),
		Percentage:   milestone.Percentage,
	}
}

// ToMilestoneDTOs converts a slice of milestones
func ToMilestoneDTOs(milestones []models.Milestone) []MilestoneDTO {
	out := make([]MilestoneDTO, len(milestones))
	for i, m := range milestones {
		out[i] = ToMilestoneDTO(m)
	}
	return out
}

// DateOf renders a date-only column, stored as UTC midnight
func DateOf(t *time.Time) analytics.Date {
	if t == nil {
		return analytics.Date{}
	}
	return analytics.DateOf(t.UTC())
}
