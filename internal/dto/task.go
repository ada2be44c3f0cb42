package dto

import (
	"time"

	"github.com/yukikurage/project-progress-api/internal/analytics"
	"github.com/yukikurage/project-progress-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64         `json:"id"`
	ProjectID   uint64         `json:"project_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	EngineerID  uint64         `json:"engineer_id"`
	MilestoneID *uint64        `json:"milestone_id"`
	CreatorID   uint64         `json:"creator_id"`
	AssignDate  analytics.Date `json:"assign_date"`
	DueDate     analytics.Date `json:"due_date"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Engineer    *UserDTO       `json:"engineer,omitempty"`
	Milestone   *MilestoneDTO  `json:"milestone,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// TaskUpdateDTO represents a status report in API responses
type TaskUpdateDTO struct {
	ID         uint64         `json:"id"`
	TaskID     uint64         `json:"task_id"`
	Status     string         `json:"status"`
	StatusKind string         `json:"status_kind"`
	Note       string         `json:"note,omitempty"`
	UpdateDate analytics.Date `json:"update_date"`
	UploadedAt time.Time      `json:"uploaded_at"`
	Reporter   *UserDTO       `json:"reporter,omitempty"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Name:        task.Name,
		Description: task.Description,
		EngineerID:  task.EngineerID,
		MilestoneID: task.MilestoneID,
		CreatorID:   task.CreatorID,
		AssignDate:  DateOf(task.AssignDate),
		DueDate:     DateOf(task.DueDate),
		Active:      task.Active,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include engineer if preloaded
	if task.Engineer.ID != 0 {
		engineer := ToUserDTO(task.Engineer)
		dto.Engineer = &engineer
	}

	// Include milestone if preloaded
	if task.Milestone != nil {
		milestone := ToMilestoneDTO(*task.Milestone)
		dto.Milestone = &milestone
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// ToTaskUpdateDTO converts a TaskUpdate model to TaskUpdateDTO
func ToTaskUpdateDTO(update models.TaskUpdate) TaskUpdateDTO {
	dto := TaskUpdateDTO{
		ID:         update.ID,
		TaskID:     update.TaskID,
		Status:     update.Status,
		StatusKind: analytics.ParseStatus(update.Status).Key(),
		Note:       update.Note,
		UpdateDate: analytics.DateOf(update.UpdateDate.UTC()),
		UploadedAt: update.UploadedAt,
	}
	if update.Reporter.ID != 0 {
		reporter := ToUserDTO(update.Reporter)
		dto.Reporter = &reporter
	}
	return dto
}

// ToTaskUpdateDTOs converts a slice of updates
func ToTaskUpdateDTOs(updates []models.TaskUpdate) []TaskUpdateDTO {
	out := make([]TaskUpdateDTO, len(updates))
	for i, u := range updates {
		out[i] = ToTaskUpdateDTO(u)
	}
	return out
}
