package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	ProjectID   uint64         `gorm:"not null;index" json:"project_id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	EngineerID  uint64         `gorm:"not null;index" json:"engineer_id"`
	MilestoneID *uint64        `gorm:"index" json:"milestone_id"`
	CreatorID   uint64         `gorm:"not null" json:"creator_id"`
	AssignDate  *time.Time     `json:"assign_date"`
	DueDate     *time.Time     `json:"due_date"`
	Active      bool           `gorm:"not null" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Engineer  User         `gorm:"foreignKey:EngineerID" json:"engineer,omitempty"`
	Milestone *Milestone   `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
	Updates   []TaskUpdate `gorm:"foreignKey:TaskID" json:"updates,omitempty"`
}
