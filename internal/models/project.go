package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CustomerID  *uint64        `gorm:"index" json:"customer_id"`
	InviteCode  string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Customer   *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Members    []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Milestones []Milestone     `gorm:"foreignKey:ProjectID" json:"milestones,omitempty"`
	Tasks      []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
