package models

import (
	"time"

	"gorm.io/gorm"
)

type Milestone struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	ProjectID    uint64         `gorm:"not null;index" json:"project_id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Status       string         `gorm:"type:varchar(50)" json:"status"`
	PlannedStart *time.Time     `json:"planned_start"`
	PlannedEnd   *time.Time     `json:"planned_end"`
	Percentage   float64        `json:"percentage"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
