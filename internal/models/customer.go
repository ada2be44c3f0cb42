package models

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	ContactEmail string         `gorm:"type:varchar(255)" json:"contact_email"`
	Phone        string         `gorm:"type:varchar(50)" json:"phone"`
	Address      string         `gorm:"type:text" json:"address"`
	CreatorID    uint64         `gorm:"index" json:"creator_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Projects []Project `gorm:"foreignKey:CustomerID" json:"projects,omitempty"`
}
