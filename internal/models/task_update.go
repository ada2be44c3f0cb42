package models

import "time"

// TaskUpdate is a status report against a task. UpdateDate is the day the
// reported work happened; UploadedAt is when it was recorded and orders
// updates against each other.
type TaskUpdate struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	TaskID     uint64    `gorm:"not null;index" json:"task_id"`
	ReporterID uint64    `gorm:"not null" json:"reporter_id"`
	Status     string    `gorm:"type:varchar(50);not null" json:"status"`
	Note       string    `gorm:"type:text" json:"note"`
	UpdateDate time.Time `gorm:"not null" json:"update_date"`
	UploadedAt time.Time `gorm:"not null;index" json:"uploaded_at"`

	// Relations
	Reporter User `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
}
