// Package analytics computes task status, schedule delay and project
// progress from an in-memory snapshot of tasks and their status updates.
//
// Every function in this package is pure: it reads its arguments, owns no
// state between calls and never fails. Malformed records degrade to
// neutral values instead of aborting the computation.
package analytics

import "time"

// Task is the engine's view of a unit of project work.
type Task struct {
	ID          uint64  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	EngineerID  uint64  `json:"engineer_id" yaml:"engineer_id"`
	MilestoneID *uint64 `json:"milestone_id,omitempty" yaml:"milestone_id,omitempty"`
	AssignDate  Date    `json:"assign_date" yaml:"assign_date"`
	DueDate     Date    `json:"due_date" yaml:"due_date"`
	Active      bool    `json:"active" yaml:"active"`
}

// TaskUpdate is a status report against a task. UpdateDate is when the
// work happened; UploadedAt is when the report was recorded and is the
// only ordering key between updates.
type TaskUpdate struct {
	ID         uint64    `json:"id" yaml:"id"`
	TaskID     uint64    `json:"task_id" yaml:"task_id"`
	Status     string    `json:"status" yaml:"status"`
	UpdateDate Date      `json:"update_date" yaml:"update_date"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// Milestone is a named phase grouping tasks.
type Milestone struct {
	ID           uint64  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Status       string  `json:"status" yaml:"status"`
	PlannedStart Date    `json:"planned_start" yaml:"planned_start"`
	PlannedEnd   Date    `json:"planned_end" yaml:"planned_end"`
	Percentage   float64 `json:"percentage" yaml:"percentage"`
}
