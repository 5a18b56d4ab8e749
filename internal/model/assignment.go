package model

import "time"

// Assignment records that a task is assigned to a person on a calendar
// day. At most one assignment exists per (task, date); the date carries
// no time-of-day component.
type Assignment struct {
	ID          int64      `json:"id"`
	TaskID      int64      `json:"task_id"`
	PersonID    int64      `json:"person_id"`
	Date        time.Time  `json:"date"`
	Completed   bool       `json:"completed"`
	CompletedBy *int64     `json:"completed_by"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
