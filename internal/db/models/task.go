package models

import "time"

// TaskStatus is the kanban column of a task.
type TaskStatus int

// Task status codes as sent on the wire.
const (
	TaskStatusToDo TaskStatus = iota
	TaskStatusInProgress
	TaskStatusReview
	TaskStatusDone
)

// AllTaskStatuses in board order.
var AllTaskStatuses = []TaskStatus{TaskStatusToDo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}

// Valid reports whether s is a known status code.
func (s TaskStatus) Valid() bool {
	return s >= TaskStatusToDo && s <= TaskStatusDone
}

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusToDo:
		return "To Do"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusReview:
		return "Review"
	case TaskStatusDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Task is a unit of work inside a project.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Description    string     `gorm:"size:2000" json:"description"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Status         TaskStatus `gorm:"not null;default:0;index" json:"status"`
	ProjectID      uint       `gorm:"not null;index" json:"projectId"`
	Project        Project    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	AssignedUserID *uint64    `gorm:"index" json:"assignedUserId,omitempty"`
	AssignedUser   *User      `gorm:"foreignKey:AssignedUserID;constraint:OnDelete:SET NULL" json:"-"`
	CompletionNote string     `gorm:"size:2000" json:"completionNote"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
