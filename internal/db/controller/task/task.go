// Package task provides storage operations for tasks and their status flow.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anindta/task-management-project/internal/db/models"
)

var (
	// ErrTaskNotFound is returned when a task is not found.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskTitleEmpty is returned when a task is written without a title.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")
	// ErrInvalidStatus is returned for a status code outside the board columns.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrUnknownProject is returned when a task references a project that doesn't exist.
	ErrUnknownProject = errors.New("unknown project id")
	// ErrUnknownUser is returned when a task is assigned to a user that doesn't exist.
	ErrUnknownUser = errors.New("unknown user id")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Fields are the writable attributes of a task.
type Fields struct {
	Title          string
	Description    string
	Deadline       *time.Time
	Status         models.TaskStatus
	ProjectID      uint
	AssignedUserID *uint64
}

// Filter narrows List. Zero values don't filter.
type Filter struct {
	ProjectID      uint
	AssignedUserID uint64
}

// Get retrieves a task by its ID.
func Get(db *gorm.DB, id uint) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var t models.Task
	if err := withRelations(db).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}

		return nil, err
	}

	return &t, nil
}

// List returns the tasks matching f ordered by ID.
func List(db *gorm.DB, f Filter) ([]models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := withRelations(db).Model(&models.Task{})

	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}

	if f.AssignedUserID != 0 {
		q = q.Where("assigned_user_id = ?", f.AssignedUserID)
	}

	tasks := []models.Task{}
	if err := q.Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Create inserts a new task.
func Create(db *gorm.DB, f Fields) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := check(db, &f); err != nil {
		return nil, err
	}

	t := models.Task{
		Title:          f.Title,
		Description:    f.Description,
		Deadline:       f.Deadline,
		Status:         f.Status,
		ProjectID:      f.ProjectID,
		AssignedUserID: f.AssignedUserID,
	}

	if err := db.Create(&t).Error; err != nil {
		return nil, err
	}

	return Get(db, t.ID)
}

// Update overwrites all writable fields of a task. The completion note is kept.
func Update(db *gorm.DB, id uint, f Fields) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := check(db, &f); err != nil {
		return nil, err
	}

	t, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	t.Title = f.Title
	t.Description = f.Description
	t.Deadline = f.Deadline
	t.Status = f.Status
	t.ProjectID = f.ProjectID
	t.AssignedUserID = f.AssignedUserID

	if err = db.Omit(clause.Associations).Save(t).Error; err != nil {
		return nil, err
	}

	return Get(db, id)
}

// SetStatus moves a task to another board column.
func SetStatus(db *gorm.DB, id uint, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	t, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if err = db.Model(t).Omit(clause.Associations).Update("status", status).Error; err != nil {
		return nil, err
	}

	t.Status = status

	return t, nil
}

// Complete stores the completion note and moves the task to Done.
func Complete(db *gorm.DB, id uint, note string) (*models.Task, error) {
	t, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	err = db.Model(t).Omit(clause.Associations).Updates(map[string]any{
		"status":          models.TaskStatusDone,
		"completion_note": note,
	}).Error
	if err != nil {
		return nil, err
	}

	t.Status = models.TaskStatusDone
	t.CompletionNote = note

	return t, nil
}

// Delete removes a task.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// CountByStatus returns the number of tasks per status. Every status is present.
func CountByStatus(db *gorm.DB) (map[models.TaskStatus]int64, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []struct {
		Status models.TaskStatus
		N      int64
	}

	err := db.Model(&models.Task{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	out := make(map[models.TaskStatus]int64, len(models.AllTaskStatuses))
	for _, s := range models.AllTaskStatuses {
		out[s] = 0
	}

	for _, r := range rows {
		out[r.Status] = r.N
	}

	return out, nil
}

func check(db *gorm.DB, f *Fields) error {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !f.Status.Valid() {
		return ErrInvalidStatus
	}

	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", f.ProjectID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}

	if count == 0 {
		return ErrUnknownProject
	}

	if f.AssignedUserID == nil {
		return nil
	}

	if err := db.Model(&models.User{}).Where("id = ?", *f.AssignedUserID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}

	if count == 0 {
		return ErrUnknownUser
	}

	return nil
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Project").Preload("AssignedUser")
}
