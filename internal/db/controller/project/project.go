// Package project provides CRUD operations for projects.
package project

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/db/models"
)

var (
	// ErrProjectNotFound is returned when a project is not found.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectNameEmpty is returned when a project is written without a name.
	ErrProjectNameEmpty = errors.New("project name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a project by its ID.
func Get(db *gorm.DB, id uint) (*models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Project
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}

		return nil, err
	}

	return &p, nil
}

// List returns all projects ordered by ID.
func List(db *gorm.DB) ([]models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	projects := []models.Project{}
	if err := db.Order("id").Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

// Count returns the number of projects.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	if err := db.Model(&models.Project{}).Count(&n).Error; err != nil {
		return 0, err
	}

	return n, nil
}

// Create inserts a new project.
func Create(db *gorm.DB, name, description string) (*models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	p := models.Project{Name: strings.TrimSpace(name), Description: description}
	if p.Name == "" {
		return nil, ErrProjectNameEmpty
	}

	if err := db.Create(&p).Error; err != nil {
		return nil, err
	}

	return &p, nil
}

// Update overwrites name and description of a project.
func Update(db *gorm.DB, id uint, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrProjectNameEmpty
	}

	p, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	p.Name = name
	p.Description = description

	if err = db.Save(p).Error; err != nil {
		return nil, err
	}

	return p, nil
}

// Delete removes a project and its tasks.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("failed to delete tasks of project: %w", err)
		}

		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}

		return nil
	})
}
