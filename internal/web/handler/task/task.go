// Package task provides handlers for tasks including the board status flow.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/auth"
	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/controller/task"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/web/handler"
)

// Path is the base path for tasks.
const Path = handler.RootPath + "tasks"

type (
	// Request is the body of create and update.
	Request struct {
		Title          string     `json:"title"          validate:"required,max=200"`
		Description    string     `json:"description"    validate:"max=2000"`
		Deadline       *time.Time `json:"deadline"`
		Status         int        `json:"status"         validate:"min=0,max=3"`
		ProjectID      uint       `json:"projectId"      validate:"required"`
		AssignedUserID *uint64    `json:"assignedUserId"`
	}

	// Ref is a short reference to a related entity.
	Ref struct {
		ID   uint64 `json:"id"`
		Name string `json:"name,omitempty"`
		// Username is set for user references.
		Username string `json:"username,omitempty"`
	}

	// Response is a task with its project and assignee.
	Response struct {
		models.Task
		Project      *Ref `json:"project,omitempty"`
		AssignedUser *Ref `json:"assignedUser,omitempty"`
	}
)

// Service provides operations for tasks.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, a *handler.Auth) error {
	if app == nil || cfg == nil || db == nil || a == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	app.Route(Path, func(router fiber.Router) {
		router.Use(a.Token())
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Get(handler.IDPath, s.Get)
		router.Put(handler.IDPath, s.Update)
		router.Delete(handler.IDPath, s.Delete)
		router.Put(handler.IDPath+"/status", s.SetStatus)
		router.Put(handler.IDPath+"/complete", s.Complete)
	})

	return nil
}

func toResponse(t *models.Task) Response {
	out := Response{Task: *t}

	if t.Project.ID != 0 {
		out.Project = &Ref{ID: uint64(t.Project.ID), Name: t.Project.Name}
	}

	if t.AssignedUser != nil {
		out.AssignedUser = &Ref{ID: t.AssignedUser.ID, Username: t.AssignedUser.Username}
	}

	return out
}

func (r *Request) fields() task.Fields {
	return task.Fields{
		Title:          r.Title,
		Description:    r.Description,
		Deadline:       r.Deadline,
		Status:         models.TaskStatus(r.Status),
		ProjectID:      r.ProjectID,
		AssignedUserID: r.AssignedUserID,
	}
}

// List returns tasks, optionally of one project (?projectId=) or assignee (?assignedUserId=).
func (s *Service) List(c *fiber.Ctx) error {
	projectID := c.QueryInt("projectId", 0)
	assignee := c.QueryInt("assignedUserId", 0)

	if projectID < 0 || assignee < 0 {
		return fmt.Errorf("%w: negative filter", auth.ErrValidation)
	}

	tasks, err := task.List(s.db.WithContext(c.UserContext()), task.Filter{
		ProjectID:      uint(projectID),
		AssignedUserID: uint64(assignee),
	})
	if err != nil {
		return err
	}

	out := make([]Response, 0, len(tasks))
	for i := range tasks {
		out = append(out, toResponse(&tasks[i]))
	}

	return c.JSON(out)
}

// Get returns one task.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	t, err := task.Get(s.db.WithContext(c.UserContext()), id)
	if err != nil {
		return err
	}

	return c.JSON(toResponse(t))
}

// Create adds a task.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(Request)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	t, err := task.Create(s.db.WithContext(c.UserContext()), req.fields())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toResponse(t))
}

// Update replaces the writable fields of a task.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	req := new(Request)
	if err = handler.ParseBody(c, req); err != nil {
		return err
	}

	t, err := task.Update(s.db.WithContext(c.UserContext()), id, req.fields())
	if err != nil {
		return err
	}

	return c.JSON(toResponse(t))
}

// Delete removes a task.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	if err = task.Delete(s.db.WithContext(c.UserContext()), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SetStatus moves a task. The body is a bare JSON integer, e.g. `2`.
func (s *Service) SetStatus(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	var status int
	if err = json.Unmarshal(c.Body(), &status); err != nil {
		return fmt.Errorf("%w: body must be a status code", auth.ErrValidation)
	}

	t, err := task.SetStatus(s.db.WithContext(c.UserContext()), id, models.TaskStatus(status))
	if err != nil {
		return err
	}

	return c.JSON(toResponse(t))
}

// Complete stores a completion note and moves the task to Done.
// The body is a bare JSON string, e.g. `"shipped"`.
func (s *Service) Complete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	var note string
	if err = json.Unmarshal(c.Body(), &note); err != nil {
		return fmt.Errorf("%w: body must be a JSON string", auth.ErrValidation)
	}

	t, err := task.Complete(s.db.WithContext(c.UserContext()), id, note)
	if err != nil {
		return err
	}

	return c.JSON(toResponse(t))
}
