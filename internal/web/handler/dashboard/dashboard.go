// Package dashboard provides the board statistics.
package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/controller/project"
	"github.com/anindta/task-management-project/internal/db/controller/task"
	"github.com/anindta/task-management-project/internal/db/controller/user"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/web/handler"
)

// Path is the path to the dashboard statistics.
const Path = handler.RootPath + "dashboard"

// Stats summarizes the board.
type Stats struct {
	TotalProjects   int64 `json:"totalProjects"`
	TotalTasks      int64 `json:"totalTasks"`
	TotalUsers      int64 `json:"totalUsers"`
	TodoTasks       int64 `json:"todoTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	ReviewTasks     int64 `json:"reviewTasks"`
	DoneTasks       int64 `json:"doneTasks"`
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, a *handler.Auth) error {
	if app == nil || cfg == nil || db == nil || a == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path+"/stats", a.Token(), s.Stats)

	return nil
}

// Stats returns project, task and user counts.
func (s *Service) Stats(c *fiber.Ctx) error {
	db := s.db.WithContext(c.UserContext())

	var (
		out Stats
		err error
	)

	if out.TotalProjects, err = project.Count(db); err != nil {
		return err
	}

	if out.TotalUsers, err = user.Count(db); err != nil {
		return err
	}

	byStatus, err := task.CountByStatus(db)
	if err != nil {
		return err
	}

	out.TodoTasks = byStatus[models.TaskStatusToDo]
	out.InProgressTasks = byStatus[models.TaskStatusInProgress]
	out.ReviewTasks = byStatus[models.TaskStatusReview]
	out.DoneTasks = byStatus[models.TaskStatusDone]
	out.TotalTasks = out.TodoTasks + out.InProgressTasks + out.ReviewTasks + out.DoneTasks

	return c.JSON(out)
}
