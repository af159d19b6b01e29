package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/anindta/task-management-project/internal/db/models"
)

// Ref names a related project or user.
type Ref struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
}

// Task as served by the API.
type Task struct {
	ID             uint              `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Deadline       *time.Time        `json:"deadline,omitempty"`
	Status         models.TaskStatus `json:"status"`
	ProjectID      uint              `json:"projectId"`
	AssignedUserID *uint64           `json:"assignedUserId,omitempty"`
	CompletionNote string            `json:"completionNote"`
	Project        *Ref              `json:"project,omitempty"`
	AssignedUser   *Ref              `json:"assignedUser,omitempty"`
}

// TaskBoard is a local copy of the tasks of one project, or of all projects.
type TaskBoard struct {
	session *Session

	mu    sync.Mutex
	tasks []Task
}

// NewTaskBoard creates an empty board.
func NewTaskBoard(s *Session) *TaskBoard {
	return &TaskBoard{session: s}
}

// Load replaces the board with the tasks of projectID, 0 loads every task.
// On failure the board is left empty.
func (b *TaskBoard) Load(ctx context.Context, projectID uint) error {
	b.mu.Lock()
	b.tasks = nil
	b.mu.Unlock()

	path := "/tasks"
	if projectID != 0 {
		path += "?" + url.Values{"projectId": {strconv.FormatUint(uint64(projectID), 10)}}.Encode()
	}

	var tasks []Task
	if err := b.session.Do(ctx, fiber.MethodGet, path, nil, &tasks); err != nil {
		return err
	}

	b.mu.Lock()
	b.tasks = tasks
	b.mu.Unlock()

	return nil
}

// Tasks returns a copy of the board.
func (b *TaskBoard) Tasks() []Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Task{}, b.tasks...)
}

// Column returns the tasks with the given status.
func (b *TaskBoard) Column(status models.TaskStatus) []Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Task

	for _, t := range b.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}

	return out
}

func (b *TaskBoard) index(id uint) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}

	return -1
}

// MoveTask sets the status locally, then on the server.
// A refused move restores the previous status.
func (b *TaskBoard) MoveTask(ctx context.Context, id uint, status models.TaskStatus) error {
	b.mu.Lock()

	i := b.index(id)
	if i < 0 {
		b.mu.Unlock()

		return fmt.Errorf("%w: %d", ErrTaskNotLoaded, id)
	}

	old := b.tasks[i].Status
	b.tasks[i].Status = status
	b.mu.Unlock()

	err := b.session.Do(ctx, fiber.MethodPut, fmt.Sprintf("/tasks/%d/status", id), int(status), nil)
	if err == nil {
		return nil
	}

	b.mu.Lock()
	// the board may have been reloaded meanwhile
	if i = b.index(id); i >= 0 && b.tasks[i].Status == status {
		b.tasks[i].Status = old
	}
	b.mu.Unlock()

	return err
}

// Complete sends the completion note. The server moves the task to Done.
func (b *TaskBoard) Complete(ctx context.Context, id uint, note string) error {
	var t Task
	if err := b.session.Do(ctx, fiber.MethodPut, fmt.Sprintf("/tasks/%d/complete", id), note, &t); err != nil {
		return err
	}

	b.mu.Lock()
	if i := b.index(id); i >= 0 {
		b.tasks[i] = t
	}
	b.mu.Unlock()

	return nil
}

// Create adds a task on the server and to the board.
func (b *TaskBoard) Create(ctx context.Context, in Task) (*Task, error) {
	var t Task

	body := map[string]any{
		"title":          in.Title,
		"description":    in.Description,
		"deadline":       in.Deadline,
		"status":         int(in.Status),
		"projectId":      in.ProjectID,
		"assignedUserId": in.AssignedUserID,
	}

	if err := b.session.Do(ctx, fiber.MethodPost, "/tasks", body, &t); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.tasks = append(b.tasks, t)
	b.mu.Unlock()

	return &t, nil
}

// Delete removes a task on the server and from the board.
func (b *TaskBoard) Delete(ctx context.Context, id uint) error {
	if err := b.session.Do(ctx, fiber.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil); err != nil {
		return err
	}

	b.mu.Lock()
	if i := b.index(id); i >= 0 {
		b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	}
	b.mu.Unlock()

	return nil
}
