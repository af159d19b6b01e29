package client_test

import (
	"context"
	"net"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anindta/task-management-project/internal/client"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/testutil"
	"github.com/anindta/task-management-project/internal/web"
)

func TestAgainstWebService(t *testing.T) {
	gdb := testutil.OpenDB(t)
	dash := testutil.Menu(t, gdb, "dashboard")
	testutil.Role(t, gdb, models.DefaultRoleName, dash)

	svc, err := web.New(testutil.Config(), gdb, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = svc.App.Listener(ln) }()

	t.Cleanup(func() { _ = svc.App.Shutdown() })

	store, err := client.NewFileStorage("")
	require.NoError(t, err)

	s, err := client.New("http://"+ln.Addr().String(), store)
	require.NoError(t, err)

	ctx := context.Background()

	var msg struct {
		Message string `json:"message"`
	}
	require.NoError(t, s.Do(ctx, fiber.MethodPost, "/auth/register", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "pw",
		"role":     "Manager",
	}, &msg))
	assert.Equal(t, "Registration successful", msg.Message)

	require.NoError(t, s.Login(ctx, "alice", "pw"))
	assert.Equal(t, models.DefaultRoleName, s.Role())
	assert.Equal(t, []string{"dashboard"}, names(s.Menus()))

	// admin pages are gated server side
	err = s.Do(ctx, fiber.MethodGet, "/users", nil, nil)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, fiber.StatusForbidden, apiErr.Status)

	var p models.Project
	require.NoError(t, s.Do(ctx, fiber.MethodPost, "/projects", map[string]string{"name": "Launch"}, &p))

	board := client.NewTaskBoard(s)
	created, err := board.Create(ctx, client.Task{Title: "Write docs", ProjectID: p.ID})
	require.NoError(t, err)

	require.NoError(t, board.MoveTask(ctx, created.ID, models.TaskStatusReview))
	require.NoError(t, board.Complete(ctx, created.ID, "done"))

	require.NoError(t, board.Load(ctx, p.ID))

	tasks := board.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, models.TaskStatusDone, tasks[0].Status)
	assert.Equal(t, "done", tasks[0].CompletionNote)
	assert.Equal(t, "Launch", tasks[0].Project.Name)

	s.Logout()

	err = s.Do(ctx, fiber.MethodGet, "/auth/my-menus", nil, nil)
	assert.True(t, client.IsUnauthorized(err))
}

func names(menus []client.Menu) []string {
	out := make([]string, 0, len(menus))
	for _, m := range menus {
		out = append(out, m.Name)
	}

	return out
}
