package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/auth"
	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/testutil"
	"github.com/anindta/task-management-project/internal/web"
)

type harness struct {
	t   *testing.T
	svc *web.Service
	db  *gorm.DB
	cfg *config.Config
}

func newHarness(t *testing.T, mutate ...func(*config.Config)) *harness {
	t.Helper()

	cfg := testutil.Config()
	for _, m := range mutate {
		m(cfg)
	}

	gdb := testutil.OpenDB(t)

	svc, err := web.New(cfg, gdb, nil)
	require.NoError(t, err)

	return &harness{t: t, svc: svc, db: gdb, cfg: cfg}
}

// do sends body as JSON unless it is a string, which is sent as is.
func (h *harness) do(method, path string, body any, token string) (int, []byte) {
	h.t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := h.svc.App.Test(req, -1)
	require.NoError(h.t, err)

	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)

	return resp.StatusCode, out
}

func (h *harness) register(username, password, role string) {
	h.t.Helper()

	_, err := auth.NewStore(h.db, auth.NewHasher(h.cfg.Password)).Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		Role:     role,
	})
	require.NoError(h.t, err)
}

func (h *harness) login(username, password string) string {
	h.t.Helper()

	status, body := h.do(http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(h.t, http.StatusOK, status, string(body))

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(body, &resp))
	require.NotEmpty(h.t, resp.Token)

	return resp.Token
}

// admin creates an Admin role granted every admin menu and logs its user in.
func (h *harness) admin() string {
	h.t.Helper()

	users := testutil.Menu(h.t, h.db, "users")
	roles := testutil.Menu(h.t, h.db, "roles")
	menus := testutil.Menu(h.t, h.db, "menus")
	testutil.Role(h.t, h.db, "Admin", users, roles, menus)

	h.register("root", "s3cret", "Admin")

	return h.login("root", "s3cret")
}

func TestNew(t *testing.T) {
	_, err := web.New(nil, nil, nil)
	require.ErrorIs(t, err, web.ErrConfigNil)

	_, err = web.New(testutil.Config(), nil, nil)
	require.ErrorIs(t, err, web.ErrDBNil)

	cfg := testutil.Config()
	cfg.Token.Key = "short"

	_, err = web.New(cfg, testutil.OpenDB(t), nil)
	require.ErrorIs(t, err, auth.ErrTokenKeyTooShort)
}

func TestRegisterLoginMyMenus(t *testing.T) {
	h := newHarness(t)

	dash := testutil.Menu(t, h.db, "dashboard")
	tasks := testutil.Menu(t, h.db, "tasks")
	testutil.Role(t, h.db, models.DefaultRoleName, tasks, dash)

	// an unknown role falls back to the default
	status, body := h.do(http.MethodPost, "/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "p@ss",
		"role":     "Manager",
	}, "")
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"message":"Registration successful"}`, string(body))

	status, body = h.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "alice",
		"password": "p@ss",
	}, "")
	require.Equal(t, http.StatusOK, status, string(body))

	var login struct {
		Token  string `json:"token"`
		Role   string `json:"role"`
		UserID uint64 `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	assert.Equal(t, models.DefaultRoleName, login.Role)
	assert.NotZero(t, login.UserID)

	status, body = h.do(http.MethodGet, "/auth/my-menus", nil, login.Token)
	require.Equal(t, http.StatusOK, status, string(body))

	var menus []auth.MenuEntry
	require.NoError(t, json.Unmarshal(body, &menus))
	require.Len(t, menus, 2)
	assert.Equal(t, "dashboard", menus[0].Name)
	assert.Equal(t, "tasks", menus[1].Name)
	assert.Equal(t, "tasks label", menus[1].Label)
}

func TestRegisterErrors(t *testing.T) {
	h := newHarness(t)
	h.register("bob", "pw", "")

	tests := []struct {
		name string
		body any
	}{
		{name: "username taken", body: map[string]string{"username": "bob", "password": "x"}},
		{name: "missing password", body: map[string]string{"username": "carol"}},
		{name: "bad email", body: map[string]string{"username": "carol", "password": "x", "email": "nope"}},
		{name: "not json", body: "{"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := h.do(http.MethodPost, "/auth/register", tc.body, "")
			assert.Equal(t, http.StatusBadRequest, status, string(body))
		})
	}
}

func TestLoginErrors(t *testing.T) {
	h := newHarness(t)
	h.register("bob", "pw", "")

	status, body := h.do(http.MethodPost, "/auth/login", map[string]string{"username": "nobody", "password": "pw"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User not found", string(body))

	status, body = h.do(http.MethodPost, "/auth/login", map[string]string{"username": "bob", "password": "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Wrong password", string(body))

	status, _ = h.do(http.MethodPost, "/auth/login", map[string]string{"username": "bob"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMyMenusRequiresToken(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(http.MethodGet, "/auth/my-menus", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodGet, "/auth/my-menus", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMyMenusDeletedUser(t *testing.T) {
	h := newHarness(t)
	h.register("bob", "pw", "")
	token := h.login("bob", "pw")

	require.NoError(t, h.db.Where("username = ?", "bob").Delete(&models.User{}).Error)

	status, _ := h.do(http.MethodGet, "/auth/my-menus", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminGating(t *testing.T) {
	h := newHarness(t)
	adminToken := h.admin()

	h.register("bob", "pw", "")
	employeeToken := h.login("bob", "pw")

	for _, path := range []string{"/users", "/roles", "/roles/menus", "/menus"} {
		status, _ := h.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, status, path)

		status, _ = h.do(http.MethodGet, path, nil, employeeToken)
		assert.Equal(t, http.StatusForbidden, status, path)

		status, body := h.do(http.MethodGet, path, nil, adminToken)
		assert.Equal(t, http.StatusOK, status, "%s: %s", path, body)
	}
}

func TestAdminUsers(t *testing.T) {
	h := newHarness(t)
	token := h.admin()

	status, body := h.do(http.MethodPost, "/users", map[string]string{
		"username": "dave",
		"email":    "dave@example.com",
		"password": "pw",
		"role":     "Admin",
	}, token)
	require.Equal(t, http.StatusCreated, status, string(body))

	var created struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Admin", created.Role)
	assert.NotContains(t, string(body), "password")

	// unknown role is rejected here, unlike on registration
	status, _ = h.do(http.MethodPost, "/users", map[string]string{
		"username": "erin", "password": "pw", "role": "Ghost",
	}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(http.MethodPost, "/users", map[string]string{"username": "erin", "role": "Admin"}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	path := fmt.Sprintf("/users/%d", created.ID)

	// empty password keeps the old one
	status, body = h.do(http.MethodPut, path, map[string]string{
		"username": "dave2", "email": "d@example.com", "role": "Admin",
	}, token)
	require.Equal(t, http.StatusOK, status, string(body))
	h.login("dave2", "pw")

	status, _ = h.do(http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = h.do(http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminRolesAndMenus(t *testing.T) {
	h := newHarness(t)
	token := h.admin()

	status, body := h.do(http.MethodPost, "/menus", map[string]string{"name": "reports", "label": "Reports"}, token)
	require.Equal(t, http.StatusCreated, status, string(body))

	var m models.Menu
	require.NoError(t, json.Unmarshal(body, &m))

	status, body = h.do(http.MethodPost, "/roles", map[string]any{"name": "Auditor", "menuIds": []uint{m.ID}}, token)
	require.Equal(t, http.StatusCreated, status, string(body))

	var r struct {
		ID         uint     `json:"id"`
		MenuIDs    []uint   `json:"menuIds"`
		MenuLabels []string `json:"menuLabels"`
	}
	require.NoError(t, json.Unmarshal(body, &r))
	assert.Equal(t, []uint{m.ID}, r.MenuIDs)
	assert.Equal(t, []string{"Reports"}, r.MenuLabels)

	status, _ = h.do(http.MethodPost, "/roles", map[string]any{"name": "Broken", "menuIds": []uint{9999}}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	// granted menu can't go away
	status, _ = h.do(http.MethodDelete, fmt.Sprintf("/menus/%d", m.ID), nil, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = h.do(http.MethodPut, fmt.Sprintf("/roles/%d", r.ID), map[string]any{"name": "Auditor", "menuIds": []uint{}}, token)
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = h.do(http.MethodDelete, fmt.Sprintf("/menus/%d", m.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = h.do(http.MethodDelete, fmt.Sprintf("/roles/%d", r.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = h.do(http.MethodDelete, "/roles/abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProjectsTasksDashboard(t *testing.T) {
	h := newHarness(t)
	h.register("bob", "pw", "")
	token := h.login("bob", "pw")

	var bob models.User
	require.NoError(t, h.db.Where("username = ?", "bob").First(&bob).Error)

	status, body := h.do(http.MethodPost, "/projects", map[string]string{"name": "Launch"}, token)
	require.Equal(t, http.StatusCreated, status, string(body))

	var p models.Project
	require.NoError(t, json.Unmarshal(body, &p))

	status, body = h.do(http.MethodPost, "/tasks", map[string]any{
		"title":          "Write docs",
		"projectId":      p.ID,
		"assignedUserId": bob.ID,
	}, token)
	require.Equal(t, http.StatusCreated, status, string(body))

	var task struct {
		ID             uint   `json:"id"`
		Status         int    `json:"status"`
		CompletionNote string `json:"completionNote"`
		Project        struct {
			ID   uint64 `json:"id"`
			Name string `json:"name"`
		} `json:"project"`
		AssignedUser struct {
			ID       uint64 `json:"id"`
			Username string `json:"username"`
		} `json:"assignedUser"`
	}
	require.NoError(t, json.Unmarshal(body, &task))
	assert.Equal(t, "Launch", task.Project.Name)
	assert.Equal(t, "bob", task.AssignedUser.Username)

	taskPath := fmt.Sprintf("/tasks/%d", task.ID)

	status, body = h.do(http.MethodPut, taskPath+"/status", "2", token)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &task))
	assert.Equal(t, int(models.TaskStatusReview), task.Status)

	status, _ = h.do(http.MethodPut, taskPath+"/status", "7", token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(http.MethodPut, taskPath+"/status", `"two"`, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = h.do(http.MethodPut, taskPath+"/complete", `"shipped"`, token)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &task))
	assert.Equal(t, int(models.TaskStatusDone), task.Status)
	assert.Equal(t, "shipped", task.CompletionNote)

	status, _ = h.do(http.MethodPost, "/tasks", map[string]any{"title": "orphan", "projectId": 999}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = h.do(http.MethodGet, fmt.Sprintf("/tasks?projectId=%d", p.ID), nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Write docs")

	status, body = h.do(http.MethodGet, "/tasks?projectId=999", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, body = h.do(http.MethodGet, "/dashboard/stats", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"totalProjects": 1,
		"totalTasks": 1,
		"totalUsers": 1,
		"todoTasks": 0,
		"inProgressTasks": 0,
		"reviewTasks": 0,
		"doneTasks": 1
	}`, string(body))

	status, _ = h.do(http.MethodDelete, fmt.Sprintf("/projects/%d", p.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = h.do(http.MethodGet, taskPath, nil, token)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = h.do(http.MethodGet, "/projects", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginLimiter(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.LoginLimiter = config.LoginLimiter{Enabled: true, Max: 2, Expiration: time.Minute}
	})

	creds := map[string]string{"username": "nobody", "password": "x"}

	for range 2 {
		status, _ := h.do(http.MethodPost, "/auth/login", creds, "")
		assert.Equal(t, http.StatusBadRequest, status)
	}

	status, body := h.do(http.MethodPost, "/auth/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Too many login attempts", string(body))

	// registration isn't limited
	status, _ = h.do(http.MethodPost, "/auth/register", map[string]string{"username": "x", "password": "y"}, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestCheckAliveAndMetrics(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodGet, web.CheckAlivePath, nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))

	status, body = h.do(http.MethodGet, web.MetricsPath, nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "taskboard_http_requests_total")

	status, _ = h.do(http.MethodGet, "/no/such/route", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestShutdownDrainsCheckAlive(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Webserver.ShutDownTime = 2
	})
	require.True(t, h.svc.Alive())

	done := make(chan struct{})

	go func() {
		h.svc.Shutdown()
		close(done)
	}()

	require.Eventually(t, func() bool { return !h.svc.Alive() }, time.Second, 10*time.Millisecond)

	status, _ := h.do(http.MethodGet, web.CheckAlivePath, nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not finish")
	}
}
