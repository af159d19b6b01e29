package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anindta/task-management-project/internal/db/controller/user"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/testutil"
)

func TestCreate(t *testing.T) {
	db := testutil.OpenDB(t)
	r := testutil.Role(t, db, "Employee")
	testutil.User(t, db, "alice", r.ID)

	testCases := []struct {
		name          string
		in            models.User
		expectedError error
	}{
		{name: "empty username", in: models.User{RoleID: r.ID}, expectedError: user.ErrUsernameEmpty},
		{name: "taken username", in: models.User{Username: "alice", RoleID: r.ID}, expectedError: user.ErrUsernameTaken},
		{name: "unknown role", in: models.User{Username: "bob", RoleID: 999}, expectedError: user.ErrUnknownRole},
		{name: "ok", in: models.User{Username: "carol", Email: "c@x.com", Password: "h", RoleID: r.ID}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := tc.in

			err := user.Create(db, &u)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, u.ID)
		})
	}

	n, err := user.Count(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUsernameIsCaseSensitive(t *testing.T) {
	db := testutil.OpenDB(t)
	r := testutil.Role(t, db, "Employee")
	testutil.User(t, db, "alice", r.ID)

	_, err := user.GetByUsername(db, "Alice")
	require.ErrorIs(t, err, user.ErrUserNotFound)

	u, err := user.GetByUsername(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Employee", u.Role.Name)
}

func TestUpdate(t *testing.T) {
	db := testutil.OpenDB(t)
	employee := testutil.Role(t, db, "Employee")
	admin := testutil.Role(t, db, "Admin")
	alice := testutil.User(t, db, "alice", employee.ID)
	testutil.User(t, db, "bob", employee.ID)

	// no password keeps the stored hash
	u, err := user.Update(db, alice.ID, user.Changes{Username: "alice", Email: "new@x.com", RoleID: admin.ID})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", u.Email)
	assert.Equal(t, "Admin", u.Role.Name)
	assert.Equal(t, alice.Password, u.Password)

	u, err = user.Update(db, alice.ID, user.Changes{Username: "alice", RoleID: admin.ID, PasswordHash: "new-hash"})
	require.NoError(t, err)
	assert.Equal(t, "new-hash", u.Password)

	_, err = user.Update(db, alice.ID, user.Changes{Username: "bob", RoleID: admin.ID})
	require.ErrorIs(t, err, user.ErrUsernameTaken)

	_, err = user.Update(db, alice.ID, user.Changes{Username: "alice", RoleID: 999})
	require.ErrorIs(t, err, user.ErrUnknownRole)

	_, err = user.Update(db, 999, user.Changes{Username: "ghost", RoleID: admin.ID})
	require.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestDeleteUnassignsTasks(t *testing.T) {
	db := testutil.OpenDB(t)
	r := testutil.Role(t, db, "Employee")
	alice := testutil.User(t, db, "alice", r.ID)

	p := models.Project{Name: "p"}
	testutil.MustCreate(t, db, &p)

	task := models.Task{Title: "t", ProjectID: p.ID, AssignedUserID: &alice.ID}
	testutil.MustCreate(t, db, &task)

	require.NoError(t, user.Delete(db, alice.ID))
	require.ErrorIs(t, user.Delete(db, alice.ID), user.ErrUserNotFound)

	var got models.Task
	require.NoError(t, db.First(&got, task.ID).Error)
	assert.Nil(t, got.AssignedUserID)

	users, err := user.List(db)
	require.NoError(t, err)
	assert.Empty(t, users)
}
