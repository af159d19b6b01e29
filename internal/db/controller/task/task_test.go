package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anindta/task-management-project/internal/db/controller/task"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/testutil"
)

func TestCreateValidation(t *testing.T) {
	db := testutil.OpenDB(t)
	p := models.Project{Name: "p"}
	testutil.MustCreate(t, db, &p)

	ghost := uint64(999)

	testCases := []struct {
		name          string
		fields        task.Fields
		expectedError error
	}{
		{name: "empty title", fields: task.Fields{ProjectID: p.ID}, expectedError: task.ErrTaskTitleEmpty},
		{name: "bad status", fields: task.Fields{Title: "t", ProjectID: p.ID, Status: 7}, expectedError: task.ErrInvalidStatus},
		{name: "unknown project", fields: task.Fields{Title: "t", ProjectID: 999}, expectedError: task.ErrUnknownProject},
		{name: "unknown assignee", fields: task.Fields{Title: "t", ProjectID: p.ID, AssignedUserID: &ghost}, expectedError: task.ErrUnknownUser},
		{name: "ok", fields: task.Fields{Title: "t", ProjectID: p.ID, Status: models.TaskStatusReview}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := task.Create(db, tc.fields)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, models.TaskStatusReview, got.Status)
		})
	}
}

func TestStatusFlow(t *testing.T) {
	db := testutil.OpenDB(t)
	p := models.Project{Name: "p"}
	testutil.MustCreate(t, db, &p)

	created, err := task.Create(db, task.Fields{Title: "write docs", ProjectID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusToDo, created.Status)

	moved, err := task.SetStatus(db, created.ID, models.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, moved.Status)

	_, err = task.SetStatus(db, created.ID, -1)
	require.ErrorIs(t, err, task.ErrInvalidStatus)

	_, err = task.SetStatus(db, 999, models.TaskStatusDone)
	require.ErrorIs(t, err, task.ErrTaskNotFound)

	done, err := task.Complete(db, created.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, done.Status)

	stored, err := task.Get(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "shipped", stored.CompletionNote)
	assert.Equal(t, models.TaskStatusDone, stored.Status)
}

func TestListAndCount(t *testing.T) {
	db := testutil.OpenDB(t)
	r := testutil.Role(t, db, "Employee")
	alice := testutil.User(t, db, "alice", r.ID)

	a := models.Project{Name: "a"}
	b := models.Project{Name: "b"}
	testutil.MustCreate(t, db, &a)
	testutil.MustCreate(t, db, &b)

	_, err := task.Create(db, task.Fields{Title: "1", ProjectID: a.ID, AssignedUserID: &alice.ID})
	require.NoError(t, err)
	_, err = task.Create(db, task.Fields{Title: "2", ProjectID: a.ID, Status: models.TaskStatusDone})
	require.NoError(t, err)
	_, err = task.Create(db, task.Fields{Title: "3", ProjectID: b.ID})
	require.NoError(t, err)

	all, err := task.List(db, task.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ofA, err := task.List(db, task.Filter{ProjectID: a.ID})
	require.NoError(t, err)
	assert.Len(t, ofA, 2)

	mine, err := task.List(db, task.Filter{AssignedUserID: alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "1", mine[0].Title)

	counts, err := task.CountByStatus(db)
	require.NoError(t, err)
	assert.Equal(t, map[models.TaskStatus]int64{
		models.TaskStatusToDo:       2,
		models.TaskStatusInProgress: 0,
		models.TaskStatusReview:     0,
		models.TaskStatusDone:       1,
	}, counts)

	require.NoError(t, task.Delete(db, all[0].ID))
	require.ErrorIs(t, task.Delete(db, all[0].ID), task.ErrTaskNotFound)
}

func TestUpdateKeepsCompletionNote(t *testing.T) {
	db := testutil.OpenDB(t)
	p := models.Project{Name: "p"}
	testutil.MustCreate(t, db, &p)

	created, err := task.Create(db, task.Fields{Title: "t", ProjectID: p.ID})
	require.NoError(t, err)
	_, err = task.Complete(db, created.ID, "note")
	require.NoError(t, err)

	updated, err := task.Update(db, created.ID, task.Fields{Title: "renamed", ProjectID: p.ID, Status: models.TaskStatusReview})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "note", updated.CompletionNote)

	_, err = task.Update(db, 999, task.Fields{Title: "x", ProjectID: p.ID})
	require.ErrorIs(t, err, task.ErrTaskNotFound)
}
