package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-portal-api/internal/models"
)

var taskViewColumns = []string{"id", "title", "description", "deadline", "status", "progress", "assigned_to_id", "assigned_by_id", "created_at", "updated_at", "assigned_to_name", "assigned_by_name"}

func TestTaskCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	deadline, err := models.ParseDate("2026-06-30")
	require.NoError(t, err)
	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(sqlmock.AnyArg(), "Audit", "", "2026-06-30", "Pending", 0, "u1", "u2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	task := &models.Task{Title: "Audit", Deadline: &deadline, Status: models.TaskStatusPending, AssignedToID: "u1", AssignedByID: "u2"}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.NotEmpty(t, task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskListViewsResolvesNames(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(taskViewColumns).
		AddRow("t1", "Audit", "", now, "In Progress", 40, "u1", "u2", now, now, "Ada", "Grace").
		AddRow("t2", "Orphan", "", nil, "Pending", 0, "gone", "u2", now, now, nil, "Grace")
	mock.ExpectQuery("FROM tasks t\\s+LEFT JOIN accounts assignee").WillReturnRows(rows)

	views, err := repo.ListViews(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].AssignedUser)
	assert.Equal(t, "Ada", views[0].AssignedUser.Name)
	assert.Equal(t, models.TaskStatusInProgress, views[0].Status)
	assert.Nil(t, views[1].AssignedUser)
	assert.Nil(t, views[1].Deadline)
	assert.Equal(t, "Grace", views[1].CreatorUser.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskListViewsByAssignee(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.assigned_to_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(taskViewColumns))

	views, err := repo.ListViewsByAssignee(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.NotNil(t, views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskUpdateProgress(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET status = ?, progress = ?")).
		WithArgs("Completed", 100, sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	task := &models.Task{ID: "t1", Status: models.TaskStatusCompleted, Progress: 100}
	require.NoError(t, repo.UpdateProgress(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}
