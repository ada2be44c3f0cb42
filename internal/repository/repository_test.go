package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func TestMilestoneRepository_DeleteDetachesTasks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMilestoneRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `tasks` SET `milestone_id`=?")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `milestones` SET `deleted_at`=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMilestoneRepository_DeleteRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMilestoneRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `tasks` SET `milestone_id`=?")).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	assert.Error(t, repo.Delete(5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskUpdateRepository_ListByProjectSkipsDeletedTasks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskUpdateRepository(db)

	uploaded := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "task_id", "reporter_id", "status", "note", "update_date", "uploaded_at"}).
		AddRow(1, 10, 2, "Completed", "", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), uploaded).
		AddRow(2, 11, 2, "In Progress", "", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), uploaded)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN tasks ON tasks.id = task_updates.task_id WHERE tasks.project_id = ? AND tasks.deleted_at IS NULL")).
		WithArgs(3).
		WillReturnRows(rows)

	updates, err := repo.ListByProject(3)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, uint64(10), updates[0].TaskID)
	assert.Equal(t, "In Progress", updates[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListCountsBeforePaging(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `tasks` WHERE project_id = ? AND tasks.milestone_id IS NULL")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `tasks` WHERE project_id = ? AND tasks.milestone_id IS NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "name", "engineer_id"}))

	tasks, total, err := repo.List(TaskFilter{ProjectID: 7, Unassigned: true, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
