package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-progress-api/internal/analytics"
	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/services"
)

type progressFixture struct {
	env     testEnv
	owner   *models.User
	project *models.Project
	late    *models.Task
	idle    *models.Task
}

// newProgressFixture builds a project with one task completed five days
// late and one task due on 2024-01-30 that has never been updated.
func newProgressFixture(t *testing.T) progressFixture {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner")
	project := env.createProject(t, "apollo", owner.ID)

	design := &models.Milestone{ProjectID: project.ID, Name: "Design", PlannedStart: datePtr(2024, 1, 1)}
	require.NoError(t, env.db.Create(design).Error)

	late := env.createTask(t, project.ID, owner.ID, "late", datePtr(2024, 1, 10))
	late.MilestoneID = &design.ID
	require.NoError(t, env.db.Save(late).Error)
	env.addUpdate(t, late.ID, owner.ID, "Completed", date(2024, 1, 15), time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC))

	idle := env.createTask(t, project.ID, owner.ID, "idle", datePtr(2024, 1, 30))

	return progressFixture{env: env, owner: owner, project: project, late: late, idle: idle}
}

func (f progressFixture) path(suffix string) string {
	return fmt.Sprintf("/api/projects/%d%s", f.project.ID, suffix)
}

func TestProgressHandler_ProjectSummary(t *testing.T) {
	f := newProgressFixture(t)

	w := f.env.do(http.MethodGet, f.path("/summary?now=2024-01-20"), f.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		ProjectID uint64                    `json:"project_id"`
		AsOf      analytics.Date            `json:"as_of"`
		Summary   analytics.ProgressSummary `json:"summary"`
	}
	decode(t, w, &response)
	assert.Equal(t, f.project.ID, response.ProjectID)
	assert.Equal(t, "2024-01-20", response.AsOf.String())
	assert.Equal(t, 2, response.Summary.TotalCount)
	assert.Equal(t, 1, response.Summary.CompletedCount)
	assert.Equal(t, 1, response.Summary.DelayedCount)
	assert.Equal(t, 5, response.Summary.TotalDelayDays)
	assert.Equal(t, 50, response.Summary.CompletionPercentage)

	// The untouched task starts counting once its due date passes
	w = f.env.do(http.MethodGet, f.path("/summary?now=2024-02-02"), f.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &response)
	assert.Equal(t, 2, response.Summary.DelayedCount)
	assert.Equal(t, 8, response.Summary.TotalDelayDays)
	assert.Equal(t, 4.0, response.Summary.AverageDelayDays)
}

func TestProgressHandler_InvalidReferenceDate(t *testing.T) {
	f := newProgressFixture(t)

	for _, suffix := range []string{"/summary", "/delays", "/milestones", "/export.csv", "/report"} {
		w := f.env.do(http.MethodGet, f.path(suffix+"?now=not-a-date"), f.owner.ID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, suffix)
	}
}

func TestProgressHandler_HiddenFromNonMembers(t *testing.T) {
	f := newProgressFixture(t)
	stranger := f.env.createUser(t, "stranger")

	w := f.env.do(http.MethodGet, f.path("/summary"), stranger.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgressHandler_ProjectDelaysMatchTaskDelay(t *testing.T) {
	f := newProgressFixture(t)

	w := f.env.do(http.MethodGet, f.path("/delays?now=2024-02-02"), f.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Tasks []analytics.TaskDelayInfo `json:"tasks"`
	}
	decode(t, w, &response)
	require.Len(t, response.Tasks, 2)
	assert.Equal(t, 5, response.Tasks[0].DelayDays)
	assert.Equal(t, "2024-01-15", response.Tasks[0].LastUpdatedDisplay)
	assert.Equal(t, 3, response.Tasks[1].DelayDays)
	assert.Equal(t, analytics.NeverUpdated, response.Tasks[1].LastUpdatedDisplay)
	assert.Equal(t, "Not Started", response.Tasks[1].LatestStatus)

	for _, expected := range response.Tasks {
		w := f.env.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d/delay?now=2024-02-02", expected.TaskID), f.owner.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var single analytics.TaskDelayInfo
		decode(t, w, &single)
		assert.Equal(t, expected.DelayDays, single.DelayDays)
		assert.Equal(t, expected.IsDelayed, single.IsDelayed)
		assert.Equal(t, expected.LatestStatus, single.LatestStatus)
	}
}

func TestProgressHandler_MilestoneBreakdown(t *testing.T) {
	f := newProgressFixture(t)

	w := f.env.do(http.MethodGet, f.path("/milestones?now=2024-01-20"), f.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Milestones []milestoneGroupResponse `json:"milestones"`
	}
	decode(t, w, &response)
	require.Len(t, response.Milestones, 2)

	assert.Equal(t, "Design", response.Milestones[0].Name)
	assert.Equal(t, []uint64{f.late.ID}, response.Milestones[0].TaskIDs)
	assert.Equal(t, 100, response.Milestones[0].Summary.CompletionPercentage)

	assert.Equal(t, analytics.UnassignedGroupName, response.Milestones[1].Name)
	assert.Nil(t, response.Milestones[1].Milestone)
	assert.Equal(t, []uint64{f.idle.ID}, response.Milestones[1].TaskIDs)
}

func TestProgressHandler_ExportCSV(t *testing.T) {
	f := newProgressFixture(t)

	w := f.env.do(http.MethodGet, f.path("/export.csv?now=2024-01-20"), f.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), fmt.Sprintf("project-%d-2024-01-20.csv", f.project.ID))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "late")
	assert.Contains(t, lines[1], "Design")
	assert.Contains(t, lines[2], analytics.NeverUpdated)
}

func TestProgressHandler_Report(t *testing.T) {
	f := newProgressFixture(t)

	w := f.env.do(http.MethodGet, f.path("/report?now=2024-01-20"), f.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report services.Report
	decode(t, w, &report)
	assert.Equal(t, "apollo", report.ProjectName)
	assert.Equal(t, "2024-01-20", report.GeneratedOn.String())
	assert.Len(t, report.Rows, 2)
	assert.Len(t, report.Milestones, 2)
	assert.Equal(t, 1, report.Summary.DelayedCount)
}
