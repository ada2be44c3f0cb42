package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-progress-api/internal/models"
)

func TestMilestoneService_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	service := NewMilestoneService(repos.milestones)
	owner := createUser(t, db, "owner")
	project := createProject(t, repos, "apollo", owner.ID)

	milestone, err := service.CreateMilestone(CreateMilestoneInput{
		ProjectID:    project.ID,
		Name:         " Design ",
		Status:       "planned",
		PlannedStart: timePtr(2024, 1, 1),
		PlannedEnd:   timePtr(2024, 1, 31),
		Percentage:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Design", milestone.Name)

	pct := 60.0
	updated, err := service.UpdateMilestone(project.ID, milestone.ID, UpdateMilestoneInput{Percentage: &pct})
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Percentage)

	task := &models.Task{ProjectID: project.ID, Name: "wireframes", EngineerID: owner.ID, CreatorID: owner.ID, MilestoneID: &milestone.ID, Active: true}
	require.NoError(t, repos.tasks.Create(task))

	require.NoError(t, service.DeleteMilestone(project.ID, milestone.ID))

	reloaded, err := repos.tasks.FindByID(task.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.MilestoneID)

	milestones, err := service.ListMilestones(project.ID)
	require.NoError(t, err)
	assert.Empty(t, milestones)
}

func TestMilestoneService_Validation(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	service := NewMilestoneService(repos.milestones)
	owner := createUser(t, db, "owner")
	project := createProject(t, repos, "apollo", owner.ID)
	other := createProject(t, repos, "gemini", owner.ID)

	tests := []struct {
		name  string
		input CreateMilestoneInput
		err   error
	}{
		{"blank name", CreateMilestoneInput{ProjectID: project.ID, Name: " "}, ErrInvalidMilestoneName},
		{"end before start", CreateMilestoneInput{ProjectID: project.ID, Name: "x", PlannedStart: timePtr(2024, 2, 1), PlannedEnd: timePtr(2024, 1, 1)}, ErrInvalidMilestoneSchedule},
		{"negative percentage", CreateMilestoneInput{ProjectID: project.ID, Name: "x", Percentage: -1}, ErrInvalidPercentage},
		{"percentage above 100", CreateMilestoneInput{ProjectID: project.ID, Name: "x", Percentage: 101}, ErrInvalidPercentage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateMilestone(tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	foreign, err := service.CreateMilestone(CreateMilestoneInput{ProjectID: other.ID, Name: "Elsewhere"})
	require.NoError(t, err)

	_, err = service.GetMilestone(project.ID, foreign.ID)
	assert.ErrorIs(t, err, ErrMilestoneNotFound)
	assert.ErrorIs(t, service.DeleteMilestone(project.ID, foreign.ID), ErrMilestoneNotFound)
}
