package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-progress-api/internal/constants"
	"github.com/yukikurage/project-progress-api/internal/database"
	"github.com/yukikurage/project-progress-api/internal/middleware"
	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/repository"
	"github.com/yukikurage/project-progress-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUserHeader = "X-Test-User"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

// setupTestEnv wires the handlers against an in-memory database. The
// session check is replaced by a header carrying the caller's user ID.
func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	database.SetDB(db)

	customerRepo := repository.NewCustomerRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	updateRepo := repository.NewTaskUpdateRepository(db)

	projectHandler := NewProjectHandler(services.NewProjectService(projectRepo, customerRepo))
	milestoneHandler := NewMilestoneHandler(services.NewMilestoneService(milestoneRepo))
	customerHandler := NewCustomerHandler(services.NewCustomerService(customerRepo))
	taskHandler := NewTaskHandler(services.NewTaskService(taskRepo, updateRepo, projectRepo, milestoneRepo, nil, nil, nil, nil))
	progressHandler := NewProgressHandler(
		services.NewProgressService(taskRepo, updateRepo, milestoneRepo, nil),
		services.NewExportService(projectRepo, taskRepo, updateRepo, milestoneRepo),
	)

	r := gin.New()
	api := r.Group("/api", testAuth())

	api.POST("/customers", customerHandler.CreateCustomer)
	api.GET("/customers/:id", customerHandler.GetCustomer)
	api.PUT("/customers/:id", customerHandler.UpdateCustomer)

	api.POST("/projects", projectHandler.CreateProject)
	api.GET("/projects", projectHandler.ListProjects)
	api.POST("/projects/join", projectHandler.JoinProject)

	member := api.Group("/projects/:id", middleware.RequireProjectAccess())
	member.GET("", projectHandler.GetProject)
	member.GET("/summary", progressHandler.ProjectSummary)
	member.GET("/delays", progressHandler.ProjectDelays)
	member.GET("/milestones", progressHandler.MilestoneBreakdown)
	member.GET("/export.csv", progressHandler.ExportCSV)
	member.GET("/report", progressHandler.Report)
	member.GET("/tasks", taskHandler.ListTasks)
	member.POST("/tasks", taskHandler.CreateTask)
	member.POST("/tasks/draft", taskHandler.DraftTasks)

	owner := api.Group("/projects/:id", middleware.RequireProjectAccess(), middleware.RequireProjectOwner())
	owner.PUT("", projectHandler.UpdateProject)
	owner.DELETE("", projectHandler.DeleteProject)
	owner.DELETE("/members/:user_id", projectHandler.RemoveMember)
	owner.POST("/milestones", milestoneHandler.CreateMilestone)
	owner.DELETE("/milestones/:milestone_id", milestoneHandler.DeleteMilestone)

	tasks := api.Group("/tasks/:id", middleware.RequireTaskAccess())
	tasks.GET("", taskHandler.GetTask)
	tasks.PATCH("", taskHandler.UpdateTask)
	tasks.DELETE("", taskHandler.DeleteTask)
	tasks.GET("/delay", progressHandler.TaskDelay)
	tasks.POST("/updates", taskHandler.RecordUpdate)
	tasks.GET("/updates", taskHandler.ListUpdates)

	return testEnv{db: db, router: r}
}

// testAuth stands in for RequireAuth.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(testUserHeader); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				c.Set(constants.ContextKeyUserID, id)
			}
		}
		c.Next()
	}
}

func (env testEnv) do(method, path string, userID uint64, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(testUserHeader, strconv.FormatUint(userID, 10))
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, DisplayName: username, PasswordHash: "hashedpassword"}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env testEnv) createProject(t *testing.T, name string, ownerID uint64, memberIDs ...uint64) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, InviteCode: name + "_CODE"}
	require.NoError(t, env.db.Create(project).Error)

	require.NoError(t, env.db.Create(&models.ProjectMember{
		ProjectID: project.ID, UserID: ownerID, Role: models.RoleOwner, JoinedAt: time.Now(),
	}).Error)
	for _, id := range memberIDs {
		require.NoError(t, env.db.Create(&models.ProjectMember{
			ProjectID: project.ID, UserID: id, Role: models.RoleMember, JoinedAt: time.Now(),
		}).Error)
	}
	return project
}

func (env testEnv) createTask(t *testing.T, projectID, engineerID uint64, name string, due *time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		ProjectID:  projectID,
		Name:       name,
		EngineerID: engineerID,
		CreatorID:  engineerID,
		DueDate:    due,
		Active:     true,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func (env testEnv) addUpdate(t *testing.T, taskID, reporterID uint64, status string, on time.Time, uploadedAt time.Time) {
	t.Helper()
	require.NoError(t, env.db.Create(&models.TaskUpdate{
		TaskID: taskID, ReporterID: reporterID, Status: status, UpdateDate: on, UploadedAt: uploadedAt,
	}).Error)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

