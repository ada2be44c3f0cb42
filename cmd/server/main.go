package main

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/project-progress-api/internal/config"
	"github.com/yukikurage/project-progress-api/internal/constants"
	"github.com/yukikurage/project-progress-api/internal/database"
	"github.com/yukikurage/project-progress-api/internal/handlers"
	"github.com/yukikurage/project-progress-api/internal/logger"
	"github.com/yukikurage/project-progress-api/internal/middleware"
	"github.com/yukikurage/project-progress-api/internal/repository"
	"github.com/yukikurage/project-progress-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, log); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis backs both sessions and update deduplication
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer func() { _ = rdb.Close() }()

	publisher, err := services.NewEventPublisher(cfg.AMQPURL, log)
	if err != nil {
		log.Fatal("Failed to connect to message broker", zap.Error(err))
	}
	defer publisher.Close()

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	updateRepo := repository.NewTaskUpdateRepository(db)

	deduper := services.NewUpdateDeduper(rdb, services.DefaultDedupTTL, log)

	authService := services.NewAuthService(userRepo)
	customerService := services.NewCustomerService(customerRepo)
	projectService := services.NewProjectService(projectRepo, customerRepo)
	milestoneService := services.NewMilestoneService(milestoneRepo)
	taskService := services.NewTaskService(taskRepo, updateRepo, projectRepo, milestoneRepo, aiService, publisher, deduper, log)
	progressService := services.NewProgressService(taskRepo, updateRepo, milestoneRepo, log)
	exportService := services.NewExportService(projectRepo, taskRepo, updateRepo, milestoneRepo)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log))

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		cfg.RedisAddr(),           // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatal("Failed to create Redis store", zap.Error(err))
	}
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	registerRoutes(r, routeHandlers{
		auth:      handlers.NewAuthHandler(authService),
		customer:  handlers.NewCustomerHandler(customerService),
		project:   handlers.NewProjectHandler(projectService),
		milestone: handlers.NewMilestoneHandler(milestoneService),
		task:      handlers.NewTaskHandler(taskService),
		progress:  handlers.NewProgressHandler(progressService, exportService),
	})

	// Start server
	log.Info("Server starting", zap.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

type routeHandlers struct {
	auth      *handlers.AuthHandler
	customer  *handlers.CustomerHandler
	project   *handlers.ProjectHandler
	milestone *handlers.MilestoneHandler
	task      *handlers.TaskHandler
	progress  *handlers.ProgressHandler
}

func registerRoutes(r *gin.Engine, h routeHandlers) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Progress API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.auth.Signup)
			auth.POST("/login", h.auth.Login)
			auth.POST("/logout", h.auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), h.auth.GetCurrentUser)
		}

		customers := api.Group("/customers")
		customers.Use(middleware.RequireAuth())
		{
			customers.POST("", h.customer.CreateCustomer)
			customers.GET("", h.customer.ListCustomers)
			customers.GET("/:id", h.customer.GetCustomer)
			customers.PUT("/:id", h.customer.UpdateCustomer)
		}

		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.POST("", h.project.CreateProject)
			projects.GET("", h.project.ListProjects)
			projects.POST("/join", h.project.JoinProject)

			member := projects.Group("/:id", middleware.RequireProjectAccess())
			{
				member.GET("", h.project.GetProject)

				member.GET("/summary", h.progress.ProjectSummary)
				member.GET("/delays", h.progress.ProjectDelays)
				member.GET("/milestones", h.progress.MilestoneBreakdown)
				member.GET("/export.csv", h.progress.ExportCSV)
				member.GET("/report", h.progress.Report)

				member.GET("/tasks", h.task.ListTasks)
				member.POST("/tasks", h.task.CreateTask)
				member.POST("/tasks/draft", h.task.DraftTasks)
			}

			owner := projects.Group("/:id", middleware.RequireProjectAccess(), middleware.RequireProjectOwner())
			{
				owner.PUT("", h.project.UpdateProject)
				owner.DELETE("", h.project.DeleteProject)
				owner.POST("/regenerate-code", h.project.RegenerateInviteCode)
				owner.DELETE("/members/:user_id", h.project.RemoveMember)

				owner.POST("/milestones", h.milestone.CreateMilestone)
				owner.PUT("/milestones/:milestone_id", h.milestone.UpdateMilestone)
				owner.DELETE("/milestones/:milestone_id", h.milestone.DeleteMilestone)
			}
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("/:id", middleware.RequireTaskAccess(), h.task.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(), h.task.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), h.task.DeleteTask)
			tasks.GET("/:id/delay", middleware.RequireTaskAccess(), h.progress.TaskDelay)
			tasks.POST("/:id/updates", middleware.RequireTaskAccess(), h.task.RecordUpdate)
			tasks.GET("/:id/updates", middleware.RequireTaskAccess(), h.task.ListUpdates)
		}
	}
}
