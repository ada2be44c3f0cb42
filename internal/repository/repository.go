package repository

import (
	"github.com/yukikurage/project-progress-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	// Create creates a new customer
	Create(customer *models.Customer) error

	// FindByID finds a customer by ID
	FindByID(id uint64) (*models.Customer, error)

	// FindByIDForUser finds a customer, preloading only the projects userID belongs to
	FindByIDForUser(id, userID uint64) (*models.Customer, error)

	// IsProjectOwner reports whether userID owns a project run for the customer
	IsProjectOwner(customerID, userID uint64) (bool, error)

	// List retrieves customers ordered by name
	List(page, pageSize int) ([]models.Customer, int64, error)

	// Update updates a customer
	Update(customer *models.Customer) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and its owner membership in one transaction
	CreateWithOwner(project *models.Project, owner *models.ProjectMember) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// FindByInviteCode finds a project by invite code
	FindByInviteCode(code string) (*models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project and everything it owns
	Delete(id uint64) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembersByUserID lists all projects a user is a member of
	ListMembersByUserID(userID uint64) ([]models.ProjectMember, error)

	// ListMembers lists all members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)

	// CountMembers counts how many of the given user IDs are members of the project
	CountMembers(projectID uint64, userIDs []uint64) (int64, error)
}

// MilestoneRepository defines the interface for milestone data access
type MilestoneRepository interface {
	// Create creates a new milestone
	Create(milestone *models.Milestone) error

	// FindByID finds a milestone by ID
	FindByID(id uint64) (*models.Milestone, error)

	// ListByProject lists a project's milestones in planned order
	ListByProject(projectID uint64) ([]models.Milestone, error)

	// Update updates a milestone
	Update(milestone *models.Milestone) error

	// Delete deletes a milestone and detaches its tasks
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListByProject retrieves every task of a project, unpaginated
	ListByProject(projectID uint64, preload ...string) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task and hard deletes its updates
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID   uint64
	MilestoneID *uint64
	Unassigned  bool
	EngineerID  *uint64
	Active      *bool
	SortByDue   bool
	Page        int
	PageSize    int
}

// TaskUpdateRepository defines the interface for task status update data access
type TaskUpdateRepository interface {
	// Create records a new status update
	Create(update *models.TaskUpdate) error

	// ListByTask lists a task's updates, newest upload first
	ListByTask(taskID uint64) ([]models.TaskUpdate, error)

	// ListByProject lists every update of every task in a project
	ListByProject(projectID uint64) ([]models.TaskUpdate, error)
}
