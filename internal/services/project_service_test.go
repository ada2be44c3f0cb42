package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-progress-api/internal/models"
	"gorm.io/gorm"
)

type ProjectServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	repos     testRepos
	service   *ProjectService
	customers *CustomerService
	owner     *models.User
	user      *models.User
}

func (suite *ProjectServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.repos = newTestRepos(suite.db)
	suite.service = NewProjectService(suite.repos.projects, suite.repos.customers)
	suite.customers = NewCustomerService(suite.repos.customers)
	suite.owner = createUser(suite.T(), suite.db, "owner")
	suite.user = createUser(suite.T(), suite.db, "user")
}

func (suite *ProjectServiceTestSuite) TestCreateProject_Success() {
	customer, err := suite.customers.CreateCustomer(CreateCustomerInput{Name: " Acme "})
	suite.Require().NoError(err)
	suite.Equal("Acme", customer.Name)

	project, err := suite.service.CreateProject(CreateProjectInput{
		Name:       "  Apollo ",
		CustomerID: &customer.ID,
		StartDate:  timePtr(2024, 1, 1),
		EndDate:    timePtr(2024, 6, 30),
		OwnerID:    suite.owner.ID,
	})
	suite.Require().NoError(err)
	suite.Equal("Apollo", project.Name)
	suite.NotEmpty(project.InviteCode)

	member, err := suite.service.EnsureMember(project.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Equal(models.RoleOwner, member.Role)

	loaded, err := suite.service.GetProject(project.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(loaded.Customer)
	suite.Equal("Acme", loaded.Customer.Name)
}

func (suite *ProjectServiceTestSuite) TestCreateProject_Validation() {
	_, err := suite.service.CreateProject(CreateProjectInput{Name: " ", OwnerID: suite.owner.ID})
	suite.ErrorIs(err, ErrInvalidProjectName)

	_, err = suite.service.CreateProject(CreateProjectInput{
		Name: "x", StartDate: timePtr(2024, 2, 1), EndDate: timePtr(2024, 1, 1), OwnerID: suite.owner.ID,
	})
	suite.ErrorIs(err, ErrInvalidProjectDates)

	missing := uint64(42)
	_, err = suite.service.CreateProject(CreateProjectInput{Name: "x", CustomerID: &missing, OwnerID: suite.owner.ID})
	suite.ErrorIs(err, ErrCustomerNotFound)
}

func (suite *ProjectServiceTestSuite) TestJoinAndRemoveMember() {
	project, err := suite.service.CreateProject(CreateProjectInput{Name: "Apollo", OwnerID: suite.owner.ID})
	suite.Require().NoError(err)

	_, err = suite.service.JoinProjectByInvite(suite.user.ID, "wrong")
	suite.ErrorIs(err, ErrInvalidInviteCode)

	joined, err := suite.service.JoinProjectByInvite(suite.user.ID, " "+project.InviteCode+" ")
	suite.Require().NoError(err)
	suite.Equal(project.ID, joined.ID)

	_, err = suite.service.JoinProjectByInvite(suite.user.ID, project.InviteCode)
	suite.ErrorIs(err, ErrAlreadyProjectMember)

	memberships, err := suite.service.ListProjectsForUser(suite.user.ID)
	suite.Require().NoError(err)
	suite.Len(memberships, 1)

	suite.ErrorIs(suite.service.RemoveMember(project.ID, suite.owner.ID, suite.owner.ID), ErrCannotRemoveYourself)
	suite.NoError(suite.service.RemoveMember(project.ID, suite.owner.ID, suite.user.ID))
	suite.ErrorIs(suite.service.RemoveMember(project.ID, suite.owner.ID, suite.user.ID), ErrProjectMemberNotFound)

	_, err = suite.service.EnsureMember(project.ID, suite.user.ID)
	suite.ErrorIs(err, ErrNotProjectMember)
}

func (suite *ProjectServiceTestSuite) TestRegenerateInviteCode() {
	project, err := suite.service.CreateProject(CreateProjectInput{Name: "Apollo", OwnerID: suite.owner.ID})
	suite.Require().NoError(err)
	oldCode := project.InviteCode

	updated, err := suite.service.RegenerateInviteCode(project.ID)
	suite.Require().NoError(err)
	suite.NotEqual(oldCode, updated.InviteCode)

	_, err = suite.service.JoinProjectByInvite(suite.user.ID, oldCode)
	suite.ErrorIs(err, ErrInvalidInviteCode)
}

func (suite *ProjectServiceTestSuite) TestUpdateProject() {
	customer, err := suite.customers.CreateCustomer(CreateCustomerInput{Name: "Acme"})
	suite.Require().NoError(err)
	project, err := suite.service.CreateProject(CreateProjectInput{
		Name: "Apollo", CustomerID: &customer.ID, StartDate: timePtr(2024, 1, 1), OwnerID: suite.owner.ID,
	})
	suite.Require().NoError(err)

	name := "Apollo 2"
	updated, err := suite.service.UpdateProject(project.ID, UpdateProjectInput{Name: &name, ClearCustomer: true})
	suite.Require().NoError(err)
	suite.Equal("Apollo 2", updated.Name)
	suite.Nil(updated.CustomerID)

	_, err = suite.service.UpdateProject(project.ID, UpdateProjectInput{EndDate: timePtr(2023, 12, 1)})
	suite.ErrorIs(err, ErrInvalidProjectDates)

	_, err = suite.service.UpdateProject(999, UpdateProjectInput{Name: &name})
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestDeleteProject_RemovesTasksAndUpdates() {
	project, err := suite.service.CreateProject(CreateProjectInput{Name: "Apollo", OwnerID: suite.owner.ID})
	suite.Require().NoError(err)

	task := &models.Task{ProjectID: project.ID, Name: "t", EngineerID: suite.owner.ID, CreatorID: suite.owner.ID, Active: true}
	suite.Require().NoError(suite.repos.tasks.Create(task))
	suite.Require().NoError(suite.repos.updates.Create(&models.TaskUpdate{
		TaskID: task.ID, ReporterID: suite.owner.ID, Status: "Completed",
		UpdateDate: *timePtr(2024, 1, 2), UploadedAt: time.Now(),
	}))

	suite.Require().NoError(suite.service.DeleteProject(project.ID))

	_, err = suite.service.GetProject(project.ID)
	suite.ErrorIs(err, ErrProjectNotFound)

	var updates int64
	suite.Require().NoError(suite.db.Model(&models.TaskUpdate{}).Count(&updates).Error)
	suite.Zero(updates)

	suite.ErrorIs(suite.service.DeleteProject(project.ID), ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestCustomerUpdate() {
	customer, err := suite.customers.CreateCustomer(CreateCustomerInput{Name: "Acme", Phone: " 555 ", CreatorID: suite.owner.ID})
	suite.Require().NoError(err)
	suite.Equal("555", customer.Phone)

	email := "ops@acme.test"
	updated, err := suite.customers.UpdateCustomer(customer.ID, suite.owner.ID, UpdateCustomerInput{ContactEmail: &email})
	suite.Require().NoError(err)
	suite.Equal("ops@acme.test", updated.ContactEmail)
	suite.Equal("Acme", updated.Name)

	blank := ""
	_, err = suite.customers.UpdateCustomer(customer.ID, suite.owner.ID, UpdateCustomerInput{Name: &blank})
	suite.ErrorIs(err, ErrInvalidCustomerName)

	_, err = suite.customers.UpdateCustomer(999, suite.owner.ID, UpdateCustomerInput{Name: &email})
	suite.ErrorIs(err, ErrCustomerNotFound)

	_, err = suite.customers.GetCustomer(999, suite.owner.ID)
	suite.ErrorIs(err, ErrCustomerNotFound)

	customers, total, err := suite.customers.ListCustomers(1, 10)
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Len(customers, 1)
}

func (suite *ProjectServiceTestSuite) TestCustomerAccess() {
	customer, err := suite.customers.CreateCustomer(CreateCustomerInput{Name: "Acme", CreatorID: suite.owner.ID})
	suite.Require().NoError(err)

	name := "Acme Corp"
	_, err = suite.customers.UpdateCustomer(customer.ID, suite.user.ID, UpdateCustomerInput{Name: &name})
	suite.ErrorIs(err, ErrCustomerPermission)

	// Owning a project run for the customer grants edit access
	project, err := suite.service.CreateProject(CreateProjectInput{
		Name: "Apollo", CustomerID: &customer.ID, OwnerID: suite.user.ID,
	})
	suite.Require().NoError(err)

	updated, err := suite.customers.UpdateCustomer(customer.ID, suite.user.ID, UpdateCustomerInput{Name: &name})
	suite.Require().NoError(err)
	suite.Equal("Acme Corp", updated.Name)

	// Projects are only listed to their members
	seen, err := suite.customers.GetCustomer(customer.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Empty(seen.Projects)

	seen, err = suite.customers.GetCustomer(customer.ID, suite.user.ID)
	suite.Require().NoError(err)
	suite.Require().Len(seen.Projects, 1)
	suite.Equal(project.ID, seen.Projects[0].ID)
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
