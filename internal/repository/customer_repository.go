package repository

import (
	"github.com/yukikurage/project-progress-api/internal/database"
	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/utils"
	"gorm.io/gorm"
)

// GormCustomerRepository is a GORM implementation of CustomerRepository
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

func (r *GormCustomerRepository) FindByID(id uint64) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Preload("Projects").First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *GormCustomerRepository) FindByIDForUser(id, userID uint64) (*models.Customer, error) {
	memberOf := r.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)

	var customer models.Customer
	if err := r.db.Preload("Projects", "id IN (?)", memberOf).First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *GormCustomerRepository) IsProjectOwner(customerID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("projects.customer_id = ? AND project_members.user_id = ? AND project_members.role = ?",
			customerID, userID, models.RoleOwner).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormCustomerRepository) List(page, pageSize int) ([]models.Customer, int64, error) {
	var total int64
	if err := r.db.Model(&models.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Order("name ASC")
	if page > 0 && pageSize > 0 {
		query = query.Scopes(database.Paginate(utils.NewPaginationParams(page, pageSize)))
	}

	customers := []models.Customer{}
	if err := query.Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *GormCustomerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}
