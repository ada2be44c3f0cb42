package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrInvalidCustomerName = errors.New("customer name cannot be empty")
	ErrCustomerPermission  = errors.New("only the customer's creator or an owner of one of its projects can change it")
)

// CustomerService provides business logic for the client companies projects are run for.
// Customers form a shared directory: any user may list them and pick one for a
// new project, but only projects the viewer belongs to are shown and edits are
// limited to the creator and owners of the customer's projects.
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

type CreateCustomerInput struct {
	Name         string
	ContactEmail string
	Phone        string
	Address      string
	CreatorID    uint64
}

func (s *CustomerService) CreateCustomer(input CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidCustomerName
	}

	customer := &models.Customer{
		Name:         name,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      input.Address,
		CreatorID:    input.CreatorID,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *CustomerService) ListCustomers(page, pageSize int) ([]models.Customer, int64, error) {
	customers, total, err := s.customerRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

// GetCustomer returns a customer with the projects viewerID is a member of
func (s *CustomerService) GetCustomer(id, viewerID uint64) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByIDForUser(id, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return customer, nil
}

type UpdateCustomerInput struct {
	Name         *string
	ContactEmail *string
	Phone        *string
	Address      *string
}

func (s *CustomerService) UpdateCustomer(id, actorID uint64, input UpdateCustomerInput) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	if customer.CreatorID != actorID {
		owner, err := s.customerRepo.IsProjectOwner(id, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to check customer access: %w", err)
		}
		if !owner {
			return nil, ErrCustomerPermission
		}
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidCustomerName
		}
		customer.Name = name
	}
	if input.ContactEmail != nil {
		customer.ContactEmail = strings.TrimSpace(*input.ContactEmail)
	}
	if input.Phone != nil {
		customer.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}

	customer.Projects = nil
	if err := s.customerRepo.Update(customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}
