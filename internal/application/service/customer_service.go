package service

import (
	"context"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	infraRepo "github.com/hoshigumi/clubpos-api/internal/infrastructure/repository"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
	"github.com/hoshigumi/clubpos-api/pkg/pagination"
	"github.com/hoshigumi/clubpos-api/pkg/utils"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name string
	Code string
}

// CreateCustomer creates a new customer in the current store
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}
	if input.Name == "" {
		return nil, apperror.NewBadRequestError("Name is required")
	}

	code := input.Code
	if code == "" {
		code = utils.GenerateCustomerCode()
	} else {
		existing, err := s.customerRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError("Customer code already in use")
		}
	}

	customer := &entity.Customer{
		StoreID: storeID,
		Code:    code,
		Name:    input.Name,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer returns a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, customerID uint) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	CustomerID uint
	Name       *string
}

// UpdateCustomer updates a customer. Naming a stub promotes it to a
// real customer row.
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperror.NewBadRequestError("Name must not be empty")
		}
		customer.Name = *input.Name
		customer.IsStub = false
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ListCustomersInput represents the input for listing customers
type ListCustomersInput struct {
	Page    int
	PerPage int
	Search  string
}

// ListCustomersOutput represents the output for listing customers
type ListCustomersOutput struct {
	Customers  []entity.Customer
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// ListCustomers returns a paginated list of the current store's customers
func (s *CustomerService) ListCustomers(ctx context.Context, input *ListCustomersInput) (*ListCustomersOutput, error) {
	params := &pagination.PaginationParams{
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	params.Validate()

	customers, total, err := s.customerRepo.List(ctx, params, input.Search)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / params.PerPage
	if int(total)%params.PerPage > 0 {
		totalPages++
	}

	return &ListCustomersOutput{
		Customers:  customers,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
	}, nil
}
