package service

import (
	"context"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
	"github.com/hoshigumi/clubpos-api/pkg/pagination"
	"github.com/hoshigumi/clubpos-api/pkg/utils"
)

// UserService handles user management operations
type UserService struct {
	userRepo  repository.UserRepository
	storeRepo repository.StoreRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, storeRepo repository.StoreRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		storeRepo: storeRepo,
	}
}

// CreateUserInput represents the input for creating a user
type CreateUserInput struct {
	Name           string
	Email          string
	Password       string
	Role           enum.Role
	PrimaryStoreID *uint
	StoreIDs       []uint
}

// CreateUser creates a new user account with store memberships
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	if !input.Role.Valid() {
		return nil, apperror.NewBadRequestError("Unknown role")
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	storeIDs, err := s.resolveStores(ctx, input.PrimaryStoreID, input.StoreIDs)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := hashUserPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:           input.Name,
		Email:          input.Email,
		Password:       hashedPassword,
		Role:           input.Role,
		PrimaryStoreID: input.PrimaryStoreID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if len(storeIDs) > 0 {
		if err := s.userRepo.ReplaceStores(ctx, user.ID, storeIDs); err != nil {
			return nil, err
		}
	}

	return s.userRepo.GetWithStores(ctx, user.ID)
}

// GetUser returns a user by ID with store memberships
func (s *UserService) GetUser(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := s.userRepo.GetWithStores(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ListUsersInput represents the input for listing users
type ListUsersInput struct {
	Page    int
	PerPage int
	Search  string
}

// ListUsersOutput represents the output for listing users
type ListUsersOutput struct {
	Users      []entity.User
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// ListUsers returns a paginated list of users
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	params := &pagination.PaginationParams{
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	params.Validate()

	users, total, err := s.userRepo.List(ctx, params, input.Search)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / params.PerPage
	if int(total)%params.PerPage > 0 {
		totalPages++
	}

	return &ListUsersOutput{
		Users:      users,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
	}, nil
}

// UpdateUserInput represents the input for updating a user
type UpdateUserInput struct {
	UserID         uint
	Name           *string
	Email          *string
	Password       *string
	Role           *enum.Role
	PrimaryStoreID *uint
	StoreIDs       []uint
}

// UpdateUser updates a user's account and store memberships
func (s *UserService) UpdateUser(ctx context.Context, input *UpdateUserInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, apperror.NewConflictError("Email already registered")
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		hashedPassword, err := hashUserPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashedPassword
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperror.NewBadRequestError("Unknown role")
		}
		user.Role = *input.Role
	}
	if input.PrimaryStoreID != nil {
		if _, err := s.requireStore(ctx, *input.PrimaryStoreID); err != nil {
			return nil, err
		}
		user.PrimaryStoreID = input.PrimaryStoreID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if input.StoreIDs != nil {
		storeIDs, err := s.resolveStores(ctx, user.PrimaryStoreID, input.StoreIDs)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.ReplaceStores(ctx, user.ID, storeIDs); err != nil {
			return nil, err
		}
	}

	return s.userRepo.GetWithStores(ctx, user.ID)
}

// DeleteUser soft-deletes a user account
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}
	if user.Role == enum.RoleOwner {
		return apperror.NewForbiddenError("Owner accounts cannot be deleted")
	}
	return s.userRepo.Delete(ctx, userID)
}

// resolveStores verifies the membership list and folds in the primary store
func (s *UserService) resolveStores(ctx context.Context, primary *uint, storeIDs []uint) ([]uint, error) {
	seen := make(map[uint]bool)
	out := make([]uint, 0, len(storeIDs)+1)
	add := func(id uint) error {
		if seen[id] {
			return nil
		}
		if _, err := s.requireStore(ctx, id); err != nil {
			return err
		}
		seen[id] = true
		out = append(out, id)
		return nil
	}

	if primary != nil {
		if err := add(*primary); err != nil {
			return nil, err
		}
	}
	for _, id := range storeIDs {
		if err := add(id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *UserService) requireStore(ctx context.Context, storeID uint) (*entity.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.NewNotFoundError("Store")
	}
	return store, nil
}

func hashUserPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", apperror.NewBadRequestError("Password must be at least 8 characters")
	}
	return utils.HashPassword(password)
}
