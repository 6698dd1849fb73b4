package service

import (
	"context"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
	"github.com/hoshigumi/clubpos-api/pkg/pagination"
)

// MasterService handles item master and item category management
type MasterService struct {
	masterRepo   repository.ItemMasterRepository
	categoryRepo repository.ItemCategoryRepository
	storeRepo    repository.StoreRepository
}

// NewMasterService creates a new master service
func NewMasterService(
	masterRepo repository.ItemMasterRepository,
	categoryRepo repository.ItemCategoryRepository,
	storeRepo repository.StoreRepository,
) *MasterService {
	return &MasterService{
		masterRepo:   masterRepo,
		categoryRepo: categoryRepo,
		storeRepo:    storeRepo,
	}
}

// CreateItemMasterInput represents the input for creating an item master
type CreateItemMasterInput struct {
	StoreID      uint
	Code         string
	Name         string
	PriceRegular int64
	Cost         *int64
	DurationMin  int
	ApplyService *bool
	ExcludeFromPayout bool
	CategoryCode string
}

func (in *CreateItemMasterInput) validate() error {
	var fieldErrors []apperror.FieldError
	if in.Code == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "code", Message: "is required"})
	}
	if in.Name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if in.PriceRegular < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price_regular", Message: "must not be negative"})
	}
	if in.Cost != nil && *in.Cost < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "cost", Message: "must not be negative"})
	}
	if in.DurationMin < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "duration_min", Message: "must not be negative"})
	}
	if in.CategoryCode == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "category_code", Message: "is required"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateItemMaster creates a new item master
func (s *MasterService) CreateItemMaster(ctx context.Context, input *CreateItemMasterInput) (*entity.ItemMaster, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	store, err := s.storeRepo.GetByID(ctx, input.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.NewNotFoundError("Store")
	}

	category, err := s.categoryRepo.GetByCode(ctx, input.CategoryCode)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Item category")
	}

	existing, err := s.masterRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.StoreID == input.StoreID {
		return nil, apperror.NewConflictError("Item code already in use")
	}

	applyService := true
	if input.ApplyService != nil {
		applyService = *input.ApplyService
	}

	master := &entity.ItemMaster{
		StoreID:           input.StoreID,
		Code:              input.Code,
		Name:              input.Name,
		PriceRegular:      input.PriceRegular,
		Cost:              input.Cost,
		DurationMin:       input.DurationMin,
		ApplyService:      applyService,
		ExcludeFromPayout: input.ExcludeFromPayout,
		ItemCategoryCode:  input.CategoryCode,
	}
	if err := s.masterRepo.Create(ctx, master); err != nil {
		return nil, err
	}
	return master, nil
}

// GetItemMaster returns an item master by ID
func (s *MasterService) GetItemMaster(ctx context.Context, masterID uint) (*entity.ItemMaster, error) {
	master, err := s.masterRepo.GetByID(ctx, masterID)
	if err != nil {
		return nil, err
	}
	if master == nil {
		return nil, apperror.NewNotFoundError("Item master")
	}
	return master, nil
}

// ListItemMastersInput represents the input for listing item masters
type ListItemMastersInput struct {
	Page         int
	PerPage      int
	Search       string
	CategoryCode string
}

// ListItemMastersOutput represents the output for listing item masters
type ListItemMastersOutput struct {
	Masters    []entity.ItemMaster
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// ListItemMasters returns a paginated list of the current store's masters
func (s *MasterService) ListItemMasters(ctx context.Context, input *ListItemMastersInput) (*ListItemMastersOutput, error) {
	params := &repository.MasterFilterParams{
		Search:       input.Search,
		CategoryCode: input.CategoryCode,
		Pagination: pagination.PaginationParams{
			Page:    input.Page,
			PerPage: input.PerPage,
		},
	}
	params.Pagination.Validate()

	masters, total, err := s.masterRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / params.Pagination.PerPage
	if int(total)%params.Pagination.PerPage > 0 {
		totalPages++
	}

	return &ListItemMastersOutput{
		Masters:    masters,
		Total:      total,
		Page:       params.Pagination.Page,
		PerPage:    params.Pagination.PerPage,
		TotalPages: totalPages,
	}, nil
}

// UpdateItemMasterInput represents the input for updating an item master
type UpdateItemMasterInput struct {
	MasterID          uint
	Name              *string
	PriceRegular      *int64
	Cost              *int64
	ClearCost         bool
	DurationMin       *int
	ApplyService      *bool
	ExcludeFromPayout *bool
	CategoryCode      *string
}

// UpdateItemMaster updates an item master
func (s *MasterService) UpdateItemMaster(ctx context.Context, input *UpdateItemMasterInput) (*entity.ItemMaster, error) {
	master, err := s.GetItemMaster(ctx, input.MasterID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperror.NewBadRequestError("Name must not be empty")
		}
		master.Name = *input.Name
	}
	if input.PriceRegular != nil {
		if *input.PriceRegular < 0 {
			return nil, apperror.NewBadRequestError("Price must not be negative")
		}
		master.PriceRegular = *input.PriceRegular
	}
	if input.ClearCost {
		master.Cost = nil
	} else if input.Cost != nil {
		if *input.Cost < 0 {
			return nil, apperror.NewBadRequestError("Cost must not be negative")
		}
		master.Cost = input.Cost
	}
	if input.DurationMin != nil {
		if *input.DurationMin < 0 {
			return nil, apperror.NewBadRequestError("Duration must not be negative")
		}
		master.DurationMin = *input.DurationMin
	}
	if input.ApplyService != nil {
		master.ApplyService = *input.ApplyService
	}
	if input.ExcludeFromPayout != nil {
		master.ExcludeFromPayout = *input.ExcludeFromPayout
	}
	if input.CategoryCode != nil {
		category, err := s.categoryRepo.GetByCode(ctx, *input.CategoryCode)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Item category")
		}
		master.ItemCategoryCode = *input.CategoryCode
		master.Category = nil
	}

	if err := s.masterRepo.Update(ctx, master); err != nil {
		return nil, err
	}
	return master, nil
}

// DeleteItemMaster soft-deletes an item master
func (s *MasterService) DeleteItemMaster(ctx context.Context, masterID uint) error {
	if _, err := s.GetItemMaster(ctx, masterID); err != nil {
		return err
	}
	return s.masterRepo.Delete(ctx, masterID)
}

// CategoryInput represents the writable fields of an item category
type CategoryInput struct {
	Code       string
	Name       string
	MajorGroup enum.MajorGroup

	FreeBackRate       float64
	NominationBackRate float64
	InhouseBackRate    float64

	UseFixedPayoutFreeIn bool
	PayoutFixedPerItem   *int64
	ExcludeFromNomPool   bool
}

func (in *CategoryInput) validate() error {
	var fieldErrors []apperror.FieldError
	if in.Code == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "code", Message: "is required"})
	}
	if in.Name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if !in.MajorGroup.Valid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "major_group", Message: "unknown major group"})
	}
	for field, rate := range map[string]float64{
		"free_back_rate":       in.FreeBackRate,
		"nomination_back_rate": in.NominationBackRate,
		"inhouse_back_rate":    in.InhouseBackRate,
	} {
		if fe := validateRate(field, rate); fe != nil {
			fieldErrors = append(fieldErrors, *fe)
		}
	}
	if in.PayoutFixedPerItem != nil && *in.PayoutFixedPerItem < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "payout_fixed_per_item", Message: "must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateCategory creates a new item category
func (s *MasterService) CreateCategory(ctx context.Context, input *CategoryInput) (*entity.ItemCategory, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Category code already in use")
	}

	category := &entity.ItemCategory{
		Code:                 input.Code,
		Name:                 input.Name,
		MajorGroup:           input.MajorGroup,
		FreeBackRate:         input.FreeBackRate,
		NominationBackRate:   input.NominationBackRate,
		InhouseBackRate:      input.InhouseBackRate,
		UseFixedPayoutFreeIn: input.UseFixedPayoutFreeIn,
		PayoutFixedPerItem:   input.PayoutFixedPerItem,
		ExcludeFromNomPool:   input.ExcludeFromNomPool,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory updates an item category
func (s *MasterService) UpdateCategory(ctx context.Context, input *CategoryInput) (*entity.ItemCategory, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Item category")
	}

	category.Name = input.Name
	category.MajorGroup = input.MajorGroup
	category.FreeBackRate = input.FreeBackRate
	category.NominationBackRate = input.NominationBackRate
	category.InhouseBackRate = input.InhouseBackRate
	category.UseFixedPayoutFreeIn = input.UseFixedPayoutFreeIn
	category.PayoutFixedPerItem = input.PayoutFixedPerItem
	category.ExcludeFromNomPool = input.ExcludeFromNomPool

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns all item categories
func (s *MasterService) ListCategories(ctx context.Context) ([]entity.ItemCategory, error) {
	return s.categoryRepo.List(ctx)
}
