package service

import (
	"context"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
	"github.com/hoshigumi/clubpos-api/pkg/utils"
)

// StoreService handles store, seat type and table management
type StoreService struct {
	storeRepo    repository.StoreRepository
	seatTypeRepo repository.SeatTypeRepository
	tableRepo    repository.TableRepository
}

// NewStoreService creates a new store service
func NewStoreService(
	storeRepo repository.StoreRepository,
	seatTypeRepo repository.SeatTypeRepository,
	tableRepo repository.TableRepository,
) *StoreService {
	return &StoreService{
		storeRepo:    storeRepo,
		seatTypeRepo: seatTypeRepo,
		tableRepo:    tableRepo,
	}
}

// validateRate rejects percent-style values at the write boundary.
// Rates are stored as fractions; the resolver still normalizes legacy
// rows on read.
func validateRate(field string, rate float64) *apperror.FieldError {
	if rate < 0 || rate > 1 {
		return &apperror.FieldError{Field: field, Message: "must be a fraction between 0 and 1"}
	}
	return nil
}

func validateStoreRates(store *entity.Store) error {
	var fieldErrors []apperror.FieldError
	checks := map[string]float64{
		"service_rate":         store.ServiceRate,
		"tax_rate":             store.TaxRate,
		"free_back_rate":       store.FreeBackRate,
		"nomination_back_rate": store.NominationBackRate,
		"inhouse_back_rate":    store.InhouseBackRate,
		"dohan_back_rate":      store.DohanBackRate,
		"nom_pool_rate":        store.NomPoolRate,
	}
	for field, rate := range checks {
		if fe := validateRate(field, rate); fe != nil {
			fieldErrors = append(fieldErrors, *fe)
		}
	}
	if store.BusinessDayCutoffHour < 0 || store.BusinessDayCutoffHour > 23 {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "business_day_cutoff_hour", Message: "must be between 0 and 23",
		})
	}
	if !store.PayrollCutoffKind.Valid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "payroll_cutoff_kind", Message: "unknown cutoff kind",
		})
	}
	if store.PayrollCutoffKind == enum.CutoffDayOfMonth &&
		(store.PayrollCutoffDay < 1 || store.PayrollCutoffDay > 28) {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "payroll_cutoff_day", Message: "must be between 1 and 28",
		})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateStore creates a new store
func (s *StoreService) CreateStore(ctx context.Context, store *entity.Store) (*entity.Store, error) {
	if store.PayrollCutoffKind == "" {
		store.PayrollCutoffKind = enum.CutoffEndOfMonth
	}
	if store.Slug == "" {
		store.Slug = utils.Slugify(store.Name)
	}
	if err := validateStoreRates(store); err != nil {
		return nil, err
	}

	existing, err := s.storeRepo.GetBySlug(ctx, store.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Store slug already in use")
	}

	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// GetStore returns a store by ID
func (s *StoreService) GetStore(ctx context.Context, storeID uint) (*entity.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.NewNotFoundError("Store")
	}
	return store, nil
}

// ListStores returns all stores
func (s *StoreService) ListStores(ctx context.Context) ([]entity.Store, error) {
	return s.storeRepo.List(ctx)
}

// UpdateStoreInput represents the input for updating a store
type UpdateStoreInput struct {
	StoreID uint
	Name    *string

	ServiceRate *float64
	TaxRate     *float64

	FreeBackRate       *float64
	NominationBackRate *float64
	InhouseBackRate    *float64
	DohanBackRate      *float64
	NomPoolRate        *float64

	BusinessDayCutoffHour *int
	PayrollCutoffKind     *enum.PayrollCutoffKind
	PayrollCutoffDay      *int
}

// UpdateStore updates a store's settings
func (s *StoreService) UpdateStore(ctx context.Context, input *UpdateStoreInput) (*entity.Store, error) {
	store, err := s.GetStore(ctx, input.StoreID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		store.Name = *input.Name
	}
	if input.ServiceRate != nil {
		store.ServiceRate = *input.ServiceRate
	}
	if input.TaxRate != nil {
		store.TaxRate = *input.TaxRate
	}
	if input.FreeBackRate != nil {
		store.FreeBackRate = *input.FreeBackRate
	}
	if input.NominationBackRate != nil {
		store.NominationBackRate = *input.NominationBackRate
	}
	if input.InhouseBackRate != nil {
		store.InhouseBackRate = *input.InhouseBackRate
	}
	if input.DohanBackRate != nil {
		store.DohanBackRate = *input.DohanBackRate
	}
	if input.NomPoolRate != nil {
		store.NomPoolRate = *input.NomPoolRate
	}
	if input.BusinessDayCutoffHour != nil {
		store.BusinessDayCutoffHour = *input.BusinessDayCutoffHour
	}
	if input.PayrollCutoffKind != nil {
		store.PayrollCutoffKind = *input.PayrollCutoffKind
	}
	if input.PayrollCutoffDay != nil {
		store.PayrollCutoffDay = *input.PayrollCutoffDay
	}

	if err := validateStoreRates(store); err != nil {
		return nil, err
	}
	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// CreateSeatTypeInput represents the input for creating a seat type
type CreateSeatTypeInput struct {
	StoreID     uint
	Name        string
	ServiceRate *float64
}

// CreateSeatType creates a seat type for a store
func (s *StoreService) CreateSeatType(ctx context.Context, input *CreateSeatTypeInput) (*entity.SeatType, error) {
	if _, err := s.GetStore(ctx, input.StoreID); err != nil {
		return nil, err
	}
	if input.ServiceRate != nil {
		if fe := validateRate("service_rate", *input.ServiceRate); fe != nil {
			return nil, apperror.NewValidationError([]apperror.FieldError{*fe})
		}
	}

	seatType := &entity.SeatType{
		StoreID:     input.StoreID,
		Name:        input.Name,
		ServiceRate: input.ServiceRate,
	}
	if err := s.seatTypeRepo.Create(ctx, seatType); err != nil {
		return nil, err
	}
	return seatType, nil
}

// UpdateSeatTypeInput represents the input for updating a seat type
type UpdateSeatTypeInput struct {
	SeatTypeID  uint
	Name        *string
	ServiceRate *float64
	ClearRate   bool
}

// UpdateSeatType updates a seat type
func (s *StoreService) UpdateSeatType(ctx context.Context, input *UpdateSeatTypeInput) (*entity.SeatType, error) {
	seatType, err := s.seatTypeRepo.GetByID(ctx, input.SeatTypeID)
	if err != nil {
		return nil, err
	}
	if seatType == nil {
		return nil, apperror.NewNotFoundError("Seat type")
	}

	if input.Name != nil {
		seatType.Name = *input.Name
	}
	if input.ClearRate {
		seatType.ServiceRate = nil
	} else if input.ServiceRate != nil {
		if fe := validateRate("service_rate", *input.ServiceRate); fe != nil {
			return nil, apperror.NewValidationError([]apperror.FieldError{*fe})
		}
		seatType.ServiceRate = input.ServiceRate
	}

	if err := s.seatTypeRepo.Update(ctx, seatType); err != nil {
		return nil, err
	}
	return seatType, nil
}

// DeleteSeatType deletes a seat type
func (s *StoreService) DeleteSeatType(ctx context.Context, seatTypeID uint) error {
	seatType, err := s.seatTypeRepo.GetByID(ctx, seatTypeID)
	if err != nil {
		return err
	}
	if seatType == nil {
		return apperror.NewNotFoundError("Seat type")
	}
	return s.seatTypeRepo.Delete(ctx, seatTypeID)
}

// ListSeatTypes returns the current store's seat types
func (s *StoreService) ListSeatTypes(ctx context.Context) ([]entity.SeatType, error) {
	return s.seatTypeRepo.List(ctx)
}

// CreateTableInput represents the input for creating a table
type CreateTableInput struct {
	StoreID    uint
	Code       string
	SeatTypeID *uint
}

// CreateTable creates a table in a store
func (s *StoreService) CreateTable(ctx context.Context, input *CreateTableInput) (*entity.Table, error) {
	if _, err := s.GetStore(ctx, input.StoreID); err != nil {
		return nil, err
	}
	if input.Code == "" {
		return nil, apperror.NewBadRequestError("Table code is required")
	}
	if input.SeatTypeID != nil {
		seatType, err := s.seatTypeRepo.GetByID(ctx, *input.SeatTypeID)
		if err != nil {
			return nil, err
		}
		if seatType == nil || seatType.StoreID != input.StoreID {
			return nil, apperror.NewNotFoundError("Seat type")
		}
	}

	existing, err := s.tableRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Table code already in use")
	}

	table := &entity.Table{
		StoreID:    input.StoreID,
		Code:       input.Code,
		SeatTypeID: input.SeatTypeID,
	}
	if err := s.tableRepo.Create(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

// UpdateTableInput represents the input for updating a table
type UpdateTableInput struct {
	TableID    uint
	Code       *string
	SeatTypeID *uint
	ClearSeat  bool
}

// UpdateTable updates a table
func (s *StoreService) UpdateTable(ctx context.Context, input *UpdateTableInput) (*entity.Table, error) {
	table, err := s.tableRepo.GetByID(ctx, input.TableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperror.NewNotFoundError("Table")
	}

	if input.Code != nil && *input.Code != table.Code {
		existing, err := s.tableRepo.GetByCode(ctx, *input.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != table.ID {
			return nil, apperror.NewConflictError("Table code already in use")
		}
		table.Code = *input.Code
	}
	if input.ClearSeat {
		table.SeatTypeID = nil
	} else if input.SeatTypeID != nil {
		seatType, err := s.seatTypeRepo.GetByID(ctx, *input.SeatTypeID)
		if err != nil {
			return nil, err
		}
		if seatType == nil || seatType.StoreID != table.StoreID {
			return nil, apperror.NewNotFoundError("Seat type")
		}
		table.SeatTypeID = input.SeatTypeID
	}

	if err := s.tableRepo.Update(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

// DeleteTable deletes a table
func (s *StoreService) DeleteTable(ctx context.Context, tableID uint) error {
	table, err := s.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return err
	}
	if table == nil {
		return apperror.NewNotFoundError("Table")
	}
	return s.tableRepo.Delete(ctx, tableID)
}

// ListTables returns the current store's tables
func (s *StoreService) ListTables(ctx context.Context) ([]entity.Table, error) {
	return s.tableRepo.List(ctx)
}
