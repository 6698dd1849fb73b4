package service

import (
	"context"
	"log"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/application/payroll"
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
	"github.com/hoshigumi/clubpos-api/pkg/pagination"
)

// CastService handles cast management, rate overrides, attendance and
// the per-day work summaries.
type CastService struct {
	castRepo       repository.CastRepository
	userRepo       repository.UserRepository
	storeRepo      repository.StoreRepository
	categoryRepo   repository.ItemCategoryRepository
	attendanceRepo repository.AttendanceRepository
	summaryRepo    repository.DailySummaryRepository
	billRepo       repository.BillRepository
}

// NewCastService creates a new cast service
func NewCastService(
	castRepo repository.CastRepository,
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	categoryRepo repository.ItemCategoryRepository,
	attendanceRepo repository.AttendanceRepository,
	summaryRepo repository.DailySummaryRepository,
	billRepo repository.BillRepository,
) *CastService {
	return &CastService{
		castRepo:       castRepo,
		userRepo:       userRepo,
		storeRepo:      storeRepo,
		categoryRepo:   categoryRepo,
		attendanceRepo: attendanceRepo,
		summaryRepo:    summaryRepo,
		billRepo:       billRepo,
	}
}

func validateOptionalRates(pairs map[string]*float64) error {
	var fieldErrors []apperror.FieldError
	for field, rate := range pairs {
		if rate == nil {
			continue
		}
		if fe := validateRate(field, *rate); fe != nil {
			fieldErrors = append(fieldErrors, *fe)
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateCastInput represents the input for creating a cast
type CreateCastInput struct {
	UserID     uint
	StoreID    uint
	Name       string
	HourlyWage int64

	FreeBackRate       *float64
	NominationBackRate *float64
	InhouseBackRate    *float64
}

// CreateCast creates a cast profile bound to a user account
func (s *CastService) CreateCast(ctx context.Context, input *CreateCastInput) (*entity.Cast, error) {
	if input.Name == "" {
		return nil, apperror.NewBadRequestError("Name is required")
	}
	if input.HourlyWage < 0 {
		return nil, apperror.NewBadRequestError("Hourly wage must not be negative")
	}
	if err := validateOptionalRates(map[string]*float64{
		"free_back_rate":       input.FreeBackRate,
		"nomination_back_rate": input.NominationBackRate,
		"inhouse_back_rate":    input.InhouseBackRate,
	}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	if user.Role != enum.RoleCast {
		return nil, apperror.NewBadRequestError("User must have the cast role")
	}

	store, err := s.storeRepo.GetByID(ctx, input.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.NewNotFoundError("Store")
	}

	existing, err := s.castRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("User already has a cast profile")
	}

	cast := &entity.Cast{
		UserID:             input.UserID,
		StoreID:            input.StoreID,
		Name:               input.Name,
		HourlyWage:         input.HourlyWage,
		FreeBackRate:       input.FreeBackRate,
		NominationBackRate: input.NominationBackRate,
		InhouseBackRate:    input.InhouseBackRate,
	}
	if err := s.castRepo.Create(ctx, cast); err != nil {
		return nil, err
	}
	return cast, nil
}

// GetCast returns a cast by ID
func (s *CastService) GetCast(ctx context.Context, castID uint) (*entity.Cast, error) {
	cast, err := s.castRepo.GetByID(ctx, castID)
	if err != nil {
		return nil, err
	}
	if cast == nil {
		return nil, apperror.NewNotFoundError("Cast")
	}
	return cast, nil
}

// ListCastsInput represents the input for listing casts
type ListCastsInput struct {
	Page    int
	PerPage int
}

// ListCastsOutput represents the output for listing casts
type ListCastsOutput struct {
	Casts      []entity.Cast
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// ListCasts returns a paginated list of the current store's casts
func (s *CastService) ListCasts(ctx context.Context, input *ListCastsInput) (*ListCastsOutput, error) {
	params := &pagination.PaginationParams{
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	params.Validate()

	casts, total, err := s.castRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / params.PerPage
	if int(total)%params.PerPage > 0 {
		totalPages++
	}

	return &ListCastsOutput{
		Casts:      casts,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
	}, nil
}

// UpdateCastInput represents the input for updating a cast
type UpdateCastInput struct {
	CastID     uint
	Name       *string
	HourlyWage *int64

	FreeBackRate       *float64
	NominationBackRate *float64
	InhouseBackRate    *float64
	ClearStayRates     bool
}

// UpdateCast updates a cast's profile and stay-type rate overrides
func (s *CastService) UpdateCast(ctx context.Context, input *UpdateCastInput) (*entity.Cast, error) {
	cast, err := s.GetCast(ctx, input.CastID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperror.NewBadRequestError("Name must not be empty")
		}
		cast.Name = *input.Name
	}
	if input.HourlyWage != nil {
		if *input.HourlyWage < 0 {
			return nil, apperror.NewBadRequestError("Hourly wage must not be negative")
		}
		cast.HourlyWage = *input.HourlyWage
	}

	if input.ClearStayRates {
		cast.FreeBackRate = nil
		cast.NominationBackRate = nil
		cast.InhouseBackRate = nil
	} else {
		if err := validateOptionalRates(map[string]*float64{
			"free_back_rate":       input.FreeBackRate,
			"nomination_back_rate": input.NominationBackRate,
			"inhouse_back_rate":    input.InhouseBackRate,
		}); err != nil {
			return nil, err
		}
		if input.FreeBackRate != nil {
			cast.FreeBackRate = input.FreeBackRate
		}
		if input.NominationBackRate != nil {
			cast.NominationBackRate = input.NominationBackRate
		}
		if input.InhouseBackRate != nil {
			cast.InhouseBackRate = input.InhouseBackRate
		}
	}

	if err := s.castRepo.Update(ctx, cast); err != nil {
		return nil, err
	}
	return cast, nil
}

// DeleteCast soft-deletes a cast profile
func (s *CastService) DeleteCast(ctx context.Context, castID uint) error {
	if _, err := s.GetCast(ctx, castID); err != nil {
		return err
	}
	return s.castRepo.Delete(ctx, castID)
}

// SetCategoryRateInput represents a per-cast per-category rate override
type SetCategoryRateInput struct {
	CastID       uint
	CategoryCode string

	FreeBackRate       *float64
	NominationBackRate *float64
	InhouseBackRate    *float64
	DohanBackRate      *float64
}

// SetCategoryRate creates or replaces a (cast, category) rate override
func (s *CastService) SetCategoryRate(ctx context.Context, input *SetCategoryRateInput) (*entity.CastCategoryRate, error) {
	if _, err := s.GetCast(ctx, input.CastID); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByCode(ctx, input.CategoryCode)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Item category")
	}

	if err := validateOptionalRates(map[string]*float64{
		"free_back_rate":       input.FreeBackRate,
		"nomination_back_rate": input.NominationBackRate,
		"inhouse_back_rate":    input.InhouseBackRate,
		"dohan_back_rate":      input.DohanBackRate,
	}); err != nil {
		return nil, err
	}

	rate := &entity.CastCategoryRate{
		CastID:             input.CastID,
		ItemCategoryCode:   input.CategoryCode,
		FreeBackRate:       input.FreeBackRate,
		NominationBackRate: input.NominationBackRate,
		InhouseBackRate:    input.InhouseBackRate,
		DohanBackRate:      input.DohanBackRate,
	}
	if err := s.castRepo.UpsertCategoryRate(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// DeleteCategoryRate removes a (cast, category) rate override
func (s *CastService) DeleteCategoryRate(ctx context.Context, castID uint, categoryCode string) error {
	if _, err := s.GetCast(ctx, castID); err != nil {
		return err
	}
	return s.castRepo.DeleteCategoryRate(ctx, castID, categoryCode)
}

// ClockIn opens an attendance row for a cast. The wage is captured at
// clock-in so later edits do not rewrite history.
func (s *CastService) ClockIn(ctx context.Context, castID uint, at time.Time) (*entity.CastAttendance, error) {
	cast, err := s.GetCast(ctx, castID)
	if err != nil {
		return nil, err
	}

	open, err := s.attendanceRepo.GetOpen(ctx, castID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, apperror.NewConflictError("Cast is already clocked in")
	}

	store, err := s.storeRepo.GetByID(ctx, cast.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.NewNotFoundError("Store")
	}
	if at.IsZero() {
		at = time.Now()
	}

	att := &entity.CastAttendance{
		StoreID:    cast.StoreID,
		CastID:     castID,
		WorkDate:   payroll.BusinessDay(store, at),
		ClockInAt:  at,
		HourlyWage: cast.HourlyWage,
	}
	if err := s.attendanceRepo.Create(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

// ClockOut closes the open attendance row and refreshes the day's summary
func (s *CastService) ClockOut(ctx context.Context, castID uint, at time.Time) (*entity.CastAttendance, error) {
	cast, err := s.GetCast(ctx, castID)
	if err != nil {
		return nil, err
	}

	att, err := s.attendanceRepo.GetOpen(ctx, castID)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, apperror.NewConflictError("Cast is not clocked in")
	}
	if at.IsZero() {
		at = time.Now()
	}
	if at.Before(att.ClockInAt) {
		return nil, apperror.NewBadRequestError("Clock-out must be after clock-in")
	}

	att.ClockOutAt = &at
	if err := s.attendanceRepo.Update(ctx, att); err != nil {
		return nil, err
	}

	if err := s.RecomputeDailySummary(ctx, cast, att.WorkDate); err != nil {
		log.Printf("Warning: daily summary refresh failed for cast %d: %v", castID, err)
	}
	return att, nil
}

// ListAttendances returns a cast's attendance rows in [from, to)
func (s *CastService) ListAttendances(ctx context.Context, castID uint, from, to time.Time) ([]entity.CastAttendance, error) {
	if _, err := s.GetCast(ctx, castID); err != nil {
		return nil, err
	}
	return s.attendanceRepo.ListByCastBetween(ctx, castID, from, to)
}

// ListDailySummaries returns a cast's daily rollups in [from, to)
func (s *CastService) ListDailySummaries(ctx context.Context, castID uint, from, to time.Time) ([]entity.CastDailySummary, error) {
	if _, err := s.GetCast(ctx, castID); err != nil {
		return nil, err
	}
	return s.summaryRepo.ListByCastBetween(ctx, castID, from, to)
}

// RecomputeDailySummary rebuilds one cast's rollup for a business day
// from the attendance rows and the closed-bill snapshots of that day.
func (s *CastService) RecomputeDailySummary(ctx context.Context, cast *entity.Cast, workDate time.Time) error {
	store, err := s.storeRepo.GetByID(ctx, cast.StoreID)
	if err != nil {
		return err
	}
	if store == nil {
		return apperror.NewNotFoundError("Store")
	}

	// Business days straddle midnight; widen the clock window by the
	// cutoff and filter on the bucketed date.
	dayStart := workDate
	dayEnd := workDate.AddDate(0, 0, 2)

	summary := &entity.CastDailySummary{
		StoreID:  cast.StoreID,
		CastID:   cast.ID,
		WorkDate: workDate,
	}

	attendances, err := s.attendanceRepo.ListByCastBetween(ctx, cast.ID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	for _, att := range attendances {
		if !payroll.BusinessDay(store, att.ClockInAt).Equal(workDate) {
			continue
		}
		minutes := att.WorkedMinutes()
		summary.WorkedMin += minutes
		summary.Payroll += att.HourlyWage * int64(minutes) / 60
	}

	bills, err := s.billRepo.ListClosedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}
	for i := range bills {
		bill := &bills[i]
		if bill.ClosedAt == nil || !payroll.BusinessDay(store, *bill.ClosedAt).Equal(workDate) {
			continue
		}
		snap, err := payroll.ParseSnapshot(bill.PayrollSnapshot)
		if err != nil {
			log.Printf("Warning: unreadable payroll snapshot skipped in daily summary: %v", err)
			continue
		}
		for _, item := range snap.Items {
			if item.ServedByCastID == nil || *item.ServedByCastID != cast.ID {
				continue
			}
			switch enum.StayType(item.StayType) {
			case enum.StayFree:
				summary.FreeSales += item.Subtotal
			case enum.StayNom:
				summary.NominationSales += item.Subtotal
			case enum.StayInHouse:
				summary.InhouseSales += item.Subtotal
			case enum.StayDohan:
				summary.DohanSales += item.Subtotal
			}
		}
	}

	return s.summaryRepo.Upsert(ctx, summary)
}
