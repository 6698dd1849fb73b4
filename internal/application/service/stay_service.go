package service

import (
	"context"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
)

// StayService manages cast stays, customer presences and nomination
// intervals on open bills
type StayService struct {
	billRepo     repository.BillRepository
	stayRepo     repository.StayRepository
	castRepo     repository.CastRepository
	customerRepo repository.CustomerRepository
	txManager    repository.TxManager
}

// NewStayService creates a new stay service
func NewStayService(
	billRepo repository.BillRepository,
	stayRepo repository.StayRepository,
	castRepo repository.CastRepository,
	customerRepo repository.CustomerRepository,
	txManager repository.TxManager,
) *StayService {
	return &StayService{
		billRepo:     billRepo,
		stayRepo:     stayRepo,
		castRepo:     castRepo,
		customerRepo: customerRepo,
		txManager:    txManager,
	}
}

func (s *StayService) openBill(ctx context.Context, billID uint) (*entity.Bill, error) {
	bill, err := s.billRepo.GetWithAll(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if bill.IsClosed() {
		return nil, apperror.NewConflictError("Bill is already closed")
	}
	return bill, nil
}

// SeatCastInput represents seating a cast at a bill
type SeatCastInput struct {
	CastID      uint
	StayType    enum.StayType
	IsHonshimei bool
	EnteredAt   *time.Time
}

// SeatCast opens a stay for a cast on a bill. A cast has at most one
// open stay per bill.
func (s *StayService) SeatCast(ctx context.Context, billID uint, input *SeatCastInput) (*entity.BillCastStay, error) {
	if !input.StayType.Valid() {
		return nil, apperror.NewBadRequestError("Unknown stay type")
	}

	bill, err := s.openBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	cast, err := s.castRepo.GetByID(ctx, input.CastID)
	if err != nil {
		return nil, err
	}
	if cast == nil || cast.StoreID != bill.Table.StoreID {
		return nil, apperror.NewNotFoundError("Cast")
	}

	existing, err := s.stayRepo.OpenStay(ctx, billID, input.CastID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Cast is already seated on this bill")
	}

	enteredAt := time.Now()
	if input.EnteredAt != nil {
		enteredAt = *input.EnteredAt
	}

	stay := &entity.BillCastStay{
		BillID:      billID,
		CastID:      input.CastID,
		EnteredAt:   enteredAt,
		StayType:    input.StayType,
		IsHonshimei: input.IsHonshimei,
	}
	if err := s.stayRepo.CreateStay(ctx, stay); err != nil {
		return nil, err
	}
	return stay, nil
}

// EndStay closes a cast's open stay on a bill
func (s *StayService) EndStay(ctx context.Context, billID, castID uint) (*entity.BillCastStay, error) {
	if _, err := s.openBill(ctx, billID); err != nil {
		return nil, err
	}

	stay, err := s.stayRepo.OpenStay(ctx, billID, castID)
	if err != nil {
		return nil, err
	}
	if stay == nil {
		return nil, apperror.NewNotFoundError("Open stay")
	}

	now := time.Now()
	stay.LeftAt = &now
	if err := s.stayRepo.UpdateStay(ctx, stay); err != nil {
		return nil, err
	}
	return stay, nil
}

// AttachCustomer links a known customer to a bill and records arrival
func (s *StayService) AttachCustomer(ctx context.Context, billID, customerID uint, arrivedAt *time.Time) (*entity.BillCustomer, error) {
	bill, err := s.openBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.StoreID != bill.Table.StoreID {
		return nil, apperror.NewNotFoundError("Customer")
	}

	existing, err := s.stayRepo.GetBillCustomer(ctx, billID, customerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Customer is already on this bill")
	}

	at := time.Now()
	if arrivedAt != nil {
		at = *arrivedAt
	}
	bc := &entity.BillCustomer{
		BillID:     billID,
		CustomerID: customerID,
		ArrivedAt:  &at,
	}
	if err := s.stayRepo.CreateBillCustomer(ctx, bc); err != nil {
		return nil, err
	}
	return bc, nil
}

// MarkCustomerLeft records a customer's departure time
func (s *StayService) MarkCustomerLeft(ctx context.Context, billID, customerID uint, leftAt *time.Time) (*entity.BillCustomer, error) {
	if _, err := s.openBill(ctx, billID); err != nil {
		return nil, err
	}

	bc, err := s.stayRepo.GetBillCustomer(ctx, billID, customerID)
	if err != nil {
		return nil, err
	}
	if bc == nil {
		return nil, apperror.NewNotFoundError("Bill customer")
	}
	if bc.LeftAt != nil {
		return nil, apperror.NewConflictError("Customer has already left")
	}

	at := time.Now()
	if leftAt != nil {
		at = *leftAt
	}
	if bc.ArrivedAt != nil && at.Before(*bc.ArrivedAt) {
		return nil, apperror.NewBadRequestError("Departure cannot precede arrival")
	}
	bc.LeftAt = &at
	if err := s.stayRepo.UpdateBillCustomer(ctx, bc); err != nil {
		return nil, err
	}
	return bc, nil
}

// StartNomination opens a nomination interval of a cast by a customer.
// The customer must be present on the bill.
func (s *StayService) StartNomination(ctx context.Context, billID, customerID, castID uint) (*entity.BillCustomerNomination, error) {
	bill, err := s.openBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	bc, err := s.stayRepo.GetBillCustomer(ctx, billID, customerID)
	if err != nil {
		return nil, err
	}
	if bc == nil {
		return nil, apperror.NewNotFoundError("Bill customer")
	}

	cast, err := s.castRepo.GetByID(ctx, castID)
	if err != nil {
		return nil, err
	}
	if cast == nil || cast.StoreID != bill.Table.StoreID {
		return nil, apperror.NewNotFoundError("Cast")
	}

	existing, err := s.stayRepo.GetNomination(ctx, billID, customerID, castID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Nomination already recorded for this customer and cast")
	}

	nom := &entity.BillCustomerNomination{
		BillID:     billID,
		CustomerID: customerID,
		CastID:     castID,
		StartedAt:  time.Now(),
	}
	if err := s.stayRepo.CreateNomination(ctx, nom); err != nil {
		return nil, err
	}
	return nom, nil
}

// EndNomination closes a nomination interval
func (s *StayService) EndNomination(ctx context.Context, billID, customerID, castID uint) (*entity.BillCustomerNomination, error) {
	if _, err := s.openBill(ctx, billID); err != nil {
		return nil, err
	}

	nom, err := s.stayRepo.GetNomination(ctx, billID, customerID, castID)
	if err != nil {
		return nil, err
	}
	if nom == nil {
		return nil, apperror.NewNotFoundError("Nomination")
	}
	if nom.EndedAt != nil {
		return nil, apperror.NewConflictError("Nomination has already ended")
	}

	now := time.Now()
	nom.EndedAt = &now
	if err := s.stayRepo.UpdateNomination(ctx, nom); err != nil {
		return nil, err
	}
	return nom, nil
}
