package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hoshigumi/clubpos-api/internal/application/payroll"
	"github.com/hoshigumi/clubpos-api/internal/application/service"
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
)

type stubTx struct{}

func (stubTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type stubBillRepo struct {
	repository.BillRepository
	bill    *entity.Bill
	updates []map[string]interface{}
}

func (s *stubBillRepo) GetWithAll(ctx context.Context, id uint) (*entity.Bill, error) {
	return s.bill, nil
}

func (s *stubBillRepo) GetWithAllForUpdate(ctx context.Context, id uint) (*entity.Bill, error) {
	return s.bill, nil
}

func (s *stubBillRepo) UpdateColumns(ctx context.Context, id uint, values map[string]interface{}) error {
	s.updates = append(s.updates, values)
	return nil
}

type stubStoreRepo struct {
	repository.StoreRepository
	store *entity.Store
}

func (s *stubStoreRepo) GetByID(ctx context.Context, id uint) (*entity.Store, error) {
	return s.store, nil
}

func newDiscountRouter(t *testing.T) (*gin.Engine, *stubBillRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	billRepo := &stubBillRepo{bill: &entity.Bill{
		ID:       1,
		TableID:  1,
		OpenedAt: time.Now().Add(-time.Hour),
		Table:    entity.Table{ID: 1, StoreID: 1},
	}}
	storeRepo := &stubStoreRepo{store: &entity.Store{ID: 1, Slug: "main", ServiceRate: 0.10, TaxRate: 0.10}}

	svc := service.NewBillService(
		billRepo, nil, nil, nil, storeRepo,
		nil, nil, nil, nil, nil,
		stubTx{}, payroll.Settings{},
	)
	h := NewBillHandler(svc)

	router := gin.New()
	router.PUT("/bills/:id/discount", h.SetDiscount)
	return router, billRepo
}

func TestSetDiscountKeepsOnlyProvidedField(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantContain string
		wantAbsent  string
	}{
		{"percent only", `{"percent_off":0.1}`, "percent_off", "amount_off"},
		{"amount only", `{"amount_off":500}`, "amount_off", "percent_off"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, billRepo := newDiscountRouter(t)

			req := httptest.NewRequest(http.MethodPut, "/bills/1/discount", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
			}
			if len(billRepo.updates) == 0 {
				t.Fatal("no update recorded")
			}
			raw, ok := billRepo.updates[0]["discount_rule"].(string)
			if !ok {
				t.Fatalf("discount_rule = %v, want serialized rule", billRepo.updates[0]["discount_rule"])
			}
			if !strings.Contains(raw, tc.wantContain) {
				t.Fatalf("rule %q misses %q", raw, tc.wantContain)
			}
			if strings.Contains(raw, tc.wantAbsent) {
				t.Fatalf("rule %q must not carry %q", raw, tc.wantAbsent)
			}
		})
	}
}

func TestSetDiscountClear(t *testing.T) {
	router, billRepo := newDiscountRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/bills/1/discount", strings.NewReader(`{"clear":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	if billRepo.updates[0]["discount_rule"] != nil {
		t.Fatalf("discount_rule = %v, want nil", billRepo.updates[0]["discount_rule"])
	}
}

func TestSetDiscountRejectsBothFields(t *testing.T) {
	router, _ := newDiscountRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/bills/1/discount",
		strings.NewReader(`{"amount_off":500,"percent_off":0.1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
