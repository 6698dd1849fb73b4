package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/config"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	domainRepo "github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/handler"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/middleware"
	"github.com/hoshigumi/clubpos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Store      *handler.StoreHandler
	Master     *handler.MasterHandler
	Cast       *handler.CastHandler
	Customer   *handler.CustomerHandler
	Bill       *handler.BillHandler
	Stay       *handler.StayHandler
	PL         *handler.PLHandler
	PayrollRun *handler.PayrollRunHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	UserRepo        domainRepo.UserRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.StoreMiddleware(deps.UserRepo))

		// Per-store rate limiter
		rateLimiter := middleware.NewStoreRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.GET("/auth/me", h.Auth.Me)
	protected.PUT("/auth/password", h.Auth.ChangePassword)

	// Stores
	registerStoreRoutes(protected, h)

	// Masters and categories
	registerMasterRoutes(protected, h)

	// Casts
	registerCastRoutes(protected, h)

	// Customers
	registerCustomerRoutes(protected, h)

	// Bills
	registerBillRoutes(protected, h, deps)

	// Reports
	registerPLRoutes(protected, h)

	// Payroll runs
	registerPayrollRoutes(protected, h)

	// Users (Owner)
	registerUserRoutes(protected, h)
}

func registerStoreRoutes(protected *gin.RouterGroup, h *Handlers) {
	stores := protected.Group("/stores")
	{
		stores.GET("", h.Store.List)
		stores.GET("/:id", h.Store.Get)
	}

	owner := stores.Group("")
	owner.Use(middleware.RequireRole(enum.RoleOwner))
	{
		owner.POST("", h.Store.Create)
		owner.PUT("/:id", h.Store.Update)
	}

	// Seat types and tables belong to the selected store
	layout := protected.Group("")
	layout.Use(middleware.RequireStore())
	layout.Use(middleware.RequireCap(enum.CapManageMaster))
	{
		layout.GET("/seat-types", h.Store.ListSeatTypes)
		layout.POST("/seat-types", h.Store.CreateSeatType)
		layout.PUT("/seat-types/:id", h.Store.UpdateSeatType)
		layout.DELETE("/seat-types/:id", h.Store.DeleteSeatType)

		layout.GET("/tables", h.Store.ListTables)
		layout.POST("/tables", h.Store.CreateTable)
		layout.PUT("/tables/:id", h.Store.UpdateTable)
		layout.DELETE("/tables/:id", h.Store.DeleteTable)
	}
}

func registerMasterRoutes(protected *gin.RouterGroup, h *Handlers) {
	masters := protected.Group("/masters")
	masters.Use(middleware.RequireStore())
	masters.Use(middleware.RequireCap(enum.CapManageMaster))
	{
		masters.GET("", h.Master.List)
		masters.POST("", h.Master.Create)
		masters.GET("/:id", h.Master.Get)
		masters.PUT("/:id", h.Master.Update)
		masters.DELETE("/:id", h.Master.Delete)
	}

	categories := protected.Group("/categories")
	categories.Use(middleware.RequireCap(enum.CapManageMaster))
	{
		categories.GET("", h.Master.ListCategories)
		categories.POST("", h.Master.CreateCategory)
		categories.PUT("/:code", h.Master.UpdateCategory)
	}
}

func registerCastRoutes(protected *gin.RouterGroup, h *Handlers) {
	casts := protected.Group("/casts")
	casts.Use(middleware.RequireStore())
	{
		casts.GET("", h.Cast.List)
		casts.GET("/:id", h.Cast.Get)
		casts.GET("/:id/attendances", h.Cast.ListAttendances)
		casts.GET("/:id/summaries", h.Cast.ListDailySummaries)
	}

	manage := casts.Group("")
	manage.Use(middleware.RequireCap(enum.CapManageMaster))
	{
		manage.POST("", h.Cast.Create)
		manage.PUT("/:id", h.Cast.Update)
		manage.DELETE("/:id", h.Cast.Delete)
		manage.PUT("/:id/category-rates/:code", h.Cast.SetCategoryRate)
		manage.DELETE("/:id/category-rates/:code", h.Cast.DeleteCategoryRate)
	}

	attendance := casts.Group("")
	attendance.Use(middleware.RequireCap(enum.CapOperateOrders))
	{
		attendance.POST("/:id/clock-in", h.Cast.ClockIn)
		attendance.POST("/:id/clock-out", h.Cast.ClockOut)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	customers.Use(middleware.RequireStore())
	customers.Use(middleware.RequireCap(enum.CapOperateOrders))
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
	}
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	bills := protected.Group("/bills")
	bills.Use(middleware.RequireStore())

	operate := bills.Group("")
	operate.Use(middleware.RequireCap(enum.CapOperateOrders))
	{
		operate.GET("", h.Bill.List)
		operate.GET("/:id", h.Bill.Get)

		// Opening and closing use idempotency middleware so a retried
		// request cannot double-open or double-settle
		operate.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Bill.Open)
		operate.POST("/:id/close", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Bill.Close)
		operate.POST("/:id/reopen", h.Bill.Reopen)

		operate.POST("/:id/items", h.Bill.AddLine)
		operate.PUT("/:id/items/:item_id", h.Bill.UpdateLineQty)
		operate.DELETE("/:id/items/:item_id", h.Bill.DeleteLine)

		operate.PUT("/:id/discount", h.Bill.SetDiscount)
		operate.PUT("/:id/charges", h.Bill.SetChargeFlags)
		operate.PUT("/:id/pax", h.Bill.SetPax)
		operate.PUT("/:id/main-cast", h.Bill.SetMainCast)
		operate.PUT("/:id/nominated-casts", h.Bill.ReplaceNominatedCasts)
		operate.POST("/:id/reconcile", h.Bill.Reconcile)

		operate.GET("/:id/snapshot", h.Bill.SnapshotStatus)
		operate.POST("/:id/snapshot/regenerate", h.Bill.RegenerateSnapshot)

		// Stays and customer presence
		operate.POST("/:id/stays", h.Stay.SeatCast)
		operate.POST("/:id/stays/:cast_id/end", h.Stay.EndStay)
		operate.POST("/:id/customers", h.Stay.AttachCustomer)
		operate.POST("/:id/customers/:customer_id/leave", h.Stay.MarkCustomerLeft)
		operate.POST("/:id/customers/:customer_id/nominations", h.Stay.StartNomination)
		operate.POST("/:id/customers/:customer_id/nominations/:cast_id/end", h.Stay.EndNomination)
	}

	// Casts may record orders they served themselves
	selfOrder := bills.Group("")
	selfOrder.Use(middleware.RequireCap(enum.CapCastOrderSelf))
	{
		selfOrder.POST("/:id/self-items", h.Bill.AddLineAsCast)
	}
}

func registerPLRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports/pl")
	reports.Use(middleware.RequireStore())
	reports.Use(middleware.RequireCap(enum.CapViewPLStore))
	{
		reports.GET("/daily", h.PL.Daily)
		reports.GET("/monthly", h.PL.Monthly)
	}

	multi := protected.Group("/reports/pl")
	multi.Use(middleware.RequireStore())
	multi.Use(middleware.RequireCap(enum.CapViewPLMulti))
	{
		multi.GET("/yearly", h.PL.Yearly)
	}
}

func registerPayrollRoutes(protected *gin.RouterGroup, h *Handlers) {
	payroll := protected.Group("/payroll-runs")
	payroll.Use(middleware.RequireStore())
	payroll.Use(middleware.RequireCap(enum.CapViewPLStore))
	{
		payroll.GET("", h.PayrollRun.List)
		payroll.POST("", h.PayrollRun.Create)
		payroll.GET("/:id", h.PayrollRun.Get)
		payroll.GET("/:id/export", h.PayrollRun.ExportCSV)
		payroll.DELETE("/:id", h.PayrollRun.Delete)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequireCap(enum.CapUserManage))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
	}
}
