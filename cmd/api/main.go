package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/application/payroll"
	"github.com/hoshigumi/clubpos-api/internal/application/service"
	"github.com/hoshigumi/clubpos-api/internal/config"
	"github.com/hoshigumi/clubpos-api/internal/infrastructure/cache"
	"github.com/hoshigumi/clubpos-api/internal/infrastructure/database"
	"github.com/hoshigumi/clubpos-api/internal/infrastructure/repository"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/handler"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/routes"
	"github.com/hoshigumi/clubpos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	seatTypeRepo := repository.NewSeatTypeRepository(db)
	tableRepo := repository.NewTableRepository(db)
	masterRepo := repository.NewItemMasterRepository(db)
	categoryRepo := repository.NewItemCategoryRepository(db)
	castRepo := repository.NewCastRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	summaryRepo := repository.NewDailySummaryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	billRepo := repository.NewBillRepository(db)
	billItemRepo := repository.NewBillItemRepository(db)
	stayRepo := repository.NewStayRepository(db)
	payoutRepo := repository.NewCastPayoutRepository(db)
	plRepo := repository.NewPLRepository(db)
	payrollRunRepo := repository.NewPayrollRunRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	txManager := repository.NewTxManager(db)

	// P/L report cache, Redis-backed when configured
	var reportCache cache.ReportCache = cache.NoopReportCache{}
	if cfg.Redis.Addr != "" {
		reportCache = cache.NewRedisReportCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	// Register the built-in payroll engines
	payroll.RegisterBuiltins()
	payrollSettings := payroll.Settings{
		UseTimeboxedNomPool: cfg.Payroll.UseTimeboxedNomPool,
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo, storeRepo)
	storeService := service.NewStoreService(storeRepo, seatTypeRepo, tableRepo)
	masterService := service.NewMasterService(masterRepo, categoryRepo, storeRepo)
	castService := service.NewCastService(castRepo, userRepo, storeRepo, categoryRepo, attendanceRepo, summaryRepo, billRepo)
	customerService := service.NewCustomerService(customerRepo)
	billService := service.NewBillService(billRepo, billItemRepo, stayRepo, payoutRepo, storeRepo, tableRepo, masterRepo, categoryRepo, castRepo, customerRepo, txManager, payrollSettings)
	stayService := service.NewStayService(billRepo, stayRepo, castRepo, customerRepo, txManager)
	plService := service.NewPLService(plRepo, storeRepo, reportCache, cfg.Redis.CacheTTL)
	payrollRunService := service.NewPayrollRunService(payrollRunRepo, billRepo, castRepo, attendanceRepo, storeRepo, txManager, payrollSettings)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		User:       handler.NewUserHandler(userService),
		Store:      handler.NewStoreHandler(storeService),
		Master:     handler.NewMasterHandler(masterService),
		Cast:       handler.NewCastHandler(castService),
		Customer:   handler.NewCustomerHandler(customerService),
		Bill:       handler.NewBillHandler(billService),
		Stay:       handler.NewStayHandler(stayService),
		PL:         handler.NewPLHandler(plService),
		PayrollRun: handler.NewPayrollRunHandler(payrollRunService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		UserRepo:        userRepo,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
