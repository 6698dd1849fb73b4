package database

import (
	"fmt"
	"log"

	"github.com/hoshigumi/clubpos-api/internal/config"
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Account entities
		&entity.User{},

		// Store master entities
		&entity.Store{},
		&entity.SeatType{},
		&entity.Table{},
		&entity.ItemCategory{},
		&entity.ItemMaster{},

		// Cast entities
		&entity.Cast{},
		&entity.CastCategoryRate{},
		&entity.CastAttendance{},
		&entity.CastDailySummary{},

		// CRM entities
		&entity.Customer{},

		// Billing entities
		&entity.Bill{},
		&entity.BillItem{},
		&entity.BillCastStay{},
		&entity.BillCustomer{},
		&entity.BillCustomerNomination{},
		&entity.CastPayout{},

		// Payroll export entities
		&entity.PayrollRun{},
		&entity.PayrollRunLine{},
		&entity.PayrollRunBackRow{},

		// System entities
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// defaultCategories are the shared category rows every deployment
// needs. Set and extension must exist before time-charge
// reconciliation can create its auto lines.
func defaultCategories() []entity.ItemCategory {
	return []entity.ItemCategory{
		{Code: "set", Name: "セット", MajorGroup: enum.GroupSet},
		{Code: "extension", Name: "延長", MajorGroup: enum.GroupExtension},
		{Code: "drink", Name: "ドリンク", MajorGroup: enum.GroupDrink},
		{Code: "champagne", Name: "シャンパン", MajorGroup: enum.GroupChampagne},
		{Code: "food", Name: "フード", MajorGroup: enum.GroupFood},
		{Code: "other", Name: "その他", MajorGroup: enum.GroupOther},
		{Code: "other_fee", Name: "諸経費", MajorGroup: enum.GroupOtherFee},
	}
}

// SeedDefaultData seeds the database with default data (categories, owner user)
func SeedDefaultData(db *gorm.DB) error {
	log.Println("Seeding default data...")

	for _, cat := range defaultCategories() {
		var existing entity.ItemCategory
		if err := db.Where("code = ?", cat.Code).First(&existing).Error; err != nil {
			if err := db.Create(&cat).Error; err != nil {
				log.Printf("Warning: failed to create category %s: %v", cat.Code, err)
			}
		}
	}

	// Create owner user if configured via environment variables
	ownerEmail := viper.GetString("OWNER_EMAIL")
	ownerPassword := viper.GetString("OWNER_PASSWORD")
	ownerName := viper.GetString("OWNER_NAME")

	if ownerEmail != "" && ownerPassword != "" {
		var existingOwner entity.User
		if err := db.Where("email = ?", ownerEmail).First(&existingOwner).Error; err != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(ownerPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("Warning: failed to hash owner password: %v", err)
			} else {
				if ownerName == "" {
					ownerName = "Owner"
				}
				owner := entity.User{
					Name:     ownerName,
					Email:    ownerEmail,
					Password: string(hashedPassword),
					Role:     enum.RoleOwner,
				}
				if err := db.Create(&owner).Error; err != nil {
					log.Printf("Warning: failed to create owner user: %v", err)
				} else {
					log.Printf("Owner user created: %s", ownerEmail)
				}
			}
		} else {
			log.Printf("Owner user already exists: %s", ownerEmail)
		}
	}

	log.Println("Default data seeding completed")
	return nil
}
