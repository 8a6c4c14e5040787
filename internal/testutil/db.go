package testutil

import (
	"fmt"
	"testing"

	"petstore-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens an isolated in-memory database with the service schema
// migrated. Each call gets its own database; the handle is closed when the
// test finishes.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// A single connection keeps the shared in-memory database alive.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.Pet{},
		&model.Order{},
		&model.OrderItem{},
		&model.Transaction{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

// SeedPet inserts a sellable pet with the given price in major units.
func SeedPet(t *testing.T, db *gorm.DB, id, name string, price float64, available bool) model.Pet {
	t.Helper()

	pet := model.Pet{
		ID:        id,
		Name:      name,
		Type:      "dog",
		Breed:     "mixed",
		Age:       "2",
		Price:     decimal.NewFromFloat(price),
		Available: available,
	}
	if err := db.Create(&pet).Error; err != nil {
		t.Fatalf("seed pet %s: %v", id, err)
	}
	return pet
}
