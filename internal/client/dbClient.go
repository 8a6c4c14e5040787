package client

import (
	"log"
	"time"

	"petstore-backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func InitMysqlClient(databaseURL string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		// Surface duplicate-key failures as gorm.ErrDuplicatedKey so the
		// fulfillment path can treat them as benign replays.
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Pet{},
		&model.Order{},
		&model.OrderItem{},
		&model.Transaction{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}
