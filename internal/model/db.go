package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Pet struct {
	ID          string          `gorm:"primaryKey;size:64;not null"`
	Name        string          `gorm:"size:128;not null"`
	Type        string          `gorm:"size:32;index;not null"` // dog, cat, ...
	Breed       string          `gorm:"size:128;index"`
	Age         string          `gorm:"size:32"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Description string          `gorm:"type:text"`
	ImageURL    string          `gorm:"size:512"`
	Available   bool            `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Order struct {
	ID            string          `gorm:"primaryKey;size:64;not null"` // uuid
	UserID        string          `gorm:"size:64;index;not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status        OrderStatus     `gorm:"size:32;index;not null"`
	PaymentMethod string          `gorm:"size:32"`
	// Idempotency key for gateway-driven orders. Nil on direct orders.
	StripeSessionID *string `gorm:"size:128;uniqueIndex"`
	// Optional client-supplied idempotency token for the direct path.
	ClientToken     *string `gorm:"size:128;uniqueIndex"`
	ShippingAddress string  `gorm:"type:text"` // opaque JSON from the gateway or the client
	TrackingNumber  *string `gorm:"size:64"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  string `gorm:"size:64;index;not null"`
	PetID    string `gorm:"size:64;index;not null"`
	Quantity int32  `gorm:"not null"`
	// Unit price copied at purchase time, never read live.
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}

type Transaction struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID string `gorm:"size:64;index;not null"`
	// Gateway payment-intent id when the session carries one, session id otherwise.
	ExternalRef   string          `gorm:"size:128;index;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Currency      string          `gorm:"size:8;not null"`
	Status        TxnStatus       `gorm:"size:32;not null"`
	PaymentMethod string          `gorm:"size:32"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
