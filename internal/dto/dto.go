package dto

import "time"

type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Breed    string  `json:"breed"`
	Age      string  `json:"age"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Quantity int32   `json:"quantity"`
}

type CreateSessionRequest struct {
	Items []CartItem `json:"items"`
}

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type CreateOrderRequest struct {
	Items           []CartItem `json:"items"`
	ShippingAddress string     `json:"shippingAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
	// Optional; when set, retrying the same submit returns the original order.
	IdempotencyToken string `json:"idempotencyToken"`
}

type CreateOrderResponse struct {
	Message   string    `json:"message"`
	OrderID   string    `json:"orderId"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
}

type OrderItemView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Breed    string  `json:"breed"`
	Price    float64 `json:"price"`
	Quantity int32   `json:"quantity"`
	Image    string  `json:"image"`
}

type OrderView struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Total    float64         `json:"total"`
	Status   string          `json:"status"`
	Tracking *string         `json:"tracking"`
	Items    []OrderItemView `json:"items"`
}

type OrderDetailView struct {
	OrderView
	ShippingAddress string            `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	Transactions    []TransactionView `json:"transactions"`
}

type TransactionView struct {
	ExternalRef   string    `json:"externalRef"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
}

type PetListResponse struct {
	Pets  []PetView `json:"pets"`
	Total int       `json:"total"`
}

type PetView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Breed       string    `json:"breed"`
	Age         string    `json:"age"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
}
