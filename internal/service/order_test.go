package service

import (
	"context"
	"errors"
	"testing"

	"petstore-backend/internal/dto"
	"petstore-backend/internal/model"
	"petstore-backend/internal/repository"
	"petstore-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newOrderService(t *testing.T) (OrderService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewOrderService(db, repository.NewPetRepository(db), repository.NewOrderRepository(db), repository.NewTransactionRepository(db), zap.NewNop())
	return svc, db
}

func TestOrderService_CreateOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates pending order with stored prices", func(t *testing.T) {
		svc, db := newOrderService(t)
		testutil.SeedPet(t, db, "1", "Rex", 12.00, true)
		testutil.SeedPet(t, db, "2", "Milo", 5.50, true)

		resp, err := svc.CreateOrder(ctx, "u1", &dto.CreateOrderRequest{
			Items: []dto.CartItem{
				// Client-supplied prices are ignored in favor of stored ones.
				{ID: "1", Price: 1.00, Quantity: 1},
				{ID: "2", Price: 1.00, Quantity: 2},
			},
			ShippingAddress: `{"city":"Springfield"}`,
			PaymentMethod:   "card",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.OrderID == "" {
			t.Fatalf("expected order id")
		}

		var order model.Order
		if err := db.First(&order, "id = ?", resp.OrderID).Error; err != nil {
			t.Fatalf("load order: %v", err)
		}
		if order.Status != model.OrderStatusPending {
			t.Fatalf("expected pending, got %s", order.Status)
		}
		if got := order.TotalAmount.StringFixed(2); got != "23.00" {
			t.Fatalf("expected total 23.00, got %s", got)
		}

		var pets []model.Pet
		if err := db.Where("available = ?", true).Find(&pets).Error; err != nil {
			t.Fatalf("load pets: %v", err)
		}
		if len(pets) != 0 {
			t.Fatalf("expected all ordered pets unavailable, %d still sellable", len(pets))
		}
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		svc, _ := newOrderService(t)
		_, err := svc.CreateOrder(ctx, "u1", &dto.CreateOrderRequest{})
		if !errors.Is(err, model.ErrInvalidCart) {
			t.Fatalf("expected ErrInvalidCart, got %v", err)
		}
	})

	t.Run("sold pet rolls the order back", func(t *testing.T) {
		svc, db := newOrderService(t)
		testutil.SeedPet(t, db, "1", "Rex", 12.00, true)
		testutil.SeedPet(t, db, "2", "Milo", 5.50, false)

		_, err := svc.CreateOrder(ctx, "u1", &dto.CreateOrderRequest{
			Items: []dto.CartItem{
				{ID: "1", Quantity: 1},
				{ID: "2", Quantity: 1},
			},
		})
		if !errors.Is(err, model.ErrInventoryConflict) {
			t.Fatalf("expected ErrInventoryConflict, got %v", err)
		}

		var count int64
		if err := db.Model(&model.Order{}).Count(&count).Error; err != nil {
			t.Fatalf("count orders: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected no orders, got %d", count)
		}

		var pet model.Pet
		if err := db.First(&pet, "id = ?", "1").Error; err != nil {
			t.Fatalf("load pet: %v", err)
		}
		if !pet.Available {
			t.Fatalf("expected first pet's availability to roll back")
		}
	})

	t.Run("idempotency token replay returns the original order", func(t *testing.T) {
		svc, db := newOrderService(t)
		testutil.SeedPet(t, db, "1", "Rex", 12.00, true)

		first, err := svc.CreateOrder(ctx, "u1", &dto.CreateOrderRequest{
			Items:            []dto.CartItem{{ID: "1", Quantity: 1}},
			IdempotencyToken: "tok-1",
		})
		if err != nil {
			t.Fatalf("first submit: %v", err)
		}

		second, err := svc.CreateOrder(ctx, "u1", &dto.CreateOrderRequest{
			Items:            []dto.CartItem{{ID: "1", Quantity: 1}},
			IdempotencyToken: "tok-1",
		})
		if err != nil {
			t.Fatalf("replay must succeed, got %v", err)
		}
		if second.OrderID != first.OrderID {
			t.Fatalf("expected replay to return order %s, got %s", first.OrderID, second.OrderID)
		}

		var count int64
		if err := db.Model(&model.Order{}).Count(&count).Error; err != nil {
			t.Fatalf("count orders: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 order, got %d", count)
		}
	})
}

func TestOrderService_Projections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, db := newOrderService(t)
	testutil.SeedPet(t, db, "1", "Rex", 12.00, true)
	testutil.SeedPet(t, db, "2", "Milo", 5.50, true)

	created, err := svc.CreateOrder(ctx, "u1", &dto.CreateOrderRequest{
		Items: []dto.CartItem{
			{ID: "1", Quantity: 1},
			{ID: "2", Quantity: 2},
		},
		ShippingAddress: `{"city":"Springfield"}`,
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	t.Run("list joins item details", func(t *testing.T) {
		orders, err := svc.ListOrders(ctx, "u1")
		if err != nil {
			t.Fatalf("list orders: %v", err)
		}
		if len(orders) != 1 {
			t.Fatalf("expected 1 order, got %d", len(orders))
		}
		if len(orders[0].Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(orders[0].Items))
		}

		names := map[string]string{}
		for _, item := range orders[0].Items {
			names[item.ID] = item.Name
		}
		if names["1"] != "Rex" || names["2"] != "Milo" {
			t.Fatalf("expected joined pet names, got %v", names)
		}
	})

	t.Run("get returns detail view scoped to the owner", func(t *testing.T) {
		detail, err := svc.GetOrder(ctx, "u1", created.OrderID)
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if detail.PaymentMethod != "card" {
			t.Fatalf("expected payment method card, got %s", detail.PaymentMethod)
		}
		if detail.ShippingAddress == "" {
			t.Fatalf("expected shipping address")
		}

		if _, err := svc.GetOrder(ctx, "someone-else", created.OrderID); !errors.Is(err, model.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound for foreign user, got %v", err)
		}
	})

	t.Run("get includes payment transactions", func(t *testing.T) {
		txn := &model.Transaction{
			OrderID:       created.OrderID,
			ExternalRef:   "pi_view",
			Amount:        decimal.NewFromFloat(23.00),
			Currency:      "usd",
			Status:        model.TxnStatusCompleted,
			PaymentMethod: "stripe",
		}
		if err := db.Create(txn).Error; err != nil {
			t.Fatalf("seed transaction: %v", err)
		}

		detail, err := svc.GetOrder(ctx, "u1", created.OrderID)
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if len(detail.Transactions) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(detail.Transactions))
		}
		got := detail.Transactions[0]
		if got.ExternalRef != "pi_view" || got.Status != string(model.TxnStatusCompleted) {
			t.Fatalf("unexpected transaction view %+v", got)
		}
		if got.Amount != 23.00 {
			t.Fatalf("expected amount 23.00, got %v", got.Amount)
		}
	})

	t.Run("other users see no orders", func(t *testing.T) {
		orders, err := svc.ListOrders(ctx, "u2")
		if err != nil {
			t.Fatalf("list orders: %v", err)
		}
		if len(orders) != 0 {
			t.Fatalf("expected no orders for u2, got %d", len(orders))
		}
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, db := newOrderService(t)
	testutil.SeedPet(t, db, "1", "Rex", 12.00, true)

	created, err := svc.CreateOrder(ctx, "u1", &dto.CreateOrderRequest{
		Items: []dto.CartItem{{ID: "1", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	t.Run("forward transition with tracking number", func(t *testing.T) {
		if err := svc.UpdateStatus(ctx, "u1", created.OrderID, &dto.UpdateOrderStatusRequest{Status: "paid"}); err != nil {
			t.Fatalf("pending -> paid: %v", err)
		}
		if err := svc.UpdateStatus(ctx, "u1", created.OrderID, &dto.UpdateOrderStatusRequest{Status: "processing"}); err != nil {
			t.Fatalf("paid -> processing: %v", err)
		}
		if err := svc.UpdateStatus(ctx, "u1", created.OrderID, &dto.UpdateOrderStatusRequest{
			Status:         "shipped",
			TrackingNumber: "TRACK123",
		}); err != nil {
			t.Fatalf("processing -> shipped: %v", err)
		}

		var order model.Order
		if err := db.First(&order, "id = ?", created.OrderID).Error; err != nil {
			t.Fatalf("load order: %v", err)
		}
		if order.Status != model.OrderStatusShipped {
			t.Fatalf("expected shipped, got %s", order.Status)
		}
		if order.TrackingNumber == nil || *order.TrackingNumber != "TRACK123" {
			t.Fatalf("expected tracking number, got %v", order.TrackingNumber)
		}
	})

	t.Run("backward and unknown transitions are rejected", func(t *testing.T) {
		if err := svc.UpdateStatus(ctx, "u1", created.OrderID, &dto.UpdateOrderStatusRequest{Status: "paid"}); !errors.Is(err, model.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition going backwards, got %v", err)
		}
		if err := svc.UpdateStatus(ctx, "u1", created.OrderID, &dto.UpdateOrderStatusRequest{Status: "refunded"}); !errors.Is(err, model.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition for unknown status, got %v", err)
		}
	})
}
