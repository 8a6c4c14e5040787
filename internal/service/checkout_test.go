package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"petstore-backend/internal/client"
	"petstore-backend/internal/dto"
	"petstore-backend/internal/model"

	"go.uber.org/zap"
)

type fakeStripeClient struct {
	lastParams *client.CheckoutSessionParams
	result     *client.CheckoutSessionResult
	err        error
}

func (f *fakeStripeClient) CreateCheckoutSession(_ context.Context, params *client.CheckoutSessionParams) (*client.CheckoutSessionResult, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestCheckoutService_CreateSession(t *testing.T) {
	t.Parallel()

	user := UserIdentity{ID: "u1", Email: "u1@example.com"}

	t.Run("builds minor-unit line items and metadata", func(t *testing.T) {
		gateway := &fakeStripeClient{result: &client.CheckoutSessionResult{SessionID: "cs_123"}}
		svc := NewCheckoutService(gateway, "https://shop.example", zap.NewNop())

		resp, err := svc.CreateSession(context.Background(), user, []dto.CartItem{
			{ID: "1", Name: "Rex", Breed: "Labrador", Age: "3", Price: 12.00, Quantity: 1},
			{ID: "2", Name: "Milo", Breed: "Siamese", Price: 10.995, Quantity: 2},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.SessionID != "cs_123" {
			t.Fatalf("expected sessionId cs_123, got %s", resp.SessionID)
		}

		params := gateway.lastParams
		if len(params.LineItems) != 2 {
			t.Fatalf("expected 2 line items, got %d", len(params.LineItems))
		}
		if params.LineItems[0].UnitAmount != 1200 {
			t.Fatalf("expected 1200 cents, got %d", params.LineItems[0].UnitAmount)
		}
		// 10.995 * 100 rounds to nearest minor unit.
		if params.LineItems[1].UnitAmount != 1100 {
			t.Fatalf("expected 1100 cents, got %d", params.LineItems[1].UnitAmount)
		}
		if params.LineItems[1].Description != "Siamese - Age: N/A" {
			t.Fatalf("unexpected description %q", params.LineItems[1].Description)
		}
		if params.CustomerEmail != "u1@example.com" {
			t.Fatalf("unexpected customer email %q", params.CustomerEmail)
		}
		if params.SuccessURL != "https://shop.example/orders?session_id={CHECKOUT_SESSION_ID}" {
			t.Fatalf("unexpected success url %q", params.SuccessURL)
		}

		if params.Metadata["userId"] != "u1" {
			t.Fatalf("expected userId u1 in metadata, got %q", params.Metadata["userId"])
		}
		var refs []model.CartRef
		if err := json.Unmarshal([]byte(params.Metadata["items"]), &refs); err != nil {
			t.Fatalf("items metadata not valid JSON: %v", err)
		}
		if len(refs) != 2 || refs[0].ID != "1" || refs[0].Quantity != 1 || refs[1].ID != "2" || refs[1].Quantity != 2 {
			t.Fatalf("unexpected cart refs %+v", refs)
		}
	})

	t.Run("invalid carts are rejected", func(t *testing.T) {
		cases := []struct {
			name  string
			items []dto.CartItem
		}{
			{"empty cart", nil},
			{"zero quantity", []dto.CartItem{{ID: "1", Name: "Rex", Price: 10, Quantity: 0}}},
			{"negative quantity", []dto.CartItem{{ID: "1", Name: "Rex", Price: 10, Quantity: -1}}},
			{"zero price", []dto.CartItem{{ID: "1", Name: "Rex", Price: 0, Quantity: 1}}},
			{"negative price", []dto.CartItem{{ID: "1", Name: "Rex", Price: -5, Quantity: 1}}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				gateway := &fakeStripeClient{result: &client.CheckoutSessionResult{SessionID: "cs_123"}}
				svc := NewCheckoutService(gateway, "https://shop.example", zap.NewNop())

				_, err := svc.CreateSession(context.Background(), user, tc.items)
				if !errors.Is(err, model.ErrInvalidCart) {
					t.Fatalf("expected ErrInvalidCart, got %v", err)
				}
				if gateway.lastParams != nil {
					t.Fatalf("gateway must not be called for invalid carts")
				}
			})
		}
	})

	t.Run("gateway failure is surfaced, not retried", func(t *testing.T) {
		gateway := &fakeStripeClient{err: errors.New("connection refused")}
		svc := NewCheckoutService(gateway, "https://shop.example", zap.NewNop())

		_, err := svc.CreateSession(context.Background(), user, []dto.CartItem{
			{ID: "1", Name: "Rex", Price: 12, Quantity: 1},
		})
		if !errors.Is(err, model.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
	})
}
