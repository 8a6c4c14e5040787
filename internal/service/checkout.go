package service

import (
	"context"
	"encoding/json"
	"fmt"

	"petstore-backend/internal/client"
	"petstore-backend/internal/dto"
	"petstore-backend/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UserIdentity is the authenticated caller, extracted from the JWT by the
// auth middleware.
type UserIdentity struct {
	ID    string
	Email string
}

type CheckoutService interface {
	CreateSession(ctx context.Context, user UserIdentity, items []dto.CartItem) (*dto.CreateSessionResponse, error)
}

type checkoutServiceImpl struct {
	stripeClient client.StripeClient
	frontendURL  string
	logger       *zap.Logger
}

func NewCheckoutService(stripeClient client.StripeClient, frontendURL string, logger *zap.Logger) CheckoutService {
	return &checkoutServiceImpl{
		stripeClient: stripeClient,
		frontendURL:  frontendURL,
		logger:       logger,
	}
}

// CreateSession builds a hosted-checkout session from the cart snapshot.
// No order exists yet: the order row is only written when the gateway
// confirms payment through the webhook. The session metadata carries the
// user id plus {id, quantity} pairs so fulfillment can rebuild the order
// even if the cart is gone by then.
func (s *checkoutServiceImpl) CreateSession(ctx context.Context, user UserIdentity, items []dto.CartItem) (*dto.CreateSessionResponse, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", model.ErrInvalidCart)
	}

	lineItems := make([]client.LineItem, len(items))
	refs := make([]model.CartRef, len(items))
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", model.ErrInvalidCart)
		}
		if item.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", model.ErrInvalidCart)
		}

		age := item.Age
		if age == "" {
			age = "N/A"
		}

		lineItems[i] = client.LineItem{
			Name:        item.Name,
			Description: fmt.Sprintf("%s - Age: %s", item.Breed, age),
			ImageURL:    item.Image,
			UnitAmount:  toMinorUnits(item.Price),
			Quantity:    item.Quantity,
		}
		refs[i] = model.CartRef{ID: item.ID, Quantity: item.Quantity}
	}

	refsJSON, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("marshal cart refs: %w", err)
	}

	result, err := s.stripeClient.CreateCheckoutSession(ctx, &client.CheckoutSessionParams{
		LineItems:     lineItems,
		CustomerEmail: user.Email,
		SuccessURL:    s.frontendURL + "/orders?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.frontendURL + "/cart",
		Metadata: map[string]string{
			"userId": user.ID,
			"items":  string(refsJSON),
		},
	})
	if err != nil {
		// Not retried here; the client decides whether to retry.
		return nil, fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}

	s.logger.Info("checkout session created",
		zap.String("sessionId", result.SessionID),
		zap.String("userId", user.ID),
		zap.Int("items", len(items)),
	)

	return &dto.CreateSessionResponse{SessionID: result.SessionID}, nil
}

// toMinorUnits converts a major-unit price to cents, rounding to the
// nearest integer. Must match the unit used when reconciling the gateway's
// amount_total during fulfillment.
func toMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
