package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"petstore-backend/internal/metrics"
	"petstore-backend/internal/model"
	"petstore-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FulfillmentService turns verified gateway events into durable order
// state. Handlers are idempotent and safe under concurrent delivery: the
// unique constraint on the order's session id is the only lock, and every
// mutation happens inside a single database transaction.
type FulfillmentService interface {
	HandleEvent(ctx context.Context, event *model.WebhookEvent) error
}

type fulfillmentServiceImpl struct {
	db        *gorm.DB
	petRepo   repository.PetRepository
	orderRepo repository.OrderRepository
	txnRepo   repository.TransactionRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewFulfillmentService(
	db *gorm.DB,
	petRepo repository.PetRepository,
	orderRepo repository.OrderRepository,
	txnRepo repository.TransactionRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) FulfillmentService {
	return &fulfillmentServiceImpl{
		db:        db,
		petRepo:   petRepo,
		orderRepo: orderRepo,
		txnRepo:   txnRepo,
		metrics:   m,
		logger:    logger,
	}
}

// HandleEvent dispatches a verified event. A returned error means the
// event is unresolved and the webhook endpoint should answer with a
// retriable status so the gateway redelivers.
func (s *fulfillmentServiceImpl) HandleEvent(ctx context.Context, event *model.WebhookEvent) error {
	switch event.Type {
	case model.EventCheckoutCompleted:
		var session model.CheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return fmt.Errorf("%w: decode checkout session: %v", model.ErrMalformedEvent, err)
		}
		return s.handleCheckoutCompleted(ctx, &session)

	case model.EventPaymentSucceeded:
		return s.updateTransactionStatus(ctx, event, model.TxnStatusCompleted)

	case model.EventPaymentFailed:
		// Does not cancel the order or relist the pet; the primary record
		// stays authoritative and the failure is kept as an audit row.
		return s.updateTransactionStatus(ctx, event, model.TxnStatusFailed)

	default:
		// Unknown kinds are acknowledged so gateway additions never break
		// the endpoint.
		s.logger.Info("unhandled event type", zap.String("type", event.Type))
		s.metrics.ObserveEvent(event.Type, "ignored")
		return nil
	}
}

func (s *fulfillmentServiceImpl) handleCheckoutCompleted(ctx context.Context, session *model.CheckoutSession) error {
	if session.ID == "" {
		return fmt.Errorf("%w: missing session id", model.ErrMalformedEvent)
	}

	// Fast path for redelivery: the session id is the idempotency key.
	existing, err := s.orderRepo.FindBySessionID(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("lookup order by session: %w", err)
	}
	if existing != nil {
		s.logger.Info("checkout event already fulfilled",
			zap.String("sessionId", session.ID),
			zap.String("orderId", existing.ID),
		)
		s.metrics.ObserveEvent(model.EventCheckoutCompleted, "duplicate")
		return nil
	}

	refs, err := parseCartRefs(session.Metadata)
	if err != nil {
		return err
	}

	orderID := uuid.NewString()
	// Total comes from the gateway-reported amount, never from the client.
	total := decimal.NewFromInt(session.AmountTotal).Div(decimal.NewFromInt(100))

	currency := session.Currency
	if currency == "" {
		currency = "usd"
	}

	sessionID := session.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := &model.Order{
			ID:              orderID,
			UserID:          session.Metadata.UserID,
			TotalAmount:     total,
			Status:          model.OrderStatusPaid,
			PaymentMethod:   "stripe",
			StripeSessionID: &sessionID,
			ShippingAddress: string(session.ShippingDetails),
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		items := make([]*model.OrderItem, 0, len(refs))
		for _, ref := range refs {
			// Price is re-read from the store, not trusted from the event.
			pet, err := s.petRepo.FindByID(ctx, tx, ref.ID)
			if err != nil {
				if errors.Is(err, model.ErrPetNotFound) {
					return fmt.Errorf("%w: pet %s: %v", model.ErrInventoryConflict, ref.ID, err)
				}
				return fmt.Errorf("fetch pet %s: %w", ref.ID, err)
			}

			items = append(items, &model.OrderItem{
				OrderID:  orderID,
				PetID:    pet.ID,
				Quantity: ref.Quantity,
				Price:    pet.Price,
			})

			if err := s.petRepo.MarkUnavailable(ctx, tx, pet.ID); err != nil {
				return fmt.Errorf("mark pet %s unavailable: %w", pet.ID, err)
			}
		}

		if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		externalRef := session.PaymentIntent
		if externalRef == "" {
			externalRef = session.ID
		}
		txn := &model.Transaction{
			OrderID:       orderID,
			ExternalRef:   externalRef,
			Amount:        total,
			Currency:      currency,
			Status:        model.TxnStatusCompleted,
			PaymentMethod: "stripe",
		}
		if err := s.txnRepo.Create(ctx, tx, txn); err != nil {
			return fmt.Errorf("store transaction: %w", err)
		}

		return nil
	})

	if err != nil {
		// A concurrent delivery won the insert race; the constraint on the
		// session id makes this a benign no-op.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Info("concurrent delivery already fulfilled",
				zap.String("sessionId", session.ID),
			)
			s.metrics.ObserveEvent(model.EventCheckoutCompleted, "duplicate")
			return nil
		}

		outcome := "error"
		if errors.Is(err, model.ErrInventoryConflict) {
			outcome = "conflict"
		}
		s.metrics.ObserveEvent(model.EventCheckoutCompleted, outcome)
		s.logger.Error("checkout fulfillment failed",
			zap.String("sessionId", session.ID),
			zap.Error(err),
		)
		return err
	}

	s.metrics.ObserveEvent(model.EventCheckoutCompleted, "fulfilled")
	s.logger.Info("order fulfilled",
		zap.String("orderId", orderID),
		zap.String("userId", session.Metadata.UserID),
		zap.String("sessionId", session.ID),
		zap.String("amount", total.StringFixed(2)),
	)
	return nil
}

// updateTransactionStatus handles the payment-intent lifecycle events.
// These are secondary confirmations; a missing row is logged, not fatal.
func (s *fulfillmentServiceImpl) updateTransactionStatus(ctx context.Context, event *model.WebhookEvent, status model.TxnStatus) error {
	var intent model.PaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return fmt.Errorf("%w: decode payment intent: %v", model.ErrMalformedEvent, err)
	}
	if intent.ID == "" {
		return fmt.Errorf("%w: missing payment intent id", model.ErrMalformedEvent)
	}

	rows, err := s.txnRepo.UpdateStatusByExternalRef(ctx, intent.ID, status)
	if err != nil {
		s.metrics.ObserveEvent(event.Type, "error")
		return fmt.Errorf("update transaction status: %w", err)
	}
	if rows == 0 {
		s.logger.Warn("no transaction for payment intent",
			zap.String("paymentIntentId", intent.ID),
			zap.String("eventType", event.Type),
		)
		s.metrics.ObserveEvent(event.Type, "unmatched")
		return nil
	}

	s.metrics.ObserveEvent(event.Type, "updated")
	s.logger.Info("transaction status updated",
		zap.String("paymentIntentId", intent.ID),
		zap.String("status", string(status)),
	)
	return nil
}

func parseCartRefs(meta model.SessionMetadata) ([]model.CartRef, error) {
	if meta.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId in metadata", model.ErrMalformedEvent)
	}
	if meta.Items == "" {
		return nil, fmt.Errorf("%w: missing items in metadata", model.ErrMalformedEvent)
	}

	var refs []model.CartRef
	if err := json.Unmarshal([]byte(meta.Items), &refs); err != nil {
		return nil, fmt.Errorf("%w: decode items metadata: %v", model.ErrMalformedEvent, err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: empty items metadata", model.ErrMalformedEvent)
	}
	return refs, nil
}
