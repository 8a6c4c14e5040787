package service

import (
	"context"
	"errors"
	"fmt"

	"petstore-backend/internal/dto"
	"petstore-backend/internal/model"
	"petstore-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService interface {
	ListOrders(ctx context.Context, userID string) ([]*dto.OrderView, error)
	GetOrder(ctx context.Context, userID, orderID string) (*dto.OrderDetailView, error)
	// CreateOrder is the direct, non-gateway path. Orders start as pending.
	CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	UpdateStatus(ctx context.Context, userID, orderID string, req *dto.UpdateOrderStatusRequest) error
}

type orderServiceImpl struct {
	db        *gorm.DB
	petRepo   repository.PetRepository
	orderRepo repository.OrderRepository
	txnRepo   repository.TransactionRepository
	logger    *zap.Logger
}

func NewOrderService(db *gorm.DB, petRepo repository.PetRepository, orderRepo repository.OrderRepository, txnRepo repository.TransactionRepository, logger *zap.Logger) OrderService {
	return &orderServiceImpl{
		db:        db,
		petRepo:   petRepo,
		orderRepo: orderRepo,
		txnRepo:   txnRepo,
		logger:    logger,
	}
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, userID string) ([]*dto.OrderView, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	itemsByOrder, err := s.itemViewsByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*dto.OrderView, len(orders))
	for i, o := range orders {
		views[i] = orderView(o, itemsByOrder[o.ID])
	}
	return views, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, userID, orderID string) (*dto.OrderDetailView, error) {
	order, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	itemsByOrder, err := s.itemViewsByOrder(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}

	txns, err := s.txnRepo.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	txnViews := make([]dto.TransactionView, len(txns))
	for i, txn := range txns {
		txnViews[i] = dto.TransactionView{
			ExternalRef:   txn.ExternalRef,
			Amount:        txn.Amount.InexactFloat64(),
			Currency:      txn.Currency,
			Status:        string(txn.Status),
			PaymentMethod: txn.PaymentMethod,
			CreatedAt:     txn.CreatedAt,
		}
	}

	return &dto.OrderDetailView{
		OrderView:       *orderView(order, itemsByOrder[order.ID]),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Transactions:    txnViews,
	}, nil
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", model.ErrInvalidCart)
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", model.ErrInvalidCart)
		}
	}

	// Replay of the same submit returns the original order instead of
	// duplicating it.
	if req.IdempotencyToken != "" {
		existing, err := s.orderRepo.FindByClientToken(ctx, req.IdempotencyToken)
		if err != nil {
			return nil, fmt.Errorf("lookup order by token: %w", err)
		}
		if existing != nil {
			return &dto.CreateOrderResponse{
				Message:   "Order created successfully",
				OrderID:   existing.ID,
				CreatedAt: existing.CreatedAt,
			}, nil
		}
	}

	order := &model.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Status:          model.OrderStatusPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	}
	if req.IdempotencyToken != "" {
		token := req.IdempotencyToken
		order.ClientToken = &token
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]*model.OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			// Unit prices come from the store, not the submitted cart.
			pet, err := s.petRepo.FindByID(ctx, tx, item.ID)
			if err != nil {
				if errors.Is(err, model.ErrPetNotFound) {
					return fmt.Errorf("%w: pet %s", model.ErrInventoryConflict, item.ID)
				}
				return fmt.Errorf("fetch pet %s: %w", item.ID, err)
			}

			total = total.Add(pet.Price.Mul(decimal.NewFromInt32(item.Quantity)))
			items = append(items, &model.OrderItem{
				OrderID:  order.ID,
				PetID:    pet.ID,
				Quantity: item.Quantity,
				Price:    pet.Price,
			})

			if err := s.petRepo.MarkUnavailable(ctx, tx, pet.ID); err != nil {
				return fmt.Errorf("mark pet %s unavailable: %w", pet.ID, err)
			}
		}

		order.TotalAmount = total
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}
		return nil
	})
	if err != nil {
		// Two retries racing on the same token: the loser re-reads the
		// winner's order.
		if errors.Is(err, gorm.ErrDuplicatedKey) && req.IdempotencyToken != "" {
			existing, lookupErr := s.orderRepo.FindByClientToken(ctx, req.IdempotencyToken)
			if lookupErr == nil && existing != nil {
				return &dto.CreateOrderResponse{
					Message:   "Order created successfully",
					OrderID:   existing.ID,
					CreatedAt: existing.CreatedAt,
				}, nil
			}
		}
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("orderId", order.ID),
		zap.String("userId", userID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	return &dto.CreateOrderResponse{
		Message:   "Order created successfully",
		OrderID:   order.ID,
		CreatedAt: order.CreatedAt,
	}, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, userID, orderID string, req *dto.UpdateOrderStatusRequest) error {
	order, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return err
	}

	next := model.OrderStatus(req.Status)
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", model.ErrInvalidTransition, req.Status)
	}
	if !order.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, order.Status, next)
	}

	var tracking *string
	if req.TrackingNumber != "" {
		tracking = &req.TrackingNumber
	}
	return s.orderRepo.UpdateStatus(ctx, nil, orderID, next, tracking)
}

func (s *orderServiceImpl) itemViewsByOrder(ctx context.Context, orderIDs []string) (map[string][]dto.OrderItemView, error) {
	details, err := s.orderRepo.ItemDetails(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}

	byOrder := make(map[string][]dto.OrderItemView)
	for _, d := range details {
		byOrder[d.OrderID] = append(byOrder[d.OrderID], dto.OrderItemView{
			ID:       d.PetID,
			Name:     d.Name,
			Breed:    d.Breed,
			Price:    d.Price.InexactFloat64(),
			Quantity: d.Quantity,
			Image:    d.ImageURL,
		})
	}
	return byOrder, nil
}

func orderView(o *model.Order, items []dto.OrderItemView) *dto.OrderView {
	return &dto.OrderView{
		ID:       o.ID,
		Date:     o.CreatedAt,
		Total:    o.TotalAmount.InexactFloat64(),
		Status:   string(o.Status),
		Tracking: o.TrackingNumber,
		Items:    items,
	}
}
