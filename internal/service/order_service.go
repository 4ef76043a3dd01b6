package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util"
)

// OrderItemInput is a requested order line.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// OrderService coordinates order placement and lifecycle.
type OrderService struct {
	orders     repository.OrderRepository
	products   *ProductService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(orders repository.OrderRepository, products *ProductService, dispatcher events.Dispatcher, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:     orders,
		products:   products,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// CreateOrder reserves stock for every line, captures the product price at
// order time and persists the order as PENDING.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, inputs []OrderItemInput) (*domain.Order, error) {
	if len(inputs) == 0 {
		return nil, apperrors.NewValidationError("order requires at least one item", nil)
	}

	order := &domain.Order{
		UserID: userID,
		Status: domain.OrderStatusPending,
	}
	for _, input := range inputs {
		product, remaining, err := s.products.ReserveStock(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return nil, err
		}
		if remaining == 0 {
			s.publish(ctx, events.EventProductStockDepleted, product.ID, events.ProductStockDepletedPayload{
				SKU:  product.SKU,
				Name: product.Name,
			})
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: product.ID,
			Quantity:  input.Quantity,
			Price:     product.Price,
		})
		order.TotalAmount += product.Price * float64(input.Quantity)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created", zap.String("order_id", order.ID), zap.String("user_id", userID))
	s.publish(ctx, events.EventOrderCreated, order.ID, events.OrderCreatedPayload{
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	})
	return order, nil
}

// GetOrderForUser fetches an order, restricting non-admin callers to their own.
func (s *OrderService) GetOrderForUser(ctx context.Context, id, userID string, admin bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": id})
		}
		return nil, err
	}
	if !admin && order.UserID != userID {
		return nil, apperrors.NewForbidden("order belongs to another user")
	}
	return order, nil
}

// ListOrders returns the caller's orders, or every order for admins.
func (s *OrderService) ListOrders(ctx context.Context, userID string, admin bool, limit, offset int) ([]domain.Order, error) {
	if admin {
		return s.orders.List(ctx, limit, offset)
	}
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

// UpdateStatus moves an order through its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown order status", map[string]any{"status": string(status)})
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": id})
		}
		return nil, err
	}

	oldStatus := order.Status
	if oldStatus == status {
		return order, nil
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status

	s.publish(ctx, events.EventOrderStatusChanged, order.ID, events.OrderStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: status,
	})
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType events.EventType, entityID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
