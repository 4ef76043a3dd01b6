package events

import (
	"time"

	"github.com/spec-kit/shop-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered       EventType = "user_registered"
	EventOrderCreated         EventType = "order_created"
	EventOrderStatusChanged   EventType = "order_status_changed"
	EventProductStockDepleted EventType = "product_stock_depleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload. The credential hash is never part of it.
type UserRegisteredPayload struct {
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Roles    []domain.RoleName `json:"roles"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	UserID      string  `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// ProductStockDepletedPayload payload.
type ProductStockDepletedPayload struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}
