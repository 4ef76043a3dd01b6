package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	apperrors "github.com/spec-kit/shop-service/pkg/util"
)

type fakeProductRepo struct {
	products map[string]*domain.Product
	nextID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*domain.Product{}}
}

func (f *fakeProductRepo) Create(ctx context.Context, product *domain.Product) error {
	f.nextID++
	product.ID = fmt.Sprintf("p%d", f.nextID)
	clone := *product
	f.products[product.ID] = &clone
	return nil
}

func (f *fakeProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *product
	f.products[product.ID] = &clone
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *product
	return &clone, nil
}

func (f *fakeProductRepo) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	for _, product := range f.products {
		products = append(products, *product)
	}
	return products, nil
}

func (f *fakeProductRepo) ReduceStock(ctx context.Context, id string, quantity int) (int, error) {
	product, ok := f.products[id]
	if !ok || product.Quantity < quantity {
		return 0, pgx.ErrNoRows
	}
	product.Quantity -= quantity
	return product.Quantity, nil
}

type fakeOrderRepo struct {
	orders map[string]*domain.Order
	nextID int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	f.nextID++
	order.ID = fmt.Sprintf("o%d", f.nextID)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].ID = fmt.Sprintf("%s-i%d", order.ID, i)
	}
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	var orders []domain.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	var orders []domain.Order
	for _, order := range f.orders {
		orders = append(orders, *order)
	}
	return orders, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	order.Status = status
	return nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (r *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (r *recordingDispatcher) typesSeen() []events.EventType {
	var types []events.EventType
	for _, event := range r.published {
		types = append(types, event.Type)
	}
	return types
}

func newTestOrderService(t *testing.T) (*OrderService, *fakeProductRepo, *fakeOrderRepo, *recordingDispatcher) {
	t.Helper()
	productRepo := newFakeProductRepo()
	orderRepo := newFakeOrderRepo()
	dispatcher := &recordingDispatcher{}
	products := NewProductService(config.Config{}, productRepo, nil, nil)
	orders := NewOrderService(orderRepo, products, dispatcher, nil)
	return orders, productRepo, orderRepo, dispatcher
}

func TestCreateOrderCapturesPricesAndTotal(t *testing.T) {
	svc, productRepo, orderRepo, dispatcher := newTestOrderService(t)
	ctx := context.Background()

	widget := &domain.Product{Name: "widget", Price: 9.99, Quantity: 10, SKU: "W-1"}
	gadget := &domain.Product{Name: "gadget", Price: 25, Quantity: 5, SKU: "G-1"}
	require.NoError(t, productRepo.Create(ctx, widget))
	require.NoError(t, productRepo.Create(ctx, gadget))

	order, err := svc.CreateOrder(ctx, "u1", []OrderItemInput{
		{ProductID: widget.ID, Quantity: 2},
		{ProductID: gadget.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.InDelta(t, 2*9.99+25, order.TotalAmount, 0.001)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 9.99, order.Items[0].Price)

	assert.Equal(t, 8, productRepo.products[widget.ID].Quantity)
	assert.Equal(t, 4, productRepo.products[gadget.ID].Quantity)
	assert.Len(t, orderRepo.orders, 1)
	assert.Contains(t, dispatcher.typesSeen(), events.EventOrderCreated)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc, productRepo, orderRepo, _ := newTestOrderService(t)
	ctx := context.Background()

	widget := &domain.Product{Name: "widget", Price: 9.99, Quantity: 1, SKU: "W-1"}
	require.NoError(t, productRepo.Create(ctx, widget))

	_, err := svc.CreateOrder(ctx, "u1", []OrderItemInput{{ProductID: widget.ID, Quantity: 5}})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Empty(t, orderRepo.orders)
}

func TestCreateOrderEmitsStockDepleted(t *testing.T) {
	svc, productRepo, _, dispatcher := newTestOrderService(t)
	ctx := context.Background()

	widget := &domain.Product{Name: "widget", Price: 5, Quantity: 3, SKU: "W-1"}
	require.NoError(t, productRepo.Create(ctx, widget))

	_, err := svc.CreateOrder(ctx, "u1", []OrderItemInput{{ProductID: widget.ID, Quantity: 3}})
	require.NoError(t, err)
	assert.Contains(t, dispatcher.typesSeen(), events.EventProductStockDepleted)
}

func TestGetOrderForUserScoping(t *testing.T) {
	svc, productRepo, _, _ := newTestOrderService(t)
	ctx := context.Background()

	widget := &domain.Product{Name: "widget", Price: 5, Quantity: 10, SKU: "W-1"}
	require.NoError(t, productRepo.Create(ctx, widget))
	order, err := svc.CreateOrder(ctx, "u1", []OrderItemInput{{ProductID: widget.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.GetOrderForUser(ctx, order.ID, "u1", false)
	assert.NoError(t, err)

	_, err = svc.GetOrderForUser(ctx, order.ID, "u2", false)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)

	_, err = svc.GetOrderForUser(ctx, order.ID, "u2", true)
	assert.NoError(t, err)
}

func TestUpdateStatusEmitsEvent(t *testing.T) {
	svc, productRepo, _, dispatcher := newTestOrderService(t)
	ctx := context.Background()

	widget := &domain.Product{Name: "widget", Price: 5, Quantity: 10, SKU: "W-1"}
	require.NoError(t, productRepo.Create(ctx, widget))
	order, err := svc.CreateOrder(ctx, "u1", []OrderItemInput{{ProductID: widget.ID, Quantity: 1}})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status)
	assert.Contains(t, dispatcher.typesSeen(), events.EventOrderStatusChanged)

	_, err = svc.UpdateStatus(ctx, order.ID, domain.OrderStatus("TELEPORTED"))
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}
