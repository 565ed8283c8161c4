package services_test

import (
	"errors"
	"fmt"
	"testing"

	"pluginmarket/internal/models"
	"pluginmarket/internal/repositories"
	"pluginmarket/internal/services"
	"pluginmarket/pkg/gateway"
	"pluginmarket/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll(limit, offset int) ([]models.Order, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(userID string, limit, offset int) ([]models.Order, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByPaymentRef(ref string) (*models.Order, error) {
	args := m.Called(ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) CreateWithItems(order *models.Order, items []models.OrderItem) error {
	args := m.Called(order, items)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkPaid(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(id, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) HasPendingWithKey(userID, key string) (bool, error) {
	args := m.Called(userID, key)
	return args.Bool(0), args.Error(1)
}

// MockCartStore is a mock implementation of repositories.CartRepository
type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) GetByUser(userID string) (*models.Cart, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartStore) CreateForUser(userID string) (*models.Cart, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartStore) GetItem(cartID, pluginID string) (*models.CartItem, error) {
	args := m.Called(cartID, pluginID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartStore) AddItem(item *models.CartItem) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockCartStore) RemoveItem(cartID, pluginID string) error {
	args := m.Called(cartID, pluginID)
	return args.Error(0)
}

func (m *MockCartStore) Clear(cartID string) error {
	args := m.Called(cartID)
	return args.Error(0)
}

// MockGateway is a mock implementation of gateway.PaymentGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCharge(amountCents int64, currency, idempotencyKey string) (*gateway.Charge, error) {
	args := m.Called(amountCents, currency, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Charge), args.Error(1)
}

func (m *MockGateway) VerifyEvent(payload []byte, sigHeader string) (*gateway.Event, error) {
	args := m.Called(payload, sigHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Event), args.Error(1)
}

// MockNotifier records push-channel broadcasts.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(event string, payload interface{}) {
	m.Called(event, payload)
}

// MockEventPublisher records RabbitMQ order events.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderEvent(event rabbitmq.OrderEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func newCheckoutFixture() (*services.CheckoutService, *MockOrderRepository, *MockCartStore, *MockGateway, *MockNotifier, *MockEventPublisher) {
	orderRepo := new(MockOrderRepository)
	cartRepo := new(MockCartStore)
	gw := new(MockGateway)
	notifier := new(MockNotifier)
	events := new(MockEventPublisher)
	svc := services.NewCheckoutService(orderRepo, cartRepo, repositories.NewMockPluginRepository(), gw, notifier, events)
	return svc, orderRepo, cartRepo, gw, notifier, events
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInitiateCheckout_IntegerCentTotal(t *testing.T) {
	svc, orderRepo, _, gw, notifier, events := newCheckoutFixture()

	items := []services.CheckoutItem{
		{PluginID: "plug-1", Price: price("19.99")},
		{PluginID: "plug-2", Price: price("29.99")},
	}

	orderRepo.On("HasPendingWithKey", "user-1", mock.AnythingOfType("string")).Return(false, nil).Once()
	// The gateway must see exactly 4998 cents, never a float-drifted amount.
	gw.On("CreateCharge", int64(4998), "usd", mock.AnythingOfType("string")).
		Return(&gateway.Charge{Ref: "pi_123", ClientSecret: "pi_123_secret"}, nil).Once()

	var created *models.Order
	orderRepo.On("CreateWithItems", mock.AnythingOfType("*models.Order"), mock.AnythingOfType("[]models.OrderItem")).
		Run(func(args mock.Arguments) {
			created = args.Get(0).(*models.Order)
		}).Return(nil).Once()

	notifier.On("Publish", services.EventNewOrder, mock.Anything).Once()
	events.On("PublishOrderEvent", mock.AnythingOfType("rabbitmq.OrderEvent")).Return(nil).Once()

	result, err := svc.InitiateCheckout("user-1", items)
	assert.NoError(t, err)
	assert.Equal(t, "pi_123_secret", result.ClientSecret)
	assert.NotEmpty(t, result.OrderID)

	assert.NotNil(t, created)
	assert.True(t, price("49.98").Equal(created.TotalAmount),
		"expected total 49.98, got %s", created.TotalAmount)
	assert.Equal(t, models.OrderPending, created.Status)
	assert.Equal(t, "pi_123", created.PaymentRef)

	orderRepo.AssertExpectations(t)
	gw.AssertExpectations(t)
	notifier.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestInitiateCheckout_EmptyLineList(t *testing.T) {
	svc, orderRepo, _, gw, _, _ := newCheckoutFixture()

	_, err := svc.InitiateCheckout("user-1", nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, services.ErrValidation)

	// Rejected before any gateway call or write is attempted.
	gw.AssertNotCalled(t, "CreateCharge", mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything)
}

func TestInitiateCheckout_NegativePrice(t *testing.T) {
	svc, _, _, gw, _, _ := newCheckoutFixture()

	_, err := svc.InitiateCheckout("user-1", []services.CheckoutItem{
		{PluginID: "plug-1", Price: price("-1.00")},
	})
	assert.ErrorIs(t, err, services.ErrValidation)
	gw.AssertNotCalled(t, "CreateCharge", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiateCheckout_GatewayFailure(t *testing.T) {
	svc, orderRepo, _, gw, _, _ := newCheckoutFixture()

	orderRepo.On("HasPendingWithKey", "user-1", mock.AnythingOfType("string")).Return(false, nil).Once()
	gw.On("CreateCharge", int64(1999), "usd", mock.AnythingOfType("string")).
		Return(nil, errors.New("gateway unreachable")).Once()

	_, err := svc.InitiateCheckout("user-1", []services.CheckoutItem{
		{PluginID: "plug-1", Price: price("19.99")},
	})
	assert.ErrorIs(t, err, services.ErrPaymentGateway)

	// The failure happens before the transactional write; no partial order.
	orderRepo.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything)
}

func TestInitiateCheckout_DuplicateInFlight(t *testing.T) {
	svc, orderRepo, _, gw, _, _ := newCheckoutFixture()

	orderRepo.On("HasPendingWithKey", "user-1", mock.AnythingOfType("string")).Return(true, nil).Once()

	_, err := svc.InitiateCheckout("user-1", []services.CheckoutItem{
		{PluginID: "plug-1", Price: price("19.99")},
	})
	assert.ErrorIs(t, err, services.ErrConflict)
	gw.AssertNotCalled(t, "CreateCharge", mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything)
}

func TestInitiateCheckout_ZeroTotalSettlesWithoutGateway(t *testing.T) {
	svc, orderRepo, cartRepo, gw, notifier, events := newCheckoutFixture()

	orderRepo.On("HasPendingWithKey", "user-1", mock.AnythingOfType("string")).Return(false, nil).Once()

	var created *models.Order
	orderRepo.On("CreateWithItems", mock.AnythingOfType("*models.Order"), mock.AnythingOfType("[]models.OrderItem")).
		Run(func(args mock.Arguments) {
			created = args.Get(0).(*models.Order)
		}).Return(nil).Once()

	// The order settles at creation, so the paid side runs immediately:
	// cart cleared, both lifecycle events emitted.
	cartRepo.On("GetByUser", "user-1").Return(&models.Cart{ID: "cart-1", UserID: "user-1"}, nil).Once()
	cartRepo.On("Clear", "cart-1").Return(nil).Once()
	notifier.On("Publish", services.EventNewOrder, mock.Anything).Once()
	notifier.On("Publish", services.EventUpdateOrder, mock.Anything).Once()
	events.On("PublishOrderEvent", mock.MatchedBy(func(e rabbitmq.OrderEvent) bool {
		return e.Event == rabbitmq.OrderCreated
	})).Return(nil).Once()
	events.On("PublishOrderEvent", mock.MatchedBy(func(e rabbitmq.OrderEvent) bool {
		return e.Event == rabbitmq.OrderPaid
	})).Return(nil).Once()

	result, err := svc.InitiateCheckout("user-1", []services.CheckoutItem{
		{PluginID: "plug-free", Price: price("0.00")},
	})
	assert.NoError(t, err)
	assert.Empty(t, result.ClientSecret)
	assert.Equal(t, models.OrderPaid, created.Status)

	gw.AssertNotCalled(t, "CreateCharge", mock.Anything, mock.Anything, mock.Anything)
	cartRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestReconcile_ChargeSucceeded(t *testing.T) {
	svc, orderRepo, cartRepo, gw, notifier, events := newCheckoutFixture()

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	gw.On("VerifyEvent", payload, "sig").
		Return(&gateway.Event{Type: gateway.ChargeSucceeded, ChargeRef: "pi_123"}, nil).Once()

	order := &models.Order{ID: "order-1", UserID: "user-1", Status: models.OrderPending, PaymentRef: "pi_123"}
	orderRepo.On("GetByPaymentRef", "pi_123").Return(order, nil).Once()
	orderRepo.On("MarkPaid", "order-1").Return(true, nil).Once()

	cartRepo.On("GetByUser", "user-1").Return(&models.Cart{ID: "cart-1", UserID: "user-1"}, nil).Once()
	cartRepo.On("Clear", "cart-1").Return(nil).Once()

	notifier.On("Publish", services.EventUpdateOrder, mock.Anything).Once()
	events.On("PublishOrderEvent", mock.MatchedBy(func(e rabbitmq.OrderEvent) bool {
		return e.Event == rabbitmq.OrderPaid && e.OrderID == "order-1"
	})).Return(nil).Once()

	err := svc.Reconcile(payload, "sig")
	assert.NoError(t, err)

	orderRepo.AssertExpectations(t)
	cartRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestReconcile_RedeliveredEventIsNoOp(t *testing.T) {
	svc, orderRepo, cartRepo, gw, _, _ := newCheckoutFixture()

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	gw.On("VerifyEvent", payload, "sig").
		Return(&gateway.Event{Type: gateway.ChargeSucceeded, ChargeRef: "pi_123"}, nil).Once()

	paid := &models.Order{ID: "order-1", UserID: "user-1", Status: models.OrderPaid, PaymentRef: "pi_123"}
	orderRepo.On("GetByPaymentRef", "pi_123").Return(paid, nil).Once()

	err := svc.Reconcile(payload, "sig")
	assert.NoError(t, err)

	// Settled order: no second transition, no second cart clear.
	orderRepo.AssertNotCalled(t, "MarkPaid", mock.Anything)
	cartRepo.AssertNotCalled(t, "Clear", mock.Anything)
}

func TestReconcile_BadSignature(t *testing.T) {
	svc, orderRepo, _, gw, _, _ := newCheckoutFixture()

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	gw.On("VerifyEvent", payload, "bad-sig").
		Return(nil, errors.New("signature mismatch")).Once()

	err := svc.Reconcile(payload, "bad-sig")
	assert.ErrorIs(t, err, services.ErrBadSignature)

	// Verification fails closed: no lookup, no state change.
	orderRepo.AssertNotCalled(t, "GetByPaymentRef", mock.Anything)
	orderRepo.AssertNotCalled(t, "MarkPaid", mock.Anything)
}

func TestReconcile_UnknownChargeRef(t *testing.T) {
	svc, orderRepo, _, gw, _, _ := newCheckoutFixture()

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	gw.On("VerifyEvent", payload, "sig").
		Return(&gateway.Event{Type: gateway.ChargeSucceeded, ChargeRef: "pi_unknown"}, nil).Once()
	orderRepo.On("GetByPaymentRef", "pi_unknown").
		Return(nil, fmt.Errorf("order with payment ref pi_unknown: %w", repositories.ErrNotFound)).Once()

	// Acknowledged so the gateway stops redelivering; zero rows mutated.
	err := svc.Reconcile(payload, "sig")
	assert.NoError(t, err)
	orderRepo.AssertNotCalled(t, "MarkPaid", mock.Anything)
}

func TestReconcile_IgnoresOtherEventTypes(t *testing.T) {
	svc, orderRepo, _, gw, _, _ := newCheckoutFixture()

	payload := []byte(`{"type":"payment_intent.payment_failed"}`)
	gw.On("VerifyEvent", payload, "sig").
		Return(&gateway.Event{Type: "payment_intent.payment_failed"}, nil).Once()

	err := svc.Reconcile(payload, "sig")
	assert.NoError(t, err)
	orderRepo.AssertNotCalled(t, "GetByPaymentRef", mock.Anything)
}

func TestReconcile_CartClearFailureDoesNotUndoPaid(t *testing.T) {
	svc, orderRepo, cartRepo, gw, notifier, events := newCheckoutFixture()

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	gw.On("VerifyEvent", payload, "sig").
		Return(&gateway.Event{Type: gateway.ChargeSucceeded, ChargeRef: "pi_123"}, nil).Once()

	order := &models.Order{ID: "order-1", UserID: "user-1", Status: models.OrderPending, PaymentRef: "pi_123"}
	orderRepo.On("GetByPaymentRef", "pi_123").Return(order, nil).Once()
	orderRepo.On("MarkPaid", "order-1").Return(true, nil).Once()

	cartRepo.On("GetByUser", "user-1").Return(&models.Cart{ID: "cart-1", UserID: "user-1"}, nil).Once()
	cartRepo.On("Clear", "cart-1").Return(errors.New("deadlock detected")).Once()

	notifier.On("Publish", services.EventUpdateOrder, mock.Anything).Once()
	events.On("PublishOrderEvent", mock.AnythingOfType("rabbitmq.OrderEvent")).Return(nil).Once()

	// The money has moved; a cart-clear failure is logged, not surfaced.
	err := svc.Reconcile(payload, "sig")
	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

func TestReconcile_MarkPaidFailureIsRetryable(t *testing.T) {
	svc, orderRepo, cartRepo, gw, _, _ := newCheckoutFixture()

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	gw.On("VerifyEvent", payload, "sig").
		Return(&gateway.Event{Type: gateway.ChargeSucceeded, ChargeRef: "pi_123"}, nil).Once()

	order := &models.Order{ID: "order-1", UserID: "user-1", Status: models.OrderPending, PaymentRef: "pi_123"}
	orderRepo.On("GetByPaymentRef", "pi_123").Return(order, nil).Once()
	orderRepo.On("MarkPaid", "order-1").Return(false, errors.New("connection reset")).Once()

	err := svc.Reconcile(payload, "sig")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrBadSignature)
	cartRepo.AssertNotCalled(t, "Clear", mock.Anything)
}

func TestCheckoutFromCart(t *testing.T) {
	// In-memory repositories drive the cart-to-order materialization path.
	cartRepo := repositories.NewMockCartRepository()
	pluginRepo := repositories.NewMockPluginRepository()
	orderRepo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)

	svc := services.NewCheckoutService(orderRepo, cartRepo, pluginRepo, gw, nil, nil)

	plugin := &models.Plugin{ID: "plug-1", Name: "Dark Theme Pack", Price: price("19.99")}
	assert.NoError(t, pluginRepo.Create(plugin))

	cart, err := cartRepo.CreateForUser("user-1")
	assert.NoError(t, err)
	assert.NoError(t, cartRepo.AddItem(&models.CartItem{CartID: cart.ID, PluginID: "plug-1", Quantity: 1}))

	gw.On("CreateCharge", int64(1999), "usd", mock.AnythingOfType("string")).
		Return(&gateway.Charge{Ref: "pi_cart", ClientSecret: "pi_cart_secret"}, nil).Once()

	result, err := svc.CheckoutFromCart("user-1")
	assert.NoError(t, err)
	assert.Equal(t, "pi_cart_secret", result.ClientSecret)

	order, err := orderRepo.GetByID(result.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, price("19.99").Equal(order.TotalAmount))
	assert.Len(t, order.Items, 1)
	assert.True(t, price("19.99").Equal(order.Items[0].Price))
}

func TestCheckoutFromCart_FreeCartClearedOnPaid(t *testing.T) {
	cartRepo := repositories.NewMockCartRepository()
	pluginRepo := repositories.NewMockPluginRepository()
	orderRepo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)

	svc := services.NewCheckoutService(orderRepo, cartRepo, pluginRepo, gw, nil, nil)

	assert.NoError(t, pluginRepo.Create(&models.Plugin{ID: "plug-free", Name: "Starter Pack", Price: price("0.00")}))
	cart, err := cartRepo.CreateForUser("user-1")
	assert.NoError(t, err)
	assert.NoError(t, cartRepo.AddItem(&models.CartItem{CartID: cart.ID, PluginID: "plug-free", Quantity: 1}))

	result, err := svc.CheckoutFromCart("user-1")
	assert.NoError(t, err)
	assert.Empty(t, result.ClientSecret)

	// An all-free cart settles without the gateway and still follows the
	// paid lifecycle: the cart is cleared right away.
	order, err := orderRepo.GetByID(result.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, order.Status)

	after, err := cartRepo.GetByUser("user-1")
	assert.NoError(t, err)
	assert.Empty(t, after.Items)

	gw.AssertNotCalled(t, "CreateCharge", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_CancelPending(t *testing.T) {
	svc, orderRepo, _, _, notifier, _ := newCheckoutFixture()

	pending := &models.Order{ID: "order-1", UserID: "user-1", Status: models.OrderPending}
	orderRepo.On("GetByID", "order-1").Return(pending, nil).Once()
	orderRepo.On("UpdateStatus", "order-1", models.OrderCancelled).Return(nil).Once()
	notifier.On("Publish", services.EventUpdateOrder, mock.Anything).Once()

	order, err := svc.UpdateOrderStatus("order-1", models.OrderCancelled)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)

	orderRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestUpdateOrderStatus_IllegalTransition(t *testing.T) {
	svc, orderRepo, _, _, _, _ := newCheckoutFixture()

	paid := &models.Order{ID: "order-1", UserID: "user-1", Status: models.OrderPaid}
	orderRepo.On("GetByID", "order-1").Return(paid, nil).Once()

	_, err := svc.UpdateOrderStatus("order-1", models.OrderCancelled)
	assert.ErrorIs(t, err, services.ErrConflict)
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_PaidIsReservedForReconciliation(t *testing.T) {
	svc, orderRepo, _, _, _, _ := newCheckoutFixture()

	_, err := svc.UpdateOrderStatus("order-1", models.OrderPaid)
	assert.ErrorIs(t, err, services.ErrValidation)
	orderRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestCheckoutFromCart_EmptyCart(t *testing.T) {
	cartRepo := repositories.NewMockCartRepository()
	orderRepo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)

	svc := services.NewCheckoutService(orderRepo, cartRepo, repositories.NewMockPluginRepository(), gw, nil, nil)

	_, err := cartRepo.CreateForUser("user-1")
	assert.NoError(t, err)

	_, err = svc.CheckoutFromCart("user-1")
	assert.ErrorIs(t, err, services.ErrValidation)
	gw.AssertNotCalled(t, "CreateCharge", mock.Anything, mock.Anything, mock.Anything)
}
