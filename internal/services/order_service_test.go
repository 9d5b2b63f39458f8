package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/mocks"
	"fulfillment-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockStockReserver lives here rather than in the shared mocks package
// because its signatures name types from this package.
type mockStockReserver struct {
	mock.Mock
}

func (m *mockStockReserver) ReserveAll(ctx context.Context, lines []domain.OrderLine) ([]ReservedLine, error) {
	args := m.Called(ctx, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ReservedLine), args.Error(1)
}

func (m *mockStockReserver) ReleaseAll(ctx context.Context, reserved []ReservedLine) {
	m.Called(ctx, reserved)
}

type orderServiceMocks struct {
	orders    *mocks.MockOrderRepository
	products  *mocks.MockProductRepository
	refs      *mocks.MockReferenceRepository
	inventory *mockStockReserver
	notifier  *mocks.MockNotifier
	auditor   *mocks.MockAuditor
	publisher *mocks.MockPublisher
}

func newOrderServiceMocks() *orderServiceMocks {
	return &orderServiceMocks{
		orders:    new(mocks.MockOrderRepository),
		products:  new(mocks.MockProductRepository),
		refs:      new(mocks.MockReferenceRepository),
		inventory: new(mockStockReserver),
		notifier:  new(mocks.MockNotifier),
		auditor:   new(mocks.MockAuditor),
		publisher: new(mocks.MockPublisher),
	}
}

func (m *orderServiceMocks) service() *OrderService {
	return NewOrderService(m.orders, m.products, m.refs, m.inventory, m.notifier, m.auditor, m.publisher)
}

// expectAsyncSideEffects marks the post-commit fan-out as optional: it
// runs on its own goroutine and its outcome never affects the call
// under test.
func (m *orderServiceMocks) expectAsyncSideEffects() {
	m.notifier.On("NotifyUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&domain.Notification{}, nil).Maybe()
	m.notifier.On("NotifyAdmins", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.auditor.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (m *orderServiceMocks) expectReferences() {
	m.refs.On("FindUser", mock.Anything, TestUserID).Return(CreateMockUser(TestUserID, domain.RoleCustomer), nil)
	m.refs.On("FindCity", mock.Anything, TestCityID).Return(&domain.City{ID: TestCityID, Name: "Cairo"}, nil)
	m.refs.On("FindArea", mock.Anything, TestAreaID).Return(&domain.Area{ID: TestAreaID, CityID: TestCityID, Name: "Maadi"}, nil)
}

func twoLineInput(totalAmount string) CreateOrderInput {
	return CreateOrderInput{
		UserID: TestUserID,
		CityID: TestCityID,
		AreaID: TestAreaID,
		Lines: []OrderLineInput{
			{ProductID: 1, Quantity: 2, Price: money("6.50")},
			{ProductID: 2, Quantity: 1, Price: money("3.00")},
		},
		TotalAmount:   money(totalAmount),
		PaymentMethod: domain.PaymentOnline,
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	tests := []struct {
		name          string
		input         CreateOrderInput
		setupMocks    func(*orderServiceMocks)
		expectedError error
		check         func(*testing.T, *orderServiceMocks, *domain.Order)
	}{
		{
			name:  "successful order creation",
			input: twoLineInput("16.00"),
			setupMocks: func(m *orderServiceMocks) {
				m.expectReferences()
				m.products.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockProduct(1, "Milk", "6.50", 20), nil)
				m.products.On("FindByID", mock.Anything, uint64(2)).Return(CreateMockProduct(2, "Bread", "3.00", 15), nil)
				m.inventory.On("ReserveAll", mock.Anything, mock.AnythingOfType("[]domain.OrderLine")).Return([]ReservedLine{
					{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1},
				}, nil)
				m.orders.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Order).ID = TestOrderID
				})
				m.expectAsyncSideEffects()
			},
			check: func(t *testing.T, m *orderServiceMocks, order *domain.Order) {
				assert.Equal(t, TestOrderID, order.ID)
				assert.Equal(t, domain.StatusPending, order.Status)
				assert.True(t, order.TotalAmount.Equal(money("16.00")))
				assert.Len(t, order.Lines, 2)
				// The line snapshot freezes the catalog state seen at
				// order time.
				assert.Equal(t, "Milk", order.Lines[0].Name)
				assert.Equal(t, int64(20), order.Lines[0].Stock)
			},
		},
		{
			name:  "declared total off by one cent is rejected",
			input: twoLineInput("15.99"),
			setupMocks: func(m *orderServiceMocks) {
				m.expectReferences()
				m.products.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockProduct(1, "Milk", "6.50", 20), nil)
				m.products.On("FindByID", mock.Anything, uint64(2)).Return(CreateMockProduct(2, "Bread", "3.00", 15), nil)
			},
			expectedError: domain.ErrTotalMismatch,
			check: func(t *testing.T, m *orderServiceMocks, _ *domain.Order) {
				m.inventory.AssertNotCalled(t, "ReserveAll", mock.Anything, mock.Anything)
			},
		},
		{
			name: "perturbed line price is rejected",
			input: CreateOrderInput{
				UserID: TestUserID, CityID: TestCityID, AreaID: TestAreaID,
				Lines: []OrderLineInput{
					{ProductID: 1, Quantity: 2, Price: money("6.51")},
					{ProductID: 2, Quantity: 1, Price: money("3.00")},
				},
				TotalAmount:   money("16.00"),
				PaymentMethod: domain.PaymentOnline,
			},
			setupMocks: func(m *orderServiceMocks) {
				m.expectReferences()
				m.products.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockProduct(1, "Milk", "6.50", 20), nil)
				m.products.On("FindByID", mock.Anything, uint64(2)).Return(CreateMockProduct(2, "Bread", "3.00", 15), nil)
			},
			expectedError: domain.ErrTotalMismatch,
		},
		{
			name:  "user not found",
			input: twoLineInput("16.00"),
			setupMocks: func(m *orderServiceMocks) {
				m.refs.On("FindUser", mock.Anything, TestUserID).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:  "city not found",
			input: twoLineInput("16.00"),
			setupMocks: func(m *orderServiceMocks) {
				m.refs.On("FindUser", mock.Anything, TestUserID).Return(CreateMockUser(TestUserID, domain.RoleCustomer), nil)
				m.refs.On("FindCity", mock.Anything, TestCityID).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:  "area not found",
			input: twoLineInput("16.00"),
			setupMocks: func(m *orderServiceMocks) {
				m.refs.On("FindUser", mock.Anything, TestUserID).Return(CreateMockUser(TestUserID, domain.RoleCustomer), nil)
				m.refs.On("FindCity", mock.Anything, TestCityID).Return(&domain.City{ID: TestCityID}, nil)
				m.refs.On("FindArea", mock.Anything, TestAreaID).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:  "product not found",
			input: twoLineInput("16.00"),
			setupMocks: func(m *orderServiceMocks) {
				m.expectReferences()
				m.products.On("FindByID", mock.Anything, uint64(1)).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "unknown variant size",
			input: CreateOrderInput{
				UserID: TestUserID, CityID: TestCityID, AreaID: TestAreaID,
				Lines:         []OrderLineInput{{ProductID: 1, Quantity: 1, Price: money("6.50"), Size: "3 liter"}},
				TotalAmount:   money("6.50"),
				PaymentMethod: domain.PaymentOnline,
			},
			setupMocks: func(m *orderServiceMocks) {
				m.expectReferences()
				product := CreateMockProduct(1, "Milk", "6.50", 20)
				product.Variants = []domain.Variant{{Size: "1 liter", Price: money("6.50"), Stock: 5}}
				m.products.On("FindByID", mock.Anything, uint64(1)).Return(product, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:  "insufficient stock on pre-check",
			input: twoLineInput("16.00"),
			setupMocks: func(m *orderServiceMocks) {
				m.expectReferences()
				m.products.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockProduct(1, "Milk", "6.50", 1), nil)
			},
			expectedError: domain.ErrInsufficientStock,
		},
		{
			name:  "stock raced away between pre-check and reservation",
			input: twoLineInput("16.00"),
			setupMocks: func(m *orderServiceMocks) {
				m.expectReferences()
				m.products.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockProduct(1, "Milk", "6.50", 20), nil)
				m.products.On("FindByID", mock.Anything, uint64(2)).Return(CreateMockProduct(2, "Bread", "3.00", 15), nil)
				m.inventory.On("ReserveAll", mock.Anything, mock.Anything).Return(nil, domain.ErrInsufficientStock)
			},
			expectedError: domain.ErrInsufficientStock,
			check: func(t *testing.T, m *orderServiceMocks, _ *domain.Order) {
				// No order row may exist when reservation failed.
				m.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			},
		},
		{
			name:  "persist failure releases the reservations",
			input: twoLineInput("16.00"),
			setupMocks: func(m *orderServiceMocks) {
				m.expectReferences()
				m.products.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockProduct(1, "Milk", "6.50", 20), nil)
				m.products.On("FindByID", mock.Anything, uint64(2)).Return(CreateMockProduct(2, "Bread", "3.00", 15), nil)
				reserved := []ReservedLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}
				m.inventory.On("ReserveAll", mock.Anything, mock.Anything).Return(reserved, nil)
				m.orders.On("Save", mock.Anything, mock.Anything).Return(errors.New("database error"))
				m.inventory.On("ReleaseAll", mock.Anything, reserved).Return()
			},
			expectedError: errors.New("database error"),
			check: func(t *testing.T, m *orderServiceMocks, _ *domain.Order) {
				m.inventory.AssertCalled(t, "ReleaseAll", mock.Anything, mock.Anything)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newOrderServiceMocks()
			tt.setupMocks(m)

			order, err := m.service().CreateOrder(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				if !errors.Is(err, tt.expectedError) {
					assert.Contains(t, err.Error(), tt.expectedError.Error())
				}
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, order)
			}
			if tt.check != nil {
				tt.check(t, m, order)
			}

			// Let the post-commit fan-out goroutine settle.
			time.Sleep(100 * time.Millisecond)

			m.orders.AssertExpectations(t)
			m.products.AssertExpectations(t)
			m.refs.AssertExpectations(t)
			m.inventory.AssertExpectations(t)
		})
	}
}

func TestOrderService_Ownership(t *testing.T) {
	owner := domain.Actor{ID: TestUserID, Role: domain.RoleCustomer}
	stranger := domain.Actor{ID: 7, Role: domain.RoleCustomer}
	admin := domain.Actor{ID: TestAdminID, Role: domain.RoleAdmin}

	tests := []struct {
		name          string
		actor         domain.Actor
		expectedError error
	}{
		{name: "owner may cancel their own order", actor: owner},
		{name: "stranger is forbidden", actor: stranger, expectedError: domain.ErrForbidden},
		{name: "admin may cancel any order", actor: admin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newOrderServiceMocks()
			m.orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestUserID, "16.00", domain.StatusPending), nil)
			if tt.expectedError == nil {
				m.orders.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				m.expectAsyncSideEffects()
			}

			err := m.service().CancelOrder(context.Background(), TestOrderID, tt.actor)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				m.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}

			time.Sleep(50 * time.Millisecond)
			m.orders.AssertExpectations(t)
		})
	}
}

func TestOrderService_CancelOrder_SoftDeletesWithoutRestocking(t *testing.T) {
	m := newOrderServiceMocks()
	order := CreateMockOrder(TestOrderID, TestUserID, "16.00", domain.StatusAccepted)
	m.orders.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)

	var saved *domain.Order
	m.orders.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.Order)
	})
	m.expectAsyncSideEffects()

	err := m.service().CancelOrder(context.Background(), TestOrderID, domain.Actor{ID: TestUserID, Role: domain.RoleCustomer})

	assert.NoError(t, err)
	assert.NotNil(t, saved.DeletedAt)
	assert.Equal(t, domain.StatusCancelled, saved.Status)
	// Cancellation never touches inventory; restocking is a separate,
	// explicit operation.
	m.inventory.AssertNotCalled(t, "ReleaseAll", mock.Anything, mock.Anything)

	time.Sleep(50 * time.Millisecond)
	m.orders.AssertExpectations(t)
}

func TestOrderService_UpdateOrder(t *testing.T) {
	owner := domain.Actor{ID: TestUserID, Role: domain.RoleCustomer}
	accepted := domain.StatusAccepted
	preparing := domain.StatusPreparing

	t.Run("valid status transition", func(t *testing.T) {
		m := newOrderServiceMocks()
		m.orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestUserID, "16.00", domain.StatusPending), nil)
		m.orders.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
		m.expectAsyncSideEffects()

		order, err := m.service().UpdateOrder(context.Background(), TestOrderID, UpdateOrderInput{Status: &accepted}, owner)

		assert.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, order.Status)
		time.Sleep(50 * time.Millisecond)
		m.orders.AssertExpectations(t)
	})

	t.Run("skipping a lifecycle stage is rejected", func(t *testing.T) {
		m := newOrderServiceMocks()
		m.orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestUserID, "16.00", domain.StatusPending), nil)

		_, err := m.service().UpdateOrder(context.Background(), TestOrderID, UpdateOrderInput{Status: &preparing}, owner)

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		m.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("delivered order cannot move on", func(t *testing.T) {
		m := newOrderServiceMocks()
		m.orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestUserID, "16.00", domain.StatusDelivered), nil)

		_, err := m.service().UpdateOrder(context.Background(), TestOrderID, UpdateOrderInput{Status: &preparing}, owner)

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("lines without a declared total are rejected", func(t *testing.T) {
		m := newOrderServiceMocks()
		m.orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestUserID, "16.00", domain.StatusPending), nil)

		_, err := m.service().UpdateOrder(context.Background(), TestOrderID, UpdateOrderInput{
			Lines: []OrderLineInput{{ProductID: 1, Quantity: 1, Price: money("6.50")}},
		}, owner)

		assert.ErrorIs(t, err, domain.ErrTotalMismatch)
	})

	t.Run("line change re-validates the total invariant", func(t *testing.T) {
		m := newOrderServiceMocks()
		m.orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestUserID, "16.00", domain.StatusPending), nil)
		m.products.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockProduct(1, "Milk", "6.50", 20), nil)
		m.orders.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
		m.expectAsyncSideEffects()

		total := money("13.00")
		order, err := m.service().UpdateOrder(context.Background(), TestOrderID, UpdateOrderInput{
			Lines:       []OrderLineInput{{ProductID: 1, Quantity: 2, Price: money("6.50")}},
			TotalAmount: &total,
		}, owner)

		assert.NoError(t, err)
		assert.True(t, order.TotalAmount.Equal(money("13.00")))
		assert.Len(t, order.Lines, 1)
		time.Sleep(50 * time.Millisecond)
		m.orders.AssertExpectations(t)
	})
}

func TestOrderService_BulkCancel_PartialSuccess(t *testing.T) {
	m := newOrderServiceMocks()
	actor := domain.Actor{ID: TestUserID, Role: domain.RoleCustomer}

	m.orders.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockOrder(1, TestUserID, "16.00", domain.StatusPending), nil)
	m.orders.On("FindByID", mock.Anything, uint64(2)).Return(CreateMockOrder(2, TestUserID, "9.00", domain.StatusPending), nil)
	m.orders.On("FindByID", mock.Anything, uint64(999)).Return(nil, nil)
	m.orders.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	m.expectAsyncSideEffects()

	deleted, err := m.service().BulkCancel(context.Background(), []uint64{1, 2, 999}, actor)

	assert.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, deleted)

	time.Sleep(50 * time.Millisecond)
	m.orders.AssertExpectations(t)
}

func TestOrderService_BulkCancel_AllMissingIsNotFound(t *testing.T) {
	m := newOrderServiceMocks()
	m.orders.On("FindByID", mock.Anything, mock.AnythingOfType("uint64")).Return(nil, nil)

	_, err := m.service().BulkCancel(context.Background(), []uint64{998, 999}, domain.Actor{ID: TestUserID, Role: domain.RoleCustomer})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_RestoreOrder(t *testing.T) {
	m := newOrderServiceMocks()
	deletedAt := time.Now().Add(-time.Hour)
	order := CreateMockOrder(TestOrderID, TestUserID, "16.00", domain.StatusCancelled)
	order.DeletedAt = &deletedAt

	m.orders.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)
	var saved *domain.Order
	m.orders.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.Order)
	})
	m.expectAsyncSideEffects()

	restored, err := m.service().RestoreOrder(context.Background(), TestOrderID, domain.Actor{ID: TestUserID, Role: domain.RoleCustomer})

	assert.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
	assert.Nil(t, saved.DeletedAt)
	// Restoration clears the delete flag only; the status is untouched.
	assert.Equal(t, domain.StatusCancelled, restored.Status)

	time.Sleep(50 * time.Millisecond)
	m.orders.AssertExpectations(t)
}

func TestOrderService_GetOrder_DeletedIsNotFound(t *testing.T) {
	m := newOrderServiceMocks()
	deletedAt := time.Now()
	order := CreateMockOrder(TestOrderID, TestUserID, "16.00", domain.StatusCancelled)
	order.DeletedAt = &deletedAt
	m.orders.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)

	_, err := m.service().GetOrder(context.Background(), TestOrderID, domain.Actor{ID: TestUserID, Role: domain.RoleCustomer})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_ListOrders_ScopesNonAdminsToOwnOrders(t *testing.T) {
	m := newOrderServiceMocks()
	m.orders.On("FindAll", mock.Anything, mock.AnythingOfType("repository.OrderFilter")).Return([]domain.Order{}, nil)

	service := m.service()

	_, err := service.ListOrders(context.Background(), domain.Actor{ID: TestUserID, Role: domain.RoleCustomer}, "")
	assert.NoError(t, err)
	_, err = service.ListOrders(context.Background(), domain.Actor{ID: TestAdminID, Role: domain.RoleAdmin}, domain.StatusPending)
	assert.NoError(t, err)

	assert.Len(t, m.orders.Calls, 2)
	userFilter := m.orders.Calls[0].Arguments.Get(1).(repository.OrderFilter)
	adminFilter := m.orders.Calls[1].Arguments.Get(1).(repository.OrderFilter)
	assert.Equal(t, TestUserID, userFilter.UserID)
	assert.Zero(t, adminFilter.UserID)
	assert.Equal(t, domain.StatusPending, adminFilter.Status)
}
