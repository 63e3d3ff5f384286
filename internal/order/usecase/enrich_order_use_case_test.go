package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orderenricher/internal/domain"
	apperrors "orderenricher/internal/errors"
)

// Mock implementations
type mockStoreClient struct {
	GetOrderFunc            func(ctx context.Context, orderID domain.OrderID) (*domain.Order, error)
	GetOrderProductsFunc    func(ctx context.Context, orderID domain.OrderID) ([]domain.LineItem, error)
	GetCustomerFunc         func(ctx context.Context, customerID int64) (*domain.Customer, error)
	GetOrderSubResourceFunc func(ctx context.Context, orderID domain.OrderID, name string) (json.RawMessage, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockStoreClient) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockStoreClient) GetOrder(ctx context.Context, orderID domain.OrderID) (*domain.Order, error) {
	m.record("order")
	return m.GetOrderFunc(ctx, orderID)
}

func (m *mockStoreClient) GetOrderProducts(ctx context.Context, orderID domain.OrderID) ([]domain.LineItem, error) {
	m.record("products")
	return m.GetOrderProductsFunc(ctx, orderID)
}

func (m *mockStoreClient) GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error) {
	m.record("customer")
	return m.GetCustomerFunc(ctx, customerID)
}

func (m *mockStoreClient) GetOrderSubResource(ctx context.Context, orderID domain.OrderID, name string) (json.RawMessage, error) {
	m.record(name)
	return m.GetOrderSubResourceFunc(ctx, orderID, name)
}

type mockCompanyResolver struct {
	ResolveFunc func(ctx context.Context, customerCompany string) (domain.CompanyResolution, error)
	calls       int
}

func (m *mockCompanyResolver) Resolve(ctx context.Context, customerCompany string) (domain.CompanyResolution, error) {
	m.calls++
	return m.ResolveFunc(ctx, customerCompany)
}

func happyStore() *mockStoreClient {
	return &mockStoreClient{
		GetOrderFunc: func(ctx context.Context, orderID domain.OrderID) (*domain.Order, error) {
			return &domain.Order{ID: 12345, CustomerID: 77}, nil
		},
		GetOrderProductsFunc: func(ctx context.Context, orderID domain.OrderID) ([]domain.LineItem, error) {
			return []domain.LineItem{{ID: 1, Name: "Widget", SKU: "W-1", Quantity: 2}}, nil
		},
		GetCustomerFunc: func(ctx context.Context, customerID int64) (*domain.Customer, error) {
			return &domain.Customer{ID: customerID, Company: "Acme"}, nil
		},
		GetOrderSubResourceFunc: func(ctx context.Context, orderID domain.OrderID, name string) (json.RawMessage, error) {
			return json.RawMessage(`[]`), nil
		},
	}
}

func acmeResolver() *mockCompanyResolver {
	return &mockCompanyResolver{
		ResolveFunc: func(ctx context.Context, customerCompany string) (domain.CompanyResolution, error) {
			id := int64(1)
			name := "Acme"
			e8 := "E8-001"
			return domain.CompanyResolution{CompanyID: &id, CompanyName: &name, ExtraFieldValue: &e8}, nil
		},
	}
}

func newTestUseCase(store StoreClient, resolver CompanyResolver, subResources ...string) *EnrichOrderUseCase {
	return NewEnrichOrderUseCase(store, resolver, subResources, zap.NewNop())
}

// Tests

func TestEnrichOrder_Scenario(t *testing.T) {
	store := happyStore()
	resolver := acmeResolver()

	result, err := newTestUseCase(store, resolver).EnrichOrder(context.Background(), "12345")

	require.NoError(t, err)
	assert.Equal(t, int64(12345), result.Order.ID)
	assert.Len(t, result.Products, 1)
	require.NotNil(t, result.Customer)
	assert.Equal(t, "Acme", result.Customer.Company)
	assert.Equal(t, int64(1), *result.Company.CompanyID)
	assert.Equal(t, "E8-001", *result.Company.ExtraFieldValue)
	assert.Empty(t, result.Warnings)
	assert.Nil(t, result.SubResources)
}

func TestEnrichOrder_ZeroOrderID(t *testing.T) {
	store := &mockStoreClient{}

	_, err := newTestUseCase(store, &mockCompanyResolver{}).EnrichOrder(context.Background(), "0")

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Empty(t, store.calls)
}

func TestEnrichOrder_OrderNotFound(t *testing.T) {
	store := happyStore()
	store.GetOrderFunc = func(ctx context.Context, orderID domain.OrderID) (*domain.Order, error) {
		return nil, apperrors.NewUpstreamFetchError("order", 404)
	}
	resolver := acmeResolver()

	_, err := newTestUseCase(store, resolver).EnrichOrder(context.Background(), "12345")

	ue, ok := apperrors.IsUpstreamFetchError(err)
	require.True(t, ok)
	assert.Equal(t, "order", ue.Resource)
	assert.Equal(t, 404, ue.StatusCode)
	assert.Equal(t, 0, resolver.calls)
	assert.NotContains(t, store.calls, "customer")
}

func TestEnrichOrder_ProductsFailureCancelsOrderFetch(t *testing.T) {
	store := happyStore()
	store.GetOrderFunc = func(ctx context.Context, orderID domain.OrderID) (*domain.Order, error) {
		<-ctx.Done()
		return nil, apperrors.NewTransportError("order", ctx.Err())
	}
	store.GetOrderProductsFunc = func(ctx context.Context, orderID domain.OrderID) ([]domain.LineItem, error) {
		return nil, apperrors.NewMalformedResponseError("products", nil)
	}

	_, err := newTestUseCase(store, acmeResolver()).EnrichOrder(context.Background(), "12345")

	me, ok := apperrors.IsMalformedResponseError(err)
	require.True(t, ok)
	assert.Equal(t, "products", me.Resource)
}

func TestEnrichOrder_GuestOrderReturnsPartialResult(t *testing.T) {
	store := happyStore()
	store.GetOrderFunc = func(ctx context.Context, orderID domain.OrderID) (*domain.Order, error) {
		return &domain.Order{ID: 12345, CustomerID: 0}, nil
	}
	resolver := acmeResolver()

	result, err := newTestUseCase(store, resolver).EnrichOrder(context.Background(), "12345")

	require.NoError(t, err)
	assert.Nil(t, result.Customer)
	assert.Nil(t, result.Company.CompanyID)
	assert.Nil(t, result.Company.ExtraFieldValue)
	assert.Len(t, result.Products, 1)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "order.customer_id")
	assert.Equal(t, 0, resolver.calls)
	assert.NotContains(t, store.calls, "customer")
}

func TestEnrichOrder_CustomerWithoutCompany(t *testing.T) {
	store := happyStore()
	store.GetCustomerFunc = func(ctx context.Context, customerID int64) (*domain.Customer, error) {
		return &domain.Customer{ID: customerID, Company: ""}, nil
	}
	resolver := acmeResolver()

	result, err := newTestUseCase(store, resolver).EnrichOrder(context.Background(), "12345")

	require.NoError(t, err)
	require.NotNil(t, result.Customer)
	assert.Equal(t, int64(77), result.Customer.ID)
	assert.Nil(t, result.Company.CompanyID)
	assert.Nil(t, result.Company.ExtraFieldValue)
	assert.NotEmpty(t, result.Products)
	assert.Equal(t, 0, resolver.calls)
}

func TestEnrichOrder_CustomerFetchFails(t *testing.T) {
	store := happyStore()
	store.GetCustomerFunc = func(ctx context.Context, customerID int64) (*domain.Customer, error) {
		return nil, apperrors.NewUpstreamFetchError("customer", 404)
	}

	_, err := newTestUseCase(store, acmeResolver()).EnrichOrder(context.Background(), "12345")

	ue, ok := apperrors.IsUpstreamFetchError(err)
	require.True(t, ok)
	assert.Equal(t, "customer", ue.Resource)
}

func TestEnrichOrder_UnmatchedCompanyAddsWarning(t *testing.T) {
	resolver := &mockCompanyResolver{
		ResolveFunc: func(ctx context.Context, customerCompany string) (domain.CompanyResolution, error) {
			return domain.CompanyResolution{}, nil
		},
	}

	result, err := newTestUseCase(happyStore(), resolver).EnrichOrder(context.Background(), "12345")

	require.NoError(t, err)
	assert.Nil(t, result.Company.CompanyID)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Acme")
}

func TestEnrichOrder_CompanyResolutionFails(t *testing.T) {
	resolver := &mockCompanyResolver{
		ResolveFunc: func(ctx context.Context, customerCompany string) (domain.CompanyResolution, error) {
			return domain.CompanyResolution{}, apperrors.NewTransportError("companies", context.DeadlineExceeded)
		},
	}

	_, err := newTestUseCase(happyStore(), resolver).EnrichOrder(context.Background(), "12345")

	te, ok := apperrors.IsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, "companies", te.Resource)
}

func TestEnrichOrder_SubResourcesFanOut(t *testing.T) {
	store := happyStore()
	store.GetOrderSubResourceFunc = func(ctx context.Context, orderID domain.OrderID, name string) (json.RawMessage, error) {
		switch name {
		case "coupons":
			return json.RawMessage(`[{"code":"SPRING10","discount":"5.0000"}]`), nil
		case "fees":
			return json.RawMessage(`{"unexpected":"object"}`), nil
		case "consignments":
			return nil, apperrors.NewUpstreamFetchError("consignments", 500)
		default:
			return json.RawMessage(`[{"id":1}]`), nil
		}
	}

	result, err := newTestUseCase(store, acmeResolver(), "coupons", "fees", "consignments", "shipping_addresses").
		EnrichOrder(context.Background(), "12345")

	require.NoError(t, err)
	require.Len(t, result.SubResources, 4)

	assert.False(t, result.SubResources["coupons"].Failed())
	require.Len(t, result.Order.Coupons, 1)
	assert.Equal(t, "SPRING10", result.Order.Coupons[0].Code)

	assert.True(t, result.SubResources["fees"].Failed())
	assert.Empty(t, result.Order.Fees)

	assert.True(t, result.SubResources["consignments"].Failed())
	assert.Contains(t, result.SubResources["consignments"].Err, "status 500")

	assert.JSONEq(t, `[{"id":1}]`, string(result.SubResources["shipping_addresses"].Data))
	assert.Equal(t, int64(1), *result.Company.CompanyID)
}
