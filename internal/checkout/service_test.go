package checkout

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/antonminaichev/storefront-orders/internal/order"
	ordertypes "github.com/antonminaichev/storefront-orders/internal/types/order"
	"github.com/antonminaichev/storefront-orders/internal/types/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

type mockPayments struct {
	createFn func(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	params   *stripe.CheckoutSessionParams
}

func (m *mockPayments) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	m.params = params
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return &stripe.CheckoutSession{ID: "cs_new", URL: "https://pay.example/cs_new"}, nil
}

type mockCatalog struct {
	products map[string]*product.Product
}

func (m *mockCatalog) FindProductByID(ctx context.Context, id string) (*product.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func walnuts() *product.Product {
	return &product.Product{
		ID:   "prod_1",
		Name: "Walnuts",
		Variants: []product.Variant{
			{ProductID: "prod_1", Size: "250g", UnitPrice: decimal.RequireFromString("9.99"), Stock: 10},
			{ProductID: "prod_1", Size: "500g", UnitPrice: decimal.RequireFromString("17.99"), Stock: 5},
		},
	}
}

func validCustomer() ordertypes.CustomerInfo {
	return ordertypes.CustomerInfo{
		FirstName:  "Max",
		LastName:   "Mustermann",
		Email:      "max@example.de",
		Address:    "Musterstr. 1",
		City:       "Berlin",
		PostalCode: "10115",
		Country:    "Deutschland",
	}
}

func newTestService(payments *mockPayments, catalog *mockCatalog) *Service {
	return NewService(payments, catalog, "eur", "https://shop.example/success", "https://shop.example/cancel")
}

func TestCreateSessionPricesFromCatalog(t *testing.T) {
	payments := &mockPayments{}
	catalog := &mockCatalog{products: map[string]*product.Product{"prod_1": walnuts()}}
	svc := newTestService(payments, catalog)

	sess, err := svc.CreateSession(context.Background(), &CartRequest{
		Customer: validCustomer(),
		Items: []ordertypes.CartItem{
			// Client-supplied price is ignored in favor of the catalog.
			{ProductID: "prod_1", Name: "Walnuts", Price: decimal.RequireFromString("0.01"), Quantity: 2, Size: "250g"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_new", sess.ID)
	assert.Equal(t, "https://pay.example/cs_new", sess.URL)

	require.NotNil(t, payments.params)
	require.Len(t, payments.params.LineItems, 1)
	li := payments.params.LineItems[0]
	assert.EqualValues(t, 2, *li.Quantity)
	assert.EqualValues(t, 999, *li.PriceData.UnitAmount)
	assert.Equal(t, "eur", *li.PriceData.Currency)

	meta := payments.params.Metadata
	require.Contains(t, meta, order.MetadataCustomerKey)
	require.Contains(t, meta, order.MetadataItemsKey)
	assert.Contains(t, meta[order.MetadataItemsKey], `"productId":"prod_1"`)
	assert.Contains(t, meta[order.MetadataItemsKey], `"price":"9.99"`)
}

func TestCreateSessionRequiresProductID(t *testing.T) {
	svc := newTestService(&mockPayments{}, &mockCatalog{products: map[string]*product.Product{}})

	_, err := svc.CreateSession(context.Background(), &CartRequest{
		Customer: validCustomer(),
		Items:    []ordertypes.CartItem{{Name: "Walnuts", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrMissingProductID)
}

func TestCreateSessionUnknownProduct(t *testing.T) {
	svc := newTestService(&mockPayments{}, &mockCatalog{products: map[string]*product.Product{}})

	_, err := svc.CreateSession(context.Background(), &CartRequest{
		Customer: validCustomer(),
		Items:    []ordertypes.CartItem{{ProductID: "prod_missing", Name: "Walnuts", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestCreateSessionUnknownVariant(t *testing.T) {
	catalog := &mockCatalog{products: map[string]*product.Product{"prod_1": walnuts()}}
	svc := newTestService(&mockPayments{}, catalog)

	_, err := svc.CreateSession(context.Background(), &CartRequest{
		Customer: validCustomer(),
		Items:    []ordertypes.CartItem{{ProductID: "prod_1", Name: "Walnuts", Quantity: 1, Size: "1kg"}},
	})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestCreateSessionEmptyCart(t *testing.T) {
	svc := newTestService(&mockPayments{}, &mockCatalog{})

	_, err := svc.CreateSession(context.Background(), &CartRequest{Customer: validCustomer()})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateSessionInvalidCustomer(t *testing.T) {
	svc := newTestService(&mockPayments{}, &mockCatalog{})

	_, err := svc.CreateSession(context.Background(), &CartRequest{
		Customer: ordertypes.CustomerInfo{FirstName: "Max"},
		Items:    []ordertypes.CartItem{{ProductID: "prod_1", Name: "Walnuts", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidCart)
}

func TestCreateSessionMetadataTooLong(t *testing.T) {
	catalog := &mockCatalog{products: map[string]*product.Product{"prod_1": walnuts()}}
	svc := newTestService(&mockPayments{}, catalog)

	customer := validCustomer()
	customer.Notes = strings.Repeat("bitte klingeln ", 50)

	_, err := svc.CreateSession(context.Background(), &CartRequest{
		Customer: customer,
		Items:    []ordertypes.CartItem{{ProductID: "prod_1", Name: "Walnuts", Quantity: 1, Size: "250g"}},
	})
	assert.ErrorIs(t, err, ErrMetadataTooLong)
}

func TestCreateSessionCustomerReference(t *testing.T) {
	payments := &mockPayments{}
	catalog := &mockCatalog{products: map[string]*product.Product{"prod_1": walnuts()}}
	svc := newTestService(payments, catalog)

	_, err := svc.CreateSession(context.Background(), &CartRequest{
		Customer:   validCustomer(),
		Items:      []ordertypes.CartItem{{ProductID: "prod_1", Name: "Walnuts", Quantity: 1, Size: "250g"}},
		CustomerID: "cust_42",
	})
	require.NoError(t, err)
	require.NotNil(t, payments.params.ClientReferenceID)
	assert.Equal(t, "cust_42", *payments.params.ClientReferenceID)
}
