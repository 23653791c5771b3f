package webhook

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ordertypes "github.com/antonminaichev/storefront-orders/internal/types/order"

	orderpkg "github.com/antonminaichev/storefront-orders/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

const testSecret = "whsec_test_secret"

type mockRetriever struct {
	retrieveFn func(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	calls      int
}

func (m *mockRetriever) RetrieveSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	m.calls++
	return m.retrieveFn(ctx, id)
}

type mockProcessor struct {
	createFn      func(ctx context.Context, sess *stripe.CheckoutSession) (*ordertypes.Order, error)
	updateFn      func(ctx context.Context, intentID string, status ordertypes.PaymentStatus) error
	createCalls   int
	updateIntents []string
	updateStatus  []ordertypes.PaymentStatus
}

func (m *mockProcessor) CreateFromSession(ctx context.Context, sess *stripe.CheckoutSession) (*ordertypes.Order, error) {
	m.createCalls++
	return m.createFn(ctx, sess)
}

func (m *mockProcessor) UpdatePaymentStatus(ctx context.Context, intentID string, status ordertypes.PaymentStatus) error {
	m.updateIntents = append(m.updateIntents, intentID)
	m.updateStatus = append(m.updateStatus, status)
	if m.updateFn != nil {
		return m.updateFn(ctx, intentID, status)
	}
	return nil
}

type mockFulfillment struct {
	orders []*ordertypes.Order
}

func (m *mockFulfillment) Fulfill(ctx context.Context, o *ordertypes.Order) {
	m.orders = append(m.orders, o)
}

func signedRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testSecret)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig)))
	return req
}

func eventJSON(eventType string, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","type":"%s","data":{"object":%s}}`, eventType, object))
}

func TestHandleInvalidSignature(t *testing.T) {
	retriever := &mockRetriever{}
	processor := &mockProcessor{}
	fulfillment := &mockFulfillment{}
	h := NewHandler(testSecret, NewDispatcher(retriever, processor, fulfillment))

	payload := eventJSON("checkout.session.completed", `{"id":"cs_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
	assert.Zero(t, retriever.calls, "no processing on authentication failure")
	assert.Zero(t, processor.createCalls)
}

func TestHandleMissingSignature(t *testing.T) {
	h := NewHandler(testSecret, NewDispatcher(&mockRetriever{}, &mockProcessor{}, &mockFulfillment{}))

	payload := eventJSON("checkout.session.completed", `{"id":"cs_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUnknownEventAcknowledged(t *testing.T) {
	retriever := &mockRetriever{}
	processor := &mockProcessor{}
	h := NewHandler(testSecret, NewDispatcher(retriever, processor, &mockFulfillment{}))

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, eventJSON("customer.created", `{"id":"cus_1"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body["received"])
	assert.Zero(t, retriever.calls)
	assert.Zero(t, processor.createCalls)
}

func TestHandleCheckoutCompleted(t *testing.T) {
	full := &stripe.CheckoutSession{ID: "cs_test_abc12345XYZ", AmountTotal: 1998}
	created := &ordertypes.Order{ID: "o1", OrderNumber: "ORDER-1700000000-12345XYZ"}

	retriever := &mockRetriever{
		retrieveFn: func(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
			assert.Equal(t, "cs_test_abc12345XYZ", id)
			return full, nil
		},
	}
	processor := &mockProcessor{
		createFn: func(ctx context.Context, sess *stripe.CheckoutSession) (*ordertypes.Order, error) {
			assert.Equal(t, full, sess)
			return created, nil
		},
	}
	fulfillment := &mockFulfillment{}
	h := NewHandler(testSecret, NewDispatcher(retriever, processor, fulfillment))

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, eventJSON("checkout.session.completed", `{"id":"cs_test_abc12345XYZ"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, processor.createCalls)
	require.Len(t, fulfillment.orders, 1)
	assert.Equal(t, created, fulfillment.orders[0])
}

func TestHandleCheckoutBadMetadataStillAcknowledged(t *testing.T) {
	retriever := &mockRetriever{
		retrieveFn: func(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
			return &stripe.CheckoutSession{ID: id}, nil
		},
	}
	processor := &mockProcessor{
		createFn: func(ctx context.Context, sess *stripe.CheckoutSession) (*ordertypes.Order, error) {
			return nil, fmt.Errorf("%w: items missing", orderpkg.ErrBadMetadata)
		},
	}
	fulfillment := &mockFulfillment{}
	h := NewHandler(testSecret, NewDispatcher(retriever, processor, fulfillment))

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, eventJSON("checkout.session.completed", `{"id":"cs_1"}`)))

	assert.Equal(t, http.StatusOK, rec.Code, "unprocessable events must not trigger provider retries")
	assert.Empty(t, fulfillment.orders)
}

func TestHandleCheckoutDuplicateNoFulfillment(t *testing.T) {
	existing := &ordertypes.Order{ID: "o1"}
	retriever := &mockRetriever{
		retrieveFn: func(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
			return &stripe.CheckoutSession{ID: id}, nil
		},
	}
	processor := &mockProcessor{
		createFn: func(ctx context.Context, sess *stripe.CheckoutSession) (*ordertypes.Order, error) {
			return existing, orderpkg.ErrDuplicateSession
		},
	}
	fulfillment := &mockFulfillment{}
	h := NewHandler(testSecret, NewDispatcher(retriever, processor, fulfillment))

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, eventJSON("checkout.session.completed", `{"id":"cs_1"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, fulfillment.orders, "redelivery must not re-run side effects")
}
