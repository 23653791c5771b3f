package webhook

import (
	"context"
	"encoding/json"
	"errors"

	ordertypes "github.com/antonminaichev/storefront-orders/internal/types/order"

	orderpkg "github.com/antonminaichev/storefront-orders/internal/order"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
)

// SessionRetriever fetches the full checkout session from the provider; the
// webhook payload alone does not carry expanded fields.
type SessionRetriever interface {
	RetrieveSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
}

// OrderProcessor is the slice of the order service the dispatcher drives.
type OrderProcessor interface {
	CreateFromSession(ctx context.Context, sess *stripe.CheckoutSession) (*ordertypes.Order, error)
	UpdatePaymentStatus(ctx context.Context, intentID string, status ordertypes.PaymentStatus) error
}

// FulfillmentRunner runs post-creation side effects.
type FulfillmentRunner interface {
	Fulfill(ctx context.Context, o *ordertypes.Order)
}

// Dispatcher routes authenticated events over the closed set of handled
// kinds. Unknown kinds are acknowledged and ignored.
type Dispatcher struct {
	sessions    SessionRetriever
	orders      OrderProcessor
	fulfillment FulfillmentRunner
}

func NewDispatcher(sessions SessionRetriever, orders OrderProcessor, fulfillment FulfillmentRunner) *Dispatcher {
	return &Dispatcher{sessions: sessions, orders: orders, fulfillment: fulfillment}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event stripe.Event) {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		d.handleCheckoutCompleted(ctx, event)
	case stripe.EventTypePaymentIntentSucceeded:
		d.handlePaymentIntent(ctx, event, ordertypes.PaymentPaid)
	case stripe.EventTypePaymentIntentPaymentFailed:
		d.handlePaymentIntent(ctx, event, ordertypes.PaymentFailed)
	default:
		log.WithField("type", event.Type).Info("ignoring unhandled event type")
	}
}

func (d *Dispatcher) handleCheckoutCompleted(ctx context.Context, event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		log.WithField("event_id", event.ID).WithError(err).Error("failed to decode checkout session payload")
		return
	}

	full, err := d.sessions.RetrieveSession(ctx, sess.ID)
	if err != nil {
		log.WithField("session_id", sess.ID).WithError(err).Error("failed to retrieve checkout session")
		return
	}

	o, err := d.orders.CreateFromSession(ctx, full)
	switch {
	case errors.Is(err, orderpkg.ErrDuplicateSession):
		// Provider redelivery; the first delivery already handled it.
		return
	case errors.Is(err, orderpkg.ErrBadMetadata):
		log.WithField("session_id", sess.ID).WithError(err).Error("unprocessable session metadata, order not created")
		return
	case err != nil:
		log.WithField("session_id", sess.ID).WithError(err).Error("order creation failed")
		return
	}

	d.fulfillment.Fulfill(ctx, o)
}

func (d *Dispatcher) handlePaymentIntent(ctx context.Context, event stripe.Event, status ordertypes.PaymentStatus) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.WithField("event_id", event.ID).WithError(err).Error("failed to decode payment intent payload")
		return
	}
	if err := d.orders.UpdatePaymentStatus(ctx, pi.ID, status); err != nil {
		log.WithField("payment_intent", pi.ID).WithError(err).Error("payment status update failed")
	}
}
