package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/antonminaichev/storefront-orders/internal/types/order"
	"github.com/antonminaichev/storefront-orders/internal/util/ordernum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
)

var (
	// ErrDuplicateSession means an order for this checkout session already
	// exists; the delivery is a provider retry and must not create a second one.
	ErrDuplicateSession = errors.New("order already exists for session")
	// ErrBadMetadata means the session metadata failed to decode or validate.
	// Recoverable: the event is acknowledged, no order is created.
	ErrBadMetadata = errors.New("invalid session metadata")
	// ErrInvalidStatus rejects order-status values outside the closed set.
	ErrInvalidStatus = errors.New("invalid order status")
)

type Service struct {
	repo    OrderRepository
	catalog ProductFinder
}

// ProductFinder resolves cart items without a product id to catalog entries.
type ProductFinder interface {
	FindProductID(ctx context.Context, name string) (string, error)
}

func NewService(repo OrderRepository, catalog ProductFinder) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// CreateFromSession materializes an order from a completed checkout session.
// Exactly one order per session id: a repeated delivery returns
// ErrDuplicateSession and creates nothing.
func (s *Service) CreateFromSession(ctx context.Context, sess *stripe.CheckoutSession) (*order.Order, error) {
	existing, err := s.repo.FindOrderBySessionID(ctx, sess.ID)
	if err == nil {
		log.WithFields(log.Fields{
			"session_id":   sess.ID,
			"order_number": existing.OrderNumber,
		}).Info("duplicate checkout delivery, order already exists")
		return existing, ErrDuplicateSession
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("lookup session %s: %w", sess.ID, err)
	}

	customer, cart, err := decodeMetadata(sess.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}

	now := time.Now().UTC()
	o := &order.Order{
		ID:            uuid.NewString(),
		OrderNumber:   ordernum.Generate(sess.ID, now),
		SessionID:     sess.ID,
		FirstName:     customer.FirstName,
		LastName:      customer.LastName,
		Email:         customer.Email,
		Street:        customer.Address,
		City:          customer.City,
		PostalCode:    customer.PostalCode,
		Country:       customer.Country,
		Currency:      strings.ToUpper(string(sess.Currency)),
		TotalPrice:    decimal.New(sess.AmountTotal, -2),
		PaymentStatus: paymentStatusFromSession(sess),
		OrderStatus:   order.StatusProcessing,
		CreatedAt:     now,
	}
	if customer.Phone != "" {
		o.Phone = &customer.Phone
	}
	if customer.Notes != "" {
		o.DeliveryNotes = &customer.Notes
	}
	if sess.PaymentIntent != nil {
		o.PaymentIntent = sess.PaymentIntent.ID
	}
	if sess.ClientReferenceID != "" {
		id := sess.ClientReferenceID
		o.CustomerID = &id
	}
	o.Items = s.resolveItems(ctx, cart)

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("create order for session %s: %w", sess.ID, err)
	}
	log.WithFields(log.Fields{
		"order_number": o.OrderNumber,
		"session_id":   sess.ID,
		"total":        o.TotalPrice.StringFixed(2),
		"currency":     o.Currency,
	}).Info("order created")
	return o, nil
}

// resolveItems maps cart items to catalog product references. Items with a
// product id are taken as-is; otherwise a name-based first-match lookup is
// attempted. Unresolvable items are skipped with a warning, never fail the
// order.
func (s *Service) resolveItems(ctx context.Context, cart []order.CartItem) []order.Item {
	items := make([]order.Item, 0, len(cart))
	for _, ci := range cart {
		productID := ci.ProductID
		if productID == "" {
			id, err := s.catalog.FindProductID(ctx, ci.Name)
			if err != nil {
				log.WithFields(log.Fields{
					"item": ci.Name,
				}).Warn("no catalog match for item without product id, skipping")
				continue
			}
			log.WithFields(log.Fields{
				"item":       ci.Name,
				"product_id": id,
			}).Warn("resolved item by name lookup (first match, no ordering guarantee)")
			productID = id
		}
		it := order.Item{
			ProductID: productID,
			Name:      ci.Name,
			Quantity:  ci.Quantity,
			UnitPrice: ci.Price,
		}
		if ci.Size != "" {
			size := ci.Size
			it.Size = &size
		}
		items = append(items, it)
	}
	return items
}

func paymentStatusFromSession(sess *stripe.CheckoutSession) order.PaymentStatus {
	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		return order.PaymentPaid
	}
	return order.PaymentPending
}

// UpdatePaymentStatus marks every order carrying the payment intent with the
// reported status.
func (s *Service) UpdatePaymentStatus(ctx context.Context, intentID string, status order.PaymentStatus) error {
	n, err := s.repo.UpdatePaymentStatusByIntent(ctx, intentID, status)
	if err != nil {
		return fmt.Errorf("update payment status for %s: %w", intentID, err)
	}
	if n == 0 {
		log.WithFields(log.Fields{
			"payment_intent": intentID,
			"status":         status,
		}).Warn("payment event matched no orders")
		return nil
	}
	log.WithFields(log.Fields{
		"payment_intent": intentID,
		"status":         status,
		"orders":         n,
	}).Info("payment status updated")
	return nil
}

func (s *Service) ListOrders(ctx context.Context) ([]order.Order, error) {
	return s.repo.ListOrders(ctx)
}

func (s *Service) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return s.repo.FindOrderByID(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status order.OrderStatus, trackingNumber, carrier *string) error {
	if !order.ValidOrderStatus(status) {
		return ErrInvalidStatus
	}
	return s.repo.UpdateOrderStatus(ctx, id, status, trackingNumber, carrier)
}

func (s *Service) Stats(ctx context.Context) (*order.Stats, error) {
	return s.repo.GetOrderStats(ctx)
}
