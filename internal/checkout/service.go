package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	orderpkg "github.com/antonminaichev/storefront-orders/internal/order"
	"github.com/antonminaichev/storefront-orders/internal/types/order"
	"github.com/antonminaichev/storefront-orders/internal/types/product"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
)

var (
	ErrInvalidCart      = errors.New("invalid cart payload")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMissingProductID = errors.New("every cart item must carry a product id")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrUnknownVariant   = errors.New("no matching product variant")
	ErrMetadataTooLong  = errors.New("cart too large for session metadata")
)

// The provider caps each metadata value; the order-construction blobs have to
// fit or the webhook side can never materialize the order.
const metadataValueLimit = 500

// SessionCreator opens a checkout session with the payment provider.
type SessionCreator interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// ProductSource resolves cart items against the catalog so prices come from
// our data, never from the client.
type ProductSource interface {
	FindProductByID(ctx context.Context, id string) (*product.Product, error)
}

type Service struct {
	payments   SessionCreator
	catalog    ProductSource
	currency   string
	successURL string
	cancelURL  string
}

func NewService(payments SessionCreator, catalog ProductSource, currency, successURL, cancelURL string) *Service {
	return &Service{
		payments:   payments,
		catalog:    catalog,
		currency:   currency,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CartRequest is the storefront's checkout payload.
type CartRequest struct {
	Customer   order.CustomerInfo `json:"customer"`
	Items      []order.CartItem   `json:"items"`
	CustomerID string             `json:"customer_id,omitempty"`
}

// Session is what the storefront needs to redirect the shopper.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateSession validates the cart, prices it from the catalog, and opens a
// provider session carrying the customer and items blobs in metadata. Product
// ids are mandatory at cart time; the name-based fallback on the webhook side
// exists only for sessions created by older clients.
func (s *Service) CreateSession(ctx context.Context, req *CartRequest) (*Session, error) {
	if err := req.Customer.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCart, err)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	priced := make([]order.CartItem, 0, len(req.Items))
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCart, err)
		}
		if it.ProductID == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingProductID, it.Name)
		}
		p, err := s.catalog.FindProductByID(ctx, it.ProductID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, it.ProductID)
			}
			return nil, fmt.Errorf("lookup product %s: %w", it.ProductID, err)
		}
		v := p.VariantForSize(it.Size)
		if v == nil {
			return nil, fmt.Errorf("%w: product %s size %q", ErrUnknownVariant, it.ProductID, it.Size)
		}

		priced = append(priced, order.CartItem{
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     v.UnitPrice,
			Quantity:  it.Quantity,
			Size:      it.Size,
		})
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(it.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(v.UnitPrice.Mul(decimal.NewFromInt(100)).IntPart()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(p.Name),
				},
			},
		})
	}

	customerJSON, err := json.Marshal(req.Customer)
	if err != nil {
		return nil, fmt.Errorf("encode customer metadata: %w", err)
	}
	itemsJSON, err := json.Marshal(priced)
	if err != nil {
		return nil, fmt.Errorf("encode items metadata: %w", err)
	}
	if len(customerJSON) > metadataValueLimit || len(itemsJSON) > metadataValueLimit {
		return nil, ErrMetadataTooLong
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}
	params.AddMetadata(orderpkg.MetadataCustomerKey, string(customerJSON))
	params.AddMetadata(orderpkg.MetadataItemsKey, string(itemsJSON))
	if req.CustomerID != "" {
		params.ClientReferenceID = stripe.String(req.CustomerID)
	}

	sess, err := s.payments.CreateSession(ctx, params)
	if err != nil {
		return nil, err
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}
