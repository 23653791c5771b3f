package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

type Order struct {
	ID             string          `db:"id" json:"id"`
	OrderNumber    string          `db:"order_number" json:"order_number"`
	SessionID      string          `db:"checkout_session_id" json:"-"`
	PaymentIntent  string          `db:"payment_intent_id" json:"-"`
	CustomerID     *string         `db:"customer_id" json:"customer_id,omitempty"`
	FirstName      string          `db:"first_name" json:"first_name"`
	LastName       string          `db:"last_name" json:"last_name"`
	Email          string          `db:"email" json:"email"`
	Street         string          `db:"street" json:"street"`
	City           string          `db:"city" json:"city"`
	PostalCode     string          `db:"postal_code" json:"postal_code"`
	Country        string          `db:"country" json:"country"`
	Phone          *string         `db:"phone" json:"phone,omitempty"`
	DeliveryNotes  *string         `db:"delivery_notes" json:"delivery_notes,omitempty"`
	Currency       string          `db:"currency" json:"currency"`
	TotalPrice     decimal.Decimal `db:"total_price" json:"total_price"`
	Items          []Item          `db:"-" json:"items"`
	PaymentStatus  PaymentStatus   `db:"payment_status" json:"payment_status"`
	OrderStatus    OrderStatus     `db:"order_status" json:"order_status"`
	TrackingNumber *string         `db:"tracking_number" json:"tracking_number,omitempty"`
	Carrier        *string         `db:"carrier" json:"carrier,omitempty"`
	Confirmation   EmailResult     `db:"-" json:"confirmation_email"`
	Notification   EmailResult     `db:"-" json:"notification_email"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

func (o *Order) CustomerName() string {
	return o.FirstName + " " + o.LastName
}

type Item struct {
	ID        int64           `db:"id" json:"-"`
	OrderID   string          `db:"order_id" json:"-"`
	ProductID string          `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	Size      *string         `db:"size" json:"size,omitempty"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// EmailResult tracks a single delivery attempt outcome on the order record.
type EmailResult struct {
	Sent   bool       `json:"sent"`
	SentAt *time.Time `json:"sent_at,omitempty"`
}

// CustomerInfo is the customer blob carried through the payment provider's
// session metadata channel.
type CustomerInfo struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (c *CustomerInfo) Validate() error {
	switch {
	case c.FirstName == "":
		return errors.New("customerInfo: firstName is required")
	case c.LastName == "":
		return errors.New("customerInfo: lastName is required")
	case c.Email == "":
		return errors.New("customerInfo: email is required")
	case c.Address == "":
		return errors.New("customerInfo: address is required")
	case c.City == "":
		return errors.New("customerInfo: city is required")
	case c.PostalCode == "":
		return errors.New("customerInfo: postalCode is required")
	case c.Country == "":
		return errors.New("customerInfo: country is required")
	}
	return nil
}

// CartItem is one entry of the items blob carried through session metadata.
type CartItem struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Size      string          `json:"size,omitempty"`
}

func (i *CartItem) Validate() error {
	switch {
	case i.Name == "":
		return errors.New("item: name is required")
	case i.Quantity <= 0:
		return errors.New("item: quantity must be positive")
	case i.Price.IsNegative():
		return errors.New("item: price must not be negative")
	}
	return nil
}

// Stats aggregates order counts and paid revenue for the admin dashboard.
type Stats struct {
	TotalOrders  int64           `json:"total_orders"`
	PaidOrders   int64           `json:"paid_orders"`
	FailedOrders int64           `json:"failed_orders"`
	Revenue      decimal.Decimal `json:"revenue"`
}
