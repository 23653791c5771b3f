package order

import (
	"context"

	"github.com/antonminaichev/storefront-orders/internal/types/order"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *order.Order) error
	FindOrderByID(ctx context.Context, id string) (*order.Order, error)
	FindOrderBySessionID(ctx context.Context, sessionID string) (*order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.OrderStatus, trackingNumber, carrier *string) error
	UpdatePaymentStatusByIntent(ctx context.Context, intentID string, status order.PaymentStatus) (int64, error)
	UpdateEmailStatus(ctx context.Context, id string, confirmation, notification order.EmailResult) error
	GetOrderStats(ctx context.Context) (*order.Stats, error)
}
