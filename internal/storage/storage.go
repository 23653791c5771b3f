package storage

import (
	"context"

	"github.com/antonminaichev/storefront-orders/internal/types/operator"
	"github.com/antonminaichev/storefront-orders/internal/types/order"
	"github.com/antonminaichev/storefront-orders/internal/types/product"
)

// OrderRepository отвечает за операции над заказами.
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

// ProductRepository отвечает за каталог и остатки.
type ProductRepository interface {
	FindProductByID(ctx context.Context, id string) (*product.Product, error)
	FindProductByName(ctx context.Context, name string) (*product.Product, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	DecrementStock(ctx context.Context, productID, size string, qty int64) error
}

// OperatorRepository отвечает за учётные записи операторов.
type OperatorRepository interface {
	CreateOperator(ctx context.Context, op *operator.Operator) error
	FindOperatorByLogin(ctx context.Context, login string) (*operator.Operator, error)
}

// Storage объединяет все репозитории.
type Storage interface {
	OrderRepository
	ProductRepository
	OperatorRepository

	// Для управления соединением
	Ping(ctx context.Context) error
	Close() error
}
