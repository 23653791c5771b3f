package catalog

import (
	"context"

	"github.com/antonminaichev/storefront-orders/internal/types/product"
)

type ProductRepository interface {
	FindProductByID(ctx context.Context, id string) (*product.Product, error)
	FindProductByName(ctx context.Context, name string) (*product.Product, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	DecrementStock(ctx context.Context, productID, size string, qty int64) error
}
