package catalog

import (
	"context"

	"github.com/antonminaichev/storefront-orders/internal/types/product"
)

// Service exposes catalog reads and the single write this pipeline performs
// (stock decrement). Product creation happens outside this service.
type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProducts(ctx context.Context) ([]product.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return s.repo.FindProductByID(ctx, id)
}

// FindProductID resolves a product by display name; first match wins.
func (s *Service) FindProductID(ctx context.Context, name string) (string, error) {
	p, err := s.repo.FindProductByName(ctx, name)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func (s *Service) DecrementStock(ctx context.Context, productID, size string, qty int64) error {
	return s.repo.DecrementStock(ctx, productID, size, qty)
}
