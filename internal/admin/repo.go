package admin

import (
	"context"

	"github.com/antonminaichev/storefront-orders/internal/types/operator"
)

type OperatorRepository interface {
	CreateOperator(ctx context.Context, op *operator.Operator) error
	FindOperatorByLogin(ctx context.Context, login string) (*operator.Operator, error)
}
