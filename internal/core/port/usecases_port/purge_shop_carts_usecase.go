package usecases_port

import (
	"context"
)

type PurgeShopCartsUseCasePort interface {
	// Возвращает число удаленных корзин.
	Execute(ctx context.Context, shop string) (int64, error)
}
