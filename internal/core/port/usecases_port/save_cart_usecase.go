package usecases_port

import (
	"context"

	"saved-cart-service/internal/core/domain"
)

type SaveCartUseCasePort interface {
	Execute(ctx context.Context, shop, customerID string, productVariantIDs []string) (*domain.SavedCart, error)
}
