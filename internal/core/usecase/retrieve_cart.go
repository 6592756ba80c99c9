package usecase

import (
	"context"
	"errors"
	"fmt"

	"saved-cart-service/internal/contextkeys"
	"saved-cart-service/internal/core/domain"
	"saved-cart-service/internal/core/port"
)

type RetrieveCartUseCase struct {
	cartRepo port.CartRepositoryPort
}

func NewRetrieveCartUseCase(cartRepo port.CartRepositoryPort) *RetrieveCartUseCase {
	return &RetrieveCartUseCase{cartRepo: cartRepo}
}

// Execute возвращает variant ID сохраненной корзины покупателя.
// Отсутствие корзины — не ошибка: для UI "ничего не сохранено" и
// "сохранен пустой набор" выглядят одинаково, поэтому возвращаем пустой срез.
func (uc *RetrieveCartUseCase) Execute(ctx context.Context, customerID string) ([]string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "RetrieveCart",
		"customer_id": customerID,
	})

	ucLogger.Info("Use case started", nil)

	cart, err := uc.cartRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			ucLogger.Info("No saved cart for customer", nil)
			return []string{}, nil
		}
		ucLogger.Error("Failed to find saved cart", err, nil)
		return nil, fmt.Errorf("failed to find saved cart: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"cart_id":     cart.ID,
		"variant_ids": len(cart.ProductVariantIDs),
	})
	return cart.ProductVariantIDs, nil
}
