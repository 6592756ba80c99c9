package usecase

import (
	"context"
	"fmt"

	"saved-cart-service/internal/contextkeys"
	"saved-cart-service/internal/core/domain"
	"saved-cart-service/internal/core/port"
)

type RedactCustomerUseCase struct {
	cartRepo port.CartRepositoryPort
}

func NewRedactCustomerUseCase(cartRepo port.CartRepositoryPort) *RedactCustomerUseCase {
	return &RedactCustomerUseCase{cartRepo: cartRepo}
}

// Execute удаляет сохраненную корзину покупателя по запросу платформы
// на удаление персональных данных. Отсутствие корзины — не ошибка.
func (uc *RedactCustomerUseCase) Execute(ctx context.Context, customerID string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "RedactCustomer",
		"customer_id": customerID,
	})

	if customerID == "" {
		return domain.ErrMissingCustomerID
	}

	ucLogger.Info("Use case started", nil)

	if err := uc.cartRepo.DeleteByCustomer(ctx, customerID); err != nil {
		ucLogger.Error("Failed to delete customer cart", err, nil)
		return fmt.Errorf("failed to delete customer cart: %w", err)
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
