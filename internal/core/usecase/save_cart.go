package usecase

import (
	"context"
	"fmt"

	"saved-cart-service/internal/contextkeys"
	"saved-cart-service/internal/core/domain"
	"saved-cart-service/internal/core/port"
)

type SaveCartUseCase struct {
	cartRepo port.CartRepositoryPort
}

func NewSaveCartUseCase(cartRepo port.CartRepositoryPort) *SaveCartUseCase {
	return &SaveCartUseCase{cartRepo: cartRepo}
}

// Execute заменяет сохраненную корзину покупателя новым набором variant ID.
// Пустой набор — валидное сохранение (покупатель снял все галочки).
// Семантика именно replace: старая запись исчезает, новая получает новый ID.
func (uc *SaveCartUseCase) Execute(ctx context.Context, shop, customerID string, productVariantIDs []string) (*domain.SavedCart, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "SaveCart",
		"shop":        shop,
		"customer_id": customerID,
		"variant_ids": len(productVariantIDs),
	})

	if shop == "" {
		return nil, domain.ErrMissingShop
	}
	if customerID == "" {
		return nil, domain.ErrMissingCustomerID
	}

	ucLogger.Info("Use case started", nil)

	// Вся атомарность замены — обязанность репозитория (см. CartRepositoryPort).
	savedCart, err := uc.cartRepo.Replace(ctx, shop, customerID, productVariantIDs)
	if err != nil {
		ucLogger.Error("Failed to replace saved cart", err, nil)
		return nil, fmt.Errorf("failed to replace saved cart: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"cart_id": savedCart.ID})
	return savedCart, nil
}
