package usecase

import (
	"context"
	"fmt"

	"saved-cart-service/internal/contextkeys"
	"saved-cart-service/internal/core/domain"
	"saved-cart-service/internal/core/port"
)

type PurgeShopCartsUseCase struct {
	cartRepo       port.CartRepositoryPort
	eventPublisher port.LifecycleEventPublisherPort // может быть nil, если шина не сконфигурирована
}

func NewPurgeShopCartsUseCase(
	cartRepo port.CartRepositoryPort,
	eventPublisher port.LifecycleEventPublisherPort,
) *PurgeShopCartsUseCase {
	return &PurgeShopCartsUseCase{
		cartRepo:       cartRepo,
		eventPublisher: eventPublisher,
	}
}

// Execute вычищает все корзины магазина после удаления приложения
// и публикует событие для внешних подписчиков.
func (uc *PurgeShopCartsUseCase) Execute(ctx context.Context, shop string) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "PurgeShopCarts",
		"shop":     shop,
	})

	if shop == "" {
		return 0, domain.ErrMissingShop
	}

	ucLogger.Info("Use case started", nil)

	purged, err := uc.cartRepo.PurgeByShop(ctx, shop)
	if err != nil {
		ucLogger.Error("Failed to purge shop carts", err, nil)
		return 0, fmt.Errorf("failed to purge shop carts: %w", err)
	}

	if uc.eventPublisher != nil {
		// Публикация не должна ронять очистку: корзины уже удалены,
		// ошибку шины только логируем.
		if err := uc.eventPublisher.PublishShopUninstalled(ctx, shop, purged); err != nil {
			ucLogger.Error("Failed to publish shop uninstalled event", err, nil)
		}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"purged_carts": purged})
	return purged, nil
}
