package port

import (
	"context"

	"saved-cart-service/internal/core/domain"
)

// CartRepositoryPort - контракт для адаптера, работающего с хранилищем корзин.
//
// Replace обязан быть атомарным по customer_id: две конкурирующие замены
// не должны оставить в хранилище две живые записи для одного покупателя.
type CartRepositoryPort interface {
	// Replace удаляет предыдущую корзину покупателя (если была) и создает
	// новую с переданными variant ID. Возвращает созданную запись.
	Replace(ctx context.Context, shop, customerID string, productVariantIDs []string) (*domain.SavedCart, error)

	// FindByCustomer возвращает самую свежую корзину покупателя
	// или domain.ErrCartNotFound.
	FindByCustomer(ctx context.Context, customerID string) (*domain.SavedCart, error)

	// PurgeByShop удаляет все корзины магазина, возвращает число удаленных.
	PurgeByShop(ctx context.Context, shop string) (int64, error)

	// DeleteByCustomer удаляет корзину покупателя, если она есть.
	DeleteByCustomer(ctx context.Context, customerID string) error
}
