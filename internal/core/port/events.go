package port

import "context"

// LifecycleEventPublisherPort - контракт для публикации событий жизненного
// цикла магазина во внешнюю шину (для подписчиков вроде биллинга и аналитики).
type LifecycleEventPublisherPort interface {
	// PublishShopUninstalled сообщает, что магазин удалил приложение
	// и сколько его корзин было вычищено.
	PublishShopUninstalled(ctx context.Context, shop string, purgedCarts int64) error
}
