package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"saved-cart-service/internal/contextkeys"
	"saved-cart-service/internal/core/port"
	"saved-cart-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const shopUninstalledRoutingKey = "shop.uninstalled"

// Событие для внешних подписчиков (биллинг, аналитика).
type shopUninstalledEvent struct {
	Shop        string    `json:"shop"`
	PurgedCarts int64     `json:"purged_carts"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// LifecyclePublisher публикует события жизненного цикла магазина в RabbitMQ.
type LifecyclePublisher struct {
	producer *rabbitmq_producer.Publisher
}

// NewLifecyclePublisher - конструктор.
func NewLifecyclePublisher(producer *rabbitmq_producer.Publisher) (*LifecyclePublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq producer cannot be nil")
	}
	return &LifecyclePublisher{producer: producer}, nil
}

// PublishShopUninstalled реализует порт LifecycleEventPublisherPort.
func (p *LifecyclePublisher) PublishShopUninstalled(ctx context.Context, shop string, purgedCarts int64) error {
	logger := contextkeys.LoggerFromContext(ctx)
	pubLogger := logger.WithFields(port.Fields{
		"component": "LifecyclePublisher",
		"shop":      shop,
	})

	event := shopUninstalledEvent{
		Shop:        shop,
		PurgedCarts: purgedCarts,
		OccurredAt:  time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		pubLogger.Error("Failed to marshal event", err, nil)
		return fmt.Errorf("failed to marshal shop uninstalled event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    event.OccurredAt,
		Type:         "ShopUninstalledEvent",
		Body:         body,
	}

	if err := p.producer.Publish(ctx, shopUninstalledRoutingKey, msg); err != nil {
		pubLogger.Error("Failed to publish event", err, nil)
		return err
	}

	pubLogger.Info("Shop uninstalled event published", port.Fields{"purged_carts": purgedCarts})
	return nil
}
