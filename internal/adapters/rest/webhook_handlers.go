package rest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"

	"saved-cart-service/internal/contextkeys"
	"saved-cart-service/internal/contracts"
	"saved-cart-service/internal/core/port"
)

// Заголовки вебхуков платформы.
const (
	webhookTopicHeader = "X-Platform-Topic"
	webhookShopHeader  = "X-Platform-Shop-Domain"
	webhookHmacHeader  = "X-Platform-Hmac-SHA256"
)

// Версия контрактов вебхуков, по которой валидируются payload-ы.
const webhookContractVersion = "1.0.0"

// TopicHandlerFunc - обработчик одной темы вебхука.
// Получает магазин из заголовка и сырое тело события.
type TopicHandlerFunc func(ctx context.Context, shop string, payload []byte) error

// WebhookHandler принимает события жизненного цикла от платформы
// и диспетчеризует их по зарегистрированным темам.
//
// Маршрут живет вне сессионной группы: платформа не несет пользовательской
// сессии, подлинность запроса подтверждает HMAC-подпись тела.
type WebhookHandler struct {
	secret   []byte
	handlers map[string]TopicHandlerFunc
}

// NewWebhookHandler - конструктор.
func NewWebhookHandler(secret string) *WebhookHandler {
	return &WebhookHandler{
		secret:   []byte(secret),
		handlers: make(map[string]TopicHandlerFunc),
	}
}

// Register привязывает обработчик к теме (например, "app/uninstalled").
func (h *WebhookHandler) Register(topic string, fn TopicHandlerFunc) {
	h.handlers[topic] = fn
}

// HandleWebhook обрабатывает POST /api/webhooks
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleWebhook"})

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("Failed to read webhook body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	// 1. Проверяем подпись по сырому телу, до любого парсинга
	if !h.verifySignature(body, r.Header.Get(webhookHmacHeader)) {
		logger.Warn("Webhook signature verification failed", nil)
		WriteJSONError(w, http.StatusUnauthorized, "Invalid webhook signature")
		return
	}

	topic := r.Header.Get(webhookTopicHeader)
	shop := r.Header.Get(webhookShopHeader)

	handlerLogger := logger.WithFields(port.Fields{
		"topic": topic,
		"shop":  shop,
	})

	// 2. Валидируем payload по встроенной схеме контракта
	if err := contracts.ValidateWebhook(topic, webhookContractVersion, body); err != nil {
		handlerLogger.Warn("Webhook payload failed contract validation", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	// 3. Диспетчеризация по теме
	fn, ok := h.handlers[topic]
	if !ok {
		handlerLogger.Warn("No handler registered for webhook topic", nil)
		WriteJSONError(w, http.StatusNotFound, "No handler registered for topic")
		return
	}

	handlerLogger.Info("Processing webhook", nil)
	if err := fn(r.Context(), shop, body); err != nil {
		handlerLogger.Error("Webhook handler failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to process webhook")
		return
	}

	handlerLogger.Info("Webhook processed", nil)
	w.WriteHeader(http.StatusOK)
}

// verifySignature сравнивает HMAC-SHA256 от тела с подписью из заголовка.
func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
