package platform_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"saved-cart-service/internal/contextkeys"
	"saved-cart-service/internal/core/port"
)

// DTO для запроса на валидацию.
type validateSessionRequest struct {
	Token string `json:"token"`
}

// SessionClient - клиент для проверки сессий у платформы.
// Единственный экземпляр создается при старте приложения и передается
// в middleware явно, а не через глобальную переменную.
type SessionClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSessionClient - конструктор клиента.
func NewSessionClient(baseURL string) *SessionClient {
	return &SessionClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// ValidateSession отправляет токен платформе и возвращает данные сессии.
func (c *SessionClient) ValidateSession(ctx context.Context, token string) (*port.Session, error) {
	// 1. Формируем тело запроса
	reqBody, err := json.Marshal(validateSessionRequest{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation request: %w", err)
	}

	// 2. Создаем HTTP POST-запрос
	url := c.baseURL + "/api/v1/sessions/validate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	traceID := contextkeys.TraceIDFromContext(ctx)
	if traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	// 3. Выполняем запрос
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send validation request to platform: %w", err)
	}
	defer resp.Body.Close()

	// 4. Проверяем статус-код ответа
	if resp.StatusCode != http.StatusOK {
		// 401 от платформы - это не наша внутренняя ошибка,
		// просто пробрасываем "невалидность" сессии.
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("session is invalid or expired")
		}
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("platform returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// 5. Декодируем успешный ответ
	var session port.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode validation response: %w", err)
	}

	return &session, nil
}
