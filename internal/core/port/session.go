package port

import "context"

// Session - данные проверенной платформенной сессии.
// Структура должна совпадать с ответом session-сервиса платформы.
type Session struct {
	Shop  string `json:"shop"`
	Scope string `json:"scope"`
}

// SessionValidatorPort - контракт для проверки платформенной сессии.
// Каждый маршрут, читающий или изменяющий данные покупателя, обязан
// пройти эту проверку до выполнения обработчика.
type SessionValidatorPort interface {
	ValidateSession(ctx context.Context, token string) (*Session, error)
}
