package rest

import (
	"context"
	"net/http"
	"strings"

	"saved-cart-service/internal/core/port"
)

// Кастомный тип для ключа контекста, чтобы избежать коллизий.
type contextKey string

const sessionKey = contextKey("platformSession")

// SessionMiddleware проверяет платформенную сессию через SessionValidatorPort.
//
// Подключается к группе /api ДО регистрации обработчиков: ни один маршрут,
// читающий или изменяющий данные покупателя, не должен быть достижим без
// проверенной сессии.
type SessionMiddleware struct {
	validator port.SessionValidatorPort
}

func NewSessionMiddleware(validator port.SessionValidatorPort) *SessionMiddleware {
	return &SessionMiddleware{validator: validator}
}

// ValidateSession - middleware для проверки сессионного токена.
func (sm *SessionMiddleware) ValidateSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Извлекаем токен из заголовка Authorization
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteJSONError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		// Валидируем токен, делая запрос к платформе
		session, err := sm.validator.ValidateSession(r.Context(), tokenString)
		if err != nil {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid session")
			return
		}

		// Добавляем сессию в контекст запроса
		ctx := context.WithValue(r.Context(), sessionKey, session)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext извлекает проверенную сессию из контекста запроса.
func SessionFromContext(ctx context.Context) (*port.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*port.Session)
	return session, ok
}
