package usecases_port

import (
	"context"
)

type RetrieveCartUseCasePort interface {
	// Возвращает срез variant ID сохраненной корзины.
	// Если корзины нет — пустой срез, а не ошибка.
	Execute(ctx context.Context, customerID string) ([]string, error)
}
