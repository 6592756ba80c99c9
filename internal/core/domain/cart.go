package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SavedCart — сохраненная корзина покупателя: снимок выбранных вариантов
// товаров. Для одного customer_id существует не более одной живой записи;
// каждое сохранение заменяет запись целиком и выдает новый ID.
type SavedCart struct {
	ID                uuid.UUID
	Shop              string
	CustomerID        string
	ProductVariantIDs []string // порядок и дубликаты сохраняются как прислал клиент
	CreatedAt         time.Time
}

var (
	// ErrCartNotFound — у покупателя нет сохраненной корзины.
	ErrCartNotFound = errors.New("saved cart not found")

	// ErrMissingCustomerID — операция требует идентификатор покупателя.
	ErrMissingCustomerID = errors.New("customer id is required")

	// ErrMissingShop — операция требует идентификатор магазина.
	ErrMissingShop = errors.New("shop is required")
)
