package rest

import (
	"encoding/json"
	"time"
)

// SaveCartRequest - тело запроса на сохранение корзины.
// ProductVariantIDs оставляем сырым JSON: клиент обязан прислать именно
// массив, и отличить массив от строки нужно до анмаршалинга.
type SaveCartRequest struct {
	CustomerID        string          `json:"customerId"`
	ProductVariantIDs json.RawMessage `json:"productVariantIds"`
}

// SavedCartResponse - сохраненная корзина в ответе API.
type SavedCartResponse struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customerId"`
	ProductVariantIDs []string  `json:"productVariantIds"`
	CreatedAt         time.Time `json:"createdAt"`
}

// SaveCartResponse - ответ на успешное сохранение.
type SaveCartResponse struct {
	Message string            `json:"message"`
	Cart    SavedCartResponse `json:"cart"`
}

// ErrorResponse - стандартная структура для ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}
