package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"saved-cart-service/internal/contextkeys"
	"saved-cart-service/internal/core/domain"
	"saved-cart-service/internal/core/port"
	"saved-cart-service/internal/core/port/usecases_port"
)

// CartHandler обрабатывает маршруты сохраненной корзины.
type CartHandler struct {
	saveUC     usecases_port.SaveCartUseCasePort
	retrieveUC usecases_port.RetrieveCartUseCasePort
}

// NewCartHandler - конструктор.
func NewCartHandler(
	saveUC usecases_port.SaveCartUseCasePort,
	retrieveUC usecases_port.RetrieveCartUseCasePort,
) *CartHandler {
	return &CartHandler{
		saveUC:     saveUC,
		retrieveUC: retrieveUC,
	}
}

// RetrieveCart обрабатывает GET /api/retrieve-cart?shop=<shop>&customerId=<id>
func (h *CartHandler) RetrieveCart(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RetrieveCart"})

	shop := r.URL.Query().Get("shop")
	if shop == "" {
		logger.Warn("Missing shop parameter in retrieve request", nil)
		WriteJSONError(w, http.StatusBadRequest, "Missing shop parameter")
		return
	}

	customerID := r.URL.Query().Get("customerId")

	handlerLogger := logger.WithFields(port.Fields{
		"shop":        shop,
		"customer_id": customerID,
	})
	handlerLogger.Info("Processing request to retrieve saved cart", nil)

	variantIDs, err := h.retrieveUC.Execute(r.Context(), customerID)
	if err != nil {
		handlerLogger.Error("Retrieve cart use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve cart")
		return
	}

	// Ответ - голый массив variant ID; отсутствие корзины выглядит как [].
	if variantIDs == nil {
		variantIDs = []string{}
	}
	RespondWithJSON(w, http.StatusOK, variantIDs)
}

// SaveCart обрабатывает POST /api/save-cart?shop=<shop>
func (h *CartHandler) SaveCart(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SaveCart"})

	shop := r.URL.Query().Get("shop")
	if shop == "" {
		logger.Warn("Missing shop parameter in save request", nil)
		WriteJSONError(w, http.StatusBadRequest, "Missing shop parameter")
		return
	}

	var reqDTO SaveCartRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		logger.Warn("Failed to decode request body for save cart", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Клиент обязан прислать именно массив: строка, число или null
	// отклоняются до какого-либо обращения к хранилищу.
	variantIDs, ok := decodeVariantIDs(reqDTO.ProductVariantIDs)
	if !ok {
		logger.Warn("productVariantIds is not an array", nil)
		WriteJSONError(w, http.StatusBadRequest, "productVariantIds must be an array.")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"shop":        shop,
		"customer_id": reqDTO.CustomerID,
		"variant_ids": len(variantIDs),
	})
	handlerLogger.Info("Processing request to save cart", nil)

	savedCart, err := h.saveUC.Execute(r.Context(), shop, reqDTO.CustomerID, variantIDs)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCustomerID) {
			WriteJSONError(w, http.StatusBadRequest, "Missing customerId")
			return
		}
		handlerLogger.Error("Save cart use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	handlerLogger.Info("Successfully saved cart", port.Fields{"cart_id": savedCart.ID})
	RespondWithJSON(w, http.StatusOK, SaveCartResponse{
		Message: "Cart saved successfully!",
		Cart: SavedCartResponse{
			ID:                savedCart.ID.String(),
			CustomerID:        savedCart.CustomerID,
			ProductVariantIDs: savedCart.ProductVariantIDs,
			CreatedAt:         savedCart.CreatedAt,
		},
	})
}

// decodeVariantIDs принимает сырое JSON-значение поля productVariantIds
// и возвращает срез строк, только если это был массив.
func decodeVariantIDs(raw json.RawMessage) ([]string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var ids []string
	if err := json.Unmarshal(trimmed, &ids); err != nil {
		return nil, false
	}
	return ids, true
}
