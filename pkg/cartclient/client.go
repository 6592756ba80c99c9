// Package cartclient - HTTP-клиент сервиса сохраненных корзин.
// Используется checkout-расширением: базовый адрес вычисляется
// из origin скрипта расширения и передается сюда готовым.
package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// SavedCart - сохраненная корзина в том виде, в каком ее отдает сервис.
type SavedCart struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customerId"`
	ProductVariantIDs []string  `json:"productVariantIds"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Config - параметры клиента.
type Config struct {
	BaseURL      string // origin сервиса, например "https://cart-app.example.com"
	Shop         string // имя магазина, добавляется как ?shop= к каждому вызову
	SessionToken string // платформенный сессионный токен для Authorization
	HTTPClient   *http.Client
}

// Client - клиент сервиса корзин.
type Client struct {
	baseURL      string
	shop         string
	sessionToken string
	httpClient   *http.Client
}

// New - конструктор клиента.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("cartclient: base URL is required")
	}
	if cfg.Shop == "" {
		return nil, fmt.Errorf("cartclient: shop is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		shop:         cfg.Shop,
		sessionToken: cfg.SessionToken,
		httpClient:   httpClient,
	}, nil
}

// doRequest - внутренний хелпер для выполнения запросов
func (c *Client) doRequest(ctx context.Context, method, requestURL string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// Каждый вызов получает собственный trace_id
	req.Header.Set("X-Trace-ID", uuid.New().String())
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	}

	return c.httpClient.Do(req)
}

// DTO для запроса на сохранение.
type saveCartRequest struct {
	CustomerID        string   `json:"customerId"`
	ProductVariantIDs []string `json:"productVariantIds"`
}

// DTO для ответа на сохранение.
type saveCartResponse struct {
	Message string    `json:"message"`
	Cart    SavedCart `json:"cart"`
}

// SaveCart сохраняет набор variant ID для покупателя, заменяя прежний.
func (c *Client) SaveCart(ctx context.Context, customerID string, productVariantIDs []string) (*SavedCart, error) {
	reqBody, err := json.Marshal(saveCartRequest{
		CustomerID:        customerID,
		ProductVariantIDs: productVariantIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal save cart request: %w", err)
	}

	requestURL := c.baseURL + "/api/save-cart?shop=" + url.QueryEscape(c.shop)
	resp, err := c.doRequest(ctx, http.MethodPost, requestURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to perform save cart request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cart service returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResponse saveCartResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to decode save cart response: %w", err)
	}

	return &apiResponse.Cart, nil
}

// RetrieveCart возвращает сохраненный набор variant ID покупателя.
// Пустой срез означает, что сохраненной корзины нет.
func (c *Client) RetrieveCart(ctx context.Context, customerID string) ([]string, error) {
	query := url.Values{}
	query.Set("shop", c.shop)
	query.Set("customerId", customerID)

	requestURL := c.baseURL + "/api/retrieve-cart?" + query.Encode()
	resp, err := c.doRequest(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to perform retrieve cart request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cart service returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var variantIDs []string
	if err := json.NewDecoder(resp.Body).Decode(&variantIDs); err != nil {
		return nil, fmt.Errorf("failed to decode retrieve cart response: %w", err)
	}

	if variantIDs == nil {
		variantIDs = []string{}
	}
	return variantIDs, nil
}
