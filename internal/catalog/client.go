// Package catalog предоставляет клиент внешнего каталога товаров.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/mmeshcher/checkout-system/internal/model"
)

// ErrProductNotFound возвращается, если товар с указанным идентификатором отсутствует в каталоге.
var ErrProductNotFound = errors.New("product not found")

// Client инкапсулирует HTTP-взаимодействие с каталогом товаров.
// Чтение каталога идемпотентно, поэтому запросы повторяются при сбоях.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт HTTP-клиент каталога по указанному адресу.
func NewClient(baseURL string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = 10 * time.Second
	retryClient.Logger = nil

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: retryClient.StandardClient(),
	}
}

// GetProducts возвращает список товаров каталога.
func (c *Client) GetProducts(ctx context.Context) ([]model.Product, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("catalog client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	url := base + "/products"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var products []model.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return products, nil
}

// GetProduct возвращает товар по идентификатору.
// Каталог отдаёт только коллекцию целиком, поэтому поиск выполняется на стороне клиента.
func (c *Client) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	products, err := c.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}

	return nil, ErrProductNotFound
}
