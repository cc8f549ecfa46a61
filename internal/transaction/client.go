// Package transaction предоставляет клиент внешнего платёжного сервиса.
package transaction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultErrorMessage используется, если платёжный сервис не вернул текст ошибки.
const DefaultErrorMessage = "payment processing failed"

// Client инкапсулирует HTTP-взаимодействие с платёжным сервисом.
// Запрос на списание отправляется ровно один раз: транспортных ретраев нет.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// InfoCard содержит данные карты в формате платёжного сервиса.
type InfoCard struct {
	CardNumber string `json:"card_number"`
	CVC        string `json:"cvc"`
	ExpMonth   string `json:"exp_month"`
	ExpYear    string `json:"exp_year"`
	CardHolder string `json:"card_holder"`
}

// PaymentMethod описывает способ оплаты.
type PaymentMethod struct {
	Type         string `json:"type"`
	Installments int    `json:"installments"`
}

// Request описывает запрос на проведение транзакции.
type Request struct {
	InfoCard      InfoCard      `json:"infoCard"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Amount        int64         `json:"amount"`
	Reference     string        `json:"reference"`
	ProductID     string        `json:"product_id"`
	Quantity      int           `json:"quantity"`
}

// Response описывает ответ платёжного сервиса.
type Response struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewClient создаёт HTTP-клиент платёжного сервиса по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateTransaction отправляет запрос на списание и возвращает ответ сервиса.
// Любой статус в успешном ответе, включая DECLINED, возвращается без изменений.
func (c *Client) CreateTransaction(ctx context.Context, req Request) (*Response, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("transaction client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := base + "/transactions"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)

		var errResp errorResponse
		if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%s", errResp.Message)
		}
		return nil, fmt.Errorf("%s", DefaultErrorMessage)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}
