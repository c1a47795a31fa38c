package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shestoi/minimarket/internal/order/service"
)

// upstreamTimeout оборачивает сетевую ошибку в sentinel сервиса,
// сохраняя причину для логов
func upstreamTimeout(err error) error {
	return fmt.Errorf("%w: %v", service.ErrUpstreamTimeout, err)
}

// MerchantClient реализует service.MerchantDirectory поверх REST API
// Merchant Service
type MerchantClient struct {
	baseURL string
	client  *http.Client
}

// NewMerchantClient создаёт новый клиент Merchant Service
func NewMerchantClient(baseURL string, timeout time.Duration) *MerchantClient {
	return &MerchantClient{
		baseURL: baseURL,
		client:  httpClient(timeout),
	}
}

// GetMerchant запрашивает продавца по id
func (c *MerchantClient) GetMerchant(ctx context.Context, merchantID int64) (service.Merchant, error) {
	var body struct {
		Email          string `json:"email"`
		AllowsDiscount bool   `json:"allowsDiscount"`
	}

	url := fmt.Sprintf("%s/merchants/%d", c.baseURL, merchantID)
	if err := get(ctx, c.client, url, &body, service.ErrUnknownMerchant); err != nil {
		return service.Merchant{}, err
	}

	return service.Merchant{
		Email:          body.Email,
		AllowsDiscount: body.AllowsDiscount,
	}, nil
}
