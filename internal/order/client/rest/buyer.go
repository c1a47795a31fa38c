package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shestoi/minimarket/internal/order/service"
)

// BuyerClient реализует service.BuyerDirectory поверх REST API Buyer Service
type BuyerClient struct {
	baseURL string
	client  *http.Client
}

// NewBuyerClient создаёт новый клиент Buyer Service
func NewBuyerClient(baseURL string, timeout time.Duration) *BuyerClient {
	return &BuyerClient{
		baseURL: baseURL,
		client:  httpClient(timeout),
	}
}

// GetBuyer запрашивает покупателя по id
func (c *BuyerClient) GetBuyer(ctx context.Context, buyerID int64) (service.Buyer, error) {
	var body struct {
		Email string `json:"email"`
	}

	url := fmt.Sprintf("%s/buyers/%d", c.baseURL, buyerID)
	if err := get(ctx, c.client, url, &body, service.ErrUnknownBuyer); err != nil {
		return service.Buyer{}, err
	}

	return service.Buyer{Email: body.Email}, nil
}
