package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shestoi/minimarket/internal/order/service"
)

// InventoryRESTClient реализует service.InventoryClient поверх REST API
// Inventory Service
type InventoryRESTClient struct {
	baseURL string
	client  *http.Client
}

// NewInventoryClient создаёт новый клиент Inventory Service
func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryRESTClient {
	return &InventoryRESTClient{
		baseURL: baseURL,
		client:  httpClient(timeout),
	}
}

// GetProduct запрашивает снимок товара по id
func (c *InventoryRESTClient) GetProduct(ctx context.Context, productID int64) (service.Product, error) {
	var body struct {
		MerchantID int64   `json:"merchantId"`
		Price      float64 `json:"price"`
		Quantity   int64   `json:"quantity"`
		Reserved   int64   `json:"reserved"`
	}

	url := fmt.Sprintf("%s/products/%d", c.baseURL, productID)
	if err := get(ctx, c.client, url, &body, service.ErrUnknownProduct); err != nil {
		return service.Product{}, err
	}

	return service.Product{
		MerchantID: body.MerchantID,
		Price:      body.Price,
		Quantity:   body.Quantity,
		Reserved:   body.Reserved,
	}, nil
}

// Reserve резервирует amount единиц товара
func (c *InventoryRESTClient) Reserve(ctx context.Context, productID, amount int64) error {
	url := fmt.Sprintf("%s/products/%d/reserve", c.baseURL, productID)
	status, err := postJSON(ctx, c.client, url, map[string]int64{"amount": amount})
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return service.ErrInsufficientStock
	case http.StatusNotFound:
		return service.ErrUnknownProduct
	default:
		return fmt.Errorf("unexpected status %d from %s", status, url)
	}
}
