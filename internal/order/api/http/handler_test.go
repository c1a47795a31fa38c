package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/order/repository/memory"
	"github.com/shestoi/minimarket/internal/order/service"
	"github.com/shestoi/minimarket/internal/order/service/mocks"
)

const orderBody = `{
	"productId": 1,
	"merchantId": 1,
	"buyerId": 1,
	"creditCard": {"cardNumber":"4539578763621486","expirationMonth":12,"expirationYear":2030,"cvc":123},
	"discount": 0.1
}`

func newTestServer(t *testing.T) (*httptest.Server, *mocks.MerchantDirectory, *mocks.BuyerDirectory, *mocks.InventoryClient) {
	t.Helper()

	merchants := mocks.NewMerchantDirectory(t)
	buyers := mocks.NewBuyerDirectory(t)
	inventory := mocks.NewInventoryClient(t)
	repo := memory.NewMemoryRepository()

	svc := service.NewOrderService(zap.NewNop(), merchants, buyers, inventory, repo)
	handler := NewHandler(zap.NewNop(), svc)
	router := NewRouter(handler, func() bool { return true })

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, merchants, buyers, inventory
}

func stubHappyLookups(merchants *mocks.MerchantDirectory, buyers *mocks.BuyerDirectory, inventory *mocks.InventoryClient) {
	merchants.On("GetMerchant", mock.Anything, int64(1)).
		Return(service.Merchant{Email: "merchant@example.com", AllowsDiscount: true}, nil)
	buyers.On("GetBuyer", mock.Anything, int64(1)).
		Return(service.Buyer{Email: "buyer@example.com"}, nil)
	inventory.On("GetProduct", mock.Anything, int64(1)).
		Return(service.Product{MerchantID: 1, Price: 100, Quantity: 5, Reserved: 0}, nil)
	inventory.On("Reserve", mock.Anything, int64(1), int64(1)).Return(nil)
}

func TestHandler_OrderLifecycle(t *testing.T) {
	server, merchants, buyers, inventory := newTestServer(t)
	stubHappyLookups(merchants, buyers, inventory)

	resp, err := http.Post(server.URL+"/orders", "application/json", strings.NewReader(orderBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(created), `"orderId":1`)

	// Чтение: маскированная карта, итоговая цена со скидкой, без id
	resp, err = http.Get(server.URL + "/orders/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `"cardNumber":"************1486"`)
	require.Contains(t, string(body), `"totalPrice":90`)
	require.Contains(t, string(body), `"status":"awaiting_payment"`)
	require.NotContains(t, string(body), `"id"`)

	// Неизвестный заказ
	resp, err = http.Get(server.URL + "/orders/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_PostOrders_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "missing credit card",
			body:       `{"productId":1,"merchantId":1,"buyerId":1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "incomplete credit card",
			body:       `{"productId":1,"merchantId":1,"buyerId":1,"creditCard":{"cardNumber":"4539578763621486"}}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "discount out of range",
			body:       strings.Replace(orderBody, `"discount": 0.1`, `"discount": 1.5`, 1),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, _, _ := newTestServer(t)

			resp, err := http.Post(server.URL+"/orders", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHandler_PostOrders_ErrorMapping(t *testing.T) {
	t.Run("validation refusal is 400 with reason", func(t *testing.T) {
		server, merchants, _, _ := newTestServer(t)
		merchants.On("GetMerchant", mock.Anything, int64(1)).
			Return(service.Merchant{}, service.ErrUnknownMerchant)

		resp, err := http.Post(server.URL+"/orders", "application/json", strings.NewReader(orderBody))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "Merchant does not exist")
	})

	t.Run("upstream timeout is 504", func(t *testing.T) {
		server, merchants, _, _ := newTestServer(t)
		merchants.On("GetMerchant", mock.Anything, int64(1)).
			Return(service.Merchant{}, service.ErrUpstreamTimeout)

		resp, err := http.Post(server.URL+"/orders", "application/json", strings.NewReader(orderBody))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	})
}

func TestHandler_Health(t *testing.T) {
	server, _, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
