package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/inventory/repository/memory"
	"github.com/shestoi/minimarket/internal/inventory/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo := memory.NewMemoryRepository()
	svc := service.NewInventoryService(zap.NewNop(), repo)
	handler := NewHandler(zap.NewNop(), svc)
	router := NewRouter(handler, func() bool { return true })

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestHandler_ProductLifecycle(t *testing.T) {
	server := newTestServer(t)

	// Создание товара
	resp, err := http.Post(server.URL+"/products", "application/json",
		strings.NewReader(`{"merchantId":1,"productName":"keyboard","price":100,"quantity":2}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Чтение: запись без id
	resp, err = http.Get(server.URL + "/products/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := make([]byte, 1024)
	n, _ := resp.Body.Read(body)
	require.Contains(t, string(body[:n]), `"productName":"keyboard"`)
	require.Contains(t, string(body[:n]), `"reserved":0`)
	require.NotContains(t, string(body[:n]), `"id"`)

	// Неизвестный товар
	resp, err = http.Get(server.URL + "/products/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Reserve(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/products", "application/json",
		strings.NewReader(`{"merchantId":1,"productName":"mouse","price":50,"quantity":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Первый резерв проходит
	resp, err = http.Post(server.URL+"/products/1/reserve", "application/json",
		strings.NewReader(`{"amount":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Второй - отказ по остатку
	resp, err = http.Post(server.URL+"/products/1/reserve", "application/json",
		strings.NewReader(`{"amount":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Неизвестный товар
	resp, err = http.Post(server.URL+"/products/999/reserve", "application/json",
		strings.NewReader(`{"amount":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Health(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
