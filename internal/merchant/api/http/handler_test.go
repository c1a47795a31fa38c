package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/merchant/repository/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo := memory.NewMemoryRepository()
	handler := NewHandler(zap.NewNop(), repo)
	router := NewRouter(handler, func() bool { return true })

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestHandler_MerchantLifecycle(t *testing.T) {
	server := newTestServer(t)

	// Регистрация продавца
	resp, err := http.Post(server.URL+"/merchants", "application/json",
		strings.NewReader(`{"name":"Shop","ssn":"987-65-4321","email":"shop@example.com","phoneNumber":"+15550002","allowsDiscount":true}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(created), `"merchantId":1`)

	// Чтение: запись без id
	resp, err = http.Get(server.URL + "/merchants/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `"allowsDiscount":true`)
	require.Contains(t, string(body), `"email":"shop@example.com"`)
	require.NotContains(t, string(body), `"id"`)

	// Неизвестный продавец
	resp, err = http.Get(server.URL + "/merchants/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_PostMerchants_Validation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing allowsDiscount", body: `{"name":"Shop","ssn":"1","email":"a@b.c","phoneNumber":"+1"}`},
		{name: "invalid json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/merchants", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandler_Health(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
