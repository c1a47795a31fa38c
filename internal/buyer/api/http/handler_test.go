package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/buyer/repository/memory"
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

func TestHandler_BuyerLifecycle(t *testing.T) {
	server := newTestServer(t)

	// Регистрация покупателя
	resp, err := http.Post(server.URL+"/buyers", "application/json",
		strings.NewReader(`{"name":"Alice","ssn":"123-45-6789","email":"alice@example.com","phoneNumber":"+15550001"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(created), `"buyerId":1`)

	// Чтение: запись без id
	resp, err = http.Get(server.URL + "/buyers/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `"email":"alice@example.com"`)
	require.Contains(t, string(body), `"phoneNumber":"+15550001"`)
	require.NotContains(t, string(body), `"id"`)

	// Неизвестный покупатель
	resp, err = http.Get(server.URL + "/buyers/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_PostBuyers_Validation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing fields", body: `{"name":"Alice"}`},
		{name: "invalid json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/buyers", "application/json", strings.NewReader(tt.body))
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
