// Package rest содержит HTTP клиенты Order Service к directory сервисам
// и Inventory Service. Все клиенты разделяют таймаут-дисциплину:
// недоступность или таймаут upstream-а превращается в ErrUpstreamTimeout,
// и вызывающая операция прерывается без побочных эффектов.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// httpClient - общий транспорт клиентов с таймаутом на весь запрос
func httpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// get выполняет GET и декодирует успешный ответ в out.
// Возвращает notFoundErr на 404, ErrUpstreamTimeout на сетевые ошибки.
func get(ctx context.Context, client *http.Client, url string, out interface{}, notFoundErr error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response from %s: %w", url, err)
		}
		return nil
	case http.StatusNotFound:
		return notFoundErr
	default:
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
}

// postJSON выполняет POST с JSON телом и возвращает статус ответа
func postJSON(ctx context.Context, client *http.Client, url string, body interface{}) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, mapTransportError(err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// mapTransportError отличает таймаут/недоступность от прочих ошибок
func mapTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return upstreamTimeout(err)
	}
	// Отказ соединения для вызывающего неотличим от таймаута:
	// upstream недоступен, операция прерывается
	return upstreamTimeout(err)
}
