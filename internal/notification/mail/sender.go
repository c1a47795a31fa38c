package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sender определяет интерфейс для отправки писем
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// HTTPSender отправляет письма через SendGrid-совместимый mail API
type HTTPSender struct {
	logger    *zap.Logger
	apiURL    string
	apiKey    string
	fromEmail string
	client    *http.Client
}

// NewHTTPSender создаёт новый mail sender
func NewHTTPSender(logger *zap.Logger, apiURL, apiKey, fromEmail string) *HTTPSender {
	return &HTTPSender{
		logger:    logger,
		apiURL:    strings.TrimRight(apiURL, "/"),
		apiKey:    apiKey,
		fromEmail: fromEmail,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send отправляет письмо одному адресату
func (s *HTTPSender) Send(ctx context.Context, to, subject, body string) error {
	url := fmt.Sprintf("%s/v3/mail/send", s.apiURL)

	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{
				"to": []map[string]string{
					{"email": to},
				},
			},
		},
		"from":    map[string]string{"email": s.fromEmail},
		"subject": subject,
		"content": []map[string]string{
			{"type": "text/plain", "value": body},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Mail API отвечает 202 Accepted; при другом статусе читаем тело для диагностики
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail API status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	s.logger.Debug("mail sent successfully",
		zap.String("to", to),
		zap.String("subject", subject),
	)

	return nil
}

// NoOpSender - no-op реализация Sender (для тестов или когда почта отключена)
type NoOpSender struct {
	logger *zap.Logger
}

// NewNoOpSender создаёт no-op sender
func NewNoOpSender(logger *zap.Logger) *NoOpSender {
	return &NoOpSender{
		logger: logger,
	}
}

// Send ничего не делает, только логирует
func (s *NoOpSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info("no-op sender: mail not sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body_preview", truncate(body, 50)),
	)
	return nil
}

// truncate обрезает строку до указанной длины
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
