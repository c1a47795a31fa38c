package templates

import (
	"bytes"
	"fmt"
	"text/template"
)

// Message - готовое к отправке письмо
type Message struct {
	Subject string
	Body    string
}

// Тексты писем. Шаблоны зашиты в бинарь: деплой сервиса не зависит
// от каталога с файлами шаблонов рядом с ним.
const (
	orderCreatedSubject = "Order has been created"
	orderCreatedBody    = "Order {{.OrderID}} was created for product {{.ProductID}} costing {{.TotalPrice}}."

	paymentSuccessSubject = "Order has been purchased"
	paymentSuccessBody    = "Order {{.OrderID}} has been successfully purchased."

	paymentFailureSubject = "Order purchase failed"
	paymentFailureBody    = "Order {{.OrderID}} purchase has failed."
)

// Renderer рендерит письма для событий саги
type Renderer struct {
	orderCreatedTemplate   *template.Template
	paymentSuccessTemplate *template.Template
	paymentFailureTemplate *template.Template
}

// NewRenderer создаёт новый renderer и компилирует шаблоны
func NewRenderer() (*Renderer, error) {
	orderCreatedTemplate, err := template.New("order_created").Parse(orderCreatedBody)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order created template: %w", err)
	}

	paymentSuccessTemplate, err := template.New("payment_success").Parse(paymentSuccessBody)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment success template: %w", err)
	}

	paymentFailureTemplate, err := template.New("payment_failure").Parse(paymentFailureBody)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment failure template: %w", err)
	}

	return &Renderer{
		orderCreatedTemplate:   orderCreatedTemplate,
		paymentSuccessTemplate: paymentSuccessTemplate,
		paymentFailureTemplate: paymentFailureTemplate,
	}, nil
}

// RenderOrderCreated рендерит письмо о создании заказа
func (r *Renderer) RenderOrderCreated(data interface{}) (Message, error) {
	return render(r.orderCreatedTemplate, orderCreatedSubject, data)
}

// RenderPaymentSuccess рендерит письмо об успешной оплате заказа
func (r *Renderer) RenderPaymentSuccess(data interface{}) (Message, error) {
	return render(r.paymentSuccessTemplate, paymentSuccessSubject, data)
}

// RenderPaymentFailure рендерит письмо о неуспешной оплате заказа
func (r *Renderer) RenderPaymentFailure(data interface{}) (Message, error) {
	return render(r.paymentFailureTemplate, paymentFailureSubject, data)
}

func render(tmpl *template.Template, subject string, data interface{}) (Message, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return Message{Subject: subject, Body: buf.String()}, nil
}
