// Package event описывает события саги оформления заказа.
//
// События представлены закрытым набором типов (tagged union): добавление
// нового типа события требует расширить Decode и Encode, что проверяется
// компилятором и линтером, вместо динамической диспетчеризации по строке.
package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Имена типов событий. Совпадают с routing key / именем топика брокера.
const (
	TypeOrderCreated   = "order.created"
	TypePaymentSuccess = "payment.success"
	TypePaymentFailure = "payment.failure"
)

// Event — общий интерфейс всех событий саги.
// Key используется как ключ сообщения брокера: все события одного заказа
// попадают в одну партицию и сохраняют причинный порядок внутри заказа.
type Event interface {
	Type() string
	Key() string
}

// Card — платёжный инструмент. Полный номер карты присутствует только
// в payload события order.created и читается только Payment Validator-ом;
// в хранимых и возвращаемых данных номер маскируется до последних 4 цифр.
type Card struct {
	Number          string `json:"cardNumber"`
	ExpirationMonth int    `json:"expirationMonth"`
	ExpirationYear  int    `json:"expirationYear"`
	CVC             int    `json:"cvc"`
}

// OrderCreated публикуется Order Orchestrator-ом после резервирования
// товара и сохранения заказа. Запускает асинхронную часть саги.
type OrderCreated struct {
	Kind          string    `json:"type"`
	EventID       string    `json:"eventId"`
	OccurredAt    time.Time `json:"occurredAt"`
	OrderID       int64     `json:"orderId"`
	ProductID     int64     `json:"productId"`
	MerchantID    int64     `json:"merchantId"`
	BuyerID       int64     `json:"buyerId"`
	Card          Card      `json:"card"`
	BuyerEmail    string    `json:"buyerEmail"`
	MerchantEmail string    `json:"merchantEmail"`
	Price         float64   `json:"price"`
	Discount      float64   `json:"discount"`
	TotalPrice    float64   `json:"totalPrice"`
}

func (OrderCreated) Type() string { return TypeOrderCreated }

func (e OrderCreated) Key() string { return strconv.FormatInt(e.OrderID, 10) }

// PaymentOutcome — общие поля событий payment.success и payment.failure.
type PaymentOutcome struct {
	Kind          string    `json:"type"`
	EventID       string    `json:"eventId"`
	OccurredAt    time.Time `json:"occurredAt"`
	OrderID       int64     `json:"orderId"`
	ProductID     int64     `json:"productId"`
	BuyerEmail    string    `json:"buyerEmail"`
	MerchantEmail string    `json:"merchantEmail"`
}

func (e PaymentOutcome) Key() string { return strconv.FormatInt(e.OrderID, 10) }

// PaymentSuccess публикуется Payment Validator-ом, когда платёжный
// инструмент прошёл все проверки. Inventory Ledger коммитит резерв.
type PaymentSuccess struct {
	PaymentOutcome
}

func (PaymentSuccess) Type() string { return TypePaymentSuccess }

// PaymentFailure публикуется, когда хотя бы одна проверка не прошла.
// Inventory Ledger освобождает резерв (компенсирующее действие).
type PaymentFailure struct {
	PaymentOutcome
}

func (PaymentFailure) Type() string { return TypePaymentFailure }

// UnknownTypeError возвращается Decode для события с неизвестным
// дискриминатором. Такие сообщения отправляются в DLQ, а не игнорируются.
type UnknownTypeError struct {
	Kind string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown event type: %q", e.Kind)
}

// Encode сериализует событие в JSON с дискриминатором "type".
// Switch по конкретным типам закрытый: новый тип события без ветки здесь
// не соберётся в publisher-ах.
func Encode(e Event) ([]byte, error) {
	switch ev := e.(type) {
	case OrderCreated:
		ev.Kind = TypeOrderCreated
		return json.Marshal(ev)
	case PaymentSuccess:
		ev.Kind = TypePaymentSuccess
		return json.Marshal(ev)
	case PaymentFailure:
		ev.Kind = TypePaymentFailure
		return json.Marshal(ev)
	default:
		return nil, fmt.Errorf("encode: unsupported event type %T", e)
	}
}

// Decode разбирает JSON события по дискриминатору "type"
// и возвращает конкретный тип из union-а.
func Decode(data []byte) (Event, error) {
	var head struct {
		Kind string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event header: %w", err)
	}

	switch head.Kind {
	case TypeOrderCreated:
		var e OrderCreated
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", head.Kind, err)
		}
		return e, nil
	case TypePaymentSuccess:
		var e PaymentSuccess
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", head.Kind, err)
		}
		return e, nil
	case TypePaymentFailure:
		var e PaymentFailure
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", head.Kind, err)
		}
		return e, nil
	default:
		return nil, &UnknownTypeError{Kind: head.Kind}
	}
}

// MaskCardNumber маскирует номер карты до последних 4 символов:
// "4539578763621486" -> "************1486".
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	masked := make([]byte, len(number))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(number)-4:], number[len(number)-4:])
	return string(masked)
}
