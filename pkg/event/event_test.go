package event

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_OrderCreated(t *testing.T) {
	src := OrderCreated{
		EventID:    "evt-1",
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		OrderID:    7,
		ProductID:  3,
		MerchantID: 1,
		BuyerID:    2,
		Card: Card{
			Number:          "4539578763621486",
			ExpirationMonth: 12,
			ExpirationYear:  2030,
			CVC:             123,
		},
		BuyerEmail:    "buyer@example.com",
		MerchantEmail: "merchant@example.com",
		Price:         100,
		Discount:      0.1,
		TotalPrice:    90,
	}

	data, err := Encode(src)
	require.NoError(t, err)

	// Дискриминатор должен попасть в JSON
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, TypeOrderCreated, raw["type"])

	decoded, err := Decode(data)
	require.NoError(t, err)

	got, ok := decoded.(OrderCreated)
	require.True(t, ok, "expected OrderCreated, got %T", decoded)
	require.Equal(t, src.OrderID, got.OrderID)
	require.Equal(t, src.Card, got.Card)
	require.Equal(t, src.TotalPrice, got.TotalPrice)
	require.Equal(t, "7", got.Key())
}

func TestEncodeDecode_PaymentOutcomes(t *testing.T) {
	outcome := PaymentOutcome{
		EventID:       "evt-2",
		OccurredAt:    time.Now().UTC().Truncate(time.Second),
		OrderID:       9,
		ProductID:     3,
		BuyerEmail:    "buyer@example.com",
		MerchantEmail: "merchant@example.com",
	}

	t.Run("payment.success", func(t *testing.T) {
		data, err := Encode(PaymentSuccess{PaymentOutcome: outcome})
		require.NoError(t, err)

		decoded, err := Decode(data)
		require.NoError(t, err)

		got, ok := decoded.(PaymentSuccess)
		require.True(t, ok, "expected PaymentSuccess, got %T", decoded)
		require.Equal(t, outcome.OrderID, got.OrderID)
	})

	t.Run("payment.failure", func(t *testing.T) {
		data, err := Encode(PaymentFailure{PaymentOutcome: outcome})
		require.NoError(t, err)

		decoded, err := Decode(data)
		require.NoError(t, err)

		got, ok := decoded.(PaymentFailure)
		require.True(t, ok, "expected PaymentFailure, got %T", decoded)
		require.Equal(t, outcome.ProductID, got.ProductID)
	})
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"order.shipped","orderId":1}`))
	require.Error(t, err)

	var unknown *UnknownTypeError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "order.shipped", unknown.Kind)
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	require.Error(t, err)
}

func TestMaskCardNumber(t *testing.T) {
	require.Equal(t, "************1486", MaskCardNumber("4539578763621486"))
	require.Equal(t, "1486", MaskCardNumber("1486"))
	require.Equal(t, "", MaskCardNumber(""))
}
