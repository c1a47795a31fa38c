package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/minimarket/pkg/event"
)

func validCard() event.Card {
	return event.Card{
		Number:          "4539578763621486",
		ExpirationMonth: 12,
		ExpirationYear:  2030,
		CVC:             123,
	}
}

func TestValidateCard(t *testing.T) {
	tests := []struct {
		name  string
		patch func(c *event.Card)
		want  bool
	}{
		{
			name:  "valid card",
			patch: func(c *event.Card) {},
			want:  true,
		},
		{
			name:  "luhn check fails",
			patch: func(c *event.Card) { c.Number = "4539578763621487" },
			want:  false,
		},
		{
			name:  "month 13 fails regardless of luhn",
			patch: func(c *event.Card) { c.ExpirationMonth = 13 },
			want:  false,
		},
		{
			name:  "month 0 fails",
			patch: func(c *event.Card) { c.ExpirationMonth = 0 },
			want:  false,
		},
		{
			name:  "two digit year fails",
			patch: func(c *event.Card) { c.ExpirationYear = 30 },
			want:  false,
		},
		{
			name:  "four digit cvc fails",
			patch: func(c *event.Card) { c.CVC = 1234 },
			want:  false,
		},
		{
			name:  "two digit cvc fails",
			patch: func(c *event.Card) { c.CVC = 12 },
			want:  false,
		},
		{
			name:  "empty card number fails",
			patch: func(c *event.Card) { c.Number = "" },
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			tt.patch(&card)
			require.Equal(t, tt.want, ValidateCard(card))
		})
	}
}

func TestLuhnCheck_IgnoresNonDigits(t *testing.T) {
	require.True(t, luhnCheck("4539 5787 6362 1486"))
	require.False(t, luhnCheck("----"))
}
