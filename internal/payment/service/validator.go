package service

import (
	"strconv"
	"unicode"

	"github.com/shestoi/minimarket/pkg/event"
)

// ValidateCard проверяет платёжный инструмент:
// номер по алгоритму Луна, месяц в [1, 12], год записывается ровно
// четырьмя цифрами, cvc - ровно тремя. Все проверки детерминированы,
// внешний платёжный шлюз не вызывается.
func ValidateCard(card event.Card) bool {
	return luhnCheck(card.Number) &&
		card.ExpirationMonth >= 1 && card.ExpirationMonth <= 12 &&
		len(strconv.Itoa(card.ExpirationYear)) == 4 &&
		len(strconv.Itoa(card.CVC)) == 3
}

// luhnCheck проверяет номер карты по алгоритму Луна:
// справа налево удваивается каждая вторая цифра, из результата больше 9
// вычитается 9; сумма всех цифр должна делиться на 10 без остатка
func luhnCheck(cardNumber string) bool {
	digits := make([]int, 0, len(cardNumber))
	for _, r := range cardNumber {
		if unicode.IsDigit(r) {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) == 0 {
		return false
	}

	checksum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		checksum += d
		double = !double
	}
	return checksum%10 == 0
}
