package wallet

import (
	"strconv"
	"strings"
)

const (
	thousandsSep = " " // non-breaking space, the way the card UI renders rubles
	currencySign = "₽"
)

// ParseAmount extracts the ruble amount from a display string such as
// "92 430 ₽". Every non-digit rune is discarded, so the parse is
// currency-agnostic and lossy: a leading minus is dropped too. Returns 0
// when the string carries no digits.
func ParseAmount(display string) int64 {
	var digits strings.Builder
	for _, r := range display {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	value, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// FormatAmount renders an integer ruble amount with non-breaking-space
// thousands groups and a trailing currency sign, e.g. 92430 -> "92 430 ₽".
// ParseAmount(FormatAmount(x)) == x for every non-negative x.
func FormatAmount(value int64) string {
	negative := value < 0
	if negative {
		value = -value
	}

	digits := strconv.FormatInt(value, 10)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteString(thousandsSep)
		}
		grouped.WriteRune(d)
	}

	out := grouped.String() + thousandsSep + currencySign
	if negative {
		out = "-" + out
	}
	return out
}
