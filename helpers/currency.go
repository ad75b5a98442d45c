package helpers

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatUSD formats an amount as US dollars with thousand separators and
// two decimal places, e.g. "$1,234.56" or "-$0.50"
func FormatUSD(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	abs := amount.Abs().StringFixed(2)

	// Split off the cents; the integer part gets the separators
	intPart := abs[:len(abs)-3]
	cents := abs[len(abs)-2:]

	length := len(intPart)
	var result string
	for i, digit := range intPart {
		if i > 0 && (length-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}

	if negative {
		return fmt.Sprintf("-$%s.%s", result, cents)
	}
	return fmt.Sprintf("$%s.%s", result, cents)
}
