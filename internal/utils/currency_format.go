package utils

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// FormatWithPrecision formats an amount with the given precision.
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.Round(int32(precision)).String()
}

// FormatMoney renders an amount with two decimals and the locale's separators.
// Portuguese gets "R$ 1.234,56"; anything else gets "1,234.56".
// Example: -1234.5 with pt-BR returns "-R$ 1.234,50"
func FormatMoney(amount decimal.Decimal, tag language.Tag) string {
	base, _ := tag.Base()
	pt, _ := language.Portuguese.Base()

	thousands, point, prefix := ",", ".", ""
	if base == pt {
		thousands, point, prefix = ".", ",", "R$ "
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(thousands)
		}
		b.WriteRune(r)
	}

	return sign + prefix + b.String() + point + frac
}
