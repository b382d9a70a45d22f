package view

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRupiah renders an amount the way the cafe prints prices: "Rp" plus
// the whole-rupiah amount with dots for thousands and no decimals.
func FormatRupiah(amount decimal.Decimal) string {
	whole := amount.Round(0).IntPart()

	negative := whole < 0
	if negative {
		whole = -whole
	}

	digits := decimal.NewFromInt(whole).String()
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	out := "Rp" + b.String()
	if negative {
		out = "-" + out
	}
	return out
}
