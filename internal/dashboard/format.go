package dashboard

import (
	"fmt"
	"strconv"
)

// FormatAmount renders a currency amount, switching to the 万 (ten
// thousand) unit at |v| >= 10000. Both branches keep exactly 2 decimals,
// and negative magnitudes take the 万 branch symmetrically.
func FormatAmount(v float64) string {
	if v >= 10000 || v <= -10000 {
		return fmt.Sprintf("%.2f万", v/10000)
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatCurrency is FormatAmount with the currency glyph.
func FormatCurrency(v float64) string {
	return "¥" + FormatAmount(v)
}

// FormatPrice renders a per-share price with 2 decimals and the currency
// glyph.
func FormatPrice(v float64) string {
	return fmt.Sprintf("¥%.2f", v)
}

// FormatPct renders a percentage without padding zeros: 50 → "50%",
// 66.67 → "66.67%".
func FormatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// FormatSignedPct is FormatPct with an explicit leading + for
// non-negative values.
func FormatSignedPct(v float64) string {
	if v >= 0 {
		return "+" + FormatPct(v)
	}
	return FormatPct(v)
}

// FormatSignedPctFixed renders a signed percentage with exactly 2
// decimals, as used in trade rows.
func FormatSignedPctFixed(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatDays renders a day count with the day-unit suffix, without padding
// zeros: 12 → "12天", 12.5 → "12.5天".
func FormatDays(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "天"
}
