package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatAmount renders a number with Turkish grouping, rounded to kuruş:
// 104000 → "104.000", 1500.5 → "1.500,5".
func formatAmount(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	whole, frac := cents/100, cents%100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	b.WriteString(sign)
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if frac != 0 {
		b.WriteByte(',')
		b.WriteString(strings.TrimRight(fmt.Sprintf("%02d", frac), "0"))
	}
	return b.String()
}

// oneDecimal rounds to one decimal place and renders with a decimal point: 40/30 → "1.3".
func oneDecimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}
