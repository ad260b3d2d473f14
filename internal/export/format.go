package export

import (
	"math"
	"strconv"
	"strings"
)

// FormatINR formats v as rupees with Indian digit grouping.
// Examples: 1500 -> "₹1,500", 1234567.5 -> "₹12,34,567.50"
func FormatINR(v float64) string {
	return "₹" + GroupIndian(v)
}

// GroupIndian groups the integer part of v as thousands then lakhs and
// crores (3 digits, then 2 at a time). Fractions are shown with two digits
// only when non-zero.
func GroupIndian(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	paise := int64(math.Round(v * 100))
	whole, frac := paise/100, paise%100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	b.WriteString(sign)
	if len(digits) <= 3 {
		b.WriteString(digits)
	} else {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		lead := len(head) % 2
		if lead > 0 {
			b.WriteString(head[:lead])
		}
		for i := lead; i < len(head); i += 2 {
			if b.Len() > len(sign) {
				b.WriteByte(',')
			}
			b.WriteString(head[i : i+2])
		}
		b.WriteByte(',')
		b.WriteString(tail)
	}
	if frac > 0 {
		b.WriteByte('.')
		if frac < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatInt(frac, 10))
	}
	return b.String()
}
