package calc

import (
	"math"
	"strconv"
	"strings"
)

// DefaultPrecision is the number of fractional digits kept by Format.
const DefaultPrecision = 10

// Format renders a result the way the display shows it: rounded to
// precision fractional digits with trailing zeros trimmed, so whole numbers
// have no fractional part. Negative zero prints as "0".
func Format(val float64, precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	s := strconv.FormatFloat(val, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return trimSign(s)
}

func trimSign(s string) string {
	if s == "-0" {
		return "0"
	}
	return s
}
