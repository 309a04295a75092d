package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimal parses a numeric token accepting both "4.5" and "4,5".
func ParseDecimal(token string) (float64, bool) {
	compact := strings.TrimSpace(token)
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		compact = strings.ReplaceAll(compact, ",", ".")
	}
	parsed, err := strconv.ParseFloat(compact, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func RoundToInt(v float64) int {
	return int(math.Round(v))
}
