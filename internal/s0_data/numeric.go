package s0_data

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LotSize is the number of shares in one board lot (張)
const LotSize = 1000

// SafeInt coerces a raw feed value to an integer. Thousands separators are
// stripped, decimals are truncated, and anything unparseable yields 0.
func SafeInt(v interface{}) int64 {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return int64(val)
	case int64:
		return val
	case int32:
		return int64(val)
	case float64:
		return truncate(val)
	case float32:
		return truncate(float64(val))
	case json.Number:
		return parseNumber(val.String())
	case string:
		return parseNumber(val)
	case []byte:
		return parseNumber(string(val))
	default:
		return 0
	}
}

// ToLots converts a raw share count to lots, truncating toward zero
func ToLots(v interface{}) int64 {
	return SafeInt(v) / LotSize
}

func parseNumber(s string) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return truncate(f)
}

func truncate(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
