package utils

import (
	"strconv"
)

// ParseInt64 converts a query value to an int64, returning def when it is
// empty, malformed or not positive
func ParseInt64(s string, def int64) int64 {
	if s == "" {
		return def
	}

	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil || value < 1 {
		return def
	}

	return value
}
