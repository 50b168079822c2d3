package utils

import (
	"strconv"
	"time"
)

// StrToInt64 converts a string to an int64.
// Returns 0 and an error if the conversion fails.
func StrToInt64(s string) (int64, error) {
	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}

// FormatClock renders the wall-clock part of t as HH:MM.
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}
