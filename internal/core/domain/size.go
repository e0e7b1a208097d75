package domain

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with a 1024 base and at most two decimals.
// 0 -> "0 Bytes", 1024 -> "1 KB", 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	const k = 1024
	i := 0
	unit := int64(1)
	for i < len(sizeUnits)-1 && bytes >= unit*k {
		unit *= k
		i++
	}

	value := float64(bytes) / float64(unit)
	value = math.Round(value*100) / 100

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}

func formatInt(n int) string {
	return strconv.Itoa(n)
}
