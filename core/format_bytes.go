package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Binary byte units.
const (
	BytesPerKB int64 = 1024
	BytesPerMB int64 = 1024 * BytesPerKB
	BytesPerGB int64 = 1024 * BytesPerMB
)

var byteUnits = []struct {
	size int64
	name string
}{
	{BytesPerGB, "GB"},
	{BytesPerMB, "MB"},
	{BytesPerKB, "KB"},
}

// FormatBytes renders a byte count for messages such as the upload limit.
// Whole multiples drop the decimals.
//
// Examples:
//   - FormatBytes(512) returns "512 B"
//   - FormatBytes(1536) returns "1.5 KB"
//   - FormatBytes(10485760) returns "10 MB"
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	for _, u := range byteUnits {
		if bytes < u.size {
			continue
		}
		if bytes%u.size == 0 {
			return fmt.Sprintf("%d %s", bytes/u.size, u.name)
		}
		return fmt.Sprintf("%.1f %s", float64(bytes)/float64(u.size), u.name)
	}
	return fmt.Sprintf("%d B", bytes)
}

// ParseBytes converts sizes such as "10MB", "512 kb" or "1.5G" to bytes.
// A bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	numEnd := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if numEnd == -1 {
		numEnd = len(s)
	}
	if numEnd == 0 {
		return 0, fmt.Errorf("invalid size %q: no number found", s)
	}

	value, err := strconv.ParseFloat(s[:numEnd], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	multiplier := int64(1)
	switch unit := strings.TrimSpace(s[numEnd:]); unit {
	case "", "B":
	case "K", "KB", "KIB":
		multiplier = BytesPerKB
	case "M", "MB", "MIB":
		multiplier = BytesPerMB
	case "G", "GB", "GIB":
		multiplier = BytesPerGB
	default:
		return 0, fmt.Errorf("invalid size %q: unknown unit %q", s, unit)
	}
	return int64(value * float64(multiplier)), nil
}
