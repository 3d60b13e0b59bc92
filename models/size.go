package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Byte"
	}

	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}

	v = math.Round(v*100) / 100

	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

func ParseSize(label string) (int64, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return 0, fmt.Errorf("models.ParseSize: empty input")
	}

	i := 0
	for i < len(s) && (s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}

	if i == 0 {
		return 0, fmt.Errorf("models.ParseSize: no leading number in %q", label)
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("models.ParseSize: could not parse number in %q: %w", label, err)
	}

	var mult float64
	switch strings.ToUpper(strings.TrimSpace(s[i:])) {
	case "", "B", "BYTE", "BYTES":
		mult = 1
	case "KB", "K":
		mult = 1 << 10
	case "MB", "M":
		mult = 1 << 20
	case "GB", "G":
		mult = 1 << 30
	default:
		return 0, fmt.Errorf("models.ParseSize: unrecognised unit in %q", label)
	}

	return int64(math.Round(v * mult)), nil
}
