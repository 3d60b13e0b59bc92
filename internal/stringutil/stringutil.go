package stringutil

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

func PascalToSnake(s string) string {
	var b bytes.Buffer

	for i, c := range s {
		if unicode.IsUpper(c) {
			if i > 0 && (unicode.IsLower(rune(s[i-1])) || (i+1 < len(s) && unicode.IsLower(rune(s[i+1])))) {
				b.WriteByte('_')
			}

			b.WriteRune(unicode.ToLower(c))
		} else {
			b.WriteRune(c)
		}
	}

	return b.String()
}

func LooksTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on", "enabled", "enable", "active", "ok", "okay", "checked":
		return true
	default:
		return false
	}
}

// ContainsFold reports whether substr is within s, ignoring case. An empty
// substr matches everything.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}

	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Truncate cuts s to at most n runes, appending "..." when anything was cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= n {
		return s
	}

	r := []rune(s)

	return string(r[:n]) + "..."
}
