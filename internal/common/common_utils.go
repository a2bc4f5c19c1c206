package common

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// SanitizeFileName keeps letters, digits, dot, dash and underscore from the
// base name and replaces everything else with '-'.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "file"
	}
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}

// DerefString returns the pointed-to string or ""
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
