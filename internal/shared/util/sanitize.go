package util

import (
	"errors"
	"strings"
)

const maxFileNameLen = 100

// SanitizeFileName makes name safe to use as the last segment of an object key.
// Characters outside [A-Za-z0-9._-] become underscores; traversal patterns are rejected.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", errors.New("invalid file name")
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if len(out) > maxFileNameLen {
		out = out[len(out)-maxFileNameLen:]
	}
	if strings.Trim(out, "._") == "" {
		return "", errors.New("invalid file name")
	}
	return out, nil
}
