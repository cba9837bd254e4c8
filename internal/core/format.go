package core

import (
	"strings"
)

// FormatName lowercases name, turns '-' and '_' into spaces, trims the ends
// and collapses runs of spaces into one.
func FormatName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name))

	space := false
	for _, r := range name {
		if r == ' ' {
			if space {
				continue
			}
			space = true
		} else {
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsFormatted reports whether FormatName would leave name unchanged.
func IsFormatted(name string) bool {
	return FormatName(name) == name
}
