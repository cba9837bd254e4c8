package storage

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxNameLen is the longest name, in bytes, a document will store.
const MaxNameLen = 63

// UniqueName returns want, or want with a ".NNN" suffix when taken reports
// it is already used by another block of the same kind. A numeric suffix
// already on want is replaced rather than stacked.
func UniqueName(want string, taken func(string) bool) (string, error) {
	if want == "" {
		return "", ErrInvalidName
	}
	want = clip(want, MaxNameLen)
	if !taken(want) {
		return want, nil
	}

	base := stripSuffix(want)
	for n := 1; n < 1000; n++ {
		suffix := fmt.Sprintf(".%03d", n)
		candidate := clip(base, MaxNameLen-len(suffix)) + suffix
		if !taken(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free suffix for %q", ErrInvalidName, want)
}

func stripSuffix(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name
	}
	if _, err := strconv.Atoi(name[i+1:]); err != nil {
		return name
	}
	return name[:i]
}

// clip cuts s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
