// Package naming turns client supplied file and folder names into names
// that are safe to store as a single path segment.
package naming

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// FallbackName replaces names that have nothing usable left
	FallbackName = "unnamed_file"

	// MaxNameBytes is the longest name most filesystems accept for one segment
	MaxNameBytes = 255

	// illegalChars are separators and characters reserved on common filesystems
	illegalChars = `/\:*?"<>|`
)

// Sanitize returns a safe name for raw.
// Path separators, reserved characters and control characters are
// removed, leading dots are stripped so the result is never hidden, and
// overly long names are shortened keeping their extension. The result is
// never empty and Sanitize(Sanitize(x)) == Sanitize(x).
// Non-ASCII letters are kept as they are.
func Sanitize(raw string) string {
	name, _ := Clean(raw)
	return name
}

// Clean is Sanitize that also reports whether FallbackName had to be used
func Clean(raw string) (string, bool) {
	name := strings.Map(func(r rune) rune {
		if isIllegal(r) {
			return -1
		}
		return r
	}, raw)

	// Dots and blanks are stripped together so trimming can never expose a new leading dot
	name = strings.TrimLeftFunc(name, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
	name = strings.TrimRightFunc(name, unicode.IsSpace)

	if name == "" {
		return FallbackName, true
	}

	if len(name) > MaxNameBytes {
		name = shorten(name, MaxNameBytes)
	}

	return strings.TrimRightFunc(name, unicode.IsSpace), false
}

func isIllegal(r rune) bool {
	if r < 0x20 || r == 0x7f {
		return true
	}
	return strings.ContainsRune(illegalChars, r)
}

// shorten cuts name to at most limit bytes, keeping the final extension
// when there is room for at least part of the base name.
func shorten(name string, limit int) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	if len(ext) < limit {
		if kept := cutBytes(base, limit-len(ext)); kept != "" {
			return kept + ext
		}
	}
	return cutBytes(name, limit)
}

// cutBytes returns the longest prefix of s that fits in n bytes without splitting a rune
func cutBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
