package android

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPrefix is prepended to every generated resource name.
const DefaultPrefix = "yt_"

// NameStyle selects how catalog keys are turned into resource names.
type NameStyle string

const (
	// NameStyleCompact collapses separator runs and trims underscores at both
	// ends: "__Foo--Bar__" -> "foo_bar".
	NameStyleCompact NameStyle = "compact"
	// NameStyleLegacy substitutes one underscore per rune and trims trailing
	// underscores only: "__Foo--Bar__" -> "__foo__bar". It reproduces the
	// names of resource files generated by the older converter script.
	NameStyleLegacy NameStyle = "legacy"
)

// ParseNameStyle validates a style name. The empty string selects compact.
func ParseNameStyle(s string) (NameStyle, error) {
	switch NameStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "", NameStyleCompact:
		return NameStyleCompact, nil
	case NameStyleLegacy:
		return NameStyleLegacy, nil
	}
	return "", fmt.Errorf("unknown name style %q (valid: compact, legacy)", s)
}

// lower applies full Unicode lowercasing, so "İ" becomes "i̇" (two runes)
// rather than a single "i".
var lower = cases.Lower(language.Und)

// Sanitize turns an arbitrary key into the body of a resource name: only
// [a-z0-9_] remain. Sanitize is idempotent for both styles.
func Sanitize(key string, style NameStyle) string {
	key = lower.String(key)

	var b strings.Builder
	b.Grow(len(key))
	sep := false
	for _, r := range key {
		switch {
		case isNameRune(r):
			b.WriteRune(r)
			sep = false
		case style == NameStyleLegacy:
			b.WriteByte('_')
		case !sep && b.Len() > 0:
			b.WriteByte('_')
			sep = true
		}
	}

	body := b.String()
	if style == NameStyleLegacy {
		return strings.TrimRight(body, "_")
	}
	return strings.Trim(body, "_")
}

// ResourceName returns prefix + Sanitize(key). The second result is false
// when the key has no usable characters and would produce a bare prefix.
func ResourceName(prefix, key string, style NameStyle) (string, bool) {
	body := Sanitize(key, style)
	if body == "" {
		return "", false
	}
	return prefix + body, true
}

// ValidName reports whether name is prefix followed by a non-empty
// [a-z0-9_] body without a trailing underscore.
func ValidName(prefix, name string) bool {
	body, ok := strings.CutPrefix(name, prefix)
	if !ok || body == "" || strings.HasSuffix(body, "_") {
		return false
	}
	for _, r := range body {
		if !isNameRune(r) && r != '_' {
			return false
		}
	}
	return true
}

// ValidPrefix reports whether p can start a resource name: a lowercase
// letter followed by [a-z0-9_].
func ValidPrefix(p string) bool {
	if p == "" || p[0] < 'a' || p[0] > 'z' {
		return false
	}
	for _, r := range p {
		if !isNameRune(r) && r != '_' {
			return false
		}
	}
	return true
}

func isNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
