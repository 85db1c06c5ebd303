package validate

import (
	"strings"
	"unicode"
)

// Slugify lower-cases s, drops everything except letters a-z, digits, whitespace and
// hyphens, turns whitespace runs into single hyphens and trims hyphens from both ends.
// The result is either empty or matches the slug pattern.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			dash = true
		}
	}
	return b.String()
}

// IsSlug reports whether s is already a normalized slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// IsSettingKey reports whether s is a valid setting key.
func IsSettingKey(s string) bool {
	return settingKeyPattern.MatchString(s)
}

// OptionalString trims s and maps the empty string to nil.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// NullIfEmpty is OptionalString for values that are already pointers.
func NullIfEmpty(p *string) *string {
	if p == nil {
		return nil
	}
	return OptionalString(*p)
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Deref returns the pointed-to string or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
