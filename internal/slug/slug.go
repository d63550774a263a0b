// Package slug turns titles into URL path segments.
//
// A slug is computed once when a post or album is written and stored in its
// own uniquely indexed column. Lookups by slug are plain indexed queries.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented letters and drops the combining marks,
// so "Đà Nẵng" becomes "Đa Nang" before the ASCII pass.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Make returns the slug for title.
//
// Letters lose their diacritics and are lowercased. Runs of whitespace,
// hyphens and underscores collapse into a single '-'. Every other character
// outside [a-z0-9] is dropped, so "Don't Panic!" becomes "dont-panic".
// The result never starts or ends with '-' and may be empty.
func Make(title string) string {
	s := strings.ToLower(stripMarks(strings.TrimSpace(title)))

	var b strings.Builder
	b.Grow(len(s))
	sep := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			sep = false
		case r == 'đ':
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteByte('d')
			sep = false
		case unicode.IsSpace(r), r == '-', r == '_':
			sep = true
		}
	}
	return b.String()
}

// MakeOr is Make with a fallback for titles that contain no usable characters.
func MakeOr(title, fallback string) string {
	if s := Make(title); s != "" {
		return s
	}
	return fallback
}

// WithSuffix returns the n-th candidate for base: base itself for n <= 1,
// otherwise "base-n".
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
