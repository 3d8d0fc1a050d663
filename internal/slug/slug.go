package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var reSlug = regexp.MustCompile(`^[a-z0-9_]{2,40}$`)

const maxLen = 40

// IsSlug reports whether s is a valid account id: ^[a-z0-9_]{2,40}$
func IsSlug(s string) bool {
	return reSlug.MatchString(s)
}

// fold strips diacritics so "Salário" and "Salario" produce the same id.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify derives an account id from a display name: accents folded, lowercased,
// anything outside [a-z0-9_] collapsed to a single '_', trimmed to 40 runes.
func Slugify(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	sep := false
	n := 0
	for _, r := range strings.ToLower(fold(s)) {
		if n >= maxLen {
			break
		}
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !ok {
			if !sep && n > 0 {
				b.WriteByte('_')
				n++
			}
			sep = true
			continue
		}
		b.WriteRune(r)
		n++
		sep = false
	}
	return strings.TrimRight(b.String(), "_")
}
