package email

import (
	"strings"
	"unicode"
)

// Normalize trims and lowercases an address so lookups are case-insensitive.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValid performs a shallow shape check: one '@' with a non-empty local part
// and a dotted domain.
func IsValid(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1 && !strings.ContainsAny(email, " \t\r\n")
}

// DeriveNameFromEmail builds a display name from the local part,
// e.g. "jane.doe@example.com" becomes "Jane Doe".
func DeriveNameFromEmail(email string) string {
	parts := localParts(email)
	if len(parts) == 0 {
		return "Incognito"
	}
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

// SlugBase builds a lowercase, dash-separated slug candidate from the local part.
func SlugBase(email string) string {
	parts := localParts(email)
	var cleaned []string
	for _, p := range parts {
		var b strings.Builder
		for _, r := range strings.ToLower(p) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			cleaned = append(cleaned, b.String())
		}
	}
	if len(cleaned) == 0 {
		return "user"
	}
	return strings.Join(cleaned, "-")
}

func localParts(email string) []string {
	localPart := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		localPart = email[:at]
	}
	return strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
