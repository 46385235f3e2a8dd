// Package phone normalizes Brazilian phone numbers for directory lookups.
package phone

import "strings"

// CountryPrefix is Brazil's international dialing code.
const CountryPrefix = "55"

// Digits strips every non-digit character.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize converts a raw phone number to the canonical stored form:
// digits only, no leading trunk zero, always carrying the 55 country prefix.
func Normalize(raw string) string {
	n := Digits(raw)
	n = strings.TrimPrefix(n, "0")
	if n == "" {
		return ""
	}
	if !strings.HasPrefix(n, CountryPrefix) {
		n = CountryPrefix + n
	}
	return n
}

// TogglePrefix adds the 55 prefix when absent and removes it when present.
// Directory records predating normalization were stored both ways, so a
// missed lookup is retried once with the toggled form.
func TogglePrefix(normalized string) string {
	if strings.HasPrefix(normalized, CountryPrefix) {
		return strings.TrimPrefix(normalized, CountryPrefix)
	}
	return CountryPrefix + normalized
}
