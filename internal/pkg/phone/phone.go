// Package phone turns user-typed phone numbers into the canonical digit-only
// key used for OTP, rate limiting and account lookup.
package phone

import "strings"

// Normalize keeps only ASCII digits from raw. A leading "+" and any
// separators (spaces, dashes, parentheses) are dropped. Applying it twice
// yields the same result.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Key builds the lookup key for a phone entered together with a country
// calling code. Input written in international form ("+998 ..." or
// "00998 ...") already carries its code and is only normalized; anything
// else is a local number and always gets the code in front. The decision is
// made on the raw text because a local number may itself begin with the
// code's digits.
func Key(raw, countryCode string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "+") {
		return Normalize(trimmed)
	}
	if strings.HasPrefix(trimmed, "00") {
		return Normalize(trimmed[2:])
	}

	key := Normalize(trimmed)
	if key == "" {
		return ""
	}
	return Normalize(countryCode) + key
}
