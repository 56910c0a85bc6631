package utils

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts a CamelCase identifier to snake_case. Runs of capitals
// stay together, so "LFO" becomes "lfo" and "FxShareSet" becomes "fx_share_set".
func ToSnakeCase(s string) string {
	runes := []rune(s)

	var result strings.Builder
	result.Grow(len(s) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}

	return result.String()
}
