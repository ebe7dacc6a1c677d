package rtlify

import (
	"strings"
	"unicode"
)

// SplitWhitespace separates s into its leading whitespace, stripped core and
// trailing whitespace. When s holds nothing but whitespace all three results
// are empty and the string is not translatable.
//
// Internal whitespace is left inside core, and leading+core+trailing == s for
// every s with a non-empty core.
func SplitWhitespace(s string) (leading, core, trailing string) {
	core = strings.TrimFunc(s, unicode.IsSpace)
	if core == "" {
		return "", "", ""
	}
	start := len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
	end := start + len(core)
	return s[:start], core, s[end:]
}
