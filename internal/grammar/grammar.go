// Package grammar holds the character-level grammar shared by field parsing
// and locator parsing, so the two can never drift apart.
package grammar

// IsTag reports whether s is a valid field tag: three digits followed by an
// uppercase letter or '@'.
func IsTag(s string) bool {
	if len(s) != 4 {
		return false
	}

	for i := 0; i < 3; i++ {
		if !isDigit(s[i]) {
			return false
		}
	}

	return (s[3] >= 'A' && s[3] <= 'Z') || s[3] == '@'
}

// IsOccurrence reports whether s is a valid occurrence: exactly two digits.
// "00" is ordinary data, not a sentinel.
func IsOccurrence(s string) bool {
	return len(s) == 2 && isDigit(s[0]) && isDigit(s[1])
}

// IsSubfieldCode reports whether c is a valid one-character subfield code.
func IsSubfieldCode(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
