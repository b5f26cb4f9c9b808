package engine

import (
	"strings"
	"unicode"
)

// MaxContribution caps what a player may send in one round.
const MaxContribution = 100

// ClampContribution forces n into [0, MaxContribution].
func ClampContribution(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxContribution {
		return MaxContribution
	}
	return n
}

// SanitizeContribution turns free-form player input into a valid amount.
// It reads an optional sign and the leading run of digits, ignoring anything
// after them, so "42 tokens" is 42 and "3.9" is 3. Input without leading
// digits is 0. The result is clamped to [0, MaxContribution].
func SanitizeContribution(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		digits++
		if n <= MaxContribution {
			n = n*10 + int(r-'0')
		}
	}

	if digits == 0 || negative {
		return 0
	}
	return ClampContribution(n)
}
