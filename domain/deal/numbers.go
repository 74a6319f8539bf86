package deal

import (
	"math"
	"regexp"
	"unicode"
)

var digitRun = regexp.MustCompile(`\p{Nd}+`)

// Numbers returns every maximal run of decimal digits in msg as an integer.
// Digits of any script are understood, so Persian and Latin digits read
// alike. Runs too large for int64 are skipped.
func Numbers(msg string) []int64 {
	var out []int64
	for _, run := range digitRun.FindAllString(msg, -1) {
		if n, ok := parseRun(run); ok {
			out = append(out, n)
		}
	}
	return out
}

func parseRun(run string) (int64, bool) {
	var n int64
	for _, r := range run {
		d, ok := digitValue(r)
		if !ok {
			return 0, false
		}
		if n > (math.MaxInt64-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, true
}

// digitValue reads a decimal digit of any script. Unicode encodes each
// script's digits as a contiguous run starting at zero, and unicode.Nd
// ranges are made of whole runs.
func digitValue(r rune) (int64, bool) {
	if r >= '0' && r <= '9' {
		return int64(r - '0'), true
	}
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int64(r-lo) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int64(r-lo) % 10, true
		}
	}
	return 0, false
}
