package solana

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTokenAmount converts a decimal string amount into integer base units
// for a token with the given number of decimals ("1.5" with 4 decimals is
// 15000). The conversion is exact: fractional digits beyond the token's
// declared decimals are rejected rather than rounded (trailing zeros are
// fine), as are zero, negative, and malformed inputs, and anything that
// overflows uint64.
func ParseTokenAmount(amount string, decimals uint8) (uint64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: amount must be positive, got %q", ErrInvalidAmount, amount)
	}
	s = strings.TrimPrefix(s, "+")

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, amount)
	}

	// More fractional digits than the token supports loses precision
	// unless they are all zeros.
	if len(fracPart) > int(decimals) {
		extra := fracPart[decimals:]
		if strings.Trim(extra, "0") != "" {
			return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, amount, decimals)
		}
		fracPart = fracPart[:decimals]
	}

	// Scale by 10^decimals: pad the fractional part and concatenate.
	digits := intPart + fracPart + strings.Repeat("0", int(decimals)-len(fracPart))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}

	units, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q overflows 64-bit base units", ErrInvalidAmount, amount)
	}
	return units, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
