package card

import (
	"fmt"
	"strings"
)

// ValidLuhn reports whether the digit string carries a valid Luhn check digit.
func ValidLuhn(pan string) bool {
	if len(pan) < 2 || !IsDigits(pan) {
		return false
	}
	body := pan[:len(pan)-1]
	return luhnCheckDigit(body) == pan[len(pan)-1]
}

func luhnCheckDigit(body string) byte {
	sum, dbl := 0, true
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return '0' + byte((10-(sum%10))%10)
}

func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizePAN strips spaces, tabs and dashes.
func NormalizePAN(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-':
			return -1
		default:
			return r
		}
	}, s)
}

// MaskPAN keeps the BIN and the last four digits of long numbers.
func MaskPAN(pan string) string {
	cleaned := NormalizePAN(pan)
	n := len(cleaned)
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	if n < 10 {
		return strings.Repeat("*", n-4) + cleaned[n-4:]
	}
	return cleaned[:6] + strings.Repeat("*", n-10) + cleaned[n-4:]
}

// ExpirationDate formats a card expiry the way the processor expects: YYYY/MM.
func ExpirationDate(month, year int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("expiry month must be 1..12")
	}
	if year < 100 {
		year += 2000
	}
	if year < 2000 || year > 9999 {
		return "", fmt.Errorf("expiry year out of range")
	}
	return fmt.Sprintf("%04d/%02d", year, month), nil
}
