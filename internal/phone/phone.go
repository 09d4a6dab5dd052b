// Package phone normalizes phone numbers to the form stored in the leads
// table and formats them for display.
package phone

import "strings"

// Canonical reduces s to the stored search form regardless of how it was
// typed. Ten digits become "555-123-4567", seven become "123-4567" and a
// leading country code 1 is dropped from eleven digits. Any other digit
// count is returned as the bare digits.
func Canonical(s string) string {
	digits := Digits(s)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	switch len(digits) {
	case 10:
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	case 7:
		return digits[:3] + "-" + digits[3:]
	default:
		return digits
	}
}

// Digits returns only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Display renders an area code and local number as "(555) 123-4567".
// A missing area code yields just the number.
func Display(area, number string) string {
	area = strings.TrimSpace(area)
	number = strings.TrimSpace(number)
	switch {
	case area == "" && number == "":
		return ""
	case area == "":
		return number
	case number == "":
		return "(" + area + ")"
	}
	return "(" + area + ") " + number
}

// Pretty formats a stored phone for display. A canonical ten digit number
// already carries its area code, so the separate area column is ignored.
func Pretty(area, number string) string {
	if d := Digits(number); len(d) == 10 {
		return Display(d[:3], d[3:6]+"-"+d[6:])
	}
	return Display(area, number)
}
