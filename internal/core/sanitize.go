package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// SanitizeText strips every rune that is not a Unicode letter or whitespace
// and collapses runs of whitespace into a single space. Diacritics survive.
func SanitizeText(s string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return multiSpace.ReplaceAllString(kept, " ")
}

// SanitizeMoney is the legacy money sanitizer: it keeps digits, comma,
// period and hyphen, drops every hyphen except a leading one, and strips
// thousands separators (periods when a comma is present, commas otherwise).
func SanitizeMoney(s string) string {
	cleaned := keepMoneyRunes(s)
	hasComma := strings.Contains(cleaned, ",")

	var b strings.Builder
	for i, r := range cleaned {
		switch {
		case r == '-' && i != 0:
		case r == '.' && hasComma:
		case r == ',' && !hasComma:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCurrencyInput renders the digit sequence of s as a BRL currency
// string, reading the digits as a fixed-point amount in centavos.
// "123456" becomes "R$ 1.234,56". An input with no digits yields "".
// The arithmetic is done on the digit string itself, so amounts of any
// magnitude format exactly.
func FormatCurrencyInput(s string) string {
	digits := digitsOnly(s)
	if digits == "" {
		return ""
	}
	digits = strings.TrimLeft(digits, "0")
	for len(digits) < 3 {
		digits = "0" + digits
	}
	intPart := digits[:len(digits)-2]
	fracPart := digits[len(digits)-2:]
	return "R$ " + groupThousands(intPart) + "," + fracPart
}

// FormatBRL renders a numeric amount as a BRL currency string with two
// fraction digits, e.g. 1234.5 -> "R$ 1.234,50".
func FormatBRL(value float64) string {
	neg := value < 0 || math.Signbit(value)
	cents := int64(math.Round(math.Abs(value) * 100))
	digits := strconv.FormatInt(cents, 10)
	for len(digits) < 3 {
		digits = "0" + digits
	}
	out := "R$ " + groupThousands(digits[:len(digits)-2]) + "," + digits[len(digits)-2:]
	if neg && cents != 0 {
		return "-" + out
	}
	return out
}

// ToNumber parses a money display string into a float for arithmetic.
// When a comma is present, periods are treated as thousands separators and
// the first comma as the decimal point. Unparseable input yields 0, never
// an error: a half-typed amount must not break totals.
func ToNumber(s string) float64 {
	n, _ := parseAmount(s)
	return n
}

// parseAmount is ToNumber with an explicit success flag, used by the sort
// engine to push entries without a usable amount to the end of the list.
func parseAmount(s string) (float64, bool) {
	cleaned := keepMoneyRunes(s)
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}
	return parseFloatPrefix(cleaned)
}

// SanitizeDate masks free-typed input into a dd/mm/yyyy display string:
// non-digits are dropped, at most 8 digits are kept and slashes are
// re-inserted as the day and month become complete. The result is the
// left-to-right typable prefix, length 0 to 10.
func SanitizeDate(s string) string {
	digits := digitsOnly(s)
	if len(digits) > 8 {
		digits = digits[:8]
	}
	day := sliceDigits(digits, 0, 2)
	month := sliceDigits(digits, 2, 4)
	year := sliceDigits(digits, 4, 8)

	result := day
	if month != "" {
		result += "/" + month
	}
	if year != "" {
		result += "/" + year
	}
	return result
}

func keepMoneyRunes(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func sliceDigits(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

func groupThousands(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseFloatPrefix parses the longest leading substring of s that forms a
// plain decimal number, mirroring the leniency of a hand-typed field. An
// empty or sign-only prefix fails.
func parseFloatPrefix(s string) (float64, bool) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digitsBefore := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digitsBefore++
	}
	digitsAfter := 0
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			digitsAfter++
		}
		if digitsBefore > 0 || digitsAfter > 0 {
			i = j
		}
	}
	if digitsBefore == 0 && digitsAfter == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(s[:i], "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
