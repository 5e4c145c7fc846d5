package counters

import (
	"strconv"
	"strings"
)

// Format renders value in the given list-style-type. Unknown styles and
// values a style cannot represent fall back to decimal.
func Format(value int, style string) string {
	switch strings.ToLower(style) {
	case "", "decimal":
		return strconv.Itoa(value)
	case "decimal-leading-zero":
		if value < 0 {
			return "-" + leadingZero(-value)
		}
		return leadingZero(value)
	case "lower-roman":
		return strings.ToLower(roman(value))
	case "upper-roman":
		return roman(value)
	case "lower-alpha", "lower-latin":
		return alphabetic(value, latin)
	case "upper-alpha", "upper-latin":
		return strings.ToUpper(alphabetic(value, latin))
	case "lower-greek":
		return alphabetic(value, greek)
	case "disc":
		return "•"
	case "circle":
		return "◦"
	case "square":
		return "▪"
	case "none":
		return ""
	}
	return strconv.Itoa(value)
}

// IsKnownStyle reports whether style is one of the supported list styles.
func IsKnownStyle(style string) bool {
	switch strings.ToLower(style) {
	case "decimal", "decimal-leading-zero", "lower-roman", "upper-roman",
		"lower-alpha", "lower-latin", "upper-alpha", "upper-latin",
		"lower-greek", "disc", "circle", "square", "none":
		return true
	}
	return false
}

func leadingZero(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// roman renders 1..3999; other values are decimal.
func roman(v int) string {
	if v < 1 || v > 3999 {
		return strconv.Itoa(v)
	}
	var sb strings.Builder
	for _, r := range romanTable {
		for v >= r.value {
			sb.WriteString(r.symbol)
			v -= r.value
		}
	}
	return sb.String()
}

var (
	latin = []rune("abcdefghijklmnopqrstuvwxyz")
	greek = []rune("αβγδεζηθικλμνξοπρστυφχψω")
)

// alphabetic is bijective base-n numbering: a..z, aa, ab... Values below 1
// are decimal.
func alphabetic(v int, digits []rune) string {
	if v < 1 {
		return strconv.Itoa(v)
	}
	n := len(digits)
	var out []rune
	for v > 0 {
		v--
		out = append([]rune{digits[v%n]}, out...)
		v /= n
	}
	return string(out)
}
