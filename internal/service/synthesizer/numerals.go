package synthesizer

import (
	"regexp"
	"strings"
)

// Zero-digit code points of the Indic scripts the assistant replies in.
// Each script encodes its digits as a contiguous run starting at zero.
var indicZeroPoints = []rune{
	0x0966, // Devanagari
	0x09E6, // Bengali
	0x0A66, // Gurmukhi
	0x0AE6, // Gujarati
	0x0B66, // Odia
	0x0BE6, // Tamil
	0x0C66, // Telugu
	0x0CE6, // Kannada
	0x0D66, // Malayalam
}

// TransliterateDigits rewrites every native-script digit to its Latin
// equivalent. Idempotent: Latin digits pass through untouched.
func TransliterateDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(latinDigit(r))
	}
	return b.String()
}

func latinDigit(r rune) rune {
	for _, zero := range indicZeroPoints {
		if r >= zero && r <= zero+9 {
			return '0' + (r - zero)
		}
	}
	return r
}

var rupeeAmountPattern = regexp.MustCompile(`₹\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)

// NormalizeRupeeAmounts enforces the numeral invariant on generated
// text: every rupee amount appears in Latin numerals with Indian-style
// grouping (₹1,200 / ₹1,00,000), whatever script the model produced.
func NormalizeRupeeAmounts(text string) string {
	latin := TransliterateDigits(text)
	return rupeeAmountPattern.ReplaceAllStringFunc(latin, func(match string) string {
		amount := strings.TrimSpace(strings.TrimPrefix(match, "₹"))
		return "₹" + regroupIndian(amount)
	})
}

// FormatRupees renders a non-negative amount as ₹ with Indian grouping.
// Whole amounts drop the paise part.
func FormatRupees(v float64) string {
	if v < 0 {
		v = 0
	}
	whole := int64(v)
	frac := v - float64(whole)

	s := formatInt(whole)
	if frac >= 0.005 {
		paise := int64(frac*100 + 0.5)
		if paise >= 100 {
			whole++
			s = formatInt(whole)
		} else {
			return "₹" + regroupIndian(s) + "." + pad2(paise)
		}
	}
	return "₹" + regroupIndian(s)
}

func formatInt(v int64) string {
	var digits []byte
	if v == 0 {
		return "0"
	}
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + formatInt(v)
	}
	return formatInt(v)
}

// regroupIndian re-separates a plain or comma-separated digit string
// into Indian grouping: the last three digits, then pairs.
func regroupIndian(amount string) string {
	intPart := amount
	fracPart := ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		intPart, fracPart = amount[:i], amount[i:]
	}
	intPart = strings.ReplaceAll(intPart, ",", "")

	if len(intPart) <= 3 {
		return intPart + fracPart
	}

	head := intPart[:len(intPart)-3]
	tail := intPart[len(intPart)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail + fracPart
}
