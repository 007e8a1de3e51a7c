package templates

import "strings"

// Indian numbering scale words for amounts rendered into legal
// documents: ones/tens/hundred/thousand/lakh/crore.

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords spells a non-negative integer amount on the Indian
// scale, composing magnitude words recursively:
//
//	AmountInWords(500000) = "Five Lakh"
//	AmountInWords(12345)  = "Twelve Thousand Three Hundred Forty Five"
func AmountInWords(n int64) string {
	if n == 0 {
		return "Zero"
	}
	if n < 0 {
		return "Minus " + AmountInWords(-n)
	}
	return strings.Join(compose(n), " ")
}

func compose(n int64) []string {
	switch {
	case n >= 1_00_00_000: // crore
		return appendScale(n, 1_00_00_000, "Crore")
	case n >= 1_00_000: // lakh
		return appendScale(n, 1_00_000, "Lakh")
	case n >= 1_000:
		return appendScale(n, 1_000, "Thousand")
	case n >= 100:
		return appendScale(n, 100, "Hundred")
	case n >= 20:
		words := []string{tensWords[n/10]}
		if rem := n % 10; rem > 0 {
			words = append(words, onesWords[rem])
		}
		return words
	default:
		return []string{onesWords[n]}
	}
}

func appendScale(n, unit int64, name string) []string {
	words := append(compose(n/unit), name)
	if rem := n % unit; rem > 0 {
		words = append(words, compose(rem)...)
	}
	return words
}
