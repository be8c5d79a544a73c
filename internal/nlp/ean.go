package nlp

// ValidEAN reports whether code is a structurally valid EAN-8, UPC-A, EAN-13
// or GTIN-14 code: all digits, a valid length, and a correct check digit.
func ValidEAN(code string) bool {
	switch len(code) {
	case 8, 12, 13, 14:
	default:
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}

	// Weights 3 and 1 alternate from the rightmost payload digit.
	total := 0
	payload := code[:len(code)-1]
	for i := 0; i < len(payload); i++ {
		digit := int(payload[len(payload)-1-i] - '0')
		if i%2 == 0 {
			total += digit * 3
		} else {
			total += digit
		}
	}
	check := (10 - total%10) % 10
	return check == int(code[len(code)-1]-'0')
}
