package util

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateNumericOTP returns a code of the requested number of digits, each
// digit drawn independently from crypto/rand. Non-positive lengths fall
// back to 4 digits.
func GenerateNumericOTP(digits int) (string, error) {
	if digits <= 0 {
		digits = 4
	}
	var builder strings.Builder
	builder.Grow(digits)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		builder.WriteByte(byte('0' + n.Int64()))
	}
	return builder.String(), nil
}
