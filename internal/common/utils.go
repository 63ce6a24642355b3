package common

import (
	"crypto/rand"
	"math/big"
)

// GenerateDigits returns n random decimal digits from crypto/rand.
func GenerateDigits(n int) (string, error) {
	b := make([]byte, n)
	ten := big.NewInt(10)
	for i := range b {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b[i] = byte('0' + d.Int64())
	}
	return string(b), nil
}

// WipeByteArray zeroes b in place; nil is allowed. Use it on password
// buffers once they have been copied into a request.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
