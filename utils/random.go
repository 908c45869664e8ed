// utils/random.go
package utils

import (
	"crypto/rand"
	"math/big"
	"time"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O/1/I

// GenerateRandomString returns n characters from an unambiguous alphabet
func GenerateRandomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			panic("failed to read random source")
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b)
}

// GenerateBookingCode builds the customer-facing reservation code,
// e.g. BK-20250901-X7Q2MD
func GenerateBookingCode(date time.Time) string {
	return "BK-" + date.Format("20060102") + "-" + GenerateRandomString(6)
}
