// Package verification issues and checks the one-time codes mailed for email verification and password resets.
package verification

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/dchest/uniuri"

	"properly.homes/backend/internal/constant"
)

var digits = []byte("0123456789")

// NewCode returns a random numeric code.
func NewCode() string {
	return uniuri.NewLenChars(constant.VerificationCodeDigit, digits)
}

func Hash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Matches compares a submitted code to a stored hash in constant time.
func Matches(code, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(code)), []byte(hash)) == 1
}
