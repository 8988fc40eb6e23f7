package auth

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// CodeBytes is the entropy of a confirmation code; the text form is twice as long.
const CodeBytes = 6

// dummyHash is compared against when the user has no code so a miss costs
// the same as a mismatch.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e"

// GenerateCode returns a fresh random hex confirmation code.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashCode creates a bcrypt hash from the given plaintext code.
func HashCode(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyCode reports whether code matches the stored hash. A nil hash never matches.
func VerifyCode(hashed *string, code string) bool {
	if hashed == nil {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(code))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hashed), []byte(code)) == nil
}
