package utils // utils provides small helpers shared across the service

import "golang.org/x/crypto/bcrypt"

// MinPasswordLen is the minimum accepted password length, enforced at
// registration and password change.
const MinPasswordLen = 6

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
