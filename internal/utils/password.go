package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a member's password. The cost comes from
// BCRYPT_COST so production strength and fast test hashing share one code
// path.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
