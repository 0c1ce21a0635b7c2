package domain

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SetPassword hashes and stores the password.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// CheckPassword reports whether password matches. Rows written before hashing
// was introduced hold the plaintext; those still match once and report
// needsRehash so the caller can upgrade the row.
func (u *User) CheckPassword(password string) (ok bool, needsRehash bool) {
	if u.PasswordHash == "" {
		return false, false
	}
	if !IsPasswordHash(u.PasswordHash) {
		match := subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(password)) == 1
		return match, match
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil, false
}

func IsPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") ||
		strings.HasPrefix(value, "$2b$") ||
		strings.HasPrefix(value, "$2y$")
}
