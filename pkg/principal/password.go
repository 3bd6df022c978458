package principal

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Join(ErrFailedToHash, err)
	}
	return string(hash), nil
}

// dummyHash is compared on lookup misses so that unknown emails cost a bcrypt round too.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("bizdesk"), bcrypt.DefaultCost)

func comparePassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
