package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for new hashes
var BcryptCost = 12

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword verifies password against hashedPassword in constant time
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// BurnPasswordCheck spends one bcrypt verify against a throwaway hash.
// Called when no account matches so a missing user costs the same as a wrong password.
func BurnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gradebook-dummy-password"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
