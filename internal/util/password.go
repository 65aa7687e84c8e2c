package util

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength   = 16
	hashLength   = 32
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4

	minPasswordLength = 6
)

func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 6 characters long")
	}
	return nil
}

// HashValue derives an argon2id digest for a secret. It is used for both
// account passwords and one-time passcodes; only the digest is stored.
func HashValue(value string, salt []byte) ([]byte, error) {
	if len(value) == 0 {
		return nil, errors.New("value cannot be empty")
	}
	if len(salt) == 0 {
		return nil, errors.New("salt cannot be empty")
	}
	hash := argon2.IDKey([]byte(value), salt, argonTime, argonMemory, argonThreads, hashLength)
	return hash, nil
}

func DeriveValue(value string) (hash, salt []byte, err error) {
	salt, err = GenerateSalt()
	if err != nil {
		return nil, nil, err
	}
	hash, err = HashValue(value, salt)
	if err != nil {
		return nil, nil, err
	}
	return hash, salt, nil
}

func VerifyValue(value string, salt, expectedHash []byte) bool {
	if len(value) == 0 || len(salt) == 0 || len(expectedHash) == 0 {
		return false
	}
	candidate, err := HashValue(value, salt)
	if err != nil {
		return false
	}
	if len(candidate) != len(expectedHash) {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, expectedHash) == 1
}
