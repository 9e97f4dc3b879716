// Package secret seals API keys in the config file with a 4-digit PIN.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32 // AES-256
	iterations = 100000
)

var (
	ErrInvalidPIN = errors.New("PIN must be exactly 4 digits")
	// ErrWrongPIN is returned when the PIN does not open the sealed value.
	ErrWrongPIN    = errors.New("cannot decrypt API key: wrong PIN or corrupted data")
	ErrInvalidData = errors.New("invalid encrypted data format")
	pinPattern     = regexp.MustCompile(`^\d{4}$`)
)

// ValidatePIN checks if the PIN is exactly 4 digits.
func ValidatePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPIN
	}
	return nil
}

func gcmFor(pin string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(pin), salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-256-GCM under a PIN-derived key and
// returns base64(salt | nonce | ciphertext).
func Seal(plaintext, pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}

	buf := make([]byte, saltSize+nonceSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	salt, nonce := buf[:saltSize], buf[saltSize:]

	gcm, err := gcmFor(pin, salt)
	if err != nil {
		return "", err
	}

	sealed := gcm.Seal(buf, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func Open(sealed, pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidData
	}
	// GCM appends a 16-byte tag.
	if len(data) < saltSize+nonceSize+16 {
		return "", ErrInvalidData
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+nonceSize]

	gcm, err := gcmFor(pin, salt)
	if err != nil {
		return "", err
	}
	plaintext, err := gcm.Open(nil, nonce, data[saltSize+nonceSize:], nil)
	if err != nil {
		return "", ErrWrongPIN
	}
	return string(plaintext), nil
}

// Resolve returns plain when set, otherwise opens sealed with pin.
// Both empty yields "", nil.
func Resolve(plain, sealed, pin string) (string, error) {
	if plain != "" || sealed == "" {
		return plain, nil
	}
	if pin == "" {
		return "", errors.New("API key is encrypted; pass --pin or set VSUM_PIN")
	}
	return Open(sealed, pin)
}
