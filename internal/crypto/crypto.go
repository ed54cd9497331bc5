// Package crypto seals secrets kept on disk, such as the judge API key,
// with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrCiphertextTooShort is returned when sealed data is shorter than a nonce.
var ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")

// Sealer encrypts and decrypts short strings with a fixed 32-byte key.
type Sealer struct {
	key []byte
}

// NewSealer creates a Sealer from a 32-byte hex-encoded key.
func NewSealer(keyHex string) (*Sealer, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, errors.New("crypto: SETTINGS_KEY must be hex-encoded")
	}
	if len(key) != 32 {
		return nil, errors.New("crypto: SETTINGS_KEY must be 32 bytes (64 hex chars)")
	}
	return &Sealer{key: key}, nil
}

// GenerateKey returns a random hex-encoded key accepted by NewSealer.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// Seal encrypts plaintext and returns it base64 encoded. An empty plaintext
// seals to an empty string.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	data, err := encrypt(s.key, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("crypto: seal: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("crypto: open: %w", err)
	}
	plaintext, err := decrypt(s.key, data)
	if err != nil {
		return "", fmt.Errorf("crypto: open: %w", err)
	}
	return string(plaintext), nil
}

// encrypt performs AES-256-GCM encryption. Output format: [nonce(12) | ciphertext+tag].
func encrypt(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt expects [nonce(12) | ciphertext+tag].
func decrypt(key, data []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
