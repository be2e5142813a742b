package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// ErrMalformed is returned when a ciphertext cannot be decoded or opened.
var ErrMalformed = errors.New("malformed ciphertext")

// Cipher encrypts and decrypts short strings at rest.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Noop passes values through without encryption (dev/test mode).
type Noop struct{}

func (Noop) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (Noop) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

// keySalt is fixed so the same passphrase always yields the same key.
var keySalt = []byte("placeboard/session/v1")

const (
	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 2
	keyLen       = 32
)

// AESGCM is an authenticated cipher; ciphertext is hex(nonce || sealed).
type AESGCM struct {
	gcm cipher.AEAD
}

// NewAESGCM derives a 256-bit key from passphrase with Argon2id.
func NewAESGCM(passphrase string) (*AESGCM, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase must not be empty")
	}
	return NewAESGCMWithKey(argon2.IDKey([]byte(passphrase), keySalt, argonTime, argonMemory, argonThreads, keyLen))
}

// NewAESGCMWithKey builds the cipher from raw key bytes (16, 24 or 32 long).
func NewAESGCMWithKey(key []byte) (*AESGCM, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCM{gcm: gcm}, nil
}

func (c *AESGCM) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

func (c *AESGCM) Decrypt(ciphertext string) (string, error) {
	buffer, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(buffer) < nonceSize+c.gcm.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrMalformed)
	}

	nonce, sealed := buffer[:nonceSize], buffer[nonceSize:]
	plain, err := c.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return string(plain), nil
}
