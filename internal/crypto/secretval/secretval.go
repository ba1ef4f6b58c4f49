// Package secretval encrypts secret values at rest.
//
// The wire format is "ivhex:cipherhex": a random 16-byte IV per value,
// AES-256-CBC with PKCS#7 padding. The format is shared with the previous
// generation of the service, so stored values stay readable across the
// rewrite.
package secretval

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const keySize = 32 // AES-256

var (
	// ErrInvalidKey indicates the encryption key is not 32 bytes of hex.
	ErrInvalidKey = errors.New("encryption key must be 64 hex characters (32 bytes)")

	// ErrMalformedValue indicates a stored value that does not parse as
	// "ivhex:cipherhex".
	ErrMalformedValue = errors.New("malformed encrypted value")
)

// Cipher encrypts and decrypts secret values with a fixed key. The key is an
// externally supplied secret; construction fails fast when it is absent or
// malformed so a misconfigured deployment cannot silently store plaintext.
type Cipher struct {
	key []byte
}

// New parses the hex-encoded key and returns a Cipher.
func New(hexKey string) (*Cipher, error) {
	if hexKey == "" {
		return nil, ErrInvalidKey
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != keySize {
		return nil, ErrInvalidKey
	}
	return &Cipher{key: key}, nil
}

// Encrypt returns "ivhex:cipherhex" for the given plaintext. The IV is random
// per call, so encrypting the same value twice yields different ciphertexts.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Values containing ':' in the plaintext round-trip
// fine: the delimiter only separates the two hex halves, plaintext bytes are
// never split on it.
func (c *Cipher) Decrypt(value string) (string, error) {
	ivHex, cipherHex, ok := strings.Cut(value, ":")
	if !ok {
		return "", ErrMalformedValue
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedValue
	}
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrMalformedValue
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padding)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padding)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrMalformedValue
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, ErrMalformedValue
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrMalformedValue
		}
	}
	return data[:len(data)-padding], nil
}
