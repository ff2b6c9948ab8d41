package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// ErrCiphertextTooShort is returned when a sealed blob is shorter than a nonce.
var ErrCiphertextTooShort = errors.New("cryptox: ciphertext too short")

// Sealer encrypts small blobs (enrollment records, backend tokens) with
// AES-256-GCM. The data key is derived from operator key material with HKDF
// so the raw master key never touches the cipher.
//
// Sealed layout: [12-byte nonce][ciphertext][16-byte tag].
type Sealer struct {
	aead cipher.AEAD
}

// sealInfo separates this key from any other derived from the same material.
const sealInfo = "ifrs-console/client-state/v1"

// NewSealer derives an AES-256 key from material using HKDF-SHA256.
func NewSealer(material []byte) (*Sealer, error) {
	if len(material) == 0 {
		return nil, errors.New("cryptox: empty key material")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, material, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive sealing key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// LoadKeyMaterial reads master key material from path, falling back to the
// named environment variable. When both are empty an ephemeral random key is
// returned and ephemeral is true; data sealed with it will not survive a
// restart.
func LoadKeyMaterial(path, envVar string) (material []byte, ephemeral bool, err error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read master key file: %w", err)
		}
		return []byte(strings.TrimSpace(string(data))), false, nil
	}

	if v := os.Getenv(envVar); v != "" {
		return []byte(v), false, nil
	}

	material = make([]byte, 32)
	if _, err := rand.Read(material); err != nil {
		return nil, false, fmt.Errorf("failed to generate ephemeral master key: %w", err)
	}
	return material, true, nil
}

// Seal encrypts plaintext. aad is authenticated but not encrypted; callers
// bind a blob to its storage key so rows cannot be swapped between users.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open reverses Seal. The same aad must be supplied.
func (s *Sealer) Open(sealed, aad []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextTooShort
	}

	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], aad)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}
