// Package subtle implements the raw cryptographic operations behind the
// key managers: AES-GCM, HMAC, ECDSA, Ed25519, HKDF derivation, and the
// ECIES sender KEM. Nothing here knows about keysets or prefixes; key
// validation is limited to cryptographic parameters.
package subtle

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// AESGCM is an AEAD backed by AES in GCM mode. Ciphertexts carry the
// nonce prepended: [nonce | encrypted | tag].
type AESGCM struct {
	key []byte
}

// NewAESGCM creates an AESGCM for a 128- or 256-bit key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != 16 && len(key) != 32 {
		return nil, fmt.Errorf("invalid AES key size %d (want 16 or 32)", len(key))
	}
	return &AESGCM{key: key}, nil
}

func (a *AESGCM) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	gcm, err := a.newGCM()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, associatedData), nil
}

func (a *AESGCM) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	gcm, err := a.newGCM()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ct := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ct, associatedData)
	if err != nil {
		return nil, fmt.Errorf("aes gcm decrypt: %w", err)
	}
	return plaintext, nil
}

func (a *AESGCM) newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(a.key)
	if err != nil {
		return nil, fmt.Errorf("aes new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("aes gcm: %w", err)
	}
	return gcm, nil
}

// GenerateAESKey generates a random AES key of the given byte size.
func GenerateAESKey(size int) ([]byte, error) {
	if size != 16 && size != 32 {
		return nil, fmt.Errorf("invalid AES key size %d (want 16 or 32)", size)
	}
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate aes key: %w", err)
	}
	return key, nil
}
