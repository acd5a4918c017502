package subtle

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a key from root key material using HKDF-SHA256.
// info provides domain separation; length is the output size in bytes.
func DeriveKey(rootKey, salt, info []byte, length int) ([]byte, error) {
	if length <= 0 || length > 64 {
		return nil, fmt.Errorf("invalid derived key length: %d (must be 1-64)", length)
	}

	r := hkdf.New(sha256.New, rootKey, salt, info)
	derived := make([]byte, length)
	if _, err := io.ReadFull(r, derived); err != nil {
		return nil, fmt.Errorf("hkdf derive: %w", err)
	}
	return derived, nil
}

// ComputeECIESHKDFSymmetricKey derives the ECIES symmetric key from the
// encapsulated key bytes and the ECDH shared secret. The input keying
// material is the concatenation kemBytes || sharedSecret, binding the
// derived key to the ephemeral public key on the wire.
func ComputeECIESHKDFSymmetricKey(kemBytes, sharedSecret, salt, info []byte, keySize int) ([]byte, error) {
	ikm := make([]byte, 0, len(kemBytes)+len(sharedSecret))
	ikm = append(ikm, kemBytes...)
	ikm = append(ikm, sharedSecret...)
	return DeriveKey(ikm, salt, info, keySize)
}
