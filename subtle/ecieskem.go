package subtle

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// KEMKey is the pair of values produced by the sender side of the KEM:
// the encapsulated bytes shipped with the ciphertext and the symmetric
// key kept by the sender.
type KEMKey struct {
	KEMBytes     []byte
	SymmetricKey []byte
}

// ECIESSenderKEM is the sender side of an HKDF-based key encapsulation
// mechanism over an ECDH curve. Each call to Encapsulate generates a
// fresh ephemeral key pair, derives a shared secret against the
// recipient's public key, and stretches it through HKDF.
type ECIESSenderKEM struct {
	recipient *ecdh.PublicKey
}

// NewECIESSenderKEM creates a sender KEM for the given recipient public
// key.
func NewECIESSenderKEM(recipient *ecdh.PublicKey) (*ECIESSenderKEM, error) {
	if recipient == nil {
		return nil, fmt.Errorf("recipient public key must not be nil")
	}
	return &ECIESSenderKEM{recipient: recipient}, nil
}

// Encapsulate generates an ephemeral key pair on the recipient's curve
// and returns the encoded ephemeral public key together with the derived
// symmetric key of keySize bytes.
func (k *ECIESSenderKEM) Encapsulate(salt, info []byte, keySize int) (*KEMKey, error) {
	curve := k.recipient.Curve()
	ephemeral, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}

	sharedSecret, err := ephemeral.ECDH(k.recipient)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}

	kemBytes := ephemeral.PublicKey().Bytes()
	symmetricKey, err := ComputeECIESHKDFSymmetricKey(kemBytes, sharedSecret, salt, info, keySize)
	if err != nil {
		return nil, err
	}
	return &KEMKey{KEMBytes: kemBytes, SymmetricKey: symmetricKey}, nil
}
