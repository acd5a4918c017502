// Package primitive declares the cryptographic capability interfaces
// handed back to callers. Implementations live in the subtle package and
// behind the wrapped primitives built from keysets.
package primitive

// MAC computes and verifies message authentication codes.
type MAC interface {
	ComputeMAC(data []byte) ([]byte, error)
	VerifyMAC(mac, data []byte) error
}

// AEAD provides authenticated encryption with associated data.
type AEAD interface {
	Encrypt(plaintext, associatedData []byte) ([]byte, error)
	Decrypt(ciphertext, associatedData []byte) ([]byte, error)
}

// Signer produces digital signatures.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// Verifier checks digital signatures.
type Verifier interface {
	Verify(signature, data []byte) error
}
