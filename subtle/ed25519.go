package subtle

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
)

// Ed25519Signer signs with an Ed25519 private key.
type Ed25519Signer struct {
	key ed25519.PrivateKey
}

// NewEd25519SignerFromSeed builds a signer from a 32-byte seed.
func NewEd25519SignerFromSeed(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid ed25519 seed size %d (want %d)", len(seed), ed25519.SeedSize)
	}
	return &Ed25519Signer{key: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *Ed25519Signer) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(s.key, data), nil
}

// PublicKey returns the signer's public key bytes.
func (s *Ed25519Signer) PublicKey() []byte {
	return s.key.Public().(ed25519.PublicKey)
}

// Ed25519Verifier verifies Ed25519 signatures.
type Ed25519Verifier struct {
	pub ed25519.PublicKey
}

// NewEd25519Verifier builds a verifier from public key bytes.
func NewEd25519Verifier(pub []byte) (*Ed25519Verifier, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 public key size %d (want %d)", len(pub), ed25519.PublicKeySize)
	}
	return &Ed25519Verifier{pub: ed25519.PublicKey(pub)}, nil
}

func (v *Ed25519Verifier) Verify(signature, data []byte) error {
	if !ed25519.Verify(v.pub, data, signature) {
		return fmt.Errorf("invalid ed25519 signature")
	}
	return nil
}

// GenerateEd25519Seed draws a fresh random seed.
func GenerateEd25519Seed() ([]byte, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate ed25519 seed: %w", err)
	}
	return seed, nil
}
