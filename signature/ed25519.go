package signature

import (
	"fmt"

	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/registry"
	"github.com/glinharesb/keyset-go/subtle"
)

// Type URLs of the Ed25519 family. Signer key data carries the 32-byte
// seed; verifier key data carries the 32-byte public key.
const (
	Ed25519SignerTypeURL   = "keyset.dev/ed25519-signer"
	Ed25519VerifierTypeURL = "keyset.dev/ed25519-verifier"
)

type ed25519SignerKeyManager struct{}

func (km *ed25519SignerKeyManager) Primitive(keyData *keysetproto.KeyData) (any, error) {
	if keyData == nil || !km.DoesSupport(keyData.TypeURL) {
		return nil, fmt.Errorf("invalid key: not an ed25519 signing key")
	}
	signer, err := subtle.NewEd25519SignerFromSeed(keyData.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return signer, nil
}

func (km *ed25519SignerKeyManager) NewKey(format *keysetproto.KeyFormat) (*keysetproto.KeyData, error) {
	if format == nil || !km.DoesSupport(format.TypeURL) {
		return nil, fmt.Errorf("invalid format: not an ed25519 signing format")
	}
	seed, err := subtle.GenerateEd25519Seed()
	if err != nil {
		return nil, err
	}
	return &keysetproto.KeyData{TypeURL: Ed25519SignerTypeURL, Value: seed}, nil
}

func (km *ed25519SignerKeyManager) DoesSupport(typeURL string) bool {
	return typeURL == Ed25519SignerTypeURL
}

// PublicKeyData derives the verifier key data for a signing key.
func (km *ed25519SignerKeyManager) PublicKeyData(keyData *keysetproto.KeyData) (*keysetproto.KeyData, error) {
	signer, err := subtle.NewEd25519SignerFromSeed(keyData.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return &keysetproto.KeyData{TypeURL: Ed25519VerifierTypeURL, Value: signer.PublicKey()}, nil
}

type ed25519VerifierKeyManager struct{}

func (km *ed25519VerifierKeyManager) Primitive(keyData *keysetproto.KeyData) (any, error) {
	if keyData == nil || !km.DoesSupport(keyData.TypeURL) {
		return nil, fmt.Errorf("invalid key: not an ed25519 verifying key")
	}
	verifier, err := subtle.NewEd25519Verifier(keyData.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return verifier, nil
}

func (km *ed25519VerifierKeyManager) NewKey(format *keysetproto.KeyFormat) (*keysetproto.KeyData, error) {
	return nil, fmt.Errorf("invalid format: verifying keys are derived from signing keys, not generated")
}

func (km *ed25519VerifierKeyManager) DoesSupport(typeURL string) bool {
	return typeURL == Ed25519VerifierTypeURL
}

// Ed25519KeyFormat returns the key format for Ed25519 signing keys.
func Ed25519KeyFormat() *keysetproto.KeyFormat {
	return &keysetproto.KeyFormat{TypeURL: Ed25519SignerTypeURL}
}

func init() {
	if _, err := registry.RegisterKeyManager(Ed25519SignerTypeURL, new(ed25519SignerKeyManager)); err != nil {
		panic(fmt.Sprintf("signature: cannot register ed25519 signer manager: %v", err))
	}
	if _, err := registry.RegisterKeyManager(Ed25519VerifierTypeURL, new(ed25519VerifierKeyManager)); err != nil {
		panic(fmt.Sprintf("signature: cannot register ed25519 verifier manager: %v", err))
	}
}
