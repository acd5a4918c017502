// Package signature provides the ECDSA-P256 and Ed25519 key families
// and signer/verifier primitives built from keyset handles. Each family
// is a pair of managers: one for private (signing) keys, one for the
// public (verifying) keys derived from them.
package signature

import (
	"crypto/elliptic"
	"fmt"

	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/registry"
	"github.com/glinharesb/keyset-go/subtle"
)

// Type URLs of the ECDSA-P256 family. Signer key data carries a PKCS8
// DER private key; verifier key data carries a PKIX DER public key.
const (
	ECDSASignerTypeURL   = "keyset.dev/ecdsa-p256-signer"
	ECDSAVerifierTypeURL = "keyset.dev/ecdsa-p256-verifier"
)

type ecdsaSignerKeyManager struct{}

func (km *ecdsaSignerKeyManager) Primitive(keyData *keysetproto.KeyData) (any, error) {
	if keyData == nil || !km.DoesSupport(keyData.TypeURL) {
		return nil, fmt.Errorf("invalid key: not an ecdsa signing key")
	}
	key, err := subtle.UnmarshalECDSAPrivateKey(keyData.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return subtle.NewECDSASigner(key), nil
}

func (km *ecdsaSignerKeyManager) NewKey(format *keysetproto.KeyFormat) (*keysetproto.KeyData, error) {
	if format == nil || !km.DoesSupport(format.TypeURL) {
		return nil, fmt.Errorf("invalid format: not an ecdsa signing format")
	}
	key, err := subtle.GenerateECDSAKey(elliptic.P256())
	if err != nil {
		return nil, err
	}
	der, err := subtle.MarshalECDSAPrivateKey(key)
	if err != nil {
		return nil, err
	}
	return &keysetproto.KeyData{TypeURL: ECDSASignerTypeURL, Value: der}, nil
}

func (km *ecdsaSignerKeyManager) DoesSupport(typeURL string) bool {
	return typeURL == ECDSASignerTypeURL
}

// PublicKeyData derives the verifier key data for a signing key.
func (km *ecdsaSignerKeyManager) PublicKeyData(keyData *keysetproto.KeyData) (*keysetproto.KeyData, error) {
	key, err := subtle.UnmarshalECDSAPrivateKey(keyData.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	der, err := subtle.MarshalECDSAPublicKey(&key.PublicKey)
	if err != nil {
		return nil, err
	}
	return &keysetproto.KeyData{TypeURL: ECDSAVerifierTypeURL, Value: der}, nil
}

type ecdsaVerifierKeyManager struct{}

func (km *ecdsaVerifierKeyManager) Primitive(keyData *keysetproto.KeyData) (any, error) {
	if keyData == nil || !km.DoesSupport(keyData.TypeURL) {
		return nil, fmt.Errorf("invalid key: not an ecdsa verifying key")
	}
	pub, err := subtle.UnmarshalECDSAPublicKey(keyData.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return subtle.NewECDSAVerifier(pub), nil
}

func (km *ecdsaVerifierKeyManager) NewKey(format *keysetproto.KeyFormat) (*keysetproto.KeyData, error) {
	return nil, fmt.Errorf("invalid format: verifying keys are derived from signing keys, not generated")
}

func (km *ecdsaVerifierKeyManager) DoesSupport(typeURL string) bool {
	return typeURL == ECDSAVerifierTypeURL
}

// ECDSAKeyFormat returns the key format for ECDSA-P256 signing keys.
func ECDSAKeyFormat() *keysetproto.KeyFormat {
	return &keysetproto.KeyFormat{TypeURL: ECDSASignerTypeURL}
}

func init() {
	if _, err := registry.RegisterKeyManager(ECDSASignerTypeURL, new(ecdsaSignerKeyManager)); err != nil {
		panic(fmt.Sprintf("signature: cannot register ecdsa signer manager: %v", err))
	}
	if _, err := registry.RegisterKeyManager(ECDSAVerifierTypeURL, new(ecdsaVerifierKeyManager)); err != nil {
		panic(fmt.Sprintf("signature: cannot register ecdsa verifier manager: %v", err))
	}
}
