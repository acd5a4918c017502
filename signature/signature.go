package signature

import (
	"errors"
	"fmt"

	"github.com/glinharesb/keyset-go/keyset"
	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/primitive"
	"github.com/glinharesb/keyset-go/primitiveset"
	"github.com/glinharesb/keyset-go/registry"
)

// ErrInvalidSignature is returned when no key in the keyset verifies a
// signature.
var ErrInvalidSignature = errors.New("invalid signature")

// privateKeyManager is implemented by signer key managers that can
// derive the public half of their keys.
type privateKeyManager interface {
	registry.KeyManager
	PublicKeyData(keyData *keysetproto.KeyData) (*keysetproto.KeyData, error)
}

// NewSigner returns a Signer backed by the handle's keyset. Signatures
// are produced with the primary key and carry its output prefix.
func NewSigner(h *keyset.Handle) (primitive.Signer, error) {
	ps, err := keyset.Primitives[primitive.Signer](h)
	if err != nil {
		return nil, err
	}
	return &wrappedSigner{ps: ps}, nil
}

type wrappedSigner struct {
	ps *primitiveset.Set[primitive.Signer]
}

func (s *wrappedSigner) Sign(data []byte) ([]byte, error) {
	entry := s.ps.Primary()
	sig, err := entry.Primitive.Sign(signedData(entry.PrefixType, data))
	if err != nil {
		return nil, err
	}
	return append([]byte(entry.Prefix), sig...), nil
}

// NewVerifier returns a Verifier backed by the handle's keyset.
// Verification routes by prefix and falls back to the raw keys.
func NewVerifier(h *keyset.Handle) (primitive.Verifier, error) {
	ps, err := keyset.Primitives[primitive.Verifier](h)
	if err != nil {
		return nil, err
	}
	return &wrappedVerifier{ps: ps}, nil
}

type wrappedVerifier struct {
	ps *primitiveset.Set[primitive.Verifier]
}

func (v *wrappedVerifier) Verify(signature, data []byte) error {
	if len(signature) > primitiveset.NonRawPrefixSize {
		prefix := string(signature[:primitiveset.NonRawPrefixSize])
		sig := signature[primitiveset.NonRawPrefixSize:]
		for _, entry := range v.ps.EntriesForPrefix(prefix) {
			if err := entry.Primitive.Verify(sig, signedData(entry.PrefixType, data)); err == nil {
				return nil
			}
		}
	}

	for _, entry := range v.ps.RawEntries() {
		if err := entry.Primitive.Verify(signature, data); err == nil {
			return nil
		}
	}
	return ErrInvalidSignature
}

// PublicHandle derives the verification keyset for a signing keyset:
// every key keeps its id, status and prefix type, with its key data
// replaced by the public half.
func PublicHandle(h *keyset.Handle) (*keyset.Handle, error) {
	src := h.Keyset()
	pub := &keysetproto.Keyset{PrimaryKeyID: src.PrimaryKeyID}
	for _, k := range src.Keys {
		km, err := registry.GetKeyManager(k.KeyData.TypeURL)
		if err != nil {
			return nil, err
		}
		pkm, ok := km.(privateKeyManager)
		if !ok {
			return nil, fmt.Errorf("key manager for %q cannot derive public keys", k.KeyData.TypeURL)
		}
		pubData, err := pkm.PublicKeyData(k.KeyData)
		if err != nil {
			return nil, err
		}
		pub.Keys = append(pub.Keys, &keysetproto.Key{
			KeyData:          pubData,
			Status:           k.Status,
			KeyID:            k.KeyID,
			OutputPrefixType: k.OutputPrefixType,
		})
	}
	return keyset.NewHandle(pub)
}

// signedData appends the trailing zero byte processed by legacy-prefix
// keys, per the keyset wire format's legacy mode.
func signedData(prefixType keysetproto.OutputPrefix, data []byte) []byte {
	if prefixType != keysetproto.PrefixLegacy {
		return data
	}
	return append(append([]byte(nil), data...), 0)
}
