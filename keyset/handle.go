// Package keyset wraps parsed keysets in validated handles, builds
// primitives from them, and manages key rotation. A handle never exposes
// a structurally invalid keyset; anything that produces a handle
// validates first.
package keyset

import (
	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/primitiveset"
	"github.com/glinharesb/keyset-go/registry"
)

// Handle is an immutable wrapper around a parsed keyset and, when the
// keyset originated from an encrypted source, its encrypted serialized
// form. Handles from cleartext sources carry no encrypted form.
type Handle struct {
	ks              *keysetproto.Keyset
	encryptedKeyset []byte
}

// NewHandle wraps ks after validating its structure.
func NewHandle(ks *keysetproto.Keyset) (*Handle, error) {
	if err := keysetproto.Validate(ks); err != nil {
		return nil, err
	}
	return &Handle{ks: ks}, nil
}

// NewHandleWithEncrypted wraps ks together with its encrypted serialized
// form.
func NewHandleWithEncrypted(ks *keysetproto.Keyset, encrypted []byte) (*Handle, error) {
	h, err := NewHandle(ks)
	if err != nil {
		return nil, err
	}
	h.encryptedKeyset = encrypted
	return h, nil
}

// Keyset returns the wrapped keyset.
func (h *Handle) Keyset() *keysetproto.Keyset {
	return h.ks
}

// EncryptedKeyset returns the encrypted serialized form, or nil for
// handles of cleartext origin.
func (h *Handle) EncryptedKeyset() []byte {
	return h.encryptedKeyset
}

// Primitives resolves the handle's enabled keys into primitives of type
// P via the default registry.
func Primitives[P any](h *Handle) (*primitiveset.Set[P], error) {
	return registry.Primitives[P](registry.Default, h.ks)
}

// PrimitivesWithKeyManager is like Primitives but uses km for every key
// when km is non-nil.
func PrimitivesWithKeyManager[P any](h *Handle, km registry.KeyManager) (*primitiveset.Set[P], error) {
	return registry.PrimitivesWithKeyManager[P](registry.Default, h.ks, km)
}
