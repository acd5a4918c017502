package registry

import (
	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/primitiveset"
)

// Default is the process-wide registry. The primitive family packages
// register their standard key managers against it in init; applications
// register custom managers at startup.
var Default = New()

// RegisterKeyManager registers km under typeURL in the default registry.
func RegisterKeyManager(typeURL string, km KeyManager) (bool, error) {
	return Default.RegisterKeyManager(typeURL, km)
}

// GetKeyManager looks up typeURL in the default registry.
func GetKeyManager(typeURL string) (KeyManager, error) {
	return Default.GetKeyManager(typeURL)
}

// NewKey generates key material via the default registry.
func NewKey(format *keysetproto.KeyFormat) (*keysetproto.KeyData, error) {
	return Default.NewKey(format)
}

// PrimitiveFromKeyData builds a primitive via the default registry.
func PrimitiveFromKeyData(keyData *keysetproto.KeyData) (any, error) {
	return Default.PrimitiveFromKeyData(keyData)
}

// DefaultPrimitives builds a primitive set from ks via the default
// registry.
func DefaultPrimitives[P any](ks *keysetproto.Keyset) (*primitiveset.Set[P], error) {
	return Primitives[P](Default, ks)
}
