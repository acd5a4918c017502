// Package registry maintains the process-wide mapping from key type URLs
// to the key managers able to turn serialized keys of that type into live
// primitives. Key managers are registered once, during initialization of
// the primitive family packages or of the application, and looked up many
// times concurrently afterwards. A registration never overwrites an
// existing manager: the first writer for a type URL wins for the lifetime
// of the process.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/glinharesb/keyset-go/keysetproto"
)

// ErrNilKeyManager is returned when a caller attempts to register a nil
// key manager.
var ErrNilKeyManager = errors.New("key manager must not be nil")

// KeyManager knows how to instantiate one family of primitives from key
// data and how to generate fresh key material for that family. The
// returned primitive is type-erased; the generic Primitives call sites
// assert it to the expected capability.
type KeyManager interface {
	// Primitive constructs a live primitive from serialized key material.
	// It fails if the data cannot be parsed as this manager's key type or
	// fails cryptographic validity checks.
	Primitive(keyData *keysetproto.KeyData) (any, error)
	// NewKey generates fresh key material per the given format. It fails
	// if the format is not one this manager supports.
	NewKey(format *keysetproto.KeyFormat) (*keysetproto.KeyData, error)
	// DoesSupport reports whether this manager handles keys of the given
	// type URL.
	DoesSupport(typeURL string) bool
}

// Registry is a concurrency-safe type-URL table of key managers.
// The zero value is not usable; use New.
type Registry struct {
	mu       sync.RWMutex
	managers map[string]KeyManager
}

// New returns an empty registry. Most callers use the package-level
// default instead; separate instances exist for tests and for embedders
// that need isolated key-type namespaces.
func New() *Registry {
	return &Registry{managers: make(map[string]KeyManager)}
}

// RegisterKeyManager binds km to typeURL if no manager is bound yet.
// It reports true on insertion and false if a manager already exists, in
// which case the existing manager is left untouched. Registering a nil
// manager is an error.
func (r *Registry) RegisterKeyManager(typeURL string, km KeyManager) (bool, error) {
	if km == nil {
		return false, ErrNilKeyManager
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.managers[typeURL]; exists {
		return false, nil
	}
	r.managers[typeURL] = km
	return true, nil
}

// GetKeyManager returns the manager bound to typeURL.
func (r *Registry) GetKeyManager(typeURL string) (KeyManager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	km, ok := r.managers[typeURL]
	if !ok {
		return nil, fmt.Errorf("unsupported key type %q", typeURL)
	}
	return km, nil
}

// NewKey generates fresh key material by delegating to the manager bound
// to the format's type URL.
func (r *Registry) NewKey(format *keysetproto.KeyFormat) (*keysetproto.KeyData, error) {
	if format == nil {
		return nil, errors.New("key format must not be nil")
	}
	km, err := r.GetKeyManager(format.TypeURL)
	if err != nil {
		return nil, err
	}
	return km.NewKey(format)
}

// PrimitiveFromKeyData constructs a primitive by delegating to the
// manager bound to the key data's type URL.
func (r *Registry) PrimitiveFromKeyData(keyData *keysetproto.KeyData) (any, error) {
	if keyData == nil {
		return nil, errors.New("key data must not be nil")
	}
	km, err := r.GetKeyManager(keyData.TypeURL)
	if err != nil {
		return nil, err
	}
	return km.Primitive(keyData)
}
