package registry

import (
	"fmt"

	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/primitiveset"
)

// Primitives resolves every enabled key of ks into a live primitive of
// type P using the managers registered in r, and returns them as a
// primitive set with the keyset's declared primary marked. Disabled and
// destroyed keys never contribute a primitive. Any failure aborts the
// whole construction.
func Primitives[P any](r *Registry, ks *keysetproto.Keyset) (*primitiveset.Set[P], error) {
	return PrimitivesWithKeyManager[P](r, ks, nil)
}

// PrimitivesWithKeyManager is like Primitives but, when km is non-nil,
// uses km for every key instead of the registry lookup. The custom
// manager's Primitive method is trusted to handle or reject each key's
// data regardless of the key's declared type URL.
func PrimitivesWithKeyManager[P any](r *Registry, ks *keysetproto.Keyset, km KeyManager) (*primitiveset.Set[P], error) {
	if err := keysetproto.Validate(ks); err != nil {
		return nil, err
	}

	set := primitiveset.New[P]()
	var primary *primitiveset.Entry[P]
	for _, key := range ks.Keys {
		if key.Status != keysetproto.StatusEnabled {
			continue
		}

		var raw any
		var err error
		if km != nil {
			raw, err = km.Primitive(key.KeyData)
		} else {
			raw, err = r.PrimitiveFromKeyData(key.KeyData)
		}
		if err != nil {
			return nil, fmt.Errorf("cannot build primitive for key %d: %w", key.KeyID, err)
		}
		p, ok := raw.(P)
		if !ok {
			return nil, fmt.Errorf("invalid key: manager for %q built a %T, which is not the requested primitive type", key.KeyData.TypeURL, raw)
		}

		entry, err := set.Add(p, key)
		if err != nil {
			return nil, err
		}
		if key.KeyID == ks.PrimaryKeyID && primary == nil {
			primary = entry
		}
	}

	if primary == nil {
		return nil, fmt.Errorf("%w: primary key id %d has no enabled key", keysetproto.ErrInvalidKeyset, ks.PrimaryKeyID)
	}
	if err := set.SetPrimary(primary); err != nil {
		return nil, err
	}
	return set, nil
}
