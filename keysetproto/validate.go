package keysetproto

import (
	"errors"
	"fmt"
)

// ErrInvalidKeyset is the base error for structurally malformed keysets
// and for keysets whose declared primary cannot be used.
var ErrInvalidKeyset = errors.New("invalid keyset")

// Validate checks the structural integrity of a keyset: it must exist,
// hold at least one key, and every key must carry type-tagged key data
// and a nonzero id. It does not check key material or primary status;
// those are enforced where primitives are built.
func Validate(ks *Keyset) error {
	if ks == nil || len(ks.Keys) == 0 {
		return fmt.Errorf("%w: empty keyset", ErrInvalidKeyset)
	}
	seen := make(map[uint32]bool, len(ks.Keys))
	for i, k := range ks.Keys {
		if k == nil {
			return fmt.Errorf("%w: key %d is missing", ErrInvalidKeyset, i)
		}
		if k.KeyID == 0 {
			return fmt.Errorf("%w: key %d has no id", ErrInvalidKeyset, i)
		}
		if seen[k.KeyID] {
			return fmt.Errorf("%w: duplicate key id %d", ErrInvalidKeyset, k.KeyID)
		}
		seen[k.KeyID] = true
		if k.KeyData == nil || k.KeyData.TypeURL == "" {
			return fmt.Errorf("%w: key %d has no key data", ErrInvalidKeyset, k.KeyID)
		}
	}
	return nil
}
