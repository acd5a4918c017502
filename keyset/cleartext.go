package keyset

import (
	"fmt"

	"github.com/glinharesb/keyset-go/keysetproto"
)

// ParseCleartext deserializes data as an unencrypted keyset and wraps it
// in a handle with no associated encrypted form. The name is the signal:
// callers reaching for this function are handling key material without
// encryption at rest. Only structural validity is checked, not the key
// contents.
func ParseCleartext(data []byte) (*Handle, error) {
	ks, err := keysetproto.UnmarshalKeyset(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keysetproto.ErrInvalidKeyset, err)
	}
	return NewHandle(ks)
}

// SerializeCleartext returns the handle's keyset in serialized form,
// unencrypted.
func SerializeCleartext(h *Handle) []byte {
	return keysetproto.MarshalKeyset(h.Keyset())
}
