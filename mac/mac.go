package mac

import (
	"fmt"

	"github.com/glinharesb/keyset-go/keyset"
	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/primitive"
	"github.com/glinharesb/keyset-go/primitiveset"
	"github.com/glinharesb/keyset-go/subtle"
)

// New returns a MAC backed by the handle's keyset. Tags are computed
// with the primary key and carry its output prefix; verification routes
// by prefix and falls back to the raw (prefix-less) keys.
func New(h *keyset.Handle) (primitive.MAC, error) {
	ps, err := keyset.Primitives[primitive.MAC](h)
	if err != nil {
		return nil, err
	}
	return &wrappedMAC{ps: ps}, nil
}

type wrappedMAC struct {
	ps *primitiveset.Set[primitive.MAC]
}

func (m *wrappedMAC) ComputeMAC(data []byte) ([]byte, error) {
	entry := m.ps.Primary()
	tag, err := entry.Primitive.ComputeMAC(legacyData(entry.PrefixType, data))
	if err != nil {
		return nil, err
	}
	return append([]byte(entry.Prefix), tag...), nil
}

func (m *wrappedMAC) VerifyMAC(mac, data []byte) error {
	if len(mac) > primitiveset.NonRawPrefixSize {
		prefix := string(mac[:primitiveset.NonRawPrefixSize])
		tag := mac[primitiveset.NonRawPrefixSize:]
		for _, entry := range m.ps.EntriesForPrefix(prefix) {
			if err := entry.Primitive.VerifyMAC(tag, legacyData(entry.PrefixType, data)); err == nil {
				return nil
			}
		}
	}

	for _, entry := range m.ps.RawEntries() {
		if err := entry.Primitive.VerifyMAC(mac, data); err == nil {
			return nil
		}
	}
	return fmt.Errorf("verify mac: %w", subtle.ErrInvalidMAC)
}

// legacyData appends the trailing zero byte processed by legacy-prefix
// keys, per the keyset wire format's legacy mode.
func legacyData(prefixType keysetproto.OutputPrefix, data []byte) []byte {
	if prefixType != keysetproto.PrefixLegacy {
		return data
	}
	return append(append([]byte(nil), data...), 0)
}
