// Package keysetproto implements the binary keyset message format: a
// protobuf-encoded keyset holding type-tagged key material, per-key status
// and output-prefix tagging, plus the key-format message used to request
// new keys. The codec is hand-maintained on top of the protobuf wire
// package so the module carries no generated code.
package keysetproto

// KeyStatus is the lifecycle state of a key within a keyset.
type KeyStatus int32

const (
	StatusUnknown KeyStatus = iota
	StatusEnabled
	StatusDisabled
	StatusDestroyed
)

func (s KeyStatus) String() string {
	switch s {
	case StatusEnabled:
		return "ENABLED"
	case StatusDisabled:
		return "DISABLED"
	case StatusDestroyed:
		return "DESTROYED"
	default:
		return "UNKNOWN"
	}
}

// OutputPrefix selects how ciphertexts and tags produced by a key are
// marked for decryption-side routing.
type OutputPrefix int32

const (
	PrefixUnknown OutputPrefix = iota
	PrefixTink                 // 0x01 marker followed by the big-endian key id
	PrefixLegacy               // 0x00 marker followed by the big-endian key id
	PrefixRaw                  // no marker
)

func (p OutputPrefix) String() string {
	switch p {
	case PrefixTink:
		return "TINK"
	case PrefixLegacy:
		return "LEGACY"
	case PrefixRaw:
		return "RAW"
	default:
		return "UNKNOWN"
	}
}

// KeyData is opaque serialized key material tagged with the type URL of
// the key manager that produced it. It is never mutated after creation.
type KeyData struct {
	TypeURL string
	Value   []byte
}

// KeyFormat is an algorithm-specific specification for generating a new
// key. Value is opaque to everything except the owning key manager.
type KeyFormat struct {
	TypeURL string
	Value   []byte
}

// Key is a single entry in a keyset.
type Key struct {
	KeyData          *KeyData
	Status           KeyStatus
	KeyID            uint32
	OutputPrefixType OutputPrefix
}

// Keyset is an ordered collection of keys with one declared primary.
type Keyset struct {
	PrimaryKeyID uint32
	Keys         []*Key
}

// Key returns the i-th key entry.
func (ks *Keyset) Key(i int) *Key {
	return ks.Keys[i]
}
