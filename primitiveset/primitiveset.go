// Package primitiveset provides a per-keyset collection of live
// primitives, grouped by the output-prefix bytes their keys stamp onto
// ciphertexts, with one designated primary entry. A set is built in one
// pass while resolving a keyset and is read-only afterwards, so it can be
// shared across goroutines without synchronization.
package primitiveset

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/glinharesb/keyset-go/keysetproto"
)

const (
	// NonRawPrefixSize is the byte length of the marker prepended to
	// outputs of non-raw keys.
	NonRawPrefixSize = 5
	// TinkStartByte marks outputs of keys with the standard prefix type.
	TinkStartByte = byte(0x01)
	// LegacyStartByte marks outputs of keys with the legacy prefix type.
	LegacyStartByte = byte(0x00)
	// RawPrefix is the empty marker of prefix-less keys.
	RawPrefix = ""
)

// OutputPrefix derives the marker bytes for a key from its output-prefix
// type and key id. The derivation is fixed by the keyset wire format.
func OutputPrefix(k *keysetproto.Key) (string, error) {
	switch k.OutputPrefixType {
	case keysetproto.PrefixTink:
		return createPrefix(TinkStartByte, k.KeyID), nil
	case keysetproto.PrefixLegacy:
		return createPrefix(LegacyStartByte, k.KeyID), nil
	case keysetproto.PrefixRaw:
		return RawPrefix, nil
	default:
		return "", fmt.Errorf("unknown output prefix type %d", k.OutputPrefixType)
	}
}

func createPrefix(start byte, keyID uint32) string {
	prefix := make([]byte, NonRawPrefixSize)
	prefix[0] = start
	binary.BigEndian.PutUint32(prefix[1:], keyID)
	return string(prefix)
}

// Entry is one live primitive together with the keyset metadata needed to
// route data to it.
type Entry[P any] struct {
	Primitive  P
	KeyID      uint32
	Status     keysetproto.KeyStatus
	PrefixType keysetproto.OutputPrefix
	Prefix     string
}

// Set holds the primitives of one keyset, indexed by output prefix.
// Entries sharing a prefix are kept in insertion order; decryption walks
// them as alternates.
type Set[P any] struct {
	entries map[string][]*Entry[P]
	primary *Entry[P]
}

// New returns an empty set. Callers populate it with Add and SetPrimary
// during keyset resolution and must not mutate it afterwards.
func New[P any]() *Set[P] {
	return &Set[P]{entries: make(map[string][]*Entry[P])}
}

// Add inserts a primitive for the given key. Only enabled keys may be
// added; anything else is a hard error, not a skip.
func (s *Set[P]) Add(p P, k *keysetproto.Key) (*Entry[P], error) {
	if k.Status != keysetproto.StatusEnabled {
		return nil, fmt.Errorf("cannot add key %d with status %v", k.KeyID, k.Status)
	}
	prefix, err := OutputPrefix(k)
	if err != nil {
		return nil, err
	}
	e := &Entry[P]{
		Primitive:  p,
		KeyID:      k.KeyID,
		Status:     k.Status,
		PrefixType: k.OutputPrefixType,
		Prefix:     prefix,
	}
	s.entries[prefix] = append(s.entries[prefix], e)
	return e, nil
}

// SetPrimary designates e as the entry used for new cryptographic
// operations.
func (s *Set[P]) SetPrimary(e *Entry[P]) error {
	if e == nil {
		return errors.New("primary entry must not be nil")
	}
	s.primary = e
	return nil
}

// Primary returns the designated primary entry.
func (s *Set[P]) Primary() *Entry[P] {
	return s.primary
}

// EntriesForPrefix returns all entries whose keys share the given prefix
// bytes, in insertion order.
func (s *Set[P]) EntriesForPrefix(prefix string) []*Entry[P] {
	return s.entries[prefix]
}

// EntriesForKey returns all entries sharing the output prefix of the
// given keyset key.
func (s *Set[P]) EntriesForKey(k *keysetproto.Key) ([]*Entry[P], error) {
	prefix, err := OutputPrefix(k)
	if err != nil {
		return nil, err
	}
	return s.entries[prefix], nil
}

// RawEntries returns the entries of prefix-less keys.
func (s *Set[P]) RawEntries() []*Entry[P] {
	return s.entries[RawPrefix]
}

// Len reports the total number of entries across all prefixes.
func (s *Set[P]) Len() int {
	n := 0
	for _, group := range s.entries {
		n += len(group)
	}
	return n
}
