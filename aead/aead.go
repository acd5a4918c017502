package aead

import (
	"errors"

	"github.com/glinharesb/keyset-go/keyset"
	"github.com/glinharesb/keyset-go/primitive"
	"github.com/glinharesb/keyset-go/primitiveset"
)

// ErrDecryption is returned when no key in the keyset can decrypt a
// ciphertext. It deliberately carries no detail about which candidates
// were tried.
var ErrDecryption = errors.New("decryption failed")

// New returns an AEAD backed by the handle's keyset. Encryption uses the
// primary key and prepends its output prefix; decryption routes by
// prefix and falls back to the raw (prefix-less) keys.
func New(h *keyset.Handle) (primitive.AEAD, error) {
	ps, err := keyset.Primitives[primitive.AEAD](h)
	if err != nil {
		return nil, err
	}
	return &wrappedAEAD{ps: ps}, nil
}

type wrappedAEAD struct {
	ps *primitiveset.Set[primitive.AEAD]
}

func (a *wrappedAEAD) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	entry := a.ps.Primary()
	ct, err := entry.Primitive.Encrypt(plaintext, associatedData)
	if err != nil {
		return nil, err
	}
	return append([]byte(entry.Prefix), ct...), nil
}

func (a *wrappedAEAD) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	if len(ciphertext) > primitiveset.NonRawPrefixSize {
		prefix := string(ciphertext[:primitiveset.NonRawPrefixSize])
		ct := ciphertext[primitiveset.NonRawPrefixSize:]
		for _, entry := range a.ps.EntriesForPrefix(prefix) {
			if pt, err := entry.Primitive.Decrypt(ct, associatedData); err == nil {
				return pt, nil
			}
		}
	}

	for _, entry := range a.ps.RawEntries() {
		if pt, err := entry.Primitive.Decrypt(ciphertext, associatedData); err == nil {
			return pt, nil
		}
	}
	return nil, ErrDecryption
}
