// Package aead provides the AES-GCM key family and an AEAD built from a
// keyset handle that encrypts under the primary key and routes
// ciphertexts back to the right key for decryption.
package aead

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/registry"
	"github.com/glinharesb/keyset-go/subtle"
)

// TypeURL identifies the AES-GCM key family.
const TypeURL = "keyset.dev/aes-gcm"

const defaultKeySize = 32

// Serialized key layout: key_value bytes = 1.
// Serialized format layout: key_size varint = 1.
const (
	keyValueField      = 1
	formatKeySizeField = 1
)

type keyManager struct{}

func init() {
	if _, err := registry.RegisterKeyManager(TypeURL, new(keyManager)); err != nil {
		panic(fmt.Sprintf("aead: cannot register key manager: %v", err))
	}
}

func (km *keyManager) Primitive(keyData *keysetproto.KeyData) (any, error) {
	if keyData == nil || !km.DoesSupport(keyData.TypeURL) {
		return nil, fmt.Errorf("invalid key: not an aes-gcm key")
	}
	keyValue, err := parseKey(keyData.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return subtle.NewAESGCM(keyValue)
}

func (km *keyManager) NewKey(format *keysetproto.KeyFormat) (*keysetproto.KeyData, error) {
	if format == nil || !km.DoesSupport(format.TypeURL) {
		return nil, fmt.Errorf("invalid format: not an aes-gcm format")
	}
	keySize, err := parseFormat(format.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}

	keyValue, err := subtle.GenerateAESKey(keySize)
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}
	var b []byte
	b = protowire.AppendTag(b, keyValueField, protowire.BytesType)
	b = protowire.AppendBytes(b, keyValue)
	return &keysetproto.KeyData{TypeURL: TypeURL, Value: b}, nil
}

func (km *keyManager) DoesSupport(typeURL string) bool {
	return typeURL == TypeURL
}

// KeyFormat returns a key format requesting an AES-GCM key of the given
// size in bytes.
func KeyFormat(keySize int) *keysetproto.KeyFormat {
	var b []byte
	b = protowire.AppendTag(b, formatKeySizeField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(keySize))
	return &keysetproto.KeyFormat{TypeURL: TypeURL, Value: b}
}

// DefaultKeyFormat returns the format for AES-256-GCM.
func DefaultKeyFormat() *keysetproto.KeyFormat {
	return KeyFormat(defaultKeySize)
}

func parseKey(data []byte) ([]byte, error) {
	var keyValue []byte
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		if num == keyValueField && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			keyValue = append([]byte(nil), v...)
			data = data[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
	}
	if len(keyValue) == 0 {
		return nil, fmt.Errorf("missing key value")
	}
	return keyValue, nil
}

func parseFormat(data []byte) (int, error) {
	keySize := defaultKeySize
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		data = data[n:]

		if num == formatKeySizeField && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			keySize = int(v)
			data = data[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		data = data[n:]
	}
	return keySize, nil
}
