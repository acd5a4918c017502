// Package mac provides the HMAC-SHA256 key family and a MAC built from a
// keyset handle that tags with the primary key and verifies across all
// enabled keys.
package mac

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/registry"
	"github.com/glinharesb/keyset-go/subtle"
)

// TypeURL identifies the HMAC-SHA256 key family.
const TypeURL = "keyset.dev/hmac-sha256"

const (
	defaultKeySize = 32
	defaultTagSize = 32
)

// Serialized key layout: key_value bytes = 1, tag_size varint = 2.
// Serialized format layout: key_size varint = 1, tag_size varint = 2.
const (
	keyValueField = 1
	keyTagField   = 2

	formatKeySizeField = 1
	formatTagSizeField = 2
)

type keyManager struct{}

func init() {
	if _, err := registry.RegisterKeyManager(TypeURL, new(keyManager)); err != nil {
		panic(fmt.Sprintf("mac: cannot register key manager: %v", err))
	}
}

func (km *keyManager) Primitive(keyData *keysetproto.KeyData) (any, error) {
	if keyData == nil || !km.DoesSupport(keyData.TypeURL) {
		return nil, fmt.Errorf("invalid key: not an hmac-sha256 key")
	}
	keyValue, tagSize, err := parseKey(keyData.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return subtle.NewHMAC(keyValue, tagSize)
}

func (km *keyManager) NewKey(format *keysetproto.KeyFormat) (*keysetproto.KeyData, error) {
	if format == nil || !km.DoesSupport(format.TypeURL) {
		return nil, fmt.Errorf("invalid format: not an hmac-sha256 format")
	}
	keySize, tagSize, err := parseFormat(format.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}

	keyValue, err := subtle.GenerateHMACKey(keySize)
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}
	// Reject unusable tag sizes before any key escapes the manager.
	if _, err := subtle.NewHMAC(keyValue, tagSize); err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}
	return &keysetproto.KeyData{TypeURL: TypeURL, Value: marshalKey(keyValue, tagSize)}, nil
}

func (km *keyManager) DoesSupport(typeURL string) bool {
	return typeURL == TypeURL
}

// KeyFormat returns a key format requesting an HMAC-SHA256 key of the
// given key and tag sizes in bytes.
func KeyFormat(keySize, tagSize int) *keysetproto.KeyFormat {
	var b []byte
	b = protowire.AppendTag(b, formatKeySizeField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(keySize))
	b = protowire.AppendTag(b, formatTagSizeField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(tagSize))
	return &keysetproto.KeyFormat{TypeURL: TypeURL, Value: b}
}

// DefaultKeyFormat returns the format for a 256-bit key with full-length
// tags.
func DefaultKeyFormat() *keysetproto.KeyFormat {
	return KeyFormat(defaultKeySize, defaultTagSize)
}

func marshalKey(keyValue []byte, tagSize int) []byte {
	var b []byte
	b = protowire.AppendTag(b, keyValueField, protowire.BytesType)
	b = protowire.AppendBytes(b, keyValue)
	b = protowire.AppendTag(b, keyTagField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(tagSize))
	return b
}

func parseKey(data []byte) (keyValue []byte, tagSize int, err error) {
	tagSize = defaultTagSize
	err = parseFields(data, func(num protowire.Number, bytesVal []byte, varintVal uint64) {
		switch num {
		case keyValueField:
			keyValue = bytesVal
		case keyTagField:
			tagSize = int(varintVal)
		}
	})
	if err != nil {
		return nil, 0, err
	}
	if len(keyValue) == 0 {
		return nil, 0, fmt.Errorf("missing key value")
	}
	return keyValue, tagSize, nil
}

func parseFormat(data []byte) (keySize, tagSize int, err error) {
	keySize, tagSize = defaultKeySize, defaultTagSize
	err = parseFields(data, func(num protowire.Number, _ []byte, varintVal uint64) {
		switch num {
		case formatKeySizeField:
			keySize = int(varintVal)
		case formatTagSizeField:
			tagSize = int(varintVal)
		}
	})
	if err != nil {
		return 0, 0, err
	}
	return keySize, tagSize, nil
}

// parseFields walks a two-field wire message handing each recognized
// field to fn. Unknown fields are skipped.
func parseFields(data []byte, fn func(num protowire.Number, bytesVal []byte, varintVal uint64)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(num, append([]byte(nil), v...), 0)
			data = data[n:]
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(num, nil, v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}
