package keysetproto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers are fixed by the external keyset message definition and
// must not change: serialized keysets outlive any single binary.
const (
	keysetPrimaryField = 1
	keysetKeyField     = 2

	keyDataField       = 1
	keyStatusField     = 2
	keyIDField         = 3
	keyPrefixTypeField = 4

	typeURLField = 1
	valueField   = 2
)

// MarshalKeyset serializes a keyset in protobuf wire format.
func MarshalKeyset(ks *Keyset) []byte {
	var b []byte
	if ks.PrimaryKeyID != 0 {
		b = protowire.AppendTag(b, keysetPrimaryField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(ks.PrimaryKeyID))
	}
	for _, k := range ks.Keys {
		b = protowire.AppendTag(b, keysetKeyField, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalKey(k))
	}
	return b
}

func marshalKey(k *Key) []byte {
	var b []byte
	if k.KeyData != nil {
		b = protowire.AppendTag(b, keyDataField, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalTypedValue(k.KeyData.TypeURL, k.KeyData.Value))
	}
	if k.Status != StatusUnknown {
		b = protowire.AppendTag(b, keyStatusField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(k.Status))
	}
	if k.KeyID != 0 {
		b = protowire.AppendTag(b, keyIDField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(k.KeyID))
	}
	if k.OutputPrefixType != PrefixUnknown {
		b = protowire.AppendTag(b, keyPrefixTypeField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(k.OutputPrefixType))
	}
	return b
}

// MarshalKeyData serializes key material in protobuf wire format.
func MarshalKeyData(kd *KeyData) []byte {
	return marshalTypedValue(kd.TypeURL, kd.Value)
}

// MarshalKeyFormat serializes a key format in protobuf wire format.
func MarshalKeyFormat(kf *KeyFormat) []byte {
	return marshalTypedValue(kf.TypeURL, kf.Value)
}

func marshalTypedValue(typeURL string, value []byte) []byte {
	var b []byte
	if typeURL != "" {
		b = protowire.AppendTag(b, typeURLField, protowire.BytesType)
		b = protowire.AppendString(b, typeURL)
	}
	if len(value) > 0 {
		b = protowire.AppendTag(b, valueField, protowire.BytesType)
		b = protowire.AppendBytes(b, value)
	}
	return b
}

// UnmarshalKeyset parses a keyset from protobuf wire format. Unknown
// fields are skipped; malformed wire data is an error.
func UnmarshalKeyset(data []byte) (*Keyset, error) {
	ks := &Keyset{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("keyset: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == keysetPrimaryField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("keyset primary_key_id: %w", protowire.ParseError(n))
			}
			ks.PrimaryKeyID = uint32(v)
			data = data[n:]
		case num == keysetKeyField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("keyset key: %w", protowire.ParseError(n))
			}
			k, err := unmarshalKey(v)
			if err != nil {
				return nil, err
			}
			ks.Keys = append(ks.Keys, k)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("keyset field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return ks, nil
}

func unmarshalKey(data []byte) (*Key, error) {
	k := &Key{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("key: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == keyDataField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("key data: %w", protowire.ParseError(n))
			}
			kd, err := UnmarshalKeyData(v)
			if err != nil {
				return nil, err
			}
			k.KeyData = kd
			data = data[n:]
		case num == keyStatusField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("key status: %w", protowire.ParseError(n))
			}
			k.Status = KeyStatus(v)
			data = data[n:]
		case num == keyIDField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("key id: %w", protowire.ParseError(n))
			}
			k.KeyID = uint32(v)
			data = data[n:]
		case num == keyPrefixTypeField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("key output_prefix_type: %w", protowire.ParseError(n))
			}
			k.OutputPrefixType = OutputPrefix(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("key field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return k, nil
}

// UnmarshalKeyData parses key material from protobuf wire format.
func UnmarshalKeyData(data []byte) (*KeyData, error) {
	typeURL, value, err := unmarshalTypedValue(data)
	if err != nil {
		return nil, err
	}
	return &KeyData{TypeURL: typeURL, Value: value}, nil
}

// UnmarshalKeyFormat parses a key format from protobuf wire format.
func UnmarshalKeyFormat(data []byte) (*KeyFormat, error) {
	typeURL, value, err := unmarshalTypedValue(data)
	if err != nil {
		return nil, err
	}
	return &KeyFormat{TypeURL: typeURL, Value: value}, nil
}

func unmarshalTypedValue(data []byte) (string, []byte, error) {
	var typeURL string
	var value []byte
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return "", nil, fmt.Errorf("typed value: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == typeURLField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return "", nil, fmt.Errorf("type_url: %w", protowire.ParseError(n))
			}
			typeURL = v
			data = data[n:]
		case num == valueField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return "", nil, fmt.Errorf("value: %w", protowire.ParseError(n))
			}
			value = append([]byte(nil), v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return "", nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return typeURL, value, nil
}
