package mac

import (
	"encoding/binary"
	"testing"

	"github.com/glinharesb/keyset-go/keyset"
	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/primitiveset"
	"github.com/glinharesb/keyset-go/registry"
)

func newHandle(t *testing.T) *keyset.Handle {
	t.Helper()
	m := keyset.NewManager(DefaultKeyFormat())
	if err := m.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	h, err := m.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	return h
}

func TestComputeVerify(t *testing.T) {
	h := newHandle(t)
	m, err := New(h)
	if err != nil {
		t.Fatalf("new mac: %v", err)
	}

	data := []byte("data to authenticate")
	tag, err := m.ComputeMAC(data)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if err := m.VerifyMAC(tag, data); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := m.VerifyMAC(tag, []byte("tampered")); err == nil {
		t.Fatal("tampered data should not verify")
	}
}

func TestTagCarriesPrimaryPrefix(t *testing.T) {
	h := newHandle(t)
	m, err := New(h)
	if err != nil {
		t.Fatalf("new mac: %v", err)
	}

	tag, err := m.ComputeMAC([]byte("data"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(tag) <= primitiveset.NonRawPrefixSize {
		t.Fatalf("tag too short to carry a prefix: %d bytes", len(tag))
	}
	if tag[0] != primitiveset.TinkStartByte {
		t.Fatalf("tag start byte: got %#x, want %#x", tag[0], primitiveset.TinkStartByte)
	}
	if binary.BigEndian.Uint32(tag[1:5]) != h.Keyset().PrimaryKeyID {
		t.Fatal("tag prefix must encode the primary key id")
	}
}

func TestVerifyAfterRotation(t *testing.T) {
	h := newHandle(t)
	m, err := New(h)
	if err != nil {
		t.Fatalf("new mac: %v", err)
	}
	tag, err := m.ComputeMAC([]byte("data"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	km := keyset.NewManager(DefaultKeyFormat(), keyset.WithHandle(h))
	if err := km.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	rotated, err := km.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	m2, err := New(rotated)
	if err != nil {
		t.Fatalf("new mac: %v", err)
	}
	// Tags from the previous primary must keep verifying.
	if err := m2.VerifyMAC(tag, []byte("data")); err != nil {
		t.Fatalf("old tag should verify after rotation: %v", err)
	}

	// New tags come from the new primary.
	newTag, err := m2.ComputeMAC([]byte("data"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if binary.BigEndian.Uint32(newTag[1:5]) != rotated.Keyset().PrimaryKeyID {
		t.Fatal("new tag must carry the new primary's key id")
	}
}

func rawKeyHandle(t *testing.T, prefix keysetproto.OutputPrefix) *keyset.Handle {
	t.Helper()
	keyData, err := registry.NewKey(DefaultKeyFormat())
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	h, err := keyset.NewHandle(&keysetproto.Keyset{
		PrimaryKeyID: 1,
		Keys: []*keysetproto.Key{{
			KeyData:          keyData,
			Status:           keysetproto.StatusEnabled,
			KeyID:            1,
			OutputPrefixType: prefix,
		}},
	})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	return h
}

func TestRawKeyProducesBareTag(t *testing.T) {
	h := rawKeyHandle(t, keysetproto.PrefixRaw)
	m, err := New(h)
	if err != nil {
		t.Fatalf("new mac: %v", err)
	}

	tag, err := m.ComputeMAC([]byte("data"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(tag) != 32 {
		t.Fatalf("raw tag must carry no prefix: got %d bytes", len(tag))
	}
	if err := m.VerifyMAC(tag, []byte("data")); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestLegacyKeyRoundTrip(t *testing.T) {
	h := rawKeyHandle(t, keysetproto.PrefixLegacy)
	m, err := New(h)
	if err != nil {
		t.Fatalf("new mac: %v", err)
	}

	tag, err := m.ComputeMAC([]byte("data"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if tag[0] != primitiveset.LegacyStartByte {
		t.Fatalf("legacy tag start byte: got %#x, want %#x", tag[0], primitiveset.LegacyStartByte)
	}
	if err := m.VerifyMAC(tag, []byte("data")); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestKeyManagerRejectsForeignKeyData(t *testing.T) {
	km, err := registry.GetKeyManager(TypeURL)
	if err != nil {
		t.Fatalf("get key manager: %v", err)
	}
	if _, err := km.Primitive(&keysetproto.KeyData{TypeURL: "keyset.dev/other"}); err == nil {
		t.Fatal("foreign key data should be rejected")
	}
	if _, err := km.NewKey(&keysetproto.KeyFormat{TypeURL: "keyset.dev/other"}); err == nil {
		t.Fatal("foreign key format should be rejected")
	}
}

func TestKeyFormatParams(t *testing.T) {
	keyData, err := registry.NewKey(KeyFormat(16, 10))
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	keyValue, tagSize, err := parseKey(keyData.Value)
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	if len(keyValue) != 16 {
		t.Fatalf("key size: got %d, want 16", len(keyValue))
	}
	if tagSize != 10 {
		t.Fatalf("tag size: got %d, want 10", tagSize)
	}

	// Formats requesting unusable parameters fail at generation time.
	if _, err := registry.NewKey(KeyFormat(8, 32)); err == nil {
		t.Fatal("short key size should be rejected")
	}
	if _, err := registry.NewKey(KeyFormat(32, 4)); err == nil {
		t.Fatal("tiny tag size should be rejected")
	}
}
