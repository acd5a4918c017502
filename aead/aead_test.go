package aead

import (
	"bytes"
	"encoding/binary"
	"errors"
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

func TestEncryptDecrypt(t *testing.T) {
	h := newHandle(t)
	a, err := New(h)
	if err != nil {
		t.Fatalf("new aead: %v", err)
	}

	plaintext := []byte("sensitive payload")
	aad := []byte("header")
	ct, err := a.Encrypt(plaintext, aad)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	pt, err := a.Decrypt(ct, aad)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("round trip mismatch: got %q", pt)
	}
}

func TestCiphertextCarriesPrimaryPrefix(t *testing.T) {
	h := newHandle(t)
	a, err := New(h)
	if err != nil {
		t.Fatalf("new aead: %v", err)
	}

	ct, err := a.Encrypt([]byte("data"), nil)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if ct[0] != primitiveset.TinkStartByte {
		t.Fatalf("ciphertext start byte: got %#x, want %#x", ct[0], primitiveset.TinkStartByte)
	}
	if binary.BigEndian.Uint32(ct[1:5]) != h.Keyset().PrimaryKeyID {
		t.Fatal("ciphertext prefix must encode the primary key id")
	}
}

func TestWrongAssociatedData(t *testing.T) {
	h := newHandle(t)
	a, err := New(h)
	if err != nil {
		t.Fatalf("new aead: %v", err)
	}

	ct, err := a.Encrypt([]byte("data"), []byte("aad"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := a.Decrypt(ct, []byte("other")); !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected ErrDecryption, got %v", err)
	}
}

func TestDecryptAfterRotation(t *testing.T) {
	h := newHandle(t)
	a, err := New(h)
	if err != nil {
		t.Fatalf("new aead: %v", err)
	}
	ct, err := a.Encrypt([]byte("old data"), nil)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	km := keyset.NewManager(DefaultKeyFormat(), keyset.WithHandle(h))
	if err := km.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	rotated, err := km.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	a2, err := New(rotated)
	if err != nil {
		t.Fatalf("new aead: %v", err)
	}
	pt, err := a2.Decrypt(ct, nil)
	if err != nil {
		t.Fatalf("old ciphertext should decrypt after rotation: %v", err)
	}
	if !bytes.Equal(pt, []byte("old data")) {
		t.Fatalf("round trip mismatch: got %q", pt)
	}
}

func TestRawKeyDecrypt(t *testing.T) {
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
			OutputPrefixType: keysetproto.PrefixRaw,
		}},
	})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}

	a, err := New(h)
	if err != nil {
		t.Fatalf("new aead: %v", err)
	}
	ct, err := a.Encrypt([]byte("data"), nil)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	pt, err := a.Decrypt(ct, nil)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(pt, []byte("data")) {
		t.Fatalf("round trip mismatch: got %q", pt)
	}
}

func TestGarbageCiphertext(t *testing.T) {
	h := newHandle(t)
	a, err := New(h)
	if err != nil {
		t.Fatalf("new aead: %v", err)
	}
	if _, err := a.Decrypt([]byte("not a ciphertext"), nil); !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected ErrDecryption, got %v", err)
	}
}

func TestKeyFormatParams(t *testing.T) {
	keyData, err := registry.NewKey(KeyFormat(16))
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	keyValue, err := parseKey(keyData.Value)
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	if len(keyValue) != 16 {
		t.Fatalf("key size: got %d, want 16", len(keyValue))
	}

	if _, err := registry.NewKey(KeyFormat(20)); err == nil {
		t.Fatal("unsupported key size should be rejected")
	}
}
