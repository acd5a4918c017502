package keyset

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/registry"
)

const testMacURL = "keyset.dev/test-mac"

type testKeyManager struct{}

func (km *testKeyManager) Primitive(kd *keysetproto.KeyData) (any, error) {
	return struct{}{}, nil
}

func (km *testKeyManager) NewKey(f *keysetproto.KeyFormat) (*keysetproto.KeyData, error) {
	return &keysetproto.KeyData{TypeURL: testMacURL, Value: []byte("fresh material")}, nil
}

func (km *testKeyManager) DoesSupport(typeURL string) bool { return typeURL == testMacURL }

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	r := registry.New()
	if _, err := r.RegisterKeyManager(testMacURL, new(testKeyManager)); err != nil {
		t.Fatalf("register: %v", err)
	}
	format := &keysetproto.KeyFormat{TypeURL: testMacURL}
	return NewManager(format, append([]Option{WithRegistry(r)}, opts...)...)
}

func TestManagerRotateCreatesEnabledPrimary(t *testing.T) {
	m := newTestManager(t)
	if err := m.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	h, err := m.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if h.EncryptedKeyset() != nil {
		t.Fatal("fresh keyset should carry no encrypted form")
	}

	ks := h.Keyset()
	if len(ks.Keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(ks.Keys))
	}
	k := ks.Keys[0]
	if k.Status != keysetproto.StatusEnabled {
		t.Fatalf("new key status: got %v, want ENABLED", k.Status)
	}
	if k.OutputPrefixType != keysetproto.PrefixTink {
		t.Fatalf("new key prefix type: got %v, want TINK", k.OutputPrefixType)
	}
	if k.KeyID == 0 || ks.PrimaryKeyID != k.KeyID {
		t.Fatalf("new key must be primary with nonzero id: id=%d primary=%d", k.KeyID, ks.PrimaryKeyID)
	}
}

func TestManagerRotatePreservesExistingKeys(t *testing.T) {
	m := newTestManager(t)
	if err := m.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	first, err := m.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	firstKey := first.Keyset().Keys[0]

	if err := m.Rotate(); err != nil {
		t.Fatalf("second rotate: %v", err)
	}
	second, err := m.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	ks := second.Keyset()

	if len(ks.Keys) != 2 {
		t.Fatalf("key count must grow by one: got %d", len(ks.Keys))
	}
	if ks.Keys[0].KeyID != firstKey.KeyID || ks.Keys[0].Status != firstKey.Status {
		t.Fatal("rotate must leave existing keys untouched")
	}
	if ks.PrimaryKeyID != ks.Keys[1].KeyID {
		t.Fatal("rotate must promote the new key to primary")
	}
	if ks.Keys[0].KeyID == ks.Keys[1].KeyID {
		t.Fatal("key ids must be unique within the keyset")
	}

	// The earlier handle is a snapshot, not a live view.
	if len(first.Keyset().Keys) != 1 {
		t.Fatal("previous handle must not observe later rotations")
	}
}

func TestManagerSeededFromHandle(t *testing.T) {
	m := newTestManager(t)
	if err := m.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	h, err := m.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	m2 := newTestManager(t, WithHandle(h))
	if err := m2.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	h2, err := m2.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(h2.Keyset().Keys) != 2 {
		t.Fatalf("seeded manager should extend the keyset: got %d keys", len(h2.Keyset().Keys))
	}
	if h2.Keyset().Keys[0].KeyID != h.Keyset().Keys[0].KeyID {
		t.Fatal("seeded manager must keep the original keys")
	}
}

func TestManagerWithoutFormat(t *testing.T) {
	m := NewManager(nil)
	if err := m.Rotate(); err == nil {
		t.Fatal("rotate without a key format must fail")
	}
}

func TestNewHandleRejectsInvalidKeyset(t *testing.T) {
	if _, err := NewHandle(&keysetproto.Keyset{}); !errors.Is(err, keysetproto.ErrInvalidKeyset) {
		t.Fatalf("expected ErrInvalidKeyset, got %v", err)
	}
}

func TestParseCleartextRoundTrip(t *testing.T) {
	m := newTestManager(t)
	if err := m.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	h, err := m.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	data := SerializeCleartext(h)
	parsed, err := ParseCleartext(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.EncryptedKeyset() != nil {
		t.Fatal("cleartext handle must carry no encrypted form")
	}
	if !bytes.Equal(SerializeCleartext(parsed), data) {
		t.Fatal("round trip changed the keyset")
	}

	want := h.Keyset()
	got := parsed.Keyset()
	if got.PrimaryKeyID != want.PrimaryKeyID || len(got.Keys) != len(want.Keys) {
		t.Fatalf("parsed keyset differs: got %+v, want %+v", got, want)
	}
}

func TestParseCleartextCorruptBytes(t *testing.T) {
	m := newTestManager(t)
	if err := m.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	h, err := m.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	data := SerializeCleartext(h)
	data[0] = ^data[0]

	_, err = ParseCleartext(data)
	if err == nil {
		t.Fatal("corrupt keyset must not parse")
	}
	if !strings.Contains(err.Error(), "invalid keyset") {
		t.Fatalf(`error must state "invalid keyset": %v`, err)
	}
	if !errors.Is(err, keysetproto.ErrInvalidKeyset) {
		t.Fatalf("expected ErrInvalidKeyset, got %v", err)
	}
}

func TestParseCleartextEmpty(t *testing.T) {
	if _, err := ParseCleartext(nil); !errors.Is(err, keysetproto.ErrInvalidKeyset) {
		t.Fatalf("expected ErrInvalidKeyset, got %v", err)
	}
}

func TestWriteAndReadCleartextFile(t *testing.T) {
	m := newTestManager(t)
	if err := m.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	h, err := m.Handle()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	path := filepath.Join(t.TempDir(), "keys", "test.keyset")
	if err := WriteCleartextFile(h, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadCleartextFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(SerializeCleartext(got), SerializeCleartext(h)) {
		t.Fatal("file round trip changed the keyset")
	}
}

func TestReadCleartextFileMissing(t *testing.T) {
	if _, err := ReadCleartextFile(filepath.Join(t.TempDir(), "nope.keyset")); err == nil {
		t.Fatal("missing file must be an error")
	}
}
