package keyset

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/glinharesb/keyset-go/event"
	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/registry"
)

// Manager builds and rotates keysets. It is configured with the key
// format used to generate new keys and may be seeded from an existing
// handle. A Manager is not safe for concurrent use; callers owning one
// serialize their own mutations.
type Manager struct {
	format   *keysetproto.KeyFormat
	registry *registry.Registry
	events   *event.Logger
	ks       *keysetproto.Keyset
}

// Option configures a Manager.
type Option func(*Manager)

// WithHandle seeds the manager with the keys of an existing handle.
func WithHandle(h *Handle) Option {
	return func(m *Manager) {
		src := h.Keyset()
		m.ks = &keysetproto.Keyset{
			PrimaryKeyID: src.PrimaryKeyID,
			Keys:         append([]*keysetproto.Key(nil), src.Keys...),
		}
	}
}

// WithRegistry resolves key generation against r instead of the default
// registry.
func WithRegistry(r *registry.Registry) Option {
	return func(m *Manager) {
		m.registry = r
	}
}

// WithEventLogger reports key-lifecycle operations to l.
func WithEventLogger(l *event.Logger) Option {
	return func(m *Manager) {
		m.events = l
	}
}

// NewManager returns a manager that generates keys per format.
func NewManager(format *keysetproto.KeyFormat, opts ...Option) *Manager {
	m := &Manager{
		format:   format,
		registry: registry.Default,
		ks:       &keysetproto.Keyset{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Rotate generates fresh key material per the configured format, appends
// it to the keyset as an enabled key under a new unique id, and promotes
// it to primary. All previously existing keys are left untouched.
func (m *Manager) Rotate() error {
	if m.format == nil {
		return errors.New("cannot rotate: no key format configured")
	}
	keyData, err := m.registry.NewKey(m.format)
	if err != nil {
		return fmt.Errorf("cannot generate key: %w", err)
	}

	keyID, err := m.newKeyID()
	if err != nil {
		return err
	}
	m.ks.Keys = append(m.ks.Keys, &keysetproto.Key{
		KeyData:          keyData,
		Status:           keysetproto.StatusEnabled,
		KeyID:            keyID,
		OutputPrefixType: keysetproto.PrefixTink,
	})
	m.ks.PrimaryKeyID = keyID

	if m.events != nil {
		m.events.Log("rotate", keyData.TypeURL, keyID, keysetproto.StatusEnabled.String())
	}
	return nil
}

// Handle returns a handle over a snapshot of the current keyset.
func (m *Manager) Handle() (*Handle, error) {
	return NewHandle(&keysetproto.Keyset{
		PrimaryKeyID: m.ks.PrimaryKeyID,
		Keys:         append([]*keysetproto.Key(nil), m.ks.Keys...),
	})
}

// newKeyID draws a random nonzero key id not yet present in the keyset.
func (m *Manager) newKeyID() (uint32, error) {
	var buf [4]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("draw key id: %w", err)
		}
		id := binary.BigEndian.Uint32(buf[:])
		if id == 0 {
			continue
		}
		taken := false
		for _, k := range m.ks.Keys {
			if k.KeyID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id, nil
		}
	}
}
