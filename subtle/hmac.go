package subtle

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
)

const (
	minHMACKeySize = 16
	minHMACTagSize = 10
	maxHMACTagSize = sha256.Size
)

// ErrInvalidMAC is returned when a tag does not verify.
var ErrInvalidMAC = errors.New("invalid mac")

// HMAC computes and verifies HMAC-SHA256 tags truncated to a fixed size.
type HMAC struct {
	key     []byte
	tagSize int
}

// NewHMAC creates an HMAC for the given key and tag size.
func NewHMAC(key []byte, tagSize int) (*HMAC, error) {
	if len(key) < minHMACKeySize {
		return nil, fmt.Errorf("hmac key too short: %d bytes (min %d)", len(key), minHMACKeySize)
	}
	if tagSize < minHMACTagSize || tagSize > maxHMACTagSize {
		return nil, fmt.Errorf("invalid hmac tag size %d (want %d-%d)", tagSize, minHMACTagSize, maxHMACTagSize)
	}
	return &HMAC{key: key, tagSize: tagSize}, nil
}

func (h *HMAC) ComputeMAC(data []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, h.key)
	mac.Write(data)
	return mac.Sum(nil)[:h.tagSize], nil
}

func (h *HMAC) VerifyMAC(tag, data []byte) error {
	expected, err := h.ComputeMAC(data)
	if err != nil {
		return err
	}
	if !hmac.Equal(expected, tag) {
		return ErrInvalidMAC
	}
	return nil
}

// GenerateHMACKey generates a random HMAC key of the given byte size.
func GenerateHMACKey(size int) ([]byte, error) {
	if size < minHMACKeySize {
		return nil, fmt.Errorf("hmac key too short: %d bytes (min %d)", size, minHMACKeySize)
	}
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate hmac key: %w", err)
	}
	return key, nil
}
