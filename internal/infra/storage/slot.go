// Package storage provides the durable key-value slot the session store
// persists into, modelled on the browser's namespaced local storage.
// The blob is sealed at rest when a key is configured.
package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrTampered indicates the sealed blob failed authentication.
var ErrTampered = errors.New("session slot failed authentication")

// Slot is a single durable slot holding one JSON document.
// Writes replace the whole document atomically (tmp file + rename).
type Slot struct {
	mu   sync.Mutex
	path string
	key  []byte // nil means plaintext (local development)
}

// NewSlot creates a slot backed by path. A non-empty sealKey enables
// sealing; the key material is derived from it with SHA-256.
func NewSlot(path, sealKey string) *Slot {
	s := &Slot{path: path}
	if sealKey != "" {
		sum := sha256.Sum256([]byte(sealKey))
		s.key = sum[:]
	}
	return s
}

// Write marshals v and replaces the slot contents.
func (s *Slot) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal slot: %w", err)
	}

	if s.key != nil {
		data, err = s.seal(data)
		if err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Read unmarshals the slot contents into v. A missing file is reported
// as os.ErrNotExist; callers treat that as an empty slot.
func (s *Slot) Read(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	if s.key != nil {
		data, err = s.open(data)
		if err != nil {
			return err
		}
	}

	return json.Unmarshal(data, v)
}

// Clear removes the slot. Clearing an already-empty slot is not an error.
func (s *Slot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the backing file path.
func (s *Slot) Path() string {
	return filepath.Clean(s.path)
}

func (s *Slot) seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *Slot) open(blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(blob) < aead.NonceSize() {
		return nil, ErrTampered
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrTampered
	}
	return plaintext, nil
}
