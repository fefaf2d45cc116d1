package identity

import (
	"sync"

	"github.com/pkg/errors"
)

var ErrNotInitialized = errors.New("identity holder is not initialized")

// Holder keeps the signing key in memory for the lifetime of a run.
type Holder interface {
	// Initialize stores a copy of key, replacing any previous key.
	Initialize(key Key) error

	// Key returns a copy of the stored key.
	Key() (Key, error)

	// Address returns the public address of the stored key.
	Address() (string, error)

	IsInitialized() bool

	// Clear wipes the key from memory.
	Clear()
}

type holder struct {
	key         Key
	mu          sync.RWMutex
	initialized bool
}

// NewHolder creates an empty Holder.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewHolder() Holder {
	return &holder{}
}

func (h *holder) Initialize(key Key) error {
	if err := key.Validate(); err != nil {
		return errors.Wrap(err, "failed to initialize identity holder")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.key.wipe()
	h.key = key.clone()
	h.initialized = true

	return nil
}

func (h *holder) Key() (Key, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.initialized {
		return Key{}, ErrNotInitialized
	}

	return h.key.clone(), nil
}

func (h *holder) Address() (string, error) {
	key, err := h.Key()
	if err != nil {
		return "", err
	}
	defer key.wipe()

	return key.Address()
}

func (h *holder) IsInitialized() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.initialized
}

func (h *holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.key.wipe()
	h.key = Key{}
	h.initialized = false
}
